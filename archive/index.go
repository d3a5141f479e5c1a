package archive

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
	nethtml "golang.org/x/net/html"
)

var ErrNotIndex = errors.New("not an index document")

const (
	titlePrefix = "Index of "
	titleSuffix = "/"
)

// Entry is one archived child of a directory.
type Entry struct {
	Name string
	Hash blobsweep.Hash
}

// Index is the directory object stored for every archived directory.
type Index struct {
	Dir     string
	Entries []Entry
}

// RenderIndex renders the index document of dir. Entries are written in the
// given order.
//
//	<h1>Index of DIR/</h1>
//	<ul>
//	<li><a href="/HASH/NAME">NAME</a></li>
//	</ul>
func RenderIndex(dir string, entries []Entry) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "<h1>%s%s%s</h1>\n", titlePrefix, html.EscapeString(dir), titleSuffix)
	buf.WriteString("<ul>\n")

	for _, e := range entries {
		fmt.Fprintf(&buf, "<li><a href=\"/%s/%s\">%s</a></li>\n", e.Hash, url.PathEscape(e.Name), html.EscapeString(e.Name))
	}

	buf.WriteString("</ul>\n")

	return buf.Bytes()
}

// ParseIndex reads back a document produced by RenderIndex. It fails with
// ErrNotIndex when data is not an index document.
func ParseIndex(data []byte) (*Index, error) {
	tokenizer := nethtml.NewTokenizer(bytes.NewReader(data))

	var (
		index    Index
		hasTitle bool
		inTitle  bool
		title    strings.Builder
		current  *Entry
		label    strings.Builder
	)

	for {
		switch tokenizer.Next() {
		case nethtml.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return nil, errors.Wrap(ErrNotIndex, err.Error())
			}

			if !hasTitle {
				return nil, errors.Wrap(ErrNotIndex, "missing title")
			}

			return &index, nil

		case nethtml.StartTagToken:
			name, hasAttr := tokenizer.TagName()

			switch string(name) {
			case "h1":
				if hasTitle {
					return nil, errors.Wrap(ErrNotIndex, "duplicate title")
				}
				inTitle = true

			case "a":
				entry := Entry{}

				for hasAttr {
					var key, value []byte
					key, value, hasAttr = tokenizer.TagAttr()
					if string(key) != "href" {
						continue
					}

					hash, err := parseHref(string(value))
					if err != nil {
						return nil, errors.WithStack(err)
					}

					entry.Hash = hash
				}

				if entry.Hash == "" {
					return nil, errors.Wrap(ErrNotIndex, "link without href")
				}

				current = &entry
				label.Reset()
			}

		case nethtml.TextToken:
			switch {
			case inTitle:
				title.Write(tokenizer.Text())
			case current != nil:
				label.Write(tokenizer.Text())
			}

		case nethtml.EndTagToken:
			name, _ := tokenizer.TagName()

			switch string(name) {
			case "h1":
				if !inTitle {
					continue
				}

				inTitle = false
				hasTitle = true

				raw := title.String()
				if !strings.HasPrefix(raw, titlePrefix) || !strings.HasSuffix(raw, titleSuffix) {
					return nil, errors.Wrapf(ErrNotIndex, "unexpected title '%s'", raw)
				}

				index.Dir = strings.TrimSuffix(strings.TrimPrefix(raw, titlePrefix), titleSuffix)

			case "a":
				if current == nil {
					continue
				}

				current.Name = label.String()
				index.Entries = append(index.Entries, *current)
				current = nil
			}
		}
	}
}

func parseHref(href string) (blobsweep.Hash, error) {
	parts := strings.SplitN(strings.TrimPrefix(href, "/"), "/", 2)
	if len(parts) != 2 {
		return "", errors.Wrapf(ErrNotIndex, "unexpected href '%s'", href)
	}

	hash, err := blobsweep.ParseHash(parts[0])
	if err != nil {
		return "", errors.Wrapf(ErrNotIndex, "unexpected href '%s': %s", href, err)
	}

	return hash, nil
}
