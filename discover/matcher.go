package discover

import (
	"regexp"

	"github.com/bornholm/go-blobsweep/syncx"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// Candidate is a directory considered by the walker.
type Candidate struct {
	Path  string `expr:"path"`
	Name  string `expr:"name"`
	Depth int    `expr:"depth"`
}

type Matcher interface {
	Match(c Candidate) (bool, error)
}

type MatcherFunc func(c Candidate) (bool, error)

func (fn MatcherFunc) Match(c Candidate) (bool, error) {
	return fn(c)
}

// NamePattern matches candidates whose base name matches re.
func NamePattern(re *regexp.Regexp) Matcher {
	return MatcherFunc(func(c Candidate) (bool, error) {
		return re.MatchString(c.Name), nil
	})
}

var programs syncx.Map[string, *vm.Program]

// Expr matches candidates for which the boolean expression script evaluates
// to true, e.g. `depth < 4 && !(path contains "/.git/")`.
func Expr(script string) (Matcher, error) {
	program, exists := programs.Load(script)
	if !exists {
		compiled, err := expr.Compile(script, expr.Env(Candidate{}), expr.AsBool())
		if err != nil {
			return nil, errors.Wrapf(err, "could not compile filter '%s'", script)
		}

		program, _ = programs.LoadOrStore(script, compiled)
	}

	return MatcherFunc(func(c Candidate) (bool, error) {
		result, err := expr.Run(program, c)
		if err != nil {
			return false, errors.WithStack(err)
		}

		return result.(bool), nil
	}), nil
}

// All matches candidates matched by every matcher.
func All(matchers ...Matcher) Matcher {
	return MatcherFunc(func(c Candidate) (bool, error) {
		for _, m := range matchers {
			matched, err := m.Match(c)
			if err != nil {
				return false, errors.WithStack(err)
			}

			if !matched {
				return false, nil
			}
		}

		return true, nil
	})
}
