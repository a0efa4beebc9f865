package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// check is one predicate over a normalized field value.
type check struct {
	ok  func(string) bool
	msg string
}

// fieldRule describes how one field is normalized and checked.
// Checks run in order; the first failing check yields the field's message.
type fieldRule struct {
	name      string
	normalize func(string) string
	checks    []check
}

// runRules evaluates every rule against the raw getter, collecting all field
// failures. Normalized values are written back through set so that a fully
// valid payload comes out canonical.
func runRules(rules []fieldRule, get func(string) string, set func(string, string)) Errors {
	var errs Errors
	for _, r := range rules {
		v := get(r.name)
		if r.normalize != nil {
			v = r.normalize(v)
		}
		set(r.name, v)

		for _, c := range r.checks {
			if !c.ok(v) {
				errs = append(errs, FieldError{Field: r.name, Message: c.msg})
				break
			}
		}
	}
	return errs
}

// ---- normalization steps ----

func trim(s string) string { return strings.TrimSpace(s) }

func trimLower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ---- shared predicates ----

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// passwordSymbols is the fixed allowed symbol set, at least one of which a
// registration password must contain.
const passwordSymbols = "@$!%*?&_.+-"

func nonEmpty(s string) bool { return s != "" }

func noWhitespace(s string) bool {
	return !strings.ContainsFunc(s, unicode.IsSpace)
}

func minRunes(n int) func(string) bool {
	return func(s string) bool { return len([]rune(s)) >= n }
}

func isPositiveIntMax(max int) func(string) bool {
	return func(s string) bool {
		n, err := strconv.Atoi(s)
		if err != nil {
			return false
		}
		return n > 0 && n <= max
	}
}

func oneOf(values ...string) func(string) bool {
	return func(s string) bool {
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

func containsFunc(f func(rune) bool) func(string) bool {
	return func(s string) bool { return strings.ContainsFunc(s, f) }
}

func containsAny(set string) func(string) bool {
	return func(s string) bool { return strings.ContainsAny(s, set) }
}
