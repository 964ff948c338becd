package matching

import (
	"strconv"
	"strings"

	"github.com/goodmock/goodmock/internal/types"
)

// evalStringFamily runs the full eq/not/includes/excludes/prefix/suffix/
// prefix_not/suffix_not/matches set against actual, honoring fold for
// case-insensitive comparison (scheme/host per RFC 3986).
func evalStringFamily(f types.StringFamily, actual string, fold bool) (ok bool, expected, got string) {
	cmp := func(a, b string) bool {
		if fold {
			return strings.EqualFold(a, b)
		}
		return a == b
	}

	if f.Eq != nil {
		if !cmp(*f.Eq, actual) {
			return false, *f.Eq, actual
		}
	}
	for _, n := range f.Not {
		if cmp(n, actual) {
			return false, "not " + n, actual
		}
	}
	for _, inc := range f.Includes {
		if !strings.Contains(foldCase(actual, fold), foldCase(inc, fold)) {
			return false, "includes " + inc, actual
		}
	}
	for _, exc := range f.Excludes {
		if strings.Contains(foldCase(actual, fold), foldCase(exc, fold)) {
			return false, "excludes " + exc, actual
		}
	}
	for _, p := range f.Prefix {
		if !strings.HasPrefix(foldCase(actual, fold), foldCase(p, fold)) {
			return false, "prefix " + p, actual
		}
	}
	for _, s := range f.Suffix {
		if !strings.HasSuffix(foldCase(actual, fold), foldCase(s, fold)) {
			return false, "suffix " + s, actual
		}
	}
	for _, p := range f.PrefixNot {
		if strings.HasPrefix(foldCase(actual, fold), foldCase(p, fold)) {
			return false, "prefix_not " + p, actual
		}
	}
	for _, s := range f.SuffixNot {
		if strings.HasSuffix(foldCase(actual, fold), foldCase(s, fold)) {
			return false, "suffix_not " + s, actual
		}
	}
	for _, re := range f.MatchesRe {
		if !re.MatchString(actual) {
			return false, "matches " + re.String(), actual
		}
	}
	return true, "", ""
}

func foldCase(s string, fold bool) string {
	if fold {
		return strings.ToLower(s)
	}
	return s
}

func evalSchemeFamily(f types.StringFamily, actual string) (bool, string, string) {
	return evalStringFamily(f, actual, true)
}

func evalMethodFamily(f types.StringFamily, actual string) (bool, string, string) {
	return evalStringFamily(f, actual, false)
}

// evalHostFamily special-cases eq so that localhost and 127.0.0.1 compare
// equal regardless of the literal strings on either side, then falls
// through to the generic evaluator for every other sub-predicate.
func evalHostFamily(f types.StringFamily, actual string) (bool, string, string) {
	if f.Eq != nil {
		if types.IsLocalhostEquivalent(*f.Eq, actual) {
			rest := f
			rest.Eq = nil
			return evalStringFamily(rest, actual, true)
		}
		return false, *f.Eq, actual
	}
	return evalStringFamily(f, actual, true)
}

func evalPortFamily(port *int, portNot []int, actual int) (bool, string, string) {
	if port != nil && *port != actual {
		return false, strconv.Itoa(*port), strconv.Itoa(actual)
	}
	for _, n := range portNot {
		if n == actual {
			return false, "not " + strconv.Itoa(n), strconv.Itoa(actual)
		}
	}
	return true, "", ""
}
