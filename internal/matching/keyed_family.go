package matching

import (
	"strings"

	"github.com/goodmock/goodmock/internal/types"
)

// evalKeyedFamily runs the full keyed predicate set (eq, not, exists,
// missing, includes, excludes, prefix, suffix, prefix_not, suffix_not,
// matches, count) against an ordered KV slice such as query parameters,
// headers, cookies or form-urlencoded pairs. caseInsensitiveKey controls
// whether key comparisons fold case (true for headers only).
func evalKeyedFamily(f types.KeyedFamily, actual []types.KV, caseInsensitiveKey bool) (ok bool, expected, got string) {
	keyEq := func(a, b string) bool {
		if caseInsensitiveKey {
			return strings.EqualFold(a, b)
		}
		return a == b
	}

	valuesFor := func(key string) []string {
		var out []string
		for _, kv := range actual {
			if keyEq(kv.Key, key) {
				out = append(out, kv.Value)
			}
		}
		return out
	}

	for _, want := range f.Eq {
		found := false
		for _, v := range valuesFor(want.Key) {
			if v == want.Value {
				found = true
				break
			}
		}
		if !found {
			return false, want.Key + "=" + want.Value, describeKV(actual)
		}
	}
	for _, want := range f.Not {
		for _, v := range valuesFor(want.Key) {
			if v == want.Value {
				return false, "not " + want.Key + "=" + want.Value, describeKV(actual)
			}
		}
	}
	for _, key := range f.Exists {
		if len(valuesFor(key)) == 0 {
			return false, "exists " + key, describeKV(actual)
		}
	}
	for _, key := range f.Missing {
		if len(valuesFor(key)) != 0 {
			return false, "missing " + key, describeKV(actual)
		}
	}
	for _, want := range f.Includes {
		found := false
		for _, v := range valuesFor(want.Key) {
			if strings.Contains(v, want.Value) {
				found = true
				break
			}
		}
		if !found {
			return false, "includes " + want.Key + "~=" + want.Value, describeKV(actual)
		}
	}
	for _, want := range f.Excludes {
		for _, v := range valuesFor(want.Key) {
			if strings.Contains(v, want.Value) {
				return false, "excludes " + want.Key + "~=" + want.Value, describeKV(actual)
			}
		}
	}
	for _, want := range f.Prefix {
		found := false
		for _, v := range valuesFor(want.Key) {
			if strings.HasPrefix(v, want.Value) {
				found = true
				break
			}
		}
		if !found {
			return false, "prefix " + want.Key + "=" + want.Value, describeKV(actual)
		}
	}
	for _, want := range f.Suffix {
		found := false
		for _, v := range valuesFor(want.Key) {
			if strings.HasSuffix(v, want.Value) {
				found = true
				break
			}
		}
		if !found {
			return false, "suffix " + want.Key + "=" + want.Value, describeKV(actual)
		}
	}
	for _, want := range f.PrefixNot {
		for _, v := range valuesFor(want.Key) {
			if strings.HasPrefix(v, want.Value) {
				return false, "prefix_not " + want.Key + "=" + want.Value, describeKV(actual)
			}
		}
	}
	for _, want := range f.SuffixNot {
		for _, v := range valuesFor(want.Key) {
			if strings.HasSuffix(v, want.Value) {
				return false, "suffix_not " + want.Key + "=" + want.Value, describeKV(actual)
			}
		}
	}
	for i, want := range f.Matches {
		c := f.MatchesRe[i]
		found := false
		for _, kv := range actual {
			if c.Key != nil && !c.Key.MatchString(kv.Key) {
				continue
			}
			if c.Value != nil && !c.Value.MatchString(kv.Value) {
				continue
			}
			found = true
			break
		}
		if !found {
			return false, "matches " + want.KeyRegex, describeKV(actual)
		}
	}
	for i, want := range f.Count {
		c := f.CountRe[i]
		n := 0
		for _, kv := range actual {
			if c.Key != nil && !c.Key.MatchString(kv.Key) {
				continue
			}
			if c.Value != nil && !c.Value.MatchString(kv.Value) {
				continue
			}
			n++
		}
		if n != c.N {
			return false, "count " + want.KeyRegex, describeKV(actual)
		}
	}
	return true, "", ""
}

func describeKV(pairs []types.KV) string {
	var b strings.Builder
	for i, kv := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(kv.Key)
		b.WriteByte('=')
		b.WriteString(kv.Value)
	}
	return b.String()
}
