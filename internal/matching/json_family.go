package matching

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/goodmock/goodmock/internal/jsonutil"
	"github.com/goodmock/goodmock/internal/types"
	"github.com/tidwall/gjson"
)

// evalJSONFamily checks json_body (exact value equality), json_body_includes
// and json_body_excludes (partial document, leaf-by-leaf via JSON Pointer)
// against the request body. A body that fails to parse as JSON makes this
// family report no-match without raising an error (spec §4.1 "Errors").
func evalJSONFamily(reqs *types.Requirements, req *types.CapturedRequest) (bool, string, string) {
	if !reqs.HasJSONBody && !reqs.HasJSONIncludes && !reqs.HasJSONExcludes {
		return true, "", ""
	}

	actual, ok := req.JSON()
	if !ok {
		return false, "valid json body", "unparseable body"
	}

	if reqs.HasJSONBody {
		if !reflect.DeepEqual(normalize(reqs.JSONBody), normalize(actual)) {
			return false, jsonString(reqs.JSONBody), jsonString(actual)
		}
	}

	if reqs.HasJSONIncludes {
		ok, path, want, got := jsonIncludesAll(reqs.JSONBodyIncludes, req.Body)
		if !ok {
			return false, path + "=" + want, got
		}
	}

	if reqs.HasJSONExcludes {
		ok, path, _, got := jsonIncludesAll(reqs.JSONBodyExcludes, req.Body)
		if ok {
			return false, "excludes " + path, got
		}
	}

	return true, "", ""
}

// jsonIncludesAll walks partial bottom-up, resolving every leaf's JSON
// Pointer path against body with gjson and comparing values. It holds iff
// every leaf in partial matches the corresponding value in body.
func jsonIncludesAll(partial any, body []byte) (ok bool, path, want, got string) {
	return walkIncludes("", partial, body)
}

func walkIncludes(prefix string, node any, body []byte) (bool, string, string, string) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			p := prefix + "." + k
			if ok, fp, want, got := walkIncludes(p, child, body); !ok {
				return false, fp, want, got
			}
		}
		return true, "", "", ""
	case []any:
		for i, child := range v {
			p := prefix + "." + strconv.Itoa(i)
			if ok, fp, want, got := walkIncludes(p, child, body); !ok {
				return false, fp, want, got
			}
		}
		return true, "", "", ""
	default:
		path := gjsonPath(prefix)
		res := gjson.GetBytes(body, path)
		want := jsonString(v)
		got := res.Raw
		if !res.Exists() {
			return false, prefix, want, "<missing>"
		}
		var actualVal any
		_ = json.Unmarshal([]byte(res.Raw), &actualVal)
		if !reflect.DeepEqual(normalize(v), normalize(actualVal)) {
			return false, prefix, want, got
		}
		return true, "", "", ""
	}
}

// gjsonPath turns a leading-dot pointer like ".child.x" into gjson's
// dot-path syntax "child.x".
func gjsonPath(prefix string) string {
	if len(prefix) > 0 && prefix[0] == '.' {
		return prefix[1:]
	}
	return prefix
}

func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// normalize collapses json.Number-vs-float64 decode discrepancies and
// sorts every array bottom-up (jsonutil.SortArrays) so that two JSON
// documents differing only in array element order still compare equal,
// the same array-order-insensitivity the teacher's recorder applied
// before emitting an equalToJson matcher.
func normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	_ = json.Unmarshal(b, &out)
	return jsonutil.SortArrays(out)
}
