package types

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// KeyValue is the wire shape for a keyed eq/not/includes/... predicate
// entry over query params, headers, cookies and form-urlencoded pairs.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// KeyRegex is the wire shape for matches(key_regex, value_regex) and
// count(key_regex, value_regex, n) predicates.
type KeyRegex struct {
	KeyRegex   string `json:"key_regex"`
	ValueRegex string `json:"value_regex,omitempty"`
	Count      *int   `json:"count,omitempty"`
}

// KeyedFamily is the compiled form shared by query_param, header, cookie
// and form_urlencoded_tuple, each of which supports the same twelve
// sub-predicates keyed by name.
type KeyedFamily struct {
	Eq        []KeyValue
	Not       []KeyValue
	Exists    []string
	Missing   []string
	Includes  []KeyValue
	Excludes  []KeyValue
	Prefix    []KeyValue
	Suffix    []KeyValue
	PrefixNot []KeyValue
	SuffixNot []KeyValue
	Matches   []KeyRegex
	Count     []KeyRegex

	MatchesRe []CompiledKeyRegex
	CountRe   []CompiledKeyRegex
}

type CompiledKeyRegex struct {
	Key   *regexp.Regexp
	Value *regexp.Regexp
	N     int
}

// StringFamily is the compiled form shared by the single-string-valued
// families: scheme, method, host, path, body.
type StringFamily struct {
	Eq        *string
	Not       []string
	Includes  []string
	Excludes  []string
	Prefix    []string
	Suffix    []string
	PrefixNot []string
	SuffixNot []string
	Matches   []string

	MatchesRe []*regexp.Regexp
}

// RequirementsDoc is the over-the-wire JSON shape of a mock/rule/recording's
// request requirements, field names mirroring the attribute names from the
// admin wire format (e.g. "path", "path_not", "path_includes", ...).
type RequirementsDoc struct {
	Scheme    string   `json:"scheme,omitempty"`
	SchemeNot []string `json:"scheme_not,omitempty"`

	Method    string   `json:"method,omitempty"`
	MethodNot []string `json:"method_not,omitempty"`

	Host          string   `json:"host,omitempty"`
	HostNot       []string `json:"host_not,omitempty"`
	HostIncludes  []string `json:"host_includes,omitempty"`
	HostExcludes  []string `json:"host_excludes,omitempty"`
	HostPrefix    []string `json:"host_prefix,omitempty"`
	HostSuffix    []string `json:"host_suffix,omitempty"`
	HostPrefixNot []string `json:"host_prefix_not,omitempty"`
	HostSuffixNot []string `json:"host_suffix_not,omitempty"`
	HostMatches   []string `json:"host_matches,omitempty"`

	Port    *int  `json:"port,omitempty"`
	PortNot []int `json:"port_not,omitempty"`

	Path          string   `json:"path,omitempty"`
	PathNot       []string `json:"path_not,omitempty"`
	PathIncludes  []string `json:"path_includes,omitempty"`
	PathExcludes  []string `json:"path_excludes,omitempty"`
	PathPrefix    []string `json:"path_prefix,omitempty"`
	PathSuffix    []string `json:"path_suffix,omitempty"`
	PathPrefixNot []string `json:"path_prefix_not,omitempty"`
	PathSuffixNot []string `json:"path_suffix_not,omitempty"`
	PathMatches   []string `json:"path_matches,omitempty"`

	QueryParam         []KeyValue `json:"query_param,omitempty"`
	QueryParamNot      []KeyValue `json:"query_param_not,omitempty"`
	QueryParamExists   []string   `json:"query_param_exists,omitempty"`
	QueryParamMissing  []string   `json:"query_param_missing,omitempty"`
	QueryParamIncludes []KeyValue `json:"query_param_includes,omitempty"`
	QueryParamExcludes []KeyValue `json:"query_param_excludes,omitempty"`
	QueryParamPrefix   []KeyValue `json:"query_param_prefix,omitempty"`
	QueryParamSuffix   []KeyValue `json:"query_param_suffix,omitempty"`
	QueryParamPrefixNot []KeyValue `json:"query_param_prefix_not,omitempty"`
	QueryParamSuffixNot []KeyValue `json:"query_param_suffix_not,omitempty"`
	QueryParamMatches  []KeyRegex `json:"query_param_matches,omitempty"`
	QueryParamCount    []KeyRegex `json:"query_param_count,omitempty"`

	Header         []KeyValue `json:"header,omitempty"`
	HeaderNot      []KeyValue `json:"header_not,omitempty"`
	HeaderExists   []string   `json:"header_exists,omitempty"`
	HeaderMissing  []string   `json:"header_missing,omitempty"`
	HeaderIncludes []KeyValue `json:"header_includes,omitempty"`
	HeaderExcludes []KeyValue `json:"header_excludes,omitempty"`
	HeaderPrefix   []KeyValue `json:"header_prefix,omitempty"`
	HeaderSuffix   []KeyValue `json:"header_suffix,omitempty"`
	HeaderPrefixNot []KeyValue `json:"header_prefix_not,omitempty"`
	HeaderSuffixNot []KeyValue `json:"header_suffix_not,omitempty"`
	HeaderMatches  []KeyRegex `json:"header_matches,omitempty"`
	HeaderCount    []KeyRegex `json:"header_count,omitempty"`

	Cookie         []KeyValue `json:"cookie,omitempty"`
	CookieNot      []KeyValue `json:"cookie_not,omitempty"`
	CookieExists   []string   `json:"cookie_exists,omitempty"`
	CookieMissing  []string   `json:"cookie_missing,omitempty"`
	CookieIncludes []KeyValue `json:"cookie_includes,omitempty"`
	CookieExcludes []KeyValue `json:"cookie_excludes,omitempty"`
	CookiePrefix   []KeyValue `json:"cookie_prefix,omitempty"`
	CookieSuffix   []KeyValue `json:"cookie_suffix,omitempty"`
	CookiePrefixNot []KeyValue `json:"cookie_prefix_not,omitempty"`
	CookieSuffixNot []KeyValue `json:"cookie_suffix_not,omitempty"`
	CookieMatches  []KeyRegex `json:"cookie_matches,omitempty"`
	CookieCount    []KeyRegex `json:"cookie_count,omitempty"`

	Body          string   `json:"body,omitempty"`
	BodyNot       []string `json:"body_not,omitempty"`
	BodyIncludes  []string `json:"body_includes,omitempty"`
	BodyExcludes  []string `json:"body_excludes,omitempty"`
	BodyPrefix    []string `json:"body_prefix,omitempty"`
	BodySuffix    []string `json:"body_suffix,omitempty"`
	BodyPrefixNot []string `json:"body_prefix_not,omitempty"`
	BodySuffixNot []string `json:"body_suffix_not,omitempty"`
	BodyMatches   []string `json:"body_matches,omitempty"`

	JSONBody         json.RawMessage `json:"json_body,omitempty"`
	JSONBodyIncludes json.RawMessage `json:"json_body_includes,omitempty"`
	JSONBodyExcludes json.RawMessage `json:"json_body_excludes,omitempty"`

	FormTuple         []KeyValue `json:"form_urlencoded_tuple,omitempty"`
	FormTupleNot      []KeyValue `json:"form_urlencoded_tuple_not,omitempty"`
	FormTupleExists   []string   `json:"form_urlencoded_tuple_exists,omitempty"`
	FormTupleMissing  []string   `json:"form_urlencoded_tuple_missing,omitempty"`
	FormTupleIncludes []KeyValue `json:"form_urlencoded_tuple_includes,omitempty"`
	FormTupleExcludes []KeyValue `json:"form_urlencoded_tuple_excludes,omitempty"`
	FormTuplePrefix   []KeyValue `json:"form_urlencoded_tuple_prefix,omitempty"`
	FormTupleSuffix   []KeyValue `json:"form_urlencoded_tuple_suffix,omitempty"`
	FormTuplePrefixNot []KeyValue `json:"form_urlencoded_tuple_prefix_not,omitempty"`
	FormTupleSuffixNot []KeyValue `json:"form_urlencoded_tuple_suffix_not,omitempty"`
	FormTupleMatches  []KeyRegex `json:"form_urlencoded_tuple_matches,omitempty"`
	FormTupleCount    []KeyRegex `json:"form_urlencoded_tuple_count,omitempty"`
}

// CustomMatcher is the shared-ownership capability described in spec notes
// §9: a value that decides match/no-match for an opaque reason. It cannot
// be constructed from wire input — only attached programmatically — so the
// admin JSON decoder never produces one.
type CustomMatcher interface {
	Matches(*CapturedRequest) bool
}

// CustomPredicate pairs a CustomMatcher with its polarity: is_true requires
// Matcher.Matches to return true, is_false requires it to return false.
type CustomPredicate struct {
	Matcher CustomMatcher
	IsFalse bool
}

// Requirements is the compiled, match-ready form of RequirementsDoc: every
// regex is precompiled so that Evaluate never fails at match time.
type Requirements struct {
	Scheme StringFamily
	Method StringFamily
	Host   StringFamily
	Path   StringFamily
	Body   StringFamily

	Port    *int
	PortNot []int

	QueryParam KeyedFamily
	Header     KeyedFamily
	Cookie     KeyedFamily
	FormTuple  KeyedFamily

	JSONBody         any
	HasJSONBody      bool
	JSONBodyIncludes any
	HasJSONIncludes  bool
	JSONBodyExcludes any
	HasJSONExcludes  bool

	Custom []CustomPredicate
}

// NewRequirements compiles a wire document into match-ready Requirements,
// pre-compiling every regex so that match time never reports a compile
// error (spec §4.1 "Errors").
func NewRequirements(doc *RequirementsDoc) (*Requirements, error) {
	r := &Requirements{}
	var err error

	if r.Scheme, err = compileStringFamily(doc.Scheme, doc.SchemeNot, nil, nil, nil, nil, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("scheme: %w", err)
	}
	if r.Method, err = compileStringFamily(doc.Method, doc.MethodNot, nil, nil, nil, nil, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("method: %w", err)
	}
	if r.Host, err = compileStringFamily(doc.Host, doc.HostNot, doc.HostIncludes, doc.HostExcludes, doc.HostPrefix, doc.HostSuffix, doc.HostPrefixNot, doc.HostSuffixNot, doc.HostMatches); err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	if r.Path, err = compileStringFamily(doc.Path, doc.PathNot, doc.PathIncludes, doc.PathExcludes, doc.PathPrefix, doc.PathSuffix, doc.PathPrefixNot, doc.PathSuffixNot, doc.PathMatches); err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}
	if r.Body, err = compileStringFamily(doc.Body, doc.BodyNot, doc.BodyIncludes, doc.BodyExcludes, doc.BodyPrefix, doc.BodySuffix, doc.BodyPrefixNot, doc.BodySuffixNot, doc.BodyMatches); err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}

	r.Port = doc.Port
	r.PortNot = doc.PortNot

	if r.QueryParam, err = compileKeyedFamily(doc.QueryParam, doc.QueryParamNot, doc.QueryParamExists, doc.QueryParamMissing, doc.QueryParamIncludes, doc.QueryParamExcludes, doc.QueryParamPrefix, doc.QueryParamSuffix, doc.QueryParamPrefixNot, doc.QueryParamSuffixNot, doc.QueryParamMatches, doc.QueryParamCount); err != nil {
		return nil, fmt.Errorf("query_param: %w", err)
	}
	if r.Header, err = compileKeyedFamily(doc.Header, doc.HeaderNot, doc.HeaderExists, doc.HeaderMissing, doc.HeaderIncludes, doc.HeaderExcludes, doc.HeaderPrefix, doc.HeaderSuffix, doc.HeaderPrefixNot, doc.HeaderSuffixNot, doc.HeaderMatches, doc.HeaderCount); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if r.Cookie, err = compileKeyedFamily(doc.Cookie, doc.CookieNot, doc.CookieExists, doc.CookieMissing, doc.CookieIncludes, doc.CookieExcludes, doc.CookiePrefix, doc.CookieSuffix, doc.CookiePrefixNot, doc.CookieSuffixNot, doc.CookieMatches, doc.CookieCount); err != nil {
		return nil, fmt.Errorf("cookie: %w", err)
	}
	if r.FormTuple, err = compileKeyedFamily(doc.FormTuple, doc.FormTupleNot, doc.FormTupleExists, doc.FormTupleMissing, doc.FormTupleIncludes, doc.FormTupleExcludes, doc.FormTuplePrefix, doc.FormTupleSuffix, doc.FormTuplePrefixNot, doc.FormTupleSuffixNot, doc.FormTupleMatches, doc.FormTupleCount); err != nil {
		return nil, fmt.Errorf("form_urlencoded_tuple: %w", err)
	}

	if len(doc.JSONBody) > 0 {
		if err := json.Unmarshal(doc.JSONBody, &r.JSONBody); err != nil {
			return nil, fmt.Errorf("json_body: %w", err)
		}
		r.HasJSONBody = true
	}
	if len(doc.JSONBodyIncludes) > 0 {
		if err := json.Unmarshal(doc.JSONBodyIncludes, &r.JSONBodyIncludes); err != nil {
			return nil, fmt.Errorf("json_body_includes: %w", err)
		}
		r.HasJSONIncludes = true
	}
	if len(doc.JSONBodyExcludes) > 0 {
		if err := json.Unmarshal(doc.JSONBodyExcludes, &r.JSONBodyExcludes); err != nil {
			return nil, fmt.Errorf("json_body_excludes: %w", err)
		}
		r.HasJSONExcludes = true
	}

	return r, nil
}

func compileStringFamily(eq string, not, includes, excludes, prefix, suffix, prefixNot, suffixNot, matches []string) (StringFamily, error) {
	f := StringFamily{
		Not:       not,
		Includes:  includes,
		Excludes:  excludes,
		Prefix:    prefix,
		Suffix:    suffix,
		PrefixNot: prefixNot,
		SuffixNot: suffixNot,
		Matches:   matches,
	}
	if eq != "" {
		v := eq
		f.Eq = &v
	}
	for _, pat := range matches {
		re, err := regexp.Compile(pat)
		if err != nil {
			return f, err
		}
		f.MatchesRe = append(f.MatchesRe, re)
	}
	return f, nil
}

func compileKeyedFamily(eq, not []KeyValue, exists, missing []string, includes, excludes, prefix, suffix, prefixNot, suffixNot []KeyValue, matches, count []KeyRegex) (KeyedFamily, error) {
	f := KeyedFamily{
		Eq:        eq,
		Not:       not,
		Exists:    exists,
		Missing:   missing,
		Includes:  includes,
		Excludes:  excludes,
		Prefix:    prefix,
		Suffix:    suffix,
		PrefixNot: prefixNot,
		SuffixNot: suffixNot,
		Matches:   matches,
		Count:     count,
	}
	for _, m := range matches {
		c, err := compileOneKeyRegex(m)
		if err != nil {
			return f, err
		}
		f.MatchesRe = append(f.MatchesRe, c)
	}
	for _, m := range count {
		c, err := compileOneKeyRegex(m)
		if err != nil {
			return f, err
		}
		f.CountRe = append(f.CountRe, c)
	}
	return f, nil
}

func compileOneKeyRegex(kr KeyRegex) (CompiledKeyRegex, error) {
	var c CompiledKeyRegex
	var err error
	if kr.KeyRegex != "" {
		c.Key, err = regexp.Compile(kr.KeyRegex)
		if err != nil {
			return c, err
		}
	}
	if kr.ValueRegex != "" {
		c.Value, err = regexp.Compile(kr.ValueRegex)
		if err != nil {
			return c, err
		}
	}
	if kr.Count != nil {
		c.N = *kr.Count
	}
	return c, nil
}
