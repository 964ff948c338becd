package types

import (
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"
)

// CapturedRequest is an immutable snapshot of an inbound request, taken the
// moment it enters the engine. Every field is a plain value; the lazily
// derived views (text, JSON, form) are computed at most once.
type CapturedRequest struct {
	Scheme  string `json:"scheme"`
	Method  string `json:"method"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
	Query   []KV   `json:"query"`
	Headers []KV   `json:"headers"`
	Cookies []KV   `json:"cookies"`
	Body    []byte `json:"body,omitempty"`

	once     sync.Once
	text     string
	textOK   bool
	jsonOnce sync.Once
	jsonVal  any
	jsonOK   bool
	formOnce sync.Once
	form     []KV
	formOK   bool
}

// Header returns the first header value matching name, case-insensitively.
func (r *CapturedRequest) Header(name string) (string, bool) {
	return Get(r.Headers, name, true)
}

// HeaderValues returns every header value stored under name.
func (r *CapturedRequest) HeaderValues(name string) []string {
	return All(r.Headers, name, true)
}

// Cookie returns the first cookie value matching name (case-sensitive).
func (r *CapturedRequest) Cookie(name string) (string, bool) {
	return Get(r.Cookies, name, false)
}

// QueryParam returns the first query value matching key (case-sensitive).
func (r *CapturedRequest) QueryParam(key string) (string, bool) {
	return Get(r.Query, key, false)
}

// Text returns the body decoded as UTF-8, and whether the body is valid
// UTF-8 at all. A body family that cannot be decoded simply reports no
// match rather than an error (spec: decoding errors affect only the
// family that needs them).
func (r *CapturedRequest) Text() (string, bool) {
	r.once.Do(func() {
		r.textOK = utf8.Valid(r.Body)
		if r.textOK {
			r.text = string(r.Body)
		}
	})
	return r.text, r.textOK
}

// contentType returns the request's Content-Type with any parameters
// (e.g. "; charset=utf-8") and surrounding whitespace stripped.
func (r *CapturedRequest) contentType() string {
	ct, _ := r.Header("Content-Type")
	ct = strings.SplitN(ct, ";", 2)[0]
	return strings.ToLower(strings.TrimSpace(ct))
}

// isJSONContentType reports whether ct indicates a JSON body, covering
// both "application/json" and the "+json" structured-syntax suffix
// (e.g. "application/vnd.api+json").
func isJSONContentType(ct string) bool {
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

// JSON parses the body as JSON on first use and caches the result. It
// only attempts the parse when Content-Type indicates JSON (spec: "parsed
// JSON if content-type indicates so"); a body that merely happens to
// parse as JSON under an unrelated Content-Type reports no value.
func (r *CapturedRequest) JSON() (any, bool) {
	r.jsonOnce.Do(func() {
		if len(r.Body) == 0 || !isJSONContentType(r.contentType()) {
			return
		}
		var v any
		if err := json.Unmarshal(r.Body, &v); err == nil {
			r.jsonVal = v
			r.jsonOK = true
		}
	})
	return r.jsonVal, r.jsonOK
}

// Form parses the body as application/x-www-form-urlencoded on first use,
// only when Content-Type says so (spec: "form-urlencoded pairs if
// content-type indicates so").
func (r *CapturedRequest) Form() ([]KV, bool) {
	r.formOnce.Do(func() {
		if r.contentType() != "application/x-www-form-urlencoded" {
			return
		}
		raw := string(r.Body)
		if raw == "" {
			return
		}
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		// url.ParseQuery loses original ordering; recover it by scanning
		// the raw string for `key=value` pairs instead of trusting the map.
		for _, part := range strings.Split(raw, "&") {
			if part == "" {
				continue
			}
			kv := strings.SplitN(part, "=", 2)
			key, errK := url.QueryUnescape(kv[0])
			if errK != nil {
				continue
			}
			val := ""
			if len(kv) == 2 {
				if decoded, errV := url.QueryUnescape(kv[1]); errV == nil {
					val = decoded
				}
			}
			r.form = append(r.form, KV{Key: key, Value: val})
		}
		_ = values
		r.formOK = true
	})
	return r.form, r.formOK
}

// IsLocalhostEquivalent reports whether hosts a and b are equal ignoring
// case, with "localhost" and "127.0.0.1" treated as the same host, the one
// pair the spec treats as equal regardless of literal string match.
func IsLocalhostEquivalent(a, b string) bool {
	norm := func(h string) string {
		h = strings.ToLower(h)
		if h == "localhost" || h == "127.0.0.1" {
			return "localhost"
		}
		return h
	}
	return norm(a) == norm(b)
}
