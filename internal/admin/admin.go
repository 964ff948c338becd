// Package admin implements the Admin Resource Model (spec §4.4/§6): the
// control surface under /__httpmock__/ used to install mocks and rules,
// inspect history, and drive record/playback. Grounded on the teacher's
// internal/server.HandleAdmin (flat path/method dispatch, JSON-in/
// JSON-out bodies, {status, message} error bodies) and on
// other_examples/0d3e8f34_getmockd-mockd__pkg-admin-handlers.go.go's
// per-resource POST/DELETE/{id} handler grouping.
package admin

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/goodmock/goodmock/internal/apperr"
	"github.com/goodmock/goodmock/internal/store"
	"github.com/valyala/fasthttp"
)

// Prefix is the control URL prefix every admin path lives under.
const Prefix = "/__httpmock__/"

// Handler serves the admin surface against a single Store.
type Handler struct {
	Store *store.Store
}

// New creates a Handler bound to st.
func New(st *store.Store) *Handler {
	return &Handler{Store: st}
}

// Matches reports whether rc addresses the admin surface at all, so the
// server's top-level handler can route to Handle before handing the request
// to the dispatcher's forward/proxy/mock path.
func Matches(rc *fasthttp.RequestCtx) bool {
	return strings.HasPrefix(string(rc.Path()), Prefix)
}

// Handle routes one admin request by method and by its path with Prefix
// and surrounding slashes stripped off.
func (h *Handler) Handle(rc *fasthttp.RequestCtx) {
	path := strings.TrimPrefix(string(rc.Path()), Prefix)
	path = strings.Trim(path, "/")
	method := string(rc.Method())

	switch {
	case path == "ping" && method == "GET":
		h.ping(rc)
	case path == "state" && method == "DELETE":
		h.resetState(rc)
	case path == "mocks" && method == "POST":
		h.createMock(rc)
	case path == "mocks" && method == "DELETE":
		h.deleteAllMocks(rc)
	case strings.HasPrefix(path, "mocks/"):
		h.mockByID(rc, strings.TrimPrefix(path, "mocks/"), method)
	case path == "verify" && method == "POST":
		h.verify(rc)
	case path == "history" && method == "DELETE":
		h.clearHistory(rc)
	case path == "forwarding_rules" && method == "POST":
		h.createForwardRule(rc)
	case path == "forwarding_rules" && method == "DELETE":
		h.Store.DeleteAllForwardRules()
		rc.SetStatusCode(fasthttp.StatusNoContent)
	case strings.HasPrefix(path, "forwarding_rules/"):
		h.forwardRuleByID(rc, strings.TrimPrefix(path, "forwarding_rules/"), method)
	case path == "proxy_rules" && method == "POST":
		h.createProxyRule(rc)
	case path == "proxy_rules" && method == "DELETE":
		h.Store.DeleteAllProxyRules()
		rc.SetStatusCode(fasthttp.StatusNoContent)
	case strings.HasPrefix(path, "proxy_rules/"):
		h.proxyRuleByID(rc, strings.TrimPrefix(path, "proxy_rules/"), method)
	case path == "recordings" && method == "POST" && isYAMLContentType(rc):
		h.importScenario(rc)
	case path == "recordings" && method == "POST":
		h.createRecording(rc)
	case path == "recordings" && method == "DELETE":
		h.Store.DeleteAllRecordings()
		rc.SetStatusCode(fasthttp.StatusNoContent)
	case strings.HasPrefix(path, "recordings/"):
		h.recordingByID(rc, strings.TrimPrefix(path, "recordings/"), method)
	default:
		writeError(rc, apperr.New(apperr.NotFound, "unknown admin endpoint"))
	}
}

func (h *Handler) ping(rc *fasthttp.RequestCtx) {
	rc.SetStatusCode(fasthttp.StatusOK)
	rc.Response.Header.Set("Content-Type", "application/json")
	rc.SetBodyString(`{"status":"ok"}`)
}

func (h *Handler) resetState(rc *fasthttp.RequestCtx) {
	h.Store.Reset()
	rc.SetStatusCode(fasthttp.StatusNoContent)
}

func (h *Handler) clearHistory(rc *fasthttp.RequestCtx) {
	h.Store.ClearHistory()
	rc.SetStatusCode(fasthttp.StatusNoContent)
}

func isYAMLContentType(rc *fasthttp.RequestCtx) bool {
	ct := string(rc.Request.Header.ContentType())
	ct = strings.SplitN(ct, ";", 2)[0]
	ct = strings.TrimSpace(ct)
	return ct == "application/yaml" || ct == "application/x-yaml" || ct == "text/yaml"
}

func writeJSON(rc *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(rc, apperr.Wrap(apperr.BadRequest, "encoding response", err))
		return
	}
	rc.Response.Header.Set("Content-Type", "application/json")
	rc.SetStatusCode(status)
	rc.SetBody(data)
}

func writeError(rc *fasthttp.RequestCtx, err error) {
	status := 500
	msg := err.Error()
	var ae *apperr.Error
	if e, ok := err.(*apperr.Error); ok {
		ae = e
	}
	if ae != nil {
		status = ae.Status()
	}
	rc.Response.Header.Set("Content-Type", "application/json")
	rc.SetStatusCode(status)
	body, _ := json.Marshal(map[string]string{"message": msg})
	rc.SetBody(body)
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.BadRequest, "invalid id", err)
	}
	return id, nil
}

