// Package dispatch implements the Dispatcher (spec §4.3): for every
// request it selects a disposition under the fixed precedence
// Forward -> Proxy (+ CONNECT tunnel) -> Mock -> 404, invokes the Matcher
// Kernel via the State Store, applies the Response Builder, and records
// the interaction. Grounded on the teacher's HandleRequest top-level flow
// (internal/server/server.go, root server.go) and the proxy dispositions
// in internal/proxy and internal/pureproxy, merged here into one dispatch
// path per spec's single Dispatcher component.
package dispatch

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/goodmock/goodmock/internal/applog"
	"github.com/goodmock/goodmock/internal/response"
	"github.com/goodmock/goodmock/internal/store"
	"github.com/goodmock/goodmock/internal/types"
	"github.com/goodmock/goodmock/internal/upstream"
	"github.com/valyala/fasthttp"
)

// Disposition is the outcome of one dispatch (spec §4.3).
type Disposition int

const (
	Unmatched Disposition = iota
	Forwarded
	Proxied
	Mocked
)

func (d Disposition) String() string {
	switch d {
	case Forwarded:
		return "forwarded"
	case Proxied:
		return "proxied"
	case Mocked:
		return "mocked"
	default:
		return "unmatched"
	}
}

// Dispatcher ties together the State Store and an outbound client to
// serve one inbound request end to end.
type Dispatcher struct {
	Store    *store.Store
	Upstream *upstream.Client
	Log      *applog.Logger
}

const notMatchedBody = `{"message":"Request did not match any route or mock"}`

// Handle serves a single inbound request. It is the HTTP handler wired
// into the fasthttp server in cmd/goodmock.
func (d *Dispatcher) Handle(rc *fasthttp.RequestCtx) {
	start := time.Now()

	if strings.EqualFold(string(rc.Method()), "CONNECT") {
		d.handleConnect(rc)
		return
	}

	req := Capture(rc)
	disposition := Unmatched
	var wasProxied bool

	if rule, ok := d.Store.FindForwardRule(req); ok {
		d.forward(rule, rc)
		disposition = Forwarded
	} else if rule, ok := d.Store.FindProxyRule(req); ok {
		d.proxy(rule, rc)
		disposition = Proxied
		wasProxied = true
	} else if mock, resp, ok := d.Store.ServeMock(req); ok {
		response.Render(resp, rc)
		d.delay(rc, resp.DelayMs)
		disposition = Mocked
		_ = mock
	} else {
		rc.SetStatusCode(404)
		rc.Response.Header.Set("Content-Type", "application/json")
		rc.SetBodyString(notMatchedBody)
	}

	elapsed := uint64(time.Since(start).Milliseconds())
	d.Store.RecordEvent(req, types.RecordEvent{
		CapturedAt: start,
		Request:    req,
		Response:   renderedTemplate(rc),
		ElapsedMs:  elapsed,
		WasProxied: wasProxied,
	})
	d.Store.AppendHistory(req)

	if d.Log != nil {
		d.Log.Access(req.Method, req.Path, rc.Response.StatusCode(), disposition.String(), elapsed)
	}
}

// renderedTemplate captures what was actually written to rc so recordings
// can store the rendered response, not just the originating mock/upstream
// response object.
func renderedTemplate(rc *fasthttp.RequestCtx) *types.ResponseTemplate {
	var headers [][2]string
	rc.Response.Header.VisitAll(func(key, value []byte) {
		headers = append(headers, [2]string{string(key), string(value)})
	})
	body := rc.Response.Body()
	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)
	return &types.ResponseTemplate{
		Status:  uint16(rc.Response.StatusCode()),
		Headers: headers,
		Body:    &types.ResponseBody{Bytes: bodyCopy},
	}
}

func (d *Dispatcher) forward(rule *types.ForwardRule, rc *fasthttp.RequestCtx) {
	result, err := upstream.Send(d.Upstream, rule.TargetBaseURL, rc.RequestURI(), rc, rule.ExtraHeaders)
	if err != nil {
		d.upstreamFailure(rc, err)
		return
	}
	writeUpstreamResult(rc, result)
}

func (d *Dispatcher) proxy(rule *types.ProxyRule, rc *fasthttp.RequestCtx) {
	result, err := upstream.Send(d.Upstream, "", rc.RequestURI(), rc, rule.ExtraHeaders)
	if err != nil {
		d.upstreamFailure(rc, err)
		return
	}
	writeUpstreamResult(rc, result)
}

func (d *Dispatcher) upstreamFailure(rc *fasthttp.RequestCtx, err error) {
	rc.SetStatusCode(502)
	rc.Response.Header.Set("Content-Type", "application/json")
	msg, _ := json.Marshal(map[string]string{"message": "upstream request failed: " + err.Error()})
	rc.SetBody(msg)
	if d.Log != nil {
		d.Log.Errorf("upstream failure: %v", err)
	}
}

func writeUpstreamResult(rc *fasthttp.RequestCtx, result *upstream.Result) {
	rc.SetStatusCode(result.Status)
	for _, h := range result.Headers {
		rc.Response.Header.Add(h.Key, h.Value)
	}
	rc.SetBody(result.Body)
}

// delay sleeps for ms milliseconds unless the client disconnects first
// (spec §5 "delay_ms in a mocked response suspends the serving task only").
func (d *Dispatcher) delay(rc *fasthttp.RequestCtx, ms uint64) {
	if ms == 0 {
		return
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-rc.Done():
	}
}
