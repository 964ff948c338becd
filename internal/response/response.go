// Package response implements the Response Builder (spec §4.6): it renders
// a ResponseTemplate into bytes on the wire. Grounded on the teacher's
// applyResponseHeaders/status-body assignment in HandleRequest, with the
// GoodData-specific X-GDC*/Date header stripping removed since nothing in
// the spec calls for it.
package response

import (
	"github.com/goodmock/goodmock/internal/types"
	"github.com/valyala/fasthttp"
)

// Render writes tmpl's status, headers and body onto rc. It never sets
// Content-Length, Date or Server: fasthttp fills those in at flush time,
// matching the spec's "does not synthesise" requirement. Defaults (status
// 200, no headers, empty body) apply automatically when tmpl is nil.
func Render(tmpl *types.ResponseTemplate, rc *fasthttp.RequestCtx) {
	if tmpl == nil {
		rc.SetStatusCode(200)
		return
	}
	rc.SetStatusCode(int(tmpl.EffectiveStatus()))
	for _, h := range tmpl.Headers {
		rc.Response.Header.Set(h[0], h[1])
	}
	if body := tmpl.BodyBytes(); body != nil {
		rc.SetBody(body)
	}
}
