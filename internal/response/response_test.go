package response

import (
	"testing"

	"github.com/goodmock/goodmock/internal/types"
	"github.com/valyala/fasthttp"
)

func TestRenderNilTemplateDefaultsTo200(t *testing.T) {
	var rc fasthttp.RequestCtx
	Render(nil, &rc)
	if rc.Response.StatusCode() != 200 {
		t.Fatalf("expected default status 200, got %d", rc.Response.StatusCode())
	}
}

func TestRenderAppliesStatusHeadersAndBody(t *testing.T) {
	var rc fasthttp.RequestCtx
	tmpl := &types.ResponseTemplate{
		Status:  201,
		Headers: [][2]string{{"X-Test", "1"}},
		Body:    &types.ResponseBody{Bytes: []byte(`{"ok":true}`)},
	}
	Render(tmpl, &rc)

	if rc.Response.StatusCode() != 201 {
		t.Fatalf("expected status 201, got %d", rc.Response.StatusCode())
	}
	if got := string(rc.Response.Header.Peek("X-Test")); got != "1" {
		t.Fatalf("expected X-Test header to be set, got %q", got)
	}
	if got := string(rc.Response.Body()); got != `{"ok":true}` {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestRenderEmptyTemplateLeavesBodyEmpty(t *testing.T) {
	var rc fasthttp.RequestCtx
	Render(&types.ResponseTemplate{}, &rc)
	if rc.Response.StatusCode() != 200 {
		t.Fatalf("expected default status 200 for a zero-value template, got %d", rc.Response.StatusCode())
	}
	if len(rc.Response.Body()) != 0 {
		t.Fatalf("expected empty body, got %q", rc.Response.Body())
	}
}
