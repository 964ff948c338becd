package admin

import (
	"encoding/json"
	"testing"

	"github.com/goodmock/goodmock/internal/store"
	"github.com/goodmock/goodmock/internal/types"
	"github.com/valyala/fasthttp"
)

func newCtx(method, path, body string) *fasthttp.RequestCtx {
	var rc fasthttp.RequestCtx
	rc.Request.Header.SetMethod(method)
	rc.Request.SetRequestURI(path)
	if body != "" {
		rc.Request.SetBodyString(body)
	}
	return &rc
}

func TestMatchesOnlyAdminPrefix(t *testing.T) {
	if !Matches(newCtx("GET", Prefix+"ping", "")) {
		t.Fatalf("expected the admin prefix to match")
	}
	if Matches(newCtx("GET", "/health", "")) {
		t.Fatalf("expected a non-admin path not to match")
	}
}

func TestPing(t *testing.T) {
	h := New(store.New(0))
	rc := newCtx("GET", Prefix+"ping", "")
	h.Handle(rc)
	if rc.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d", rc.Response.StatusCode())
	}
}

func TestCreateGetAndDeleteMock(t *testing.T) {
	h := New(store.New(0))
	body := `{"request":{"path":"/thing"},"response":{"status":201}}`
	createRC := newCtx("POST", Prefix+"mocks", body)
	h.Handle(createRC)
	if createRC.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("expected 201 creating a mock, got %d: %s", createRC.Response.StatusCode(), createRC.Response.Body())
	}
	var created types.ActiveMock
	if err := json.Unmarshal(createRC.Response.Body(), &created); err != nil {
		t.Fatalf("decoding created mock: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected a non-zero id")
	}

	getRC := newCtx("GET", Prefix+"mocks/1", "")
	h.Handle(getRC)
	if getRC.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200 fetching the mock, got %d", getRC.Response.StatusCode())
	}

	deleteRC := newCtx("DELETE", Prefix+"mocks/1", "")
	h.Handle(deleteRC)
	if deleteRC.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Fatalf("expected 204 deleting the mock, got %d", deleteRC.Response.StatusCode())
	}

	missingRC := newCtx("GET", Prefix+"mocks/1", "")
	h.Handle(missingRC)
	if missingRC.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404 after deletion, got %d", missingRC.Response.StatusCode())
	}
}

func TestCreateMockRejectsInvalidBody(t *testing.T) {
	h := New(store.New(0))
	rc := newCtx("POST", Prefix+"mocks", `not json`)
	h.Handle(rc)
	if rc.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rc.Response.StatusCode())
	}
}

func TestVerifyAgainstEmptyHistory(t *testing.T) {
	h := New(store.New(0))
	rc := newCtx("POST", Prefix+"verify", `{"path":"/x"}`)
	h.Handle(rc)
	if rc.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404 verifying against empty history, got %d", rc.Response.StatusCode())
	}
}

func TestVerifyFindsClosestMatch(t *testing.T) {
	h := New(store.New(0))
	h.Store.AppendHistory(&types.CapturedRequest{Method: "GET", Path: "/user/1"})

	rc := newCtx("POST", Prefix+"verify", `{"method":"POST","path":"/user/1"}`)
	h.Handle(rc)
	if rc.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200 with a closest-match report, got %d: %s", rc.Response.StatusCode(), rc.Response.Body())
	}
}

func TestUnknownAdminPathIs404(t *testing.T) {
	h := New(store.New(0))
	rc := newCtx("GET", Prefix+"nonsense", "")
	h.Handle(rc)
	if rc.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404 for an unknown admin endpoint, got %d", rc.Response.StatusCode())
	}
}

func TestResetStateClearsMocks(t *testing.T) {
	h := New(store.New(0))
	h.Handle(newCtx("POST", Prefix+"mocks", `{"request":{"path":"/a"},"response":{"status":200}}`))

	rc := newCtx("DELETE", Prefix+"state", "")
	h.Handle(rc)
	if rc.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Fatalf("expected 204 resetting state, got %d", rc.Response.StatusCode())
	}
	if got := len(h.Store.Mocks()); got != 0 {
		t.Fatalf("expected state reset to clear mocks, got %d remaining", got)
	}
}
