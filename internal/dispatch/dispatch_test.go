package dispatch

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goodmock/goodmock/internal/record"
	"github.com/goodmock/goodmock/internal/scenario"
	"github.com/goodmock/goodmock/internal/store"
	"github.com/goodmock/goodmock/internal/types"
	"github.com/goodmock/goodmock/internal/upstream"
	"github.com/valyala/fasthttp"
)

func newDispatchCtx(method, path, body string) *fasthttp.RequestCtx {
	var rc fasthttp.RequestCtx
	rc.Request.Header.SetMethod(method)
	rc.Request.SetRequestURI(path)
	if body != "" {
		rc.Request.SetBodyString(body)
	}
	return &rc
}

func mustRequirements(t *testing.T, doc *types.RequirementsDoc) *types.Requirements {
	t.Helper()
	r, err := types.NewRequirements(doc)
	if err != nil {
		t.Fatalf("NewRequirements: %v", err)
	}
	return r
}

// S1: an exact-path mock served through the real handler bumps its hit
// count and a non-matching path falls through to 404.
func TestDispatchServesExactPathMockAndCountsHits(t *testing.T) {
	st := store.New(0)
	mock := st.AddMock(
		&types.RequirementsDoc{Method: "GET", Path: "/health"},
		mustRequirements(t, &types.RequirementsDoc{Method: "GET", Path: "/health"}),
		&types.ResponseTemplate{Status: 205},
		false,
	)
	d := &Dispatcher{Store: st}

	rc := newDispatchCtx("GET", "/health", "")
	d.Handle(rc)
	if rc.Response.StatusCode() != 205 {
		t.Fatalf("expected 205, got %d", rc.Response.StatusCode())
	}
	if mock.HitCount.Load() != 1 {
		t.Fatalf("expected hit count 1, got %d", mock.HitCount.Load())
	}

	other := newDispatchCtx("GET", "/other", "")
	d.Handle(other)
	if other.Response.StatusCode() != 404 {
		t.Fatalf("expected 404 for an unmatched path, got %d", other.Response.StatusCode())
	}
}

// Property 7: a mock's delay_ms is a lower bound on wall-clock elapsed.
func TestDispatchDelayIsLowerBound(t *testing.T) {
	st := store.New(0)
	st.AddMock(
		&types.RequirementsDoc{Method: "GET", Path: "/slow"},
		mustRequirements(t, &types.RequirementsDoc{Method: "GET", Path: "/slow"}),
		&types.ResponseTemplate{Status: 200, DelayMs: 50},
		false,
	)
	d := &Dispatcher{Store: st}

	rc := newDispatchCtx("GET", "/slow", "")
	start := time.Now()
	d.Handle(rc)
	elapsed := time.Since(start)
	if elapsed < 50*time.Millisecond {
		t.Fatalf("expected elapsed >= 50ms, got %s", elapsed)
	}
}

// S3 / property 5: a ForwardRule takes precedence over a matching mock.
func TestDispatchForwardTakesPrecedenceOverMock(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("from-upstream"))
	}))
	defer upstreamSrv.Close()

	st := store.New(0)
	st.AddForwardRule(&types.ForwardRule{
		TargetBaseURL: upstreamSrv.URL,
		Doc:           &types.RequirementsDoc{Method: "GET", Path: "/hi"},
		Requirements:  mustRequirements(t, &types.RequirementsDoc{Method: "GET", Path: "/hi"}),
	})
	st.AddMock(
		&types.RequirementsDoc{Method: "GET", Path: "/hi"},
		mustRequirements(t, &types.RequirementsDoc{Method: "GET", Path: "/hi"}),
		&types.ResponseTemplate{Status: 200, Body: &types.ResponseBody{Bytes: []byte("local")}},
		false,
	)
	d := &Dispatcher{Store: st, Upstream: upstream.New()}

	rc := newDispatchCtx("GET", "/hi", "")
	d.Handle(rc)
	if got := string(rc.Response.Body()); got != "from-upstream" {
		t.Fatalf("expected the forwarded upstream body, got %q", got)
	}
}

// Property 5: a ProxyRule takes precedence over a matching mock when no
// ForwardRule applies.
func TestDispatchProxyTakesPrecedenceOverMock(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("from-proxy-upstream"))
	}))
	defer upstreamSrv.Close()

	st := store.New(0)
	st.AddProxyRule(&types.ProxyRule{
		Doc:          &types.RequirementsDoc{Method: "GET"},
		Requirements: mustRequirements(t, &types.RequirementsDoc{Method: "GET"}),
	})
	st.AddMock(
		&types.RequirementsDoc{Method: "GET"},
		mustRequirements(t, &types.RequirementsDoc{Method: "GET"}),
		&types.ResponseTemplate{Status: 200, Body: &types.ResponseBody{Bytes: []byte("local")}},
		false,
	)
	d := &Dispatcher{Store: st, Upstream: upstream.New()}

	rc := newDispatchCtx("GET", "/anything", "")
	rc.Request.SetRequestURI(upstreamSrv.URL + "/anything")
	d.Handle(rc)
	if got := string(rc.Response.Body()); got != "from-proxy-upstream" {
		t.Fatalf("expected the proxied upstream body, got %q", got)
	}
}

// S4: a CONNECT request driven through the real fasthttp connection-serving
// loop (Handle alone never fires Hijack's callback) tunnels bytes to the
// target in both directions.
func TestDispatchConnectTunnelsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	echoDone := make(chan struct{})
	go func() {
		defer close(echoDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		line, _ := reader.ReadString('\n')
		conn.Write([]byte("echo:" + line))
	}()

	d := &Dispatcher{Store: store.New(0)}
	srv := &fasthttp.Server{Handler: d.Handle}

	clientConn, serverConn := net.Pipe()
	serveDone := make(chan error, 1)
	go func() { serveDone <- srv.ServeConn(serverConn) }()

	target := ln.Addr().String()
	req := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n\r\n", target, target)
	if _, err := clientConn.Write([]byte(req)); err != nil {
		t.Fatalf("write CONNECT: %v", err)
	}

	reader := bufio.NewReader(clientConn)
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading CONNECT response: %v", err)
	}
	if statusLine != "HTTP/1.1 200 OK\r\n" {
		t.Fatalf("expected a 200 response to CONNECT, got %q", statusLine)
	}
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading CONNECT response headers: %v", err)
		}
		if line == "\r\n" {
			break
		}
	}

	if _, err := clientConn.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write tunneled bytes: %v", err)
	}
	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	echoLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading tunneled echo: %v", err)
	}
	if echoLine != "echo:hello\n" {
		t.Fatalf("expected tunneled echo, got %q", echoLine)
	}

	clientConn.Close()
	<-echoDone
	select {
	case <-serveDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("ServeConn did not finish after the client connection closed")
	}
}

// S6: a recording with match-all requirements captures a forwarded
// interaction, which exports, round-trips through the YAML scenario format,
// reinstalls as static mocks in a fresh store, and replays identically.
func TestDispatchRecordExportReimportReplay(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("hi"))
	}))
	defer upstreamSrv.Close()

	recordingStore := store.New(0)
	recordingStore.AddForwardRule(&types.ForwardRule{
		TargetBaseURL: upstreamSrv.URL,
		Doc:           &types.RequirementsDoc{},
		Requirements:  mustRequirements(t, &types.RequirementsDoc{}),
	})
	recordingStore.AddRecording(&types.Recording{
		Doc:          &types.RequirementsDoc{},
		Requirements: mustRequirements(t, &types.RequirementsDoc{}),
	})
	recorder := &Dispatcher{Store: recordingStore, Upstream: upstream.New()}

	rc := newDispatchCtx("GET", "/hi", "")
	recorder.Handle(rc)
	if got := string(rc.Response.Body()); got != "hi" {
		t.Fatalf("expected the recorded response body %q, got %q", "hi", got)
	}

	rec, err := recordingStore.GetRecording(1)
	if err != nil {
		t.Fatalf("GetRecording: %v", err)
	}
	if len(rec.Events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(rec.Events))
	}

	defs := record.Export(rec.Events, rec.Options)
	yamlBytes, err := scenario.Bytes(defs)
	if err != nil {
		t.Fatalf("scenario.Bytes: %v", err)
	}
	reimported, err := scenario.Parse(bytes.NewReader(yamlBytes))
	if err != nil {
		t.Fatalf("scenario.Parse: %v", err)
	}
	if len(reimported) != 1 {
		t.Fatalf("expected 1 reimported definition, got %d", len(reimported))
	}

	replayStore := store.New(0)
	for _, def := range reimported {
		reqs := mustRequirements(t, &def.When)
		th := def.Then
		replayStore.AddMock(&def.When, reqs, &th, true)
	}
	replayer := &Dispatcher{Store: replayStore}

	replayRC := newDispatchCtx("GET", "/hi", "")
	replayer.Handle(replayRC)
	if replayRC.Response.StatusCode() != 200 {
		t.Fatalf("expected replayed status 200, got %d", replayRC.Response.StatusCode())
	}
	if got := string(replayRC.Response.Body()); got != "hi" {
		t.Fatalf("expected replayed body %q, got %q", "hi", got)
	}
}

func TestHostPortFromConnectTargetAddsDefaultPort(t *testing.T) {
	if got := hostPortFromConnectTarget("example.com"); got != "example.com:443" {
		t.Fatalf("expected default :443 appended, got %q", got)
	}
}

func TestHostPortFromConnectTargetKeepsExplicitPort(t *testing.T) {
	if got := hostPortFromConnectTarget("example.com:8443"); got != "example.com:8443" {
		t.Fatalf("expected explicit port preserved, got %q", got)
	}
}

func TestDispositionString(t *testing.T) {
	cases := map[Disposition]string{
		Unmatched: "unmatched",
		Forwarded: "forwarded",
		Proxied:   "proxied",
		Mocked:    "mocked",
	}
	for d, want := range cases {
		if got := d.String(); got != want {
			t.Errorf("Disposition(%d).String() = %q, want %q", d, got, want)
		}
	}
}
