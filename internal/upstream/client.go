// Package upstream is the outbound leg of the Dispatcher: it sends a
// captured request to a forward/proxy target and reports back a rendered
// response. Adapted from the teacher's internal/proxy.ProxyRequest,
// generalized from "one fixed upstream read from PROXY_HOST" to a
// rule-selected target per request, and extended with a CONNECT tunnel
// (internal/upstream/tunnel.go) grounded on
// _examples/original_source/src/server/proxy.rs's tunnel()/host_addr() and
// the raw net.Dial + io.Copy idiom used across the example pack's
// reverse-proxy code.
package upstream

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/goodmock/goodmock/internal/types"
	"github.com/valyala/fasthttp"
)

// Client wraps a single long-lived fasthttp.Client. fasthttp already pools
// connections internally, which is the "single connection-pooling
// strategy of its own" permitted by spec §9's open question on pooling.
type Client struct {
	fast *fasthttp.Client
}

// New creates a Client with the teacher's timeouts-free default fasthttp
// client (the teacher does not set per-request timeouts either; the
// transport is expected to bound its own request lifetime per spec §5
// "There are no engine-imposed request timeouts").
func New() *Client {
	return &Client{fast: &fasthttp.Client{}}
}

// Result is the outcome of sending a request upstream.
type Result struct {
	Status  int
	Headers []types.KV
	Body    []byte
}

// Send builds an upstream request targeting baseURL+rawURI (baseURL may be
// empty, meaning "use the inbound request's own authority", which is how
// ProxyRule dispatch differs from ForwardRule dispatch), copies method,
// headers (minus Host) and body from rc, merges extraHeaders (overriding
// on conflict), and returns the upstream response.
func Send(client *Client, baseURL string, rawURI []byte, rc *fasthttp.RequestCtx, extraHeaders []types.KV) (*Result, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(baseURL + string(rawURI))
	req.Header.SetMethod(string(rc.Method()))

	rc.Request.Header.VisitAll(func(key, value []byte) {
		if strings.EqualFold(string(key), "Host") {
			return
		}
		req.Header.SetBytesKV(key, value)
	})
	for _, h := range extraHeaders {
		req.Header.Set(h.Key, h.Value)
	}

	if body := rc.PostBody(); len(body) > 0 {
		req.SetBody(body)
	}

	if err := client.fast.Do(req, resp); err != nil {
		return nil, err
	}

	body := resp.Body()
	if string(resp.Header.Peek("Content-Encoding")) == "gzip" {
		if decompressed, err := fasthttp.AppendGunzipBytes(nil, body); err == nil {
			body = decompressed
		}
	}
	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)

	return &Result{
		Status:  resp.StatusCode(),
		Headers: parseRawHeaders(resp.Header.Header()),
		Body:    bodyCopy,
	}, nil
}

// parseRawHeaders extracts ordered key/value pairs from raw HTTP response
// header bytes, preserving the upstream's original header-name casing —
// fasthttp's VisitAll normalizes casing, so the raw bytes are scanned
// directly instead, exactly as the teacher's internal/proxy.parseRawHeaders
// does.
func parseRawHeaders(raw []byte) []types.KV {
	var headers []types.KV
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := line[:idx]
		value := strings.TrimSpace(line[idx+1:])
		headers = append(headers, types.KV{Key: key, Value: value})
	}
	return headers
}
