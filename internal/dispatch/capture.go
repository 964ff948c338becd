package dispatch

import (
	"net"
	"strconv"
	"strings"

	"github.com/goodmock/goodmock/internal/types"
	"github.com/valyala/fasthttp"
)

// Capture builds an immutable CapturedRequest snapshot from rc, the moment
// a request enters the engine (spec §3 "CapturedRequest").
func Capture(rc *fasthttp.RequestCtx) *types.CapturedRequest {
	scheme := "http"
	if rc.IsTLS() {
		scheme = "https"
	}

	host := string(rc.Host())
	port := 80
	if scheme == "https" {
		port = 443
	}
	if h, p, err := net.SplitHostPort(host); err == nil {
		host = h
		if n, errP := strconv.Atoi(p); errP == nil {
			port = n
		}
	}

	var query []types.KV
	rc.QueryArgs().VisitAll(func(key, value []byte) {
		query = append(query, types.KV{Key: string(key), Value: string(value)})
	})

	var headers []types.KV
	rc.Request.Header.VisitAll(func(key, value []byte) {
		headers = append(headers, types.KV{Key: string(key), Value: string(value)})
	})

	var cookies []types.KV
	rc.Request.Header.VisitAllCookie(func(key, value []byte) {
		cookies = append(cookies, types.KV{Key: string(key), Value: string(value)})
	})

	body := rc.PostBody()
	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)

	return &types.CapturedRequest{
		Scheme:  scheme,
		Method:  string(rc.Method()),
		Host:    host,
		Port:    port,
		Path:    string(rc.Path()),
		Query:   query,
		Headers: headers,
		Cookies: cookies,
		Body:    bodyCopy,
	}
}

// hostPortFromConnectTarget extracts "host:port" from a CONNECT request's
// target, defaulting to :443 when no port is present.
func hostPortFromConnectTarget(target string) string {
	if strings.Contains(target, ":") {
		return target
	}
	return target + ":443"
}
