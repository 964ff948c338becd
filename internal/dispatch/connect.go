package dispatch

import (
	"context"
	"net"

	"github.com/goodmock/goodmock/internal/upstream"
	"github.com/valyala/fasthttp"
)

func tunnelConn(rc *fasthttp.RequestCtx, conn net.Conn, target string) error {
	return upstream.Tunnel(context.Background(), conn, target)
}

// handleConnect implements the CONNECT disposition of spec §4.3: respond
// 200 with an empty body, then hijack the raw connection and tunnel bytes
// to the requested host:port until either side closes.
func (d *Dispatcher) handleConnect(rc *fasthttp.RequestCtx) {
	target := hostPortFromConnectTarget(string(rc.Host()))
	rc.SetStatusCode(fasthttp.StatusOK)
	rc.Hijack(func(conn net.Conn) {
		defer conn.Close()
		if err := tunnelConn(rc, conn, target); err != nil && d.Log != nil {
			d.Log.Errorf("connect tunnel to %s: %v", target, err)
		}
	})
}
