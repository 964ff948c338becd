package upstream

import (
	"context"
	"io"
	"net"
	"time"
)

// Tunnel opens a raw TCP connection to hostPort and copies bytes
// bidirectionally between it and client until either side closes, per
// spec §4.3 "For CONNECT, ... open a TCP connection ... and copy bytes
// bidirectionally until either side closes." Grounded on
// _examples/original_source/src/server/proxy.rs's tunnel(), translated
// from tokio::io::copy_bidirectional into a pair of goroutines plus
// io.Copy, the shape used for reverse-proxy tunnels across the example
// pack (e.g. zalando/skipper's CONNECT handling).
func Tunnel(ctx context.Context, client net.Conn, hostPort string) error {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	upstreamConn, err := dialer.DialContext(ctx, "tcp", hostPort)
	if err != nil {
		return err
	}
	defer upstreamConn.Close()

	errc := make(chan error, 2)
	go func() {
		_, err := io.Copy(upstreamConn, client)
		errc <- err
	}()
	go func() {
		_, err := io.Copy(client, upstreamConn)
		errc <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errc:
		return err
	}
}
