// Package config resolves the CLI/environment surface of spec §6,
// generalizing the teacher's internal/common (plain os.Getenv reads, no
// config library) to the spec's flag/env names while keeping the same
// "env var with sane default" idiom.
package config

import (
	"os"
	"strconv"
)

// Config is the fully resolved set of startup options.
type Config struct {
	Port             uint16
	Expose           bool
	StaticMockDir    string
	DisableAccessLog bool
	HistoryBound     int
}

// Default returns the spec's documented defaults: port 5000, bound to
// 127.0.0.1 (not exposed), no static mock dir, access log on, history 256.
func Default() Config {
	return Config{
		Port:         5000,
		HistoryBound: 256,
	}
}

// BindHost returns "0.0.0.0" when Expose is set, else "127.0.0.1", mirroring
// the CLI's --expose flag semantics.
func (c Config) BindHost() string {
	if c.Expose {
		return "0.0.0.0"
	}
	return "127.0.0.1"
}

// EnvHost/EnvPort read HTTPMOCK_HOST/HTTPMOCK_PORT, the connection
// defaults spec §6 documents for in-process clients targeting a
// standalone server. Grounded on the teacher's internal/common.GetPort
// (os.Getenv + strconv.Atoi, log.Fatalf equivalent replaced here with a
// plain ok=false since this is a library helper, not a CLI entrypoint).
func EnvHost() (string, bool) {
	v := os.Getenv("HTTPMOCK_HOST")
	return v, v != ""
}

func EnvPort() (int, bool) {
	v := os.Getenv("HTTPMOCK_PORT")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// EnvHistoryBound reads HTTPMOCK_HISTORY_BOUND, the env-var override for
// the history collection's retention bound.
func EnvHistoryBound() (int, bool) {
	v := os.Getenv("HTTPMOCK_HISTORY_BOUND")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
