package config

import "testing"

func TestDefaultBindsToLoopback(t *testing.T) {
	c := Default()
	if c.BindHost() != "127.0.0.1" {
		t.Fatalf("expected default bind host 127.0.0.1, got %s", c.BindHost())
	}
	if c.Port != 5000 {
		t.Fatalf("expected default port 5000, got %d", c.Port)
	}
}

func TestExposeBindsToAllInterfaces(t *testing.T) {
	c := Default()
	c.Expose = true
	if c.BindHost() != "0.0.0.0" {
		t.Fatalf("expected --expose to bind 0.0.0.0, got %s", c.BindHost())
	}
}

func TestEnvPortAbsent(t *testing.T) {
	t.Setenv("HTTPMOCK_PORT", "")
	if _, ok := EnvPort(); ok {
		t.Fatalf("expected no port override when HTTPMOCK_PORT is unset")
	}
}

func TestEnvPortPresent(t *testing.T) {
	t.Setenv("HTTPMOCK_PORT", "9090")
	port, ok := EnvPort()
	if !ok || port != 9090 {
		t.Fatalf("expected port override 9090, got %d ok=%v", port, ok)
	}
}

func TestEnvPortInvalidIsIgnored(t *testing.T) {
	t.Setenv("HTTPMOCK_PORT", "not-a-number")
	if _, ok := EnvPort(); ok {
		t.Fatalf("expected an invalid HTTPMOCK_PORT to be ignored")
	}
}

func TestEnvHistoryBound(t *testing.T) {
	t.Setenv("HTTPMOCK_HISTORY_BOUND", "42")
	n, ok := EnvHistoryBound()
	if !ok || n != 42 {
		t.Fatalf("expected history bound override 42, got %d ok=%v", n, ok)
	}
}
