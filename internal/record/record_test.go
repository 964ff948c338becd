package record

import (
	"testing"

	"github.com/goodmock/goodmock/internal/types"
)

func TestExportBuildsWhenThenFromEvent(t *testing.T) {
	events := []types.RecordEvent{
		{
			Request: &types.CapturedRequest{Method: "GET", Path: "/thing"},
			RequestHeaders: []types.KV{
				{Key: "Accept", Value: "application/json"},
			},
			Response: &types.ResponseTemplate{
				Status: 200,
				Body:   &types.ResponseBody{Bytes: []byte("hi")},
			},
		},
	}
	opts := types.RecordOptions{RecordRequestHeaders: []string{"Accept"}}

	defs := Export(events, opts)
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	def := defs[0]
	if def.When.Method != "GET" || def.When.Path != "/thing" {
		t.Fatalf("unexpected when: %+v", def.When)
	}
	if len(def.When.Header) != 1 || def.When.Header[0].Key != "Accept" || def.When.Header[0].Value != "application/json" {
		t.Fatalf("expected Accept header in when clause, got %+v", def.When.Header)
	}
	if def.Then.Status != 200 || string(def.Then.Body.Bytes) != "hi" {
		t.Fatalf("unexpected then: %+v", def.Then)
	}
}

func TestExportOmitsUnlistedHeaders(t *testing.T) {
	events := []types.RecordEvent{
		{
			Request:        &types.CapturedRequest{Method: "GET", Path: "/thing"},
			RequestHeaders: []types.KV{{Key: "Authorization", Value: "secret"}},
			Response:       &types.ResponseTemplate{Status: 200},
		},
	}
	defs := Export(events, types.RecordOptions{})
	if len(defs[0].When.Header) != 0 {
		t.Fatalf("expected no header requirements when RecordRequestHeaders is unset, got %+v", defs[0].When.Header)
	}
}

func TestExportDeduplicatesKeepingLastOccurrence(t *testing.T) {
	events := []types.RecordEvent{
		{
			Request:  &types.CapturedRequest{Method: "GET", Path: "/same"},
			Response: &types.ResponseTemplate{Status: 200},
		},
		{
			Request:  &types.CapturedRequest{Method: "GET", Path: "/same"},
			Response: &types.ResponseTemplate{Status: 201},
		},
	}
	defs := Export(events, types.RecordOptions{})
	if len(defs) != 1 {
		t.Fatalf("expected deduplication to a single definition, got %d", len(defs))
	}
	if defs[0].Then.Status != 201 {
		t.Fatalf("expected the later occurrence to win, got status %d", defs[0].Then.Status)
	}
}

func TestExportRecordsDelayOnlyWhenRequested(t *testing.T) {
	events := []types.RecordEvent{
		{
			Request:   &types.CapturedRequest{Method: "GET", Path: "/slow"},
			Response:  &types.ResponseTemplate{Status: 200},
			ElapsedMs: 150,
		},
	}
	without := Export(events, types.RecordOptions{})
	if without[0].Then.DelayMs != 0 {
		t.Fatalf("expected no delay captured by default, got %d", without[0].Then.DelayMs)
	}

	with := Export(events, types.RecordOptions{RecordResponseDelays: true})
	if with[0].Then.DelayMs != 150 {
		t.Fatalf("expected observed elapsed time captured as delay, got %d", with[0].Then.DelayMs)
	}
}

func TestNormalizeHeaderNameTitleCases(t *testing.T) {
	cases := map[string]string{
		"content-type": "Content-Type",
		"x-request-id": "X-Request-ID",
		"ETAG":         "Etag",
	}
	for in, want := range cases {
		if got := normalizeHeaderName(in); got != want {
			t.Errorf("normalizeHeaderName(%q) = %q, want %q", in, got, want)
		}
	}
}
