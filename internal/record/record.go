// Package record implements the export half of Recorder & Playback (spec
// §4.5): turning the raw RecordEvents a Recording accumulated into scenario
// Definitions suitable for internal/scenario.Write, so a recording captured
// against a live upstream can be replayed later as static mocks. Grounded on
// the teacher's original internal/record/record.go (exchangeToMapping,
// deduplicationKey, normalizeHeaderName, generateMappingName), generalized
// from WireMock's Mapping/Request/Response shape to the spec's
// RequirementsDoc/ResponseTemplate wire format.
package record

import (
	"encoding/json"
	"strings"

	"github.com/goodmock/goodmock/internal/scenario"
	"github.com/goodmock/goodmock/internal/types"
)

// Export converts every event in events into a scenario Definition, in
// recording order, honoring RecordOptions for which request headers become
// match requirements and whether observed delays are preserved. Events are
// deduplicated by method, path, recorded headers and body; a repeated key
// keeps the position of its first occurrence and the content of its last,
// matching
// the teacher's non-scenario snapshot mode (repeatsAsScenarios=false).
func Export(events []types.RecordEvent, opts types.RecordOptions) []scenario.Definition {
	type entry struct {
		key string
		def scenario.Definition
	}

	seen := make(map[string]int)
	var entries []entry

	for _, ev := range events {
		def := eventToDefinition(ev, opts)
		key := deduplicationKey(def)
		if idx, ok := seen[key]; ok {
			entries[idx].def = def
		} else {
			seen[key] = len(entries)
			entries = append(entries, entry{key: key, def: def})
		}
	}

	defs := make([]scenario.Definition, 0, len(entries))
	for _, e := range entries {
		defs = append(defs, e.def)
	}
	return defs
}

// eventToDefinition builds a when/then scenario document from one event.
// "when" matches method, exact path, and the allow-listed request headers
// (eq, so a replayed mock only fires for an identical request); "then"
// replays status, headers, and body, plus the observed delay when
// RecordResponseDelays is set.
func eventToDefinition(ev types.RecordEvent, opts types.RecordOptions) scenario.Definition {
	var when types.RequirementsDoc
	if ev.Request != nil {
		when.Method = ev.Request.Method
		when.Path = ev.Request.Path
		if kv := headerEqList(ev.RequestHeaders, opts.RecordRequestHeaders); len(kv) > 0 {
			when.Header = kv
		}
		if len(ev.Request.Body) > 0 {
			when.Body = string(ev.Request.Body)
		}
	}

	var then types.ResponseTemplate
	if ev.Response != nil {
		then.Status = ev.Response.Status
		then.Headers = ev.Response.Headers
		then.Body = ev.Response.Body
	}
	if opts.RecordResponseDelays && ev.Response != nil {
		then.DelayMs = ev.ElapsedMs
	}

	return scenario.Definition{When: when, Then: then}
}

// headerEqList extracts the allow-listed header names from captured, in
// allow-list order, normalizing names to canonical HTTP casing.
func headerEqList(captured []types.KV, allow []string) []types.KeyValue {
	if len(allow) == 0 {
		return nil
	}
	var out []types.KeyValue
	for _, name := range allow {
		if v, ok := types.Get(captured, name, true); ok {
			out = append(out, types.KeyValue{Key: normalizeHeaderName(name), Value: v})
		}
	}
	return out
}

// deduplicationKey builds a stable key from a definition's when-clause:
// the teacher's method+path+body dedup key, plus any recorded headers.
func deduplicationKey(def scenario.Definition) string {
	key := def.When.Method + " " + def.When.Path
	if len(def.When.Header) > 0 {
		b, _ := json.Marshal(def.When.Header)
		key += " " + string(b)
	}
	if def.When.Body != "" {
		key += " " + def.When.Body
	}
	return key
}

// normalizeHeaderName title-cases a header name, matching the teacher's
// WireMock-compatible output casing.
func normalizeHeaderName(name string) string {
	parts := strings.Split(name, "-")
	for i, part := range parts {
		if len(part) == 0 {
			continue
		}
		upper := strings.ToUpper(part)
		switch upper {
		case "ID", "DNS", "URI", "URL", "SSL", "TLS", "IP":
			parts[i] = upper
		default:
			parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return strings.Join(parts, "-")
}
