// Package store implements the State Store: the process-wide registry of
// mocks, forwarding rules, proxy rules, recordings and request history.
// Each collection is guarded by its own reader-writer lock (spec §5:
// "collections are independent — writing to recordings does not block
// matching against mocks"), generalizing the teacher's single
// sync.RWMutex-over-one-slice (Server.mu/Server.mappings in
// internal/server/server.go) to five independent locks.
package store

import (
	"sort"
	"sync"

	"github.com/goodmock/goodmock/internal/apperr"
	"github.com/goodmock/goodmock/internal/idgen"
	"github.com/goodmock/goodmock/internal/matching"
	"github.com/goodmock/goodmock/internal/types"
)

// Store is the ApplicationState of spec §3: the root container, shared by
// many concurrent request handlers.
type Store struct {
	ids idgen.Source

	mocksMu sync.RWMutex
	mocks   []*types.Mock

	forwardMu sync.RWMutex
	forward   []*types.ForwardRule

	proxyMu sync.RWMutex
	proxy   []*types.ProxyRule

	recMu      sync.RWMutex
	recordings []*types.Recording

	historyMu    sync.RWMutex
	history      []*types.CapturedRequest
	historyBound int
}

// New creates an empty store. historyBound <= 0 falls back to the spec's
// default of 256.
func New(historyBound int) *Store {
	if historyBound <= 0 {
		historyBound = 256
	}
	return &Store{historyBound: historyBound}
}

// NextID mints the next monotonic id, shared across every collection so
// that "no id is reused" holds regardless of which collection created it.
func (s *Store) NextID() uint64 { return s.ids.Next() }

// AddMock builds a mock from doc, reqs, resp and static, assigns it the
// next id, inserts it and returns it. doc is the original wire requirements document, kept so the
// admin GET view can echo back what was submitted.
func (s *Store) AddMock(doc *types.RequirementsDoc, reqs *types.Requirements, resp *types.ResponseTemplate, static bool) *types.Mock {
	m := &types.Mock{ID: s.NextID(), Doc: doc, Requirements: reqs, Response: resp, Static: static}
	s.mocksMu.Lock()
	s.mocks = append(s.mocks, m)
	s.mocksMu.Unlock()
	return m
}

// GetMock returns the mock with id, or NotFound.
func (s *Store) GetMock(id uint64) (*types.Mock, error) {
	s.mocksMu.RLock()
	defer s.mocksMu.RUnlock()
	for _, m := range s.mocks {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "mock not found")
}

// DeleteMock removes the mock with id.
func (s *Store) DeleteMock(id uint64) error {
	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()
	for i, m := range s.mocks {
		if m.ID == id {
			s.mocks = append(s.mocks[:i], s.mocks[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "mock not found")
}

// DeleteAllMocks removes every dynamic mock, keeping static ones in place.
func (s *Store) DeleteAllMocks() {
	s.mocksMu.Lock()
	defer s.mocksMu.Unlock()
	kept := s.mocks[:0]
	for _, m := range s.mocks {
		if m.Static {
			kept = append(kept, m)
		}
	}
	s.mocks = kept
}

// ServeMock finds the most-recently-added mock matching req (spec §4.2,
// §8 testable property 3), bumps its hit count, and returns its response.
// Matching iterates in descending id order and the first hit wins; no
// specificity scoring happens at this stage (see DESIGN.md "Reconciled
// teacher/spec conflict").
func (s *Store) ServeMock(req *types.CapturedRequest) (*types.Mock, *types.ResponseTemplate, bool) {
	s.mocksMu.RLock()
	snapshot := make([]*types.Mock, len(s.mocks))
	copy(snapshot, s.mocks)
	s.mocksMu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool { return snapshot[i].ID > snapshot[j].ID })
	for _, m := range snapshot {
		if matching.Evaluate(req, m.Requirements).Matches {
			m.HitCount.Add(1)
			return m, m.Response, true
		}
	}
	return nil, nil, false
}

// AddForwardRule inserts a forward rule.
func (s *Store) AddForwardRule(rule *types.ForwardRule) *types.ForwardRule {
	rule.ID = s.NextID()
	s.forwardMu.Lock()
	s.forward = append(s.forward, rule)
	s.forwardMu.Unlock()
	return rule
}

// DeleteForwardRule removes a forward rule by id.
func (s *Store) DeleteForwardRule(id uint64) error {
	s.forwardMu.Lock()
	defer s.forwardMu.Unlock()
	for i, r := range s.forward {
		if r.ID == id {
			s.forward = append(s.forward[:i], s.forward[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "forward rule not found")
}

// DeleteAllForwardRules clears every forward rule.
func (s *Store) DeleteAllForwardRules() {
	s.forwardMu.Lock()
	s.forward = nil
	s.forwardMu.Unlock()
}

// FindForwardRule returns the most-recently-added matching forward rule.
func (s *Store) FindForwardRule(req *types.CapturedRequest) (*types.ForwardRule, bool) {
	s.forwardMu.RLock()
	snapshot := make([]*types.ForwardRule, len(s.forward))
	copy(snapshot, s.forward)
	s.forwardMu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool { return snapshot[i].ID > snapshot[j].ID })
	for _, r := range snapshot {
		if matching.Evaluate(req, r.Requirements).Matches {
			return r, true
		}
	}
	return nil, false
}

// AddProxyRule inserts a proxy rule.
func (s *Store) AddProxyRule(rule *types.ProxyRule) *types.ProxyRule {
	rule.ID = s.NextID()
	s.proxyMu.Lock()
	s.proxy = append(s.proxy, rule)
	s.proxyMu.Unlock()
	return rule
}

// DeleteProxyRule removes a proxy rule by id.
func (s *Store) DeleteProxyRule(id uint64) error {
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()
	for i, r := range s.proxy {
		if r.ID == id {
			s.proxy = append(s.proxy[:i], s.proxy[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "proxy rule not found")
}

// DeleteAllProxyRules clears every proxy rule.
func (s *Store) DeleteAllProxyRules() {
	s.proxyMu.Lock()
	s.proxy = nil
	s.proxyMu.Unlock()
}

// FindProxyRule returns the most-recently-added matching proxy rule.
func (s *Store) FindProxyRule(req *types.CapturedRequest) (*types.ProxyRule, bool) {
	s.proxyMu.RLock()
	snapshot := make([]*types.ProxyRule, len(s.proxy))
	copy(snapshot, s.proxy)
	s.proxyMu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool { return snapshot[i].ID > snapshot[j].ID })
	for _, r := range snapshot {
		if matching.Evaluate(req, r.Requirements).Matches {
			return r, true
		}
	}
	return nil, false
}

// AddRecording inserts a recording.
func (s *Store) AddRecording(rec *types.Recording) *types.Recording {
	rec.ID = s.NextID()
	s.recMu.Lock()
	s.recordings = append(s.recordings, rec)
	s.recMu.Unlock()
	return rec
}

// GetRecording returns the recording with id.
func (s *Store) GetRecording(id uint64) (*types.Recording, error) {
	s.recMu.RLock()
	defer s.recMu.RUnlock()
	for _, r := range s.recordings {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "recording not found")
}

// DeleteRecording removes a recording by id.
func (s *Store) DeleteRecording(id uint64) error {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	for i, r := range s.recordings {
		if r.ID == id {
			s.recordings = append(s.recordings[:i], s.recordings[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "recording not found")
}

// DeleteAllRecordings clears every recording.
func (s *Store) DeleteAllRecordings() {
	s.recMu.Lock()
	s.recordings = nil
	s.recMu.Unlock()
}

// RecordEvent appends ev to every recording whose requirements match req.
// Multiple recordings may receive the same event (spec §4.3). Each copy's
// RequestHeaders is filled from req with the headers that recording's
// RecordRequestHeaders allow-list names.
func (s *Store) RecordEvent(req *types.CapturedRequest, ev types.RecordEvent) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	for _, r := range s.recordings {
		if matching.Evaluate(req, r.Requirements).Matches {
			rev := ev
			rev.RequestHeaders = nil
			for _, name := range r.Options.RecordRequestHeaders {
				if v, ok := req.Header(name); ok {
					rev.RequestHeaders = append(rev.RequestHeaders, types.KV{Key: name, Value: v})
				}
			}
			r.Events = append(r.Events, rev)
		}
	}
}

// AppendHistory appends req to the bounded FIFO history, evicting the
// oldest entry beyond historyBound.
func (s *Store) AppendHistory(req *types.CapturedRequest) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	s.history = append(s.history, req)
	if len(s.history) > s.historyBound {
		s.history = s.history[len(s.history)-s.historyBound:]
	}
}

// History returns a copy of the current history, oldest first.
func (s *Store) History() []*types.CapturedRequest {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	out := make([]*types.CapturedRequest, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory empties the history FIFO.
func (s *Store) ClearHistory() {
	s.historyMu.Lock()
	s.history = nil
	s.historyMu.Unlock()
}

// ClosestMatch is the verify diagnostic result: the history entry
// minimizing the kernel's distance metric against reqs.
type ClosestMatch struct {
	Request    *types.CapturedRequest
	Report     matching.Report
}

// Verify finds the closest historical request to reqs (spec §4.2 "verify",
// glossary "Closest match").
func (s *Store) Verify(reqs *types.Requirements) (*ClosestMatch, bool) {
	s.historyMu.RLock()
	snapshot := make([]*types.CapturedRequest, len(s.history))
	copy(snapshot, s.history)
	s.historyMu.RUnlock()

	if len(snapshot) == 0 {
		return nil, false
	}

	var best *ClosestMatch
	for _, req := range snapshot {
		rep := matching.Evaluate(req, reqs)
		if rep.Matches {
			return &ClosestMatch{Request: req, Report: rep}, true
		}
		if best == nil || rep.Distance < best.Report.Distance {
			best = &ClosestMatch{Request: req, Report: rep}
		}
	}
	return best, best != nil
}

// Reset removes all non-static mocks, all rules, all recordings, and
// clears history. The id counter is never reset (spec §4.2, §8 property 4).
func (s *Store) Reset() {
	s.DeleteAllMocks()
	s.DeleteAllForwardRules()
	s.DeleteAllProxyRules()
	s.DeleteAllRecordings()
	s.ClearHistory()
}

// Mocks returns a snapshot of every mock, in insertion order.
func (s *Store) Mocks() []*types.Mock {
	s.mocksMu.RLock()
	defer s.mocksMu.RUnlock()
	out := make([]*types.Mock, len(s.mocks))
	copy(out, s.mocks)
	return out
}
