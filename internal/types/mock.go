package types

import "sync/atomic"

// Mock is an identified {request_requirements, response_template} pair.
// Requirements and Response are immutable after creation; only HitCount
// changes, atomically, so concurrent matchers never need to lock a mock to
// read it.
type Mock struct {
	ID           uint64
	Doc          *RequirementsDoc
	Requirements *Requirements
	Response     *ResponseTemplate
	Static       bool
	HitCount     atomic.Uint64
}

// ActiveMock is the admin-facing read view of a Mock (no internal
// synchronisation primitives leak into JSON).
type ActiveMock struct {
	ID       uint64            `json:"id"`
	Request  *RequirementsDoc  `json:"request"`
	Response *ResponseTemplate `json:"response"`
	Static   bool              `json:"static"`
	HitCount uint64            `json:"hit_count"`
}

// MockDefinition is the admin wire body for POST mocks.
type MockDefinition struct {
	Request  RequirementsDoc  `json:"request"`
	Response ResponseTemplate `json:"response"`
}

// ForwardRule rewrites a matching request's authority/scheme to
// TargetBaseURL, strips the inbound Host header, merges ExtraHeaders and
// dispatches through an outbound client.
type ForwardRule struct {
	ID            uint64
	TargetBaseURL string
	Doc           *RequirementsDoc
	Requirements  *Requirements
	ExtraHeaders  []KV
}

// ActiveForwardRule is the admin-facing read view of a ForwardRule.
type ActiveForwardRule struct {
	ID            uint64           `json:"id"`
	TargetBaseURL string           `json:"target_base_url"`
	Request       *RequirementsDoc `json:"request"`
	ExtraHeaders  []KV             `json:"extra_request_headers,omitempty"`
}

// ForwardRuleDefinition is the admin wire body for POST forwarding_rules.
type ForwardRuleDefinition struct {
	TargetBaseURL string           `json:"target_base_url"`
	Request       RequirementsDoc  `json:"request"`
	ExtraHeaders  []KV             `json:"extra_request_headers,omitempty"`
}

// ProxyRule is like ForwardRule but the authority comes from the inbound
// request's own URI (the client addressed the server as a proxy).
type ProxyRule struct {
	ID           uint64
	Doc          *RequirementsDoc
	Requirements *Requirements
	ExtraHeaders []KV
}

// ActiveProxyRule is the admin-facing read view of a ProxyRule.
type ActiveProxyRule struct {
	ID           uint64           `json:"id"`
	Request      *RequirementsDoc `json:"request"`
	ExtraHeaders []KV             `json:"extra_request_headers,omitempty"`
}

// ProxyRuleDefinition is the admin wire body for POST proxy_rules.
type ProxyRuleDefinition struct {
	Request      RequirementsDoc `json:"request"`
	ExtraHeaders []KV            `json:"extra_request_headers,omitempty"`
}
