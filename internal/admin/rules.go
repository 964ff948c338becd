package admin

import (
	"encoding/json"

	"github.com/goodmock/goodmock/internal/apperr"
	"github.com/goodmock/goodmock/internal/types"
	"github.com/valyala/fasthttp"
)

func toActiveForwardRule(r *types.ForwardRule) types.ActiveForwardRule {
	return types.ActiveForwardRule{
		ID:            r.ID,
		TargetBaseURL: r.TargetBaseURL,
		Request:       r.Doc,
		ExtraHeaders:  r.ExtraHeaders,
	}
}

func (h *Handler) createForwardRule(rc *fasthttp.RequestCtx) {
	var def types.ForwardRuleDefinition
	if err := json.Unmarshal(rc.PostBody(), &def); err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid forward rule", err))
		return
	}
	if def.TargetBaseURL == "" {
		writeError(rc, apperr.New(apperr.InvalidDefinition, "target_base_url is required"))
		return
	}
	reqs, err := types.NewRequirements(&def.Request)
	if err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid request requirements", err))
		return
	}
	rule := h.Store.AddForwardRule(&types.ForwardRule{
		TargetBaseURL: def.TargetBaseURL,
		Doc:           &def.Request,
		Requirements:  reqs,
		ExtraHeaders:  def.ExtraHeaders,
	})
	writeJSON(rc, fasthttp.StatusCreated, toActiveForwardRule(rule))
}

func (h *Handler) forwardRuleByID(rc *fasthttp.RequestCtx, idStr, method string) {
	id, err := parseID(idStr)
	if err != nil {
		writeError(rc, err)
		return
	}
	switch method {
	case "DELETE":
		if err := h.Store.DeleteForwardRule(id); err != nil {
			writeError(rc, err)
			return
		}
		rc.SetStatusCode(fasthttp.StatusNoContent)
	default:
		rc.SetStatusCode(fasthttp.StatusMethodNotAllowed)
	}
}

func toActiveProxyRule(r *types.ProxyRule) types.ActiveProxyRule {
	return types.ActiveProxyRule{
		ID:           r.ID,
		Request:      r.Doc,
		ExtraHeaders: r.ExtraHeaders,
	}
}

func (h *Handler) createProxyRule(rc *fasthttp.RequestCtx) {
	var def types.ProxyRuleDefinition
	if err := json.Unmarshal(rc.PostBody(), &def); err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid proxy rule", err))
		return
	}
	reqs, err := types.NewRequirements(&def.Request)
	if err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid request requirements", err))
		return
	}
	rule := h.Store.AddProxyRule(&types.ProxyRule{
		Doc:          &def.Request,
		Requirements: reqs,
		ExtraHeaders: def.ExtraHeaders,
	})
	writeJSON(rc, fasthttp.StatusCreated, toActiveProxyRule(rule))
}

func (h *Handler) proxyRuleByID(rc *fasthttp.RequestCtx, idStr, method string) {
	id, err := parseID(idStr)
	if err != nil {
		writeError(rc, err)
		return
	}
	switch method {
	case "DELETE":
		if err := h.Store.DeleteProxyRule(id); err != nil {
			writeError(rc, err)
			return
		}
		rc.SetStatusCode(fasthttp.StatusNoContent)
	default:
		rc.SetStatusCode(fasthttp.StatusMethodNotAllowed)
	}
}
