package admin

import (
	"encoding/json"

	"github.com/goodmock/goodmock/internal/apperr"
	"github.com/goodmock/goodmock/internal/matching"
	"github.com/goodmock/goodmock/internal/types"
	"github.com/valyala/fasthttp"
)

func toActiveMock(m *types.Mock) types.ActiveMock {
	return types.ActiveMock{
		ID:       m.ID,
		Request:  m.Doc,
		Response: m.Response,
		Static:   m.Static,
		HitCount: m.HitCount.Load(),
	}
}

func (h *Handler) createMock(rc *fasthttp.RequestCtx) {
	var def types.MockDefinition
	if err := json.Unmarshal(rc.PostBody(), &def); err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid mock definition", err))
		return
	}
	reqs, err := types.NewRequirements(&def.Request)
	if err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid request requirements", err))
		return
	}
	m := h.Store.AddMock(&def.Request, reqs, &def.Response, false)
	writeJSON(rc, fasthttp.StatusCreated, toActiveMock(m))
}

func (h *Handler) deleteAllMocks(rc *fasthttp.RequestCtx) {
	h.Store.DeleteAllMocks()
	rc.SetStatusCode(fasthttp.StatusNoContent)
}

func (h *Handler) mockByID(rc *fasthttp.RequestCtx, idStr, method string) {
	id, err := parseID(idStr)
	if err != nil {
		writeError(rc, err)
		return
	}
	switch method {
	case "GET":
		m, err := h.Store.GetMock(id)
		if err != nil {
			writeError(rc, err)
			return
		}
		writeJSON(rc, fasthttp.StatusOK, toActiveMock(m))
	case "DELETE":
		if err := h.Store.DeleteMock(id); err != nil {
			writeError(rc, err)
			return
		}
		rc.SetStatusCode(fasthttp.StatusNoContent)
	default:
		rc.SetStatusCode(fasthttp.StatusMethodNotAllowed)
	}
}

func (h *Handler) verify(rc *fasthttp.RequestCtx) {
	var doc types.RequirementsDoc
	if err := json.Unmarshal(rc.PostBody(), &doc); err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid requirements", err))
		return
	}
	reqs, err := types.NewRequirements(&doc)
	if err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid requirements", err))
		return
	}
	closest, ok := h.Store.Verify(reqs)
	if !ok {
		writeError(rc, apperr.New(apperr.UnmatchedRequest, "history is empty"))
		return
	}
	writeJSON(rc, fasthttp.StatusOK, closestMatchView{
		Report:  closest.Report,
		Request: closest.Request,
	})
}

// closestMatchView is the JSON shape of a ClosestMatch (spec glossary
// "Closest match"): the nearest historical request plus why it fell short.
type closestMatchView struct {
	matching.Report
	Request *types.CapturedRequest `json:"request"`
}
