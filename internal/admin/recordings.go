package admin

import (
	"bytes"
	"encoding/json"

	"github.com/goodmock/goodmock/internal/apperr"
	"github.com/goodmock/goodmock/internal/record"
	"github.com/goodmock/goodmock/internal/scenario"
	"github.com/goodmock/goodmock/internal/types"
	"github.com/valyala/fasthttp"
)

func toActiveRecording(r *types.Recording) types.ActiveRecording {
	return types.ActiveRecording{
		ID:         r.ID,
		Request:    r.Doc,
		Options:    r.Options,
		EventCount: len(r.Events),
	}
}

func (h *Handler) createRecording(rc *fasthttp.RequestCtx) {
	var def types.RecordingDefinition
	if err := json.Unmarshal(rc.PostBody(), &def); err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid recording definition", err))
		return
	}
	reqs, err := types.NewRequirements(&def.Request)
	if err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid request requirements", err))
		return
	}
	rec := h.Store.AddRecording(&types.Recording{
		Doc:          &def.Request,
		Requirements: reqs,
		Options:      def.Options,
	})
	writeJSON(rc, fasthttp.StatusCreated, toActiveRecording(rec))
}

func (h *Handler) recordingByID(rc *fasthttp.RequestCtx, idStr, method string) {
	id, err := parseID(idStr)
	if err != nil {
		writeError(rc, err)
		return
	}
	switch method {
	case "GET":
		h.exportRecording(rc, id)
	case "DELETE":
		if err := h.Store.DeleteRecording(id); err != nil {
			writeError(rc, err)
			return
		}
		rc.SetStatusCode(fasthttp.StatusNoContent)
	default:
		rc.SetStatusCode(fasthttp.StatusMethodNotAllowed)
	}
}

// exportRecording turns a recording's captured events into a scenario YAML
// stream (spec §4.5 "export"), ready to be written to the static mock
// directory or re-imported via POST recordings.
func (h *Handler) exportRecording(rc *fasthttp.RequestCtx, id uint64) {
	rec, err := h.Store.GetRecording(id)
	if err != nil {
		writeError(rc, err)
		return
	}
	defs := record.Export(rec.Events, rec.Options)
	data, err := scenario.Bytes(defs)
	if err != nil {
		writeError(rc, apperr.Wrap(apperr.RecordingFailure, "exporting recording", err))
		return
	}
	rc.Response.Header.Set("Content-Type", "application/yaml")
	rc.SetStatusCode(fasthttp.StatusOK)
	rc.SetBody(data)
}

// importScenario installs a YAML scenario stream's definitions as dynamic
// (non-static) mocks in one shot (spec §4.4 table: "recordings POST (content: YAML) ->
// install scenario as mocks, 200 + ids").
func (h *Handler) importScenario(rc *fasthttp.RequestCtx) {
	defs, err := scenario.Parse(bytes.NewReader(rc.PostBody()))
	if err != nil {
		writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid scenario document", err))
		return
	}
	ids := make([]uint64, 0, len(defs))
	for _, def := range defs {
		reqs, err := types.NewRequirements(&def.When)
		if err != nil {
			writeError(rc, apperr.Wrap(apperr.InvalidDefinition, "invalid mock definition", err))
			return
		}
		when := def.When
		then := def.Then
		m := h.Store.AddMock(&when, reqs, &then, false)
		ids = append(ids, m.ID)
	}
	writeJSON(rc, fasthttp.StatusOK, map[string]any{"ids": ids})
}
