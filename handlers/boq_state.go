package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// transitionRequest is the body of a lifecycle transition call.
type transitionRequest struct {
	To    string `json:"to"`
	Actor string `json:"actor"`
	Role  string `json:"role"`
}

// HandleBOQTransition moves a BOQ along the lifecycle. Edges that leave the
// live-priced states snapshot item prices inside the same transaction as the
// state change. Disallowed edges return 409.
// Route: POST /api/boqs/{id}/transition
func HandleBOQTransition(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, err := app.FindRecordById("boqs", e.Request.PathValue("id"))
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "BOQ not found", nil)
		}

		var req transitionRequest
		if err := e.BindBody(&req); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}

		req.Actor = strings.TrimSpace(req.Actor)
		if req.Actor == "" {
			return APIError(e, http.StatusBadRequest, "validation", "actor is required", map[string]string{"actor": "actor is required"})
		}
		if req.Role != services.RoleCoordinator && req.Role != services.RoleApprover {
			return APIError(e, http.StatusBadRequest, "validation", "role must be coordinator or approver", map[string]string{"role": "unknown role"})
		}

		if err := services.ApplyTransition(app, boq, req.To, req.Actor, req.Role); err != nil {
			var trErr *services.TransitionError
			if errors.As(err, &trErr) {
				return APIError(e, http.StatusConflict, "invalid_transition", trErr.Error(), nil)
			}
			log.Printf("boq_state: transition failed for BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		return OKData(e, map[string]any{
			"id":         boq.Id,
			"state":      boq.GetString("state"),
			"total_cost": boq.GetFloat("total_cost"),
		})
	}
}

// HandleBOQDelete removes a BOQ. Line items and installation records cascade
// with it. Only live-priced BOQs may be deleted; anything past the freeze is
// part of the procurement record.
// Route: DELETE /api/boqs/{id}
func HandleBOQDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, err := app.FindRecordById("boqs", e.Request.PathValue("id"))
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "BOQ not found", nil)
		}

		state := boq.GetString("state")
		if !services.IsPriceLive(state) && state != services.StateRejected {
			return APIError(e, http.StatusConflict, "not_deletable",
				"BOQ in state "+state+" cannot be deleted", nil)
		}

		if err := app.Delete(boq); err != nil {
			log.Printf("boq_state: could not delete BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		return OKData(e, map[string]any{"id": boq.Id, "deleted": true})
	}
}
