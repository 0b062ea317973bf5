package api

import (
	"errors"
	"net/http"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/dashboard"
	"gestor-pelada/gestor/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// GetDashboard handles GET /api/v1/dashboard. It never triggers a load.
func (h *Handlers) GetDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := h.app.Dashboard.View()
		respondWithSuccess(w, http.StatusOK, view.Notice, &view)
	}
}

// RefreshDashboard handles POST /api/v1/dashboard/refresh. A partial load
// still answers 200 with the view and its notice.
func (h *Handlers) RefreshDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.app.Dashboard.Refresh(r.Context())
		if errors.Is(err, dashboard.ErrSuperseded) {
			respondWithError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, view.Notice, &view)
	}
}

// CreateEvent handles POST /api/v1/events
func (h *Handlers) CreateEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CreateEventRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		scheduledAt, priorityUntil := req.Schedule()
		res, err := h.app.Actions.CreateEvent(r.Context(), req.GroupID, scheduledAt, priorityUntil)
		respondAction(w, http.StatusCreated, res, err)
	}
}

// SetEventStatus handles PUT /api/v1/events/{eventID}/status
func (h *Handlers) SetEventStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.EventStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		res, err := h.app.Actions.SetEventStatus(r.Context(), chi.URLParam(r, "eventID"), constants.EventStatus(req.Status))
		respondAction(w, http.StatusOK, res, err)
	}
}

// ConfirmAttendance handles POST /api/v1/events/{eventID}/confirm
func (h *Handlers) ConfirmAttendance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.app.Actions.ConfirmAttendance(r.Context(), chi.URLParam(r, "eventID"))
		respondAction(w, http.StatusOK, res, err)
	}
}

// MarkSelfOut handles POST /api/v1/events/{eventID}/out
func (h *Handlers) MarkSelfOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.app.Actions.MarkSelfOut(r.Context(), chi.URLParam(r, "eventID"))
		respondAction(w, http.StatusOK, res, err)
	}
}

// ForceConfirmationStatus handles PUT /api/v1/events/{eventID}/confirmations
func (h *Handlers) ForceConfirmationStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.ForceStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		res, err := h.app.Actions.ForceConfirmationStatus(r.Context(),
			chi.URLParam(r, "eventID"),
			req.UserID,
			constants.ConfirmationStatus(req.Status),
		)
		respondAction(w, http.StatusOK, res, err)
	}
}

// SetMembershipType handles PUT /api/v1/memberships/{membershipID}
func (h *Handlers) SetMembershipType() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.MembershipTypeRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		res, err := h.app.Actions.SetMembershipType(r.Context(), chi.URLParam(r, "membershipID"), constants.MembershipType(req.Type))
		respondAction(w, http.StatusOK, res, err)
	}
}
