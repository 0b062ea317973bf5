package api

import (
	"net/http"

	"gestor-pelada/gestor/internal/models/dtos"
	"gestor-pelada/gestor/internal/models/dtos/responses"
	"gestor-pelada/gestor/internal/services"
)

func (h *Handlers) groupsResponse() *responses.GroupsResponse {
	return &responses.GroupsResponse{
		Groups:     h.app.Selection.Groups(),
		SelectedID: h.app.Selection.Current(),
	}
}

// ListGroups handles GET /api/v1/groups
func (h *Handlers) ListGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithSuccess(w, http.StatusOK, "", h.groupsResponse())
	}
}

// ReloadGroups handles POST /api/v1/groups/reload
func (h *Handlers) ReloadGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := h.app.Accounts.ReloadGroups(r.Context()); err != nil {
			respondWithError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, "", h.groupsResponse())
	}
}

// SelectGroup handles PUT /api/v1/groups/selected
func (h *Handlers) SelectGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.SelectGroupRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		if err := h.app.Selection.Select(r.Context(), req.GroupID); err != nil {
			respondWithError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, "", h.groupsResponse())
	}
}

// CreateGroup handles POST /api/v1/groups
func (h *Handlers) CreateGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CreateGroupRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		res, err := h.app.Actions.CreateGroup(r.Context(), req.Name, req.MaxPlayers)
		respondAction(w, http.StatusCreated, res, err)
	}
}

// JoinGroup handles POST /api/v1/groups/join
func (h *Handlers) JoinGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.JoinGroupRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadRequest(w, "Invalid request body")
			return
		}
		res, err := h.app.Actions.JoinGroup(r.Context(), req.GroupID)
		respondAction(w, http.StatusOK, res, err)
	}
}

func respondAction(w http.ResponseWriter, statusCode int, res services.Result, err error) {
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithSuccess(w, statusCode, res.Notice, &responses.ActionResponse{GroupID: res.GroupID})
}
