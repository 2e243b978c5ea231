package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinayskanse/blocky/internal/domain"
	"github.com/vinayskanse/blocky/internal/storage"
	"github.com/vinayskanse/blocky/internal/validation"
)

// GroupHandler handles the group command endpoints.
type GroupHandler struct {
	store storage.Storage
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(store storage.Storage) *GroupHandler {
	return &GroupHandler{store: store}
}

// List returns all groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	respondJSON(w, http.StatusOK, groups)
}

// Create creates a new group. New groups start enabled; the schedule fields
// are stored even when empty, mirroring how the UI always submits them.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidateGroupName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var errs validation.ValidationErrors
	validateDomains(req.Domains, &errs)
	validateScheduleFields(req.Days, req.StartTime, req.EndTime, &errs)
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	days := req.Days
	if days == nil {
		days = []string{}
	}
	group := &domain.Group{
		ID:      generateID(),
		Name:    req.Name,
		Enabled: true,
		Domains: req.Domains,
		Schedule: &domain.Schedule{
			Days:  days,
			Start: req.StartTime,
			End:   req.EndTime,
		},
	}

	if err := h.store.CreateGroup(r.Context(), group); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Update replaces a group's name and enabled flag.
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.UpdateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateGroupName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpdateGroup(r.Context(), id, req.Name, req.Enabled); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateDomains replaces a group's domain list wholesale.
func (h *GroupHandler) UpdateDomains(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.UpdateDomainsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var errs validation.ValidationErrors
	validateDomains(req.Domains, &errs)
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	if err := h.store.ReplaceDomains(r.Context(), id, req.Domains); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateSchedule replaces a group's schedule wholesale. Empty days and times
// clear it.
func (h *GroupHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.UpdateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var errs validation.ValidationErrors
	validateScheduleFields(req.Days, req.StartTime, req.EndTime, &errs)
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	days := req.Days
	if days == nil {
		days = []string{}
	}
	sched := domain.Schedule{
		Days:  days,
		Start: req.StartTime,
		End:   req.EndTime,
	}

	if err := h.store.ReplaceSchedule(r.Context(), id, sched); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete deletes a group. Deletion is immediate and irreversible.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteGroup(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
