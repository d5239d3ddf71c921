package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"estate_hub/internal/app"
	"estate_hub/internal/domain"
)

func (h *Handlers) createOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in app.CreateOrganizationDTO
	if !h.decode(w, r, &in) {
		return
	}
	o, err := h.Orgs.CreateOrganization(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", location("/v1/organizations", o.ID()))
	writeJSON(w, http.StatusCreated, app.NewOrganizationView(o))
}

func (h *Handlers) getOrganization(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orgs.GetOrganization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, app.NewOrganizationView(o))
}

func (h *Handlers) getOrganizationBySlug(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orgs.GetOrganizationBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, app.NewOrganizationView(o))
}

func (h *Handlers) slugAvailability(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.URL.Query().Get("slug"))
	if slug == "" {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "slug query parameter is required")
		return
	}
	ok, err := h.Orgs.IsSlugAvailable(r.Context(), slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slug": strings.ToLower(slug), "available": ok})
}

func (h *Handlers) myOrganizations(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	orgs, err := h.Orgs.ListUserOrganizations(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.NewOrganizationViews(orgs))
}

func (h *Handlers) myDefaultOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	o, err := h.Orgs.GetOrCreateUserDefaultOrganization(r.Context(), actor.UserID, actor.Email)
	h.respondOrganization(w, r, o, err)
}

func (h *Handlers) updateOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in app.UpdateOrganizationDTO
	if !h.decode(w, r, &in) {
		return
	}
	o, err := h.Orgs.UpdateOrganization(r.Context(), chi.URLParam(r, "id"), actor, in)
	h.respondOrganization(w, r, o, err)
}

func (h *Handlers) updateOrganizationSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in app.SettingsDTO
	if !h.decode(w, r, &in) {
		return
	}
	o, err := h.Orgs.UpdateSettings(r.Context(), chi.URLParam(r, "id"), actor, in)
	h.respondOrganization(w, r, o, err)
}

func (h *Handlers) changePlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in app.ChangePlanDTO
	if !h.decode(w, r, &in) {
		return
	}
	o, err := h.Orgs.ChangePlan(r.Context(), chi.URLParam(r, "id"), actor, in)
	h.respondOrganization(w, r, o, err)
}

func (h *Handlers) suspendOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	o, err := h.Orgs.SuspendOrganization(r.Context(), chi.URLParam(r, "id"), actor)
	h.respondOrganization(w, r, o, err)
}

func (h *Handlers) activateOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	o, err := h.Orgs.ActivateOrganization(r.Context(), chi.URLParam(r, "id"), actor)
	h.respondOrganization(w, r, o, err)
}

func (h *Handlers) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.Orgs.DeleteOrganization(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) respondOrganization(w http.ResponseWriter, r *http.Request, o domain.Organization, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.NewOrganizationView(o))
}
