package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"estate_hub/internal/app"
	"estate_hub/internal/domain"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Props *app.PropertyService
	Orgs  *app.OrganizationService
	v     *validator.Validate
}

func NewHandlers(props *app.PropertyService, orgs *app.OrganizationService) *Handlers {
	return &Handlers{Props: props, Orgs: orgs, v: validator.New(validator.WithRequiredStructEnabled())}
}

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1/properties", func(r chi.Router) {
		r.Get("/", h.listProperties)
		r.Post("/", h.createProperty)
		r.Get("/{id}", h.getProperty)
		r.Patch("/{id}", h.updateProperty)
		r.Delete("/{id}", h.deleteProperty)
		r.Post("/{id}/publish", h.transition(domain.StatusPublished, h.Props.PublishProperty))
		r.Post("/{id}/suspend", h.transition(domain.StatusSuspended, h.Props.SuspendProperty))
		r.Post("/{id}/sold", h.transition(domain.StatusSold, h.Props.MarkPropertySold))
		r.Post("/{id}/rented", h.transition(domain.StatusRented, h.Props.MarkPropertyRented))
		r.Post("/{id}/images", h.addImage)
		r.Delete("/{id}/images", h.removeImage)
	})

	s.mux.Route("/v1/me", func(r chi.Router) {
		r.Get("/properties", h.myProperties)
		r.Get("/organization", h.myDefaultOrganization)
		r.Get("/organizations", h.myOrganizations)
	})

	s.mux.Route("/v1/organizations", func(r chi.Router) {
		r.Post("/", h.createOrganization)
		r.Get("/slug-availability", h.slugAvailability)
		r.Get("/by-slug/{slug}", h.getOrganizationBySlug)
		r.Get("/{id}", h.getOrganization)
		r.Patch("/{id}", h.updateOrganization)
		r.Put("/{id}/settings", h.updateOrganizationSettings)
		r.Put("/{id}/plan", h.changePlan)
		r.Post("/{id}/suspend", h.suspendOrganization)
		r.Post("/{id}/activate", h.activateOrganization)
		r.Delete("/{id}", h.deleteOrganization)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps core error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve):
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Namespace()] = fe.Tag()
		}
		writeProblemBody(w, problem{Type: "about:blank", Title: "Validation Failed", Status: http.StatusBadRequest,
			Detail: "request body failed validation", Fields: fields})
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrBusinessRule):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// requireActor answers 401 for anonymous callers.
func requireActor(w http.ResponseWriter, r *http.Request) (app.Actor, bool) {
	a := ActorFrom(r.Context())
	if a.Anonymous() {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return a, false
	}
	return a, true
}

// decode reads a JSON body into dst and runs the struct validators on it.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Malformed Body", strings.TrimPrefix(err.Error(), "json: "))
		return false
	}
	if err := h.v.Struct(dst); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached serves v with a weak ETag and honours If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func location(prefix, id string) string { return fmt.Sprintf("%s/%s", prefix, id) }
