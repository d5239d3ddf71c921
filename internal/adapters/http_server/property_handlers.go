package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"estate_hub/internal/adapters/observability"
	"estate_hub/internal/app"
	"estate_hub/internal/domain"
)

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	q, err := parsePropertiesQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	viewer := ActorFrom(r.Context())
	// a scoped listing only includes unpublished properties for their owner
	if f := &q.Filters; f.Scoped() && (viewer.Anonymous() || f.OwnerID == nil || *f.OwnerID != viewer.UserID) {
		st := domain.StatusPublished
		f.Status = &st
	}
	page, err := h.Props.GetProperties(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, app.NewPropertiesPageView(page, viewer.UserID))
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	v, err := h.Props.GetProperty(r.Context(), chi.URLParam(r, "id"), ActorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, v)
}

func (h *Handlers) myProperties(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	ps, err := h.Props.ListUserProperties(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.NewPropertyViews(ps))
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in app.CreatePropertyDTO
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.Props.CreateProperty(r.Context(), actor, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", location("/v1/properties", p.ID()))
	writeJSON(w, http.StatusCreated, app.NewPropertyView(p))
}

func (h *Handlers) updateProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in app.UpdatePropertyDTO
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.Props.UpdateProperty(r.Context(), chi.URLParam(r, "id"), actor, in)
	h.respondProperty(w, r, p, err)
}

func (h *Handlers) deleteProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.Props.DeleteProperty(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transition adapts a status-changing service call into a handler.
func (h *Handlers) transition(to domain.PropertyStatus, fn func(ctx context.Context, id string, actor app.Actor) (domain.Property, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		p, err := fn(r.Context(), chi.URLParam(r, "id"), actor)
		observability.ObserveTransition(to, err)
		h.respondProperty(w, r, p, err)
	}
}

func (h *Handlers) addImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var in app.ImageDTO
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.Props.AddImage(r.Context(), chi.URLParam(r, "id"), actor, in.URL)
	h.respondProperty(w, r, p, err)
}

// removeImage takes the image url from ?url= since DELETE bodies are
// commonly dropped by proxies.
func (h *Handlers) removeImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	img := strings.TrimSpace(r.URL.Query().Get("url"))
	if img == "" {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "url query parameter is required")
		return
	}
	p, err := h.Props.RemoveImage(r.Context(), chi.URLParam(r, "id"), actor, img)
	h.respondProperty(w, r, p, err)
}

func (h *Handlers) respondProperty(w http.ResponseWriter, r *http.Request, p domain.Property, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.NewPropertyView(p))
}

// parsePropertiesQuery reads paging and filter parameters. Malformed values
// are validation errors rather than silently ignored.
func parsePropertiesQuery(v url.Values) (app.GetPropertiesQuery, error) {
	var (
		q   app.GetPropertiesQuery
		err error
	)
	if q.Page, err = intParam(v, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(v, "limit"); err != nil {
		return q, err
	}

	f := &q.Filters
	if f.MinPrice, err = decimalParam(v, "minPrice"); err != nil {
		return q, err
	}
	if f.MaxPrice, err = decimalParam(v, "maxPrice"); err != nil {
		return q, err
	}
	if s := v.Get("type"); s != "" {
		t, err := domain.ParsePropertyType(s)
		if err != nil {
			return q, err
		}
		f.Type = &t
	}
	if s := v.Get("status"); s != "" {
		st, err := domain.ParsePropertyStatus(s)
		if err != nil {
			return q, err
		}
		f.Status = &st
	}
	f.City = strParam(v, "city")
	f.State = strParam(v, "state")
	f.OwnerID = strParam(v, "ownerId")
	f.OrganizationID = strParam(v, "organizationId")
	if n, err := intParam(v, "minBedrooms"); err != nil {
		return q, err
	} else if v.Has("minBedrooms") {
		f.MinBedrooms = &n
	}
	if n, err := intParam(v, "minBathrooms"); err != nil {
		return q, err
	} else if v.Has("minBathrooms") {
		f.MinBathrooms = &n
	}
	if s := v.Get("amenities"); s != "" {
		for _, a := range strings.Split(s, ",") {
			if a = strings.TrimSpace(a); a != "" {
				f.Amenities = append(f.Amenities, a)
			}
		}
	}
	return q, nil
}

func strParam(v url.Values, k string) *string {
	s := strings.TrimSpace(v.Get(k))
	if s == "" {
		return nil
	}
	return &s
}

func intParam(v url.Values, k string) (int, error) {
	s := strings.TrimSpace(v.Get(k))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, domain.InvalidParam(k, "must be a non-negative integer")
	}
	return n, nil
}

func decimalParam(v url.Values, k string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(v.Get(k))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, domain.InvalidParam(k, "must be a decimal number")
	}
	return &d, nil
}
