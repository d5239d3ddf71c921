package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "estate_hub/internal/adapters/http_server"
	"estate_hub/internal/app"
	"estate_hub/internal/storage/memory"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	orgs := app.NewOrganizationService(memory.NewOrganizationRepo())
	props := app.NewPropertyService(memory.NewPropertyRepo(), orgs, nil, time.Minute)
	srv := server.New(server.Options{})
	srv.MountHandlers(server.NewHandlers(props, orgs))
	return srv.Mux()
}

// call runs one request; user is sent through the development identity
// headers and left out when empty.
func call(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
		req.Header.Set("X-User-Email", user+"@example.com")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const propertyBody = `{
	"title": "Garden house",
	"description": "Quiet street",
	"price": "320000",
	"currency": "EUR",
	"propertyType": "house",
	"address": {"street": "Calle Mayor 1", "city": "Madrid", "state": "MD", "country": "ES", "postalCode": "28013", "displayPrivacy": true},
	"features": {"bedrooms": 3, "bathrooms": 2, "squareMeters": 140, "amenities": ["garden"]},
	"images": ["https://img.example.com/h.jpg"]
}`

func createProperty(t *testing.T, h http.Handler, user string) string {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/v1/properties", user, propertyBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "/v1/properties/"+id, rec.Header().Get("Location"))
	return id
}

func TestHealthz(t *testing.T) {
	rec := call(t, newTestServer(t), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCreateProperty_Statuses(t *testing.T) {
	h := newTestServer(t)

	rec := call(t, h, http.MethodPost, "/v1/properties", "", propertyBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = call(t, h, http.MethodPost, "/v1/properties", "alice", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/v1/properties", "alice", `{"title":"x","unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := strings.Replace(propertyBody, `"EUR"`, `"EURO"`, 1)
	rec = call(t, h, http.MethodPost, "/v1/properties", "alice", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields, _ := decodeMap(t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "CreatePropertyDTO.Currency")

	neg := strings.Replace(propertyBody, `"320000"`, `"-1"`, 1)
	rec = call(t, h, http.MethodPost, "/v1/properties", "alice", neg)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	createProperty(t, h, "alice")
}

func TestGetProperty_VisibilityAndETag(t *testing.T) {
	h := newTestServer(t)
	id := createProperty(t, h, "alice")

	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/v1/properties/"+id, "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/v1/properties/"+id, "bob", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/v1/properties/missing", "alice", "").Code)

	own := call(t, h, http.MethodGet, "/v1/properties/"+id, "alice", "")
	require.Equal(t, http.StatusOK, own.Code)
	addr := decodeMap(t, own)["address"].(map[string]any)
	assert.Equal(t, "Calle Mayor 1", addr["street"])

	require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/v1/properties/"+id+"/publish", "alice", "").Code)

	pub := call(t, h, http.MethodGet, "/v1/properties/"+id, "", "")
	require.Equal(t, http.StatusOK, pub.Code)
	addr = decodeMap(t, pub)["address"].(map[string]any)
	assert.NotContains(t, addr, "street", "street is hidden from the public")
	assert.Equal(t, "Madrid", addr["city"])

	etag := pub.Header().Get("ETag")
	require.NotEmpty(t, etag)
	req := httptest.NewRequest(http.MethodGet, "/v1/properties/"+id, nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestPropertyTransitions_ErrorMapping(t *testing.T) {
	h := newTestServer(t)
	id := createProperty(t, h, "alice")
	base := "/v1/properties/" + id

	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodPost, base+"/publish", "", "").Code)
	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPost, base+"/publish", "bob", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodPost, "/v1/properties/nope/publish", "alice", "").Code)
	assert.Equal(t, http.StatusConflict, call(t, h, http.MethodPost, base+"/rented", "alice", "").Code)

	rec := call(t, h, http.MethodPost, base+"/publish", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "published", decodeMap(t, rec)["status"])

	rec = call(t, h, http.MethodPost, base+"/publish", "alice", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict", decodeMap(t, rec)["title"])

	rec = call(t, h, http.MethodPost, base+"/rented", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rented", decodeMap(t, rec)["status"])
}

func TestPropertyImages(t *testing.T) {
	h := newTestServer(t)
	id := createProperty(t, h, "alice")
	base := "/v1/properties/" + id + "/images"

	rec := call(t, h, http.MethodPost, base, "alice", `{"url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, base, "alice", `{"url":"https://img.example.com/2.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeMap(t, rec)["images"], 2)

	rec = call(t, h, http.MethodPost, base, "alice", `{"url":"https://img.example.com/2.jpg"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodDelete, base, "alice", "").Code)
	rec = call(t, h, http.MethodDelete, base+"?url=https://img.example.com/h.jpg", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, h, http.MethodDelete, base+"?url=https://img.example.com/2.jpg", "alice", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateAndDeleteProperty(t *testing.T) {
	h := newTestServer(t)
	id := createProperty(t, h, "alice")
	base := "/v1/properties/" + id

	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPatch, base, "bob", `{"title":"Mine now"}`).Code)

	rec := call(t, h, http.MethodPatch, base, "alice", `{"title":"Garden house, renovated","price":"350000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Garden house, renovated", body["title"])
	assert.Equal(t, "350000", body["price"].(map[string]any)["amount"])
	assert.Equal(t, "EUR", body["price"].(map[string]any)["currency"])

	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPatch, base, "alice", `{"propertyType":"castle"}`).Code)

	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodDelete, base, "bob", "").Code)
	assert.Equal(t, http.StatusNoContent, call(t, h, http.MethodDelete, base, "alice", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, base, "alice", "").Code)
}

func TestListProperties(t *testing.T) {
	h := newTestServer(t)
	for i := 0; i < 3; i++ {
		id := createProperty(t, h, "alice")
		if i < 2 {
			require.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/v1/properties/"+id+"/publish", "alice", "").Code)
		}
	}

	rec := call(t, h, http.MethodGet, "/v1/properties?limit=1&page=2&city=madrid&amenities=Garden", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Len(t, body["properties"], 1)

	rec = call(t, h, http.MethodGet, "/v1/properties?ownerId=alice", "alice", "")
	assert.EqualValues(t, 3, decodeMap(t, rec)["total"], "owner sees own drafts")
	rec = call(t, h, http.MethodGet, "/v1/properties?ownerId=alice", "bob", "")
	assert.EqualValues(t, 2, decodeMap(t, rec)["total"], "others only see published")

	rec = call(t, h, http.MethodGet, "/v1/properties?type=villa", "", "")
	assert.EqualValues(t, 0, decodeMap(t, rec)["total"])

	for _, q := range []string{"page=-1", "page=9223372036854775807", "limit=abc", "minPrice=cheap", "type=castle", "status=gone", "minBedrooms=x"} {
		assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodGet, "/v1/properties?"+q, "", "").Code, q)
	}

	rec = call(t, h, http.MethodGet, "/v1/me/properties", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 3)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/v1/me/properties", "", "").Code)
}

func TestOrganizationRoutes(t *testing.T) {
	h := newTestServer(t)

	rec := call(t, h, http.MethodPost, "/v1/organizations", "alice", `{"name":"Acme","slug":"acme-homes"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	org := decodeMap(t, rec)
	id := org["id"].(string)
	assert.Equal(t, "free", org["plan"])
	assert.EqualValues(t, 5, org["maxProperties"])

	rec = call(t, h, http.MethodPost, "/v1/organizations", "bob", `{"name":"Squat","slug":"org-alice-123abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "default slug prefix is reserved")

	rec = call(t, h, http.MethodPost, "/v1/organizations", "bob", `{"name":"Copy","slug":"acme-homes"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodGet, "/v1/organizations/slug-availability?slug=ACME-HOMES", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"slug": "acme-homes", "available": false}, decodeMap(t, rec))
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodGet, "/v1/organizations/slug-availability", "", "").Code)

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/v1/organizations/by-slug/acme-homes", "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/v1/organizations/by-slug/nobody", "", "").Code)

	assert.Equal(t, http.StatusForbidden, call(t, h, http.MethodPut, "/v1/organizations/"+id+"/plan", "bob", `{"plan":"basic"}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(t, h, http.MethodPut, "/v1/organizations/"+id+"/plan", "alice", `{"plan":"gold"}`).Code)
	rec = call(t, h, http.MethodPut, "/v1/organizations/"+id+"/plan", "alice", `{"plan":"basic"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 50, decodeMap(t, rec)["maxProperties"])

	rec = call(t, h, http.MethodPost, "/v1/organizations/"+id+"/suspend", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "suspended", decodeMap(t, rec)["status"])

	// properties cannot be filed into a suspended organization
	body := strings.Replace(propertyBody, `"title"`, `"organizationId": "`+id+`", "title"`, 1)
	assert.Equal(t, http.StatusConflict, call(t, h, http.MethodPost, "/v1/properties", "alice", body).Code)

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodPost, "/v1/organizations/"+id+"/activate", "alice", "").Code)
	assert.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/v1/properties", "alice", body).Code)

	rec = call(t, h, http.MethodGet, "/v1/me/organizations", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	assert.Equal(t, http.StatusNoContent, call(t, h, http.MethodDelete, "/v1/organizations/"+id, "alice", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/v1/organizations/"+id, "", "").Code)
}

func TestMyDefaultOrganization(t *testing.T) {
	h := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/v1/me/organization", "", "").Code)

	first := decodeMap(t, call(t, h, http.MethodGet, "/v1/me/organization", "carol", ""))
	second := decodeMap(t, call(t, h, http.MethodGet, "/v1/me/organization", "carol", ""))
	assert.Equal(t, first["id"], second["id"])
	assert.Equal(t, "carol's Organization", first["name"])
}

func TestRateLimit(t *testing.T) {
	orgs := app.NewOrganizationService(memory.NewOrganizationRepo())
	props := app.NewPropertyService(memory.NewPropertyRepo(), orgs, nil, time.Minute)
	srv := server.New(server.Options{RateLimiter: server.NewRateLimiter(0.001, 2)})
	srv.MountHandlers(server.NewHandlers(props, orgs))
	h := srv.Mux()

	get := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	assert.Equal(t, http.StatusOK, get("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get("10.0.0.1").Code)
	rec := get("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, get("10.0.0.2").Code, "buckets are per client")
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := server.NewRateLimiter(1, 1)
	now := time.Now()
	assert.True(t, rl.Allow("a", now))
	assert.False(t, rl.Allow("a", now))
	assert.True(t, rl.Allow("a", now.Add(1100*time.Millisecond)))
}
