package observability_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estate_hub/internal/adapters/observability"
	"estate_hub/internal/domain"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample per family so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveStore("properties", "find", nil, 3*time.Millisecond)
	observability.ObserveStore("properties", "insert", errors.New("boom"), time.Millisecond)
	observability.ObserveCache("redis", "hit")
	observability.ObserveTransition(domain.StatusSold, nil)
	observability.ObserveImport(3, 1, 2)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"estate_http_requests_total",
		`estate_store_operations_total{collection="properties",op="insert",status="error"} 1`,
		"estate_cache_events_total",
		`estate_property_transitions_total{result="ok",to="sold"}`,
		`estate_import_listings_total{outcome="failed"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}

func TestLabelErr(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{errors.New("x"), "error"},
		{domain.ErrPropertyNotFound, "not_found"},
		{fmt.Errorf("insert: %w", domain.ErrSlugTaken), "rejected"},
		{domain.InvalidParam("page", "bad"), "invalid"},
		{domain.ErrUnauthorized, "forbidden"},
		{context.DeadlineExceeded, "timeout"},
	}
	for _, c := range cases {
		if got := observability.LabelErr(c.err); got != c.want {
			t.Fatalf("%v: got %q want %q", c.err, got, c.want)
		}
	}
}

func TestServeDisabled(t *testing.T) {
	if srv := observability.Serve("", observability.InitRegistry()); srv != nil {
		t.Fatalf("expected nil server for empty addr")
	}
}

func TestPush(t *testing.T) {
	var gotPath, gotMethod string
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	if err := observability.Push("", "job", observability.InitRegistry()); err != nil {
		t.Fatalf("empty url should be a no-op: %v", err)
	}
	reg := observability.InitRegistry()
	observability.ObserveImport(1, 0, 0)
	if err := observability.Push(gw.URL, "estate_importer", reg); err != nil {
		t.Fatalf("push: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/metrics/job/estate_importer" {
		t.Fatalf("unexpected push request %s %s", gotMethod, gotPath)
	}
}
