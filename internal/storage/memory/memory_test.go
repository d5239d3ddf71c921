package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate_hub/internal/domain"
	"estate_hub/internal/storage/memory"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	id, owner, org, city string
	status               domain.PropertyStatus
	price                int64
	bedrooms             int
	amenities            []string
	age                  time.Duration
}

func mustProperty(t *testing.T, f fixture) domain.Property {
	t.Helper()
	price, err := domain.NewPrice(decimal.NewFromInt(f.price), "USD")
	require.NoError(t, err)
	addr, err := domain.NewAddress(domain.AddressParams{
		Street: "1 Main St", City: f.city, State: "CA", Country: "US", PostalCode: "90001",
	})
	require.NoError(t, err)
	feats, err := domain.NewPropertyFeatures(domain.FeaturesParams{
		Bedrooms: f.bedrooms, Bathrooms: 1, SquareMeters: 80, Amenities: f.amenities,
	})
	require.NoError(t, err)
	p, err := domain.RestoreProperty(domain.PropertySnapshot{
		ID: f.id,
		PropertyParams: domain.PropertyParams{
			Title: "Listing " + f.id, Description: "desc", Price: price,
			Type: domain.PropertyTypeApartment, Address: addr, Features: feats,
			Images: []string{"https://img/" + f.id}, OwnerID: f.owner, OrganizationID: f.org,
		},
		Status:    f.status,
		CreatedAt: base.Add(-f.age),
		UpdatedAt: base.Add(-f.age),
	})
	require.NoError(t, err)
	return p
}

func seed(t *testing.T, r *memory.PropertyRepo) {
	t.Helper()
	ctx := context.Background()
	fixtures := []fixture{
		{id: "p1", owner: "u1", org: "o1", city: "Austin", status: domain.StatusPublished, price: 100, bedrooms: 2, amenities: []string{"pool"}, age: 5 * time.Hour},
		{id: "p2", owner: "u1", org: "o1", city: "austin", status: domain.StatusDraft, price: 200, bedrooms: 3, age: 4 * time.Hour},
		{id: "p3", owner: "u2", org: "o2", city: "Boston", status: domain.StatusPublished, price: 300, bedrooms: 4, amenities: []string{"gym", "garden"}, age: 3 * time.Hour},
		{id: "p4", owner: "u2", org: "o2", city: "Boston", status: domain.StatusSold, price: 400, bedrooms: 1, age: 2 * time.Hour},
		{id: "p5", owner: "u3", org: "o3", city: "AUSTIN", status: domain.StatusPublished, price: 500, bedrooms: 5, amenities: []string{"Pool"}, age: time.Hour},
	}
	for _, f := range fixtures {
		require.NoError(t, r.Save(ctx, mustProperty(t, f)))
	}
}

func ids(ps []domain.Property) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID())
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestPropertyRepo_FindAllFilters(t *testing.T) {
	ctx := context.Background()
	r := memory.NewPropertyRepo()
	seed(t, r)

	cases := []struct {
		name string
		f    domain.PropertyFilters
		want []string
	}{
		{"default is published only, newest first", domain.PropertyFilters{}, []string{"p5", "p3", "p1"}},
		{"status filter ignored when unscoped", domain.PropertyFilters{Status: ptr(domain.StatusDraft)}, []string{"p5", "p3", "p1"}},
		{"owner scope lifts default", domain.PropertyFilters{OwnerID: ptr("u1")}, []string{"p2", "p1"}},
		{"owner scope with status", domain.PropertyFilters{OwnerID: ptr("u1"), Status: ptr(domain.StatusDraft)}, []string{"p2"}},
		{"organization scope", domain.PropertyFilters{OrganizationID: ptr("o2")}, []string{"p4", "p3"}},
		{"city case-insensitive", domain.PropertyFilters{City: ptr("austin")}, []string{"p5", "p1"}},
		{"price range", domain.PropertyFilters{MinPrice: ptr(decimal.NewFromInt(150)), MaxPrice: ptr(decimal.NewFromInt(500))}, []string{"p5", "p3"}},
		{"min bedrooms", domain.PropertyFilters{MinBedrooms: ptr(4)}, []string{"p5", "p3"}},
		{"amenities intersect", domain.PropertyFilters{Amenities: []string{"pool", "sauna"}}, []string{"p5", "p1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.FindAll(ctx, tc.f, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))

			n, err := r.Count(ctx, tc.f)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), n)
		})
	}
}

func TestPropertyRepo_Pagination(t *testing.T) {
	ctx := context.Background()
	r := memory.NewPropertyRepo()
	for i := 0; i < 25; i++ {
		require.NoError(t, r.Save(ctx, mustProperty(t, fixture{
			id: fmt.Sprintf("p%02d", i), owner: "u", org: "o", city: "Austin",
			status: domain.StatusPublished, price: 100, bedrooms: 1, age: time.Duration(i) * time.Minute,
		})))
	}
	page2, err := r.FindAll(ctx, domain.PropertyFilters{}, 10, 10)
	require.NoError(t, err)
	assert.Len(t, page2, 10)
	assert.Equal(t, "p10", page2[0].ID())

	tail, err := r.FindAll(ctx, domain.PropertyFilters{}, 10, 20)
	require.NoError(t, err)
	assert.Len(t, tail, 5)

	past, err := r.FindAll(ctx, domain.PropertyFilters{}, 10, 30)
	require.NoError(t, err)
	assert.Empty(t, past)

	_, err = r.FindAll(ctx, domain.PropertyFilters{}, 10, -10)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPropertyRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	r := memory.NewPropertyRepo()
	p := mustProperty(t, fixture{id: "p1", owner: "u1", org: "o1", city: "Austin", status: domain.StatusDraft, price: 1, bedrooms: 1})

	require.NoError(t, r.Save(ctx, p))
	assert.Error(t, r.Save(ctx, p), "duplicate id")

	published, err := p.Publish()
	require.NoError(t, err)
	require.NoError(t, r.Update(ctx, published))

	got, err := r.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status())

	mine, err := r.FindByOwnerID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, r.Delete(ctx, "p1"))
	_, err = r.FindByID(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, published), domain.ErrPropertyNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "p1"), domain.ErrPropertyNotFound)
}

func TestOrganizationRepo(t *testing.T) {
	ctx := context.Background()
	r := memory.NewOrganizationRepo()

	a, err := domain.NewOrganization("Acme", "acme", "", "u1")
	require.NoError(t, err)
	require.NoError(t, r.Save(ctx, a))

	ok, err := r.IsSlugAvailable(ctx, "acme")
	require.NoError(t, err)
	assert.False(t, ok)

	dup, err := domain.NewOrganization("Acme 2", "acme", "", "u2")
	require.NoError(t, err)
	assert.ErrorIs(t, r.Save(ctx, dup), domain.ErrSlugTaken)

	got, err := r.FindBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, a.ID(), got.ID())

	suspended := a.Suspend()
	require.NoError(t, r.Update(ctx, suspended))
	got, err = r.FindByID(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.OrgSuspended, got.Status())

	owned, err := r.FindByOwnerID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	require.NoError(t, r.Delete(ctx, a.ID()))
	ok, err = r.IsSlugAvailable(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = r.FindByID(ctx, a.ID())
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
}
