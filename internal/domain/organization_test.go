package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate_hub/internal/domain"
)

func TestNewOrganization(t *testing.T) {
	o, err := domain.NewOrganization(" Acme Realty ", "acme-realty", "", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Acme Realty", o.Name())
	assert.Equal(t, domain.OrgActive, o.Status())
	assert.Equal(t, domain.PlanFree, o.Plan())
	assert.Equal(t, 5, o.MaxPropertiesLimit())
	assert.True(t, o.CanCreateProperties())
	assert.True(t, o.Settings().IsPublic)
	assert.True(t, o.IsOwnedBy("user-1"))
	assert.False(t, o.IsOwnedBy("user-2"))

	_, err = domain.NewOrganization("", "acme", "", "user-1")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = domain.NewOrganization("Acme", "acme", "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateSlug(t *testing.T) {
	for _, ok := range []string{"abc", "acme-realty", "org-a1b2c3", "a1-b2-c3"} {
		assert.NoError(t, domain.ValidateSlug(ok), ok)
	}
	for _, bad := range []string{"ab", "Acme", "acme_realty", "-acme", "acme-", "acme--realty", "has space",
		"a123456789012345678901234567890123456789012345678901"} {
		assert.ErrorIs(t, domain.ValidateSlug(bad), domain.ErrValidation, bad)
	}
}

func TestPlanLimits(t *testing.T) {
	cases := []struct {
		plan    domain.Plan
		limit   int
		current int64
		reached bool
	}{
		{domain.PlanFree, 5, 4, false},
		{domain.PlanFree, 5, 5, true},
		{domain.PlanBasic, 50, 50, true},
		{domain.PlanPremium, 200, 199, false},
		{domain.PlanEnterprise, domain.UnlimitedProperties, 1_000_000, false},
	}
	o, err := domain.NewOrganization("Acme", "acme", "", "user-1")
	require.NoError(t, err)
	for _, c := range cases {
		p, err := o.ChangePlan(c.plan)
		require.NoError(t, err)
		assert.Equal(t, c.limit, p.MaxPropertiesLimit(), c.plan)
		assert.Equal(t, c.reached, p.HasReachedPropertyLimit(c.current), c.plan)
	}

	_, err = o.ChangePlan("gold")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = domain.ParsePlan("gold")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrganizationTransitionsAreImmutable(t *testing.T) {
	o, err := domain.NewOrganization("Acme", "acme", "old", "user-1")
	require.NoError(t, err)

	s := o.Suspend()
	assert.Equal(t, domain.OrgSuspended, s.Status())
	assert.False(t, s.CanCreateProperties())
	assert.Equal(t, domain.OrgActive, o.Status())
	assert.True(t, s.Activate().IsActive())

	u, err := o.UpdateDetails("Acme Homes", " new ")
	require.NoError(t, err)
	assert.Equal(t, "Acme Homes", u.Name())
	assert.Equal(t, "new", u.Description())
	assert.Equal(t, "Acme", o.Name())
	assert.Equal(t, o.Slug(), u.Slug())

	_, err = o.UpdateDetails(" ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	settings := o.Settings()
	settings.Branding = &domain.Branding{PrimaryColor: "#fff"}
	w := o.UpdateSettings(settings)
	settings.Branding.PrimaryColor = "#000"
	assert.Equal(t, "#fff", w.Settings().Branding.PrimaryColor)
	assert.Nil(t, o.Settings().Branding)
}

func TestRestoreOrganization(t *testing.T) {
	o, err := domain.RestoreOrganization(domain.OrganizationSnapshot{
		ID: "o-1", Name: "Acme", Slug: "acme", OwnerID: "u", Status: domain.OrgInactive, Plan: domain.PlanBasic,
	})
	require.NoError(t, err)
	assert.False(t, o.CanCreateProperties())

	_, err = domain.RestoreOrganization(domain.OrganizationSnapshot{
		ID: "o-1", Name: "Acme", Slug: "acme", OwnerID: "u", Status: "closed", Plan: domain.PlanBasic,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
