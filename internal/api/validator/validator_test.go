package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequestValidation(t *testing.T) {
	v := NewValidator()
	require.NotNil(t, v)

	valid := RegisterRequest{
		Email:    "sub@example.com",
		Password: "long-enough",
		Role:     "SUBSCRIBER",
		PlanTier: "SUBSCRIBER_PLUS",
	}
	assert.NoError(t, v.Validate(&valid))

	// Analysts must name their tenant up front.
	analyst := RegisterRequest{
		Email:    "analyst@example.com",
		Password: "long-enough",
		Role:     "ANALYST",
	}
	assert.Error(t, v.Validate(&analyst))

	analyst.TenantName = "Sahel Watch"
	assert.NoError(t, v.Validate(&analyst))

	badRole := valid
	badRole.Role = "ADMIN"
	assert.Error(t, v.Validate(&badRole))

	badTier := valid
	badTier.PlanTier = "GOLD"
	assert.Error(t, v.Validate(&badTier))

	shortPassword := valid
	shortPassword.Password = "short"
	assert.Error(t, v.Validate(&shortPassword))
}

func TestContentItemRequestValidation(t *testing.T) {
	v := NewValidator()

	valid := ContentItemRequest{
		LayerKey:    "field_reports",
		CountryISO3: "LBY",
		Title:       "Checkpoint changes on the coastal road",
		Summary:     "Summary text",
		Visibility:  "PAID",
	}
	assert.NoError(t, v.Validate(&valid))

	badISO := valid
	badISO.CountryISO3 = "lby"
	assert.Error(t, v.Validate(&badISO))

	badISO.CountryISO3 = "LBYA"
	assert.Error(t, v.Validate(&badISO))

	badLayer := valid
	badLayer.LayerKey = "Field Reports"
	assert.Error(t, v.Validate(&badLayer))

	badVisibility := valid
	badVisibility.Visibility = "PREMIUM"
	assert.Error(t, v.Validate(&badVisibility))
}

func TestMapEventRequestValidation(t *testing.T) {
	v := NewValidator()

	valid := MapEventRequest{
		LayerKey:    "incidents",
		CountryISO3: "TCD",
		Kind:        "POINT",
		Title:       "Road closure",
		Visibility:  "FREE",
		Geometry:    map[string]interface{}{"type": "Point", "coordinates": []float64{18.7, 15.4}},
	}
	assert.NoError(t, v.Validate(&valid))

	badKind := valid
	badKind.Kind = "POLYGON"
	assert.Error(t, v.Validate(&badKind))

	noGeometry := valid
	noGeometry.Geometry = nil
	assert.Error(t, v.Validate(&noGeometry))
}

func TestDecideRequestValidation(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&DecideRequest{Action: "APPROVE"}))
	assert.NoError(t, v.Validate(&DecideRequest{Action: "REJECT"}))
	assert.Error(t, v.Validate(&DecideRequest{Action: "MAYBE"}))
	assert.Error(t, v.Validate(&DecideRequest{}))
}
