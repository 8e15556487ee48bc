package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

func TestPublicProjectionOmitsPasswordHash(t *testing.T) {
	lastLogin := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	user := models.User{
		UID:          "user-uid-1",
		Name:         "Ann",
		Email:        "a@x.com",
		PhoneNumber:  "79990001122",
		PasswordHash: "secret-hash",
		Role:         models.RoleConsumer,
		CreatedAt:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		LastLoginAt:  &lastLogin,
	}

	raw, err := json.Marshal(user.Public())
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret-hash")

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "user-uid-1", got["id"])
	assert.Equal(t, "a@x.com", got["email"])
	assert.Equal(t, "79990001122", got["phoneNumber"])
}

func TestPublicProjectionOmitsEmptyBusinessFields(t *testing.T) {
	user := models.User{
		UID:  "user-uid-1",
		Role: models.RoleConsumer,
	}

	raw, err := json.Marshal(user.Public())
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "businessName")
	assert.NotContains(t, string(raw), "location")
	assert.NotContains(t, string(raw), "lastLoginAt")
}

func TestPublicProjectionKeepsBusinessFields(t *testing.T) {
	user := models.User{
		UID:             "user-uid-2",
		Role:            models.RoleBusiness,
		BusinessName:    "Bob's Shop",
		BusinessAddress: "Main st. 1",
		Location:        &models.Location{Latitude: 55.75, Longitude: 37.61},
	}

	public := user.Public()
	assert.Equal(t, "Bob's Shop", public.BusinessName)
	assert.Equal(t, "Main st. 1", public.BusinessAddress)
	require.NotNil(t, public.Location)
	assert.Equal(t, 55.75, public.Location.Latitude)
}
