package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVisitStatusTransitions(t *testing.T) {
	assert.True(t, VisitRequested.CanMoveTo(VisitAccepted))
	assert.True(t, VisitAccepted.CanMoveTo(VisitCompleted))
	assert.True(t, VisitRequested.CanMoveTo(VisitCompleted), "prescribing closes a request")
	assert.True(t, VisitInProgress.CanMoveTo(VisitCancelled))
	assert.False(t, VisitCompleted.CanMoveTo(VisitInProgress))
	assert.False(t, VisitCancelled.CanMoveTo(VisitRequested))
	assert.False(t, VisitRequested.CanMoveTo(VisitRequested))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPlaced.CanMoveTo(OrderAccepted))
	assert.True(t, OrderReady.CanMoveTo(OrderDelivered))
	assert.False(t, OrderPlaced.CanMoveTo(OrderDelivered))
	assert.False(t, OrderDelivered.CanMoveTo(OrderCancelled))
}

func TestDoctorJSONFlattensAccount(t *testing.T) {
	id := primitive.NewObjectID()
	d := Doctor{
		Account:        Account{ID: id, Name: "Dr. Rao", Phone: "9000000001", PasswordHash: "secret"},
		Specialization: "General Physician",
	}

	data, err := json.Marshal(d.Public())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, id.Hex(), raw["id"])
	assert.Equal(t, "Dr. Rao", raw["name"])
	assert.NotContains(t, raw, "passwordHash")
	assert.Equal(t, "secret", d.PasswordHash, "Public must not mutate the original")
}

func TestOTPExpired(t *testing.T) {
	now := time.Now()
	o := OTP{ExpiresAt: now}
	assert.True(t, o.Expired(now))
	assert.False(t, o.Expired(now.Add(-time.Second)))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAsha.Valid())
	assert.False(t, Role("admin").Valid())
}
