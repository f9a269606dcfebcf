package storage

import (
	"context"
	"testing"

	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientCRUD(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	asha := mustAsha(t, s)
	owner := sessionOf(models.RoleAsha, asha)

	p := mustPatient(t, s, owner, "Baldev Singh")
	assert.Equal(t, models.RoleAsha, p.OwnerRole)
	assert.Equal(t, asha.ID.Hex(), p.OwnerID)

	name, age := "Baldev S.", 41
	updated, err := s.UpdatePatient(ctx, p.ID.Hex(), PatientUpdate{Name: &name, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, "Baldev S.", updated.Name)
	assert.Equal(t, 41, updated.Age)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	bad := -1
	_, err = s.UpdatePatient(ctx, p.ID.Hex(), PatientUpdate{Age: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, s.DeletePatient(ctx, p.ID.Hex()))
	_, err = s.GetPatient(ctx, p.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeletePatient(ctx, p.ID.Hex()), ErrNotFound)
}

func TestListPatientsByOwnerAndSearch(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	asha := sessionOf(models.RoleAsha, mustAsha(t, s))
	other := models.Session{Role: models.RoleUser, ID: "someone-else"}

	mustPatient(t, s, asha, "Kamla")
	second := mustPatient(t, s, asha, "Ramesh")
	mustPatient(t, s, other, "Kamlesh")

	owned, err := s.ListPatientsByOwner(ctx, models.RoleAsha, asha.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, second.ID, owned[0].ID, "newest first")

	none, err := s.ListPatientsByOwner(ctx, models.RoleDoctor, asha.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	found, err := s.SearchPatients(ctx, "KAML")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	all, err := s.SearchPatients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHealthRecords(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	asha := sessionOf(models.RoleAsha, mustAsha(t, s))
	p := mustPatient(t, s, asha, "Kamla")

	err := s.AddHealthRecord(ctx, asha, &models.HealthRecord{PatientID: p.ID.Hex(), Kind: models.RecordVitals})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, s.AddHealthRecord(ctx, asha, &models.HealthRecord{
		PatientID: p.ID.Hex(),
		Kind:      models.RecordVitals,
		Vitals:    &models.Vitals{BloodPressure: "130/85", Pulse: 78},
	}))
	require.NoError(t, s.AddHealthRecord(ctx, asha, &models.HealthRecord{PatientID: p.ID.Hex(), Title: "Follow-up"}))

	records, err := s.ListHealthRecords(ctx, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.RecordNote, records[0].Kind)
	assert.Equal(t, "130/85", records[1].Vitals.BloodPressure)
	assert.Equal(t, asha.ID, records[1].RecordedByID)

	none, err := s.ListHealthRecords(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
