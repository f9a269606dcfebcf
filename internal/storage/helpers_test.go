package storage

import (
	"context"
	"testing"
	"time"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/stretchr/testify/require"
)

// newTestService returns a service whose clock advances one second per call.
func newTestService(t *testing.T) *Service {
	t.Helper()
	s := New(kv.NewMemoryStore(), nil)
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})
	return s
}

func mustDoctor(t *testing.T, s *Service, name, phone string) *models.Doctor {
	t.Helper()
	d := &models.Doctor{Account: models.Account{Name: name, Phone: phone}, Available: true}
	require.NoError(t, s.CreateDoctor(context.Background(), d))
	return d
}

func mustAsha(t *testing.T, s *Service) *models.Asha {
	t.Helper()
	a := &models.Asha{Account: models.Account{Name: "Sunita Devi", Phone: "9000000100"}, Village: "Bhadson"}
	require.NoError(t, s.CreateAsha(context.Background(), a))
	return a
}

func mustPatient(t *testing.T, s *Service, owner models.Session, name string) *models.Patient {
	t.Helper()
	p := &models.Patient{Name: name, Age: 40, Village: "Bhadson", Phone: "9000000200"}
	require.NoError(t, s.CreatePatient(context.Background(), owner, p))
	return p
}

func mustPharmacy(t *testing.T, s *Service, phone string) *models.Pharmacy {
	t.Helper()
	p := &models.Pharmacy{Account: models.Account{Name: "Sehat Medicos", Phone: phone}}
	require.NoError(t, s.CreatePharmacy(context.Background(), p))
	return p
}

func mustMedicine(t *testing.T, s *Service, pharmacyID, name string, price float64, stock int) *models.Medicine {
	t.Helper()
	m := &models.Medicine{Name: name, Price: price, Stock: stock}
	require.NoError(t, s.AddMedicine(context.Background(), pharmacyID, m))
	return m
}

func sessionOf(role models.Role, p models.Profile) models.Session {
	b := p.Base()
	return models.Session{Role: role, ID: b.ID.Hex(), Name: b.Name}
}
