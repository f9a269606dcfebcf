package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatientUpdate carries the editable patient fields; nil means unchanged.
type PatientUpdate struct {
	Name           *string `json:"name,omitempty"`
	Age            *int    `json:"age,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Village        *string `json:"village,omitempty"`
	BloodGroup     *string `json:"bloodGroup,omitempty"`
	Allergies      *string `json:"allergies,omitempty"`
	MedicalHistory *string `json:"medicalHistory,omitempty"`
}

func (u PatientUpdate) apply(p *models.Patient) {
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Phone != nil {
		p.Phone = NormalizePhone(*u.Phone)
	}
	if u.Village != nil {
		p.Village = *u.Village
	}
	if u.BloodGroup != nil {
		p.BloodGroup = *u.BloodGroup
	}
	if u.Allergies != nil {
		p.Allergies = *u.Allergies
	}
	if u.MedicalHistory != nil {
		p.MedicalHistory = *u.MedicalHistory
	}
}

// CreatePatient stores p owned by owner. Owner is whoever registered the patient.
func (s *Service) CreatePatient(ctx context.Context, owner models.Session, p *models.Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: patient name is required", ErrInvalidInput)
	}
	if p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("%w: age out of range", ErrInvalidInput)
	}
	p.Phone = NormalizePhone(p.Phone)
	p.OwnerRole = owner.Role
	p.OwnerID = owner.ID

	return mutate(ctx, s, kv.Patients, func(items []models.Patient) ([]models.Patient, error) {
		p.ID = primitive.NewObjectID()
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
		return append(items, *p), nil
	})
}

func (s *Service) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	patients, err := load[models.Patient](ctx, s.store, kv.Patients)
	if err != nil {
		return nil, err
	}
	p, ok := lo.Find(patients, func(p models.Patient) bool { return p.ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id string, upd PatientUpdate) (*models.Patient, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if upd.Age != nil && (*upd.Age < 0 || *upd.Age > 150) {
		return nil, fmt.Errorf("%w: age out of range", ErrInvalidInput)
	}
	var updated models.Patient
	err = mutate(ctx, s, kv.Patients, func(items []models.Patient) ([]models.Patient, error) {
		_, idx, ok := lo.FindIndexOf(items, func(p models.Patient) bool { return p.ID == oid })
		if !ok {
			return nil, ErrNotFound
		}
		upd.apply(&items[idx])
		items[idx].UpdatedAt = s.now()
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePatient removes the patient only. Visits, records and orders that
// reference the id are left in place.
func (s *Service) DeletePatient(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return mutate(ctx, s, kv.Patients, func(items []models.Patient) ([]models.Patient, error) {
		kept := lo.Reject(items, func(p models.Patient, _ int) bool { return p.ID == oid })
		if len(kept) == len(items) {
			return nil, ErrNotFound
		}
		return kept, nil
	})
}

// ListPatientsByOwner returns the patients registered by one account, newest first.
func (s *Service) ListPatientsByOwner(ctx context.Context, role models.Role, ownerID string) ([]models.Patient, error) {
	patients, err := load[models.Patient](ctx, s.store, kv.Patients)
	if err != nil {
		return nil, err
	}
	owned := lo.Filter(patients, func(p models.Patient, _ int) bool {
		return p.OwnerRole == role && p.OwnerID == ownerID
	})
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return owned, nil
}

// SearchPatients matches query case-insensitively against name, phone and village.
// An empty query returns every patient.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]models.Patient, error) {
	patients, err := load[models.Patient](ctx, s.store, kv.Patients)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return patients, nil
	}
	return lo.Filter(patients, func(p models.Patient, _ int) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(p.Phone, q) ||
			strings.Contains(strings.ToLower(p.Village), q)
	}), nil
}

func (s *Service) AddHealthRecord(ctx context.Context, by models.Session, rec *models.HealthRecord) error {
	if _, err := parseID(rec.PatientID); err != nil {
		return err
	}
	switch rec.Kind {
	case models.RecordVitals:
		if rec.Vitals == nil {
			return fmt.Errorf("%w: vitals record needs readings", ErrInvalidInput)
		}
	case models.RecordNote, models.RecordLab:
	case "":
		rec.Kind = models.RecordNote
	default:
		return fmt.Errorf("%w: unknown record kind %q", ErrInvalidInput, rec.Kind)
	}
	rec.RecordedByRole = by.Role
	rec.RecordedByID = by.ID

	return mutate(ctx, s, kv.HealthRecords, func(items []models.HealthRecord) ([]models.HealthRecord, error) {
		rec.ID = primitive.NewObjectID()
		rec.CreatedAt = s.now()
		return append(items, *rec), nil
	})
}

// ListHealthRecords returns a patient's records newest first.
func (s *Service) ListHealthRecords(ctx context.Context, patientID string) ([]models.HealthRecord, error) {
	records, err := load[models.HealthRecord](ctx, s.store, kv.HealthRecords)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(records, func(r models.HealthRecord, _ int) bool { return r.PatientID == patientID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
