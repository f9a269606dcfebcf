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
	"go.uber.org/zap"
)

type CreatePrescriptionInput struct {
	VisitID string                    `json:"visitId" binding:"required"`
	Items   []models.PrescriptionItem `json:"items"`
	Advice  string                    `json:"advice"`
}

// CreatePrescription writes a prescription for a visit the doctor owns and
// closes the visit. Both collections are written under one lock, but not atomically.
func (s *Service) CreatePrescription(ctx context.Context, doctorID string, in CreatePrescriptionInput) (*models.Prescription, error) {
	visitOID, err := parseID(in.VisitID)
	if err != nil {
		return nil, err
	}
	items := lo.Filter(in.Items, func(it models.PrescriptionItem, _ int) bool {
		return strings.TrimSpace(it.Medicine) != ""
	})
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one medicine is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	visits, err := load[models.Visit](ctx, s.store, kv.Visits)
	if err != nil {
		return nil, err
	}
	_, idx, ok := lo.FindIndexOf(visits, func(v models.Visit) bool { return v.ID == visitOID })
	if !ok {
		return nil, fmt.Errorf("prescription visit: %w", ErrNotFound)
	}
	visit := &visits[idx]
	if visit.DoctorID != doctorID {
		return nil, ErrNotOwner
	}
	closes := visit.Status != models.VisitCompleted
	if closes && !visit.Status.CanMoveTo(models.VisitCompleted) {
		return nil, fmt.Errorf("%w: visit is %s", ErrInvalidTransition, visit.Status)
	}

	prescriptions, err := load[models.Prescription](ctx, s.store, kv.Prescriptions)
	if err != nil {
		return nil, err
	}
	rx := models.Prescription{
		ID:          primitive.NewObjectID(),
		VisitID:     visit.ID.Hex(),
		PatientID:   visit.PatientID,
		PatientName: visit.PatientName,
		DoctorID:    visit.DoctorID,
		DoctorName:  visit.DoctorName,
		Items:       items,
		Advice:      strings.TrimSpace(in.Advice),
		CreatedAt:   s.now(),
	}
	if err := save(ctx, s.store, kv.Prescriptions, append(prescriptions, rx)); err != nil {
		return nil, err
	}

	if closes {
		visit.Status = models.VisitCompleted
		visit.UpdatedAt = rx.CreatedAt
		if err := save(ctx, s.store, kv.Visits, visits); err != nil {
			s.logger.Warn("prescription saved but visit not closed", zap.String("visit_id", in.VisitID), zap.Error(err))
			return nil, err
		}
	}
	return &rx, nil
}

func (s *Service) GetPrescription(ctx context.Context, id string) (*models.Prescription, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	all, err := load[models.Prescription](ctx, s.store, kv.Prescriptions)
	if err != nil {
		return nil, err
	}
	rx, ok := lo.Find(all, func(p models.Prescription) bool { return p.ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	return &rx, nil
}

func (s *Service) listPrescriptions(ctx context.Context, keep func(models.Prescription) bool) ([]models.Prescription, error) {
	all, err := load[models.Prescription](ctx, s.store, kv.Prescriptions)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(all, func(p models.Prescription, _ int) bool { return keep(p) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) ListPrescriptionsByPatient(ctx context.Context, patientID string) ([]models.Prescription, error) {
	return s.listPrescriptions(ctx, func(p models.Prescription) bool { return p.PatientID == patientID })
}

func (s *Service) ListPrescriptionsByDoctor(ctx context.Context, doctorID string) ([]models.Prescription, error) {
	return s.listPrescriptions(ctx, func(p models.Prescription) bool { return p.DoctorID == doctorID })
}
