package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CreateVisitInput struct {
	PatientID   string     `json:"patientId" binding:"required"`
	DoctorID    string     `json:"doctorId" binding:"required"`
	Symptoms    string     `json:"symptoms"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

func newRoomID() string {
	return "esannidhi-" + uuid.NewString()
}

// CreateVisit books a consultation. Patient and doctor must exist so their
// names can be copied onto the visit; the copies are not kept in sync later.
func (s *Service) CreateVisit(ctx context.Context, by models.Session, in CreateVisitInput) (*models.Visit, error) {
	patient, err := s.GetPatient(ctx, in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("visit patient: %w", err)
	}
	doctor, err := s.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("visit doctor: %w", err)
	}

	var visit models.Visit
	err = mutate(ctx, s, kv.Visits, func(items []models.Visit) ([]models.Visit, error) {
		now := s.now()
		visit = models.Visit{
			ID:              primitive.NewObjectID(),
			PatientID:       patient.ID.Hex(),
			PatientName:     patient.Name,
			DoctorID:        doctor.ID.Hex(),
			DoctorName:      doctor.Name,
			RequestedByRole: by.Role,
			RequestedByID:   by.ID,
			Symptoms:        strings.TrimSpace(in.Symptoms),
			Status:          models.VisitRequested,
			RoomID:          newRoomID(),
			ScheduledAt:     in.ScheduledAt,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return append(items, visit), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("visit requested",
		zap.String("visit_id", visit.ID.Hex()),
		zap.String("doctor_id", visit.DoctorID),
		zap.String("requested_by", string(by.Role)),
	)
	return &visit, nil
}

func (s *Service) GetVisit(ctx context.Context, id string) (*models.Visit, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	visits, err := load[models.Visit](ctx, s.store, kv.Visits)
	if err != nil {
		return nil, err
	}
	v, ok := lo.Find(visits, func(v models.Visit) bool { return v.ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (s *Service) listVisits(ctx context.Context, keep func(models.Visit) bool) ([]models.Visit, error) {
	visits, err := load[models.Visit](ctx, s.store, kv.Visits)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(visits, func(v models.Visit, _ int) bool { return keep(v) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) ListVisitsByPatient(ctx context.Context, patientID string) ([]models.Visit, error) {
	return s.listVisits(ctx, func(v models.Visit) bool { return v.PatientID == patientID })
}

// ListVisitsByDoctor returns a doctor's visits, optionally narrowed to one status.
func (s *Service) ListVisitsByDoctor(ctx context.Context, doctorID string, status models.VisitStatus) ([]models.Visit, error) {
	return s.listVisits(ctx, func(v models.Visit) bool {
		return v.DoctorID == doctorID && (status == "" || v.Status == status)
	})
}

func (s *Service) ListVisitsByRequester(ctx context.Context, role models.Role, id string) ([]models.Visit, error) {
	return s.listVisits(ctx, func(v models.Visit) bool {
		return v.RequestedByRole == role && v.RequestedByID == id
	})
}

func (s *Service) updateVisit(ctx context.Context, id string, fn func(*models.Visit) error) (*models.Visit, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var updated models.Visit
	err = mutate(ctx, s, kv.Visits, func(items []models.Visit) ([]models.Visit, error) {
		_, idx, ok := lo.FindIndexOf(items, func(v models.Visit) bool { return v.ID == oid })
		if !ok {
			return nil, ErrNotFound
		}
		if err := fn(&items[idx]); err != nil {
			return nil, err
		}
		items[idx].UpdatedAt = s.now()
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func moveVisit(v *models.Visit, next models.VisitStatus) error {
	if !v.Status.CanMoveTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, next)
	}
	v.Status = next
	if next == models.VisitInProgress && v.RoomID == "" {
		v.RoomID = newRoomID()
	}
	return nil
}

func (s *Service) UpdateVisitStatus(ctx context.Context, id string, next models.VisitStatus) (*models.Visit, error) {
	return s.updateVisit(ctx, id, func(v *models.Visit) error { return moveVisit(v, next) })
}

func (s *Service) UpdateVisitNotes(ctx context.Context, id, notes string) (*models.Visit, error) {
	return s.updateVisit(ctx, id, func(v *models.Visit) error {
		v.Notes = notes
		return nil
	})
}
