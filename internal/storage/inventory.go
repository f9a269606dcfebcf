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

type MedicineUpdate struct {
	Name         *string  `json:"name,omitempty"`
	Manufacturer *string  `json:"manufacturer,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Stock        *int     `json:"stock,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	ExpiryDate   *string  `json:"expiryDate,omitempty"`
}

func validateMedicine(m *models.Medicine) error {
	m.Name = strings.TrimSpace(m.Name)
	switch {
	case m.Name == "":
		return fmt.Errorf("%w: medicine name is required", ErrInvalidInput)
	case m.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	case m.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (s *Service) AddMedicine(ctx context.Context, pharmacyID string, m *models.Medicine) error {
	if err := validateMedicine(m); err != nil {
		return err
	}
	m.PharmacyID = pharmacyID
	return mutate(ctx, s, kv.Medicines, func(items []models.Medicine) ([]models.Medicine, error) {
		m.ID = primitive.NewObjectID()
		m.UpdatedAt = s.now()
		return append(items, *m), nil
	})
}

func (s *Service) GetMedicine(ctx context.Context, id string) (*models.Medicine, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	items, err := load[models.Medicine](ctx, s.store, kv.Medicines)
	if err != nil {
		return nil, err
	}
	m, ok := lo.Find(items, func(m models.Medicine) bool { return m.ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *Service) UpdateMedicine(ctx context.Context, pharmacyID, id string, upd MedicineUpdate) (*models.Medicine, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var updated models.Medicine
	err = mutate(ctx, s, kv.Medicines, func(items []models.Medicine) ([]models.Medicine, error) {
		_, idx, ok := lo.FindIndexOf(items, func(m models.Medicine) bool { return m.ID == oid })
		if !ok {
			return nil, ErrNotFound
		}
		m := items[idx]
		if m.PharmacyID != pharmacyID {
			return nil, ErrNotOwner
		}
		if upd.Name != nil {
			m.Name = *upd.Name
		}
		if upd.Manufacturer != nil {
			m.Manufacturer = *upd.Manufacturer
		}
		if upd.Price != nil {
			m.Price = *upd.Price
		}
		if upd.Stock != nil {
			m.Stock = *upd.Stock
		}
		if upd.Unit != nil {
			m.Unit = *upd.Unit
		}
		if upd.ExpiryDate != nil {
			m.ExpiryDate = *upd.ExpiryDate
		}
		if err := validateMedicine(&m); err != nil {
			return nil, err
		}
		m.UpdatedAt = s.now()
		items[idx] = m
		updated = m
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) DeleteMedicine(ctx context.Context, pharmacyID, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return mutate(ctx, s, kv.Medicines, func(items []models.Medicine) ([]models.Medicine, error) {
		m, ok := lo.Find(items, func(m models.Medicine) bool { return m.ID == oid })
		if !ok {
			return nil, ErrNotFound
		}
		if m.PharmacyID != pharmacyID {
			return nil, ErrNotOwner
		}
		return lo.Reject(items, func(m models.Medicine, _ int) bool { return m.ID == oid }), nil
	})
}

// ListMedicines returns one pharmacy's inventory sorted by name.
func (s *Service) ListMedicines(ctx context.Context, pharmacyID string) ([]models.Medicine, error) {
	items, err := load[models.Medicine](ctx, s.store, kv.Medicines)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(items, func(m models.Medicine, _ int) bool { return m.PharmacyID == pharmacyID })
	sortMedicines(out)
	return out, nil
}

// SearchMedicines finds in-stock medicines across all pharmacies by name.
func (s *Service) SearchMedicines(ctx context.Context, query string) ([]models.Medicine, error) {
	items, err := load[models.Medicine](ctx, s.store, kv.Medicines)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := lo.Filter(items, func(m models.Medicine, _ int) bool {
		return m.Stock > 0 && strings.Contains(strings.ToLower(m.Name), q)
	})
	sortMedicines(out)
	return out, nil
}

// AdjustStock adds delta (which may be negative) to a medicine's stock.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*models.Medicine, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var updated models.Medicine
	err = mutate(ctx, s, kv.Medicines, func(items []models.Medicine) ([]models.Medicine, error) {
		_, idx, ok := lo.FindIndexOf(items, func(m models.Medicine) bool { return m.ID == oid })
		if !ok {
			return nil, ErrNotFound
		}
		if items[idx].Stock+delta < 0 {
			return nil, fmt.Errorf("%w: %s has %d", ErrInsufficientStock, items[idx].Name, items[idx].Stock)
		}
		items[idx].Stock += delta
		items[idx].UpdatedAt = s.now()
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func sortMedicines(items []models.Medicine) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
