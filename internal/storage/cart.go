package storage

import (
	"context"
	"fmt"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/samber/lo"
)

func ownsCartItem(owner models.Session) func(models.CartItem, int) bool {
	return func(c models.CartItem, _ int) bool {
		return c.OwnerRole == owner.Role && c.OwnerID == owner.ID
	}
}

// AddToCart adds quantity of a medicine to the owner's cart, merging with an
// existing line for the same medicine. Stock is checked but not reserved.
func (s *Service) AddToCart(ctx context.Context, owner models.Session, medicineID string, quantity int) ([]models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	med, err := s.GetMedicine(ctx, medicineID)
	if err != nil {
		return nil, err
	}

	err = mutate(ctx, s, kv.Cart, func(items []models.CartItem) ([]models.CartItem, error) {
		_, idx, found := lo.FindIndexOf(items, func(c models.CartItem) bool {
			return c.OwnerRole == owner.Role && c.OwnerID == owner.ID && c.MedicineID == medicineID
		})
		total := quantity
		if found {
			total += items[idx].Quantity
		}
		if total > med.Stock {
			return nil, fmt.Errorf("%w: %s has %d", ErrInsufficientStock, med.Name, med.Stock)
		}
		if found {
			items[idx].Quantity = total
			items[idx].Price = med.Price
			return items, nil
		}
		return append(items, models.CartItem{
			OwnerRole:  owner.Role,
			OwnerID:    owner.ID,
			MedicineID: medicineID,
			PharmacyID: med.PharmacyID,
			Name:       med.Name,
			Price:      med.Price,
			Quantity:   quantity,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, owner)
}

// UpdateCartItem sets the quantity of a cart line; zero removes it. Like
// AddToCart it refuses more than the pharmacy holds.
func (s *Service) UpdateCartItem(ctx context.Context, owner models.Session, medicineID string, quantity int) ([]models.CartItem, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	}
	if quantity == 0 {
		return s.RemoveFromCart(ctx, owner, medicineID)
	}
	med, err := s.GetMedicine(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	if quantity > med.Stock {
		return nil, fmt.Errorf("%w: %s has %d", ErrInsufficientStock, med.Name, med.Stock)
	}
	err = mutate(ctx, s, kv.Cart, func(items []models.CartItem) ([]models.CartItem, error) {
		_, idx, ok := lo.FindIndexOf(items, func(c models.CartItem) bool {
			return c.OwnerRole == owner.Role && c.OwnerID == owner.ID && c.MedicineID == medicineID
		})
		if !ok {
			return nil, ErrNotFound
		}
		items[idx].Quantity = quantity
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, owner)
}

func (s *Service) RemoveFromCart(ctx context.Context, owner models.Session, medicineID string) ([]models.CartItem, error) {
	err := mutate(ctx, s, kv.Cart, func(items []models.CartItem) ([]models.CartItem, error) {
		return lo.Reject(items, func(c models.CartItem, _ int) bool {
			return c.OwnerRole == owner.Role && c.OwnerID == owner.ID && c.MedicineID == medicineID
		}), nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, owner)
}

func (s *Service) GetCart(ctx context.Context, owner models.Session) ([]models.CartItem, error) {
	items, err := load[models.CartItem](ctx, s.store, kv.Cart)
	if err != nil {
		return nil, err
	}
	return lo.Filter(items, ownsCartItem(owner)), nil
}

func (s *Service) ClearCart(ctx context.Context, owner models.Session) error {
	return mutate(ctx, s, kv.Cart, func(items []models.CartItem) ([]models.CartItem, error) {
		return lo.Reject(items, ownsCartItem(owner)), nil
	})
}

// CartTotal sums price times quantity.
func CartTotal(items []models.CartItem) float64 {
	return lo.SumBy(items, func(c models.CartItem) float64 { return c.Price * float64(c.Quantity) })
}
