package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateBill issues a bill for an order of the pharmacy. One bill per order.
func (s *Service) CreateBill(ctx context.Context, pharmacyID, orderID string, discount float64) (*models.Bill, error) {
	oid, err := parseID(orderID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := load[models.Order](ctx, s.store, kv.Orders)
	if err != nil {
		return nil, err
	}
	order, ok := lo.Find(orders, func(o models.Order) bool { return o.ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	if order.PharmacyID != pharmacyID {
		return nil, ErrNotOwner
	}
	if order.Status == models.OrderCancelled {
		return nil, fmt.Errorf("%w: order was cancelled", ErrInvalidTransition)
	}
	return s.createBillLocked(ctx, order, discount)
}

func (s *Service) createBillLocked(ctx context.Context, order models.Order, discount float64) (*models.Bill, error) {
	subtotal := roundMoney(lo.SumBy(order.Items, models.OrderItem.Amount))
	if discount < 0 || discount > subtotal {
		return nil, fmt.Errorf("%w: discount must be between 0 and %.2f", ErrInvalidInput, subtotal)
	}

	bills, err := load[models.Bill](ctx, s.store, kv.Bills)
	if err != nil {
		return nil, err
	}
	orderID := order.ID.Hex()
	if lo.ContainsBy(bills, func(b models.Bill) bool { return b.OrderID == orderID }) {
		return nil, ErrAlreadyExists
	}

	bill := models.Bill{
		ID:         primitive.NewObjectID(),
		OrderID:    orderID,
		PharmacyID: order.PharmacyID,
		PatientID:  order.PatientID,
		OwnerRole:  order.OwnerRole,
		OwnerID:    order.OwnerID,
		Items:      order.Items,
		Subtotal:   subtotal,
		Discount:   roundMoney(discount),
		Total:      roundMoney(subtotal - discount),
		CreatedAt:  s.now(),
	}
	if err := save(ctx, s.store, kv.Bills, append(bills, bill)); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *Service) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	bills, err := load[models.Bill](ctx, s.store, kv.Bills)
	if err != nil {
		return nil, err
	}
	b, ok := lo.Find(bills, func(b models.Bill) bool { return b.ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *Service) listBills(ctx context.Context, keep func(models.Bill) bool) ([]models.Bill, error) {
	bills, err := load[models.Bill](ctx, s.store, kv.Bills)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(bills, func(b models.Bill, _ int) bool { return keep(b) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Service) ListBillsByPharmacy(ctx context.Context, pharmacyID string) ([]models.Bill, error) {
	return s.listBills(ctx, func(b models.Bill) bool { return b.PharmacyID == pharmacyID })
}

func (s *Service) ListBillsByPatient(ctx context.Context, patientID string) ([]models.Bill, error) {
	return s.listBills(ctx, func(b models.Bill) bool { return b.PatientID == patientID })
}

// ListBillsByOwner returns the bills for orders the account placed.
func (s *Service) ListBillsByOwner(ctx context.Context, owner models.Session) ([]models.Bill, error) {
	return s.listBills(ctx, func(b models.Bill) bool { return b.OwnerRole == owner.Role && b.OwnerID == owner.ID })
}

func (s *Service) MarkBillPaid(ctx context.Context, pharmacyID, id string) (*models.Bill, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var updated models.Bill
	err = mutate(ctx, s, kv.Bills, func(items []models.Bill) ([]models.Bill, error) {
		_, idx, ok := lo.FindIndexOf(items, func(b models.Bill) bool { return b.ID == oid })
		if !ok {
			return nil, ErrNotFound
		}
		if items[idx].PharmacyID != pharmacyID {
			return nil, ErrNotOwner
		}
		items[idx].Paid = true
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
