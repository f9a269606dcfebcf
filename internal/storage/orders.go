package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type OrderLine struct {
	MedicineID string `json:"medicineId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
}

type PlaceOrderInput struct {
	PatientID      string      `json:"patientId"`
	PharmacyID     string      `json:"pharmacyId" binding:"required"`
	PrescriptionID string      `json:"prescriptionId"`
	Lines          []OrderLine `json:"items" binding:"required"`
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// reserve checks every line against stock, then decrements it. Nothing is
// changed when any line fails. Caller holds s.mu.
func reserve(medicines []models.Medicine, pharmacyID string, lines []OrderLine) ([]models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	wanted := make(map[string]int)
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
		wanted[l.MedicineID] += l.Quantity
	}

	index := make(map[string]int, len(wanted))
	for id, qty := range wanted {
		_, idx, ok := lo.FindIndexOf(medicines, func(m models.Medicine) bool { return m.ID.Hex() == id })
		if !ok {
			return nil, fmt.Errorf("medicine %s: %w", id, ErrNotFound)
		}
		if medicines[idx].PharmacyID != pharmacyID {
			return nil, fmt.Errorf("%w: medicine %s is sold by another pharmacy", ErrInvalidInput, id)
		}
		if medicines[idx].Stock < qty {
			return nil, fmt.Errorf("%w: %s has %d", ErrInsufficientStock, medicines[idx].Name, medicines[idx].Stock)
		}
		index[id] = idx
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		m := &medicines[index[l.MedicineID]]
		m.Stock -= l.Quantity
		items = append(items, models.OrderItem{
			MedicineID: l.MedicineID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   l.Quantity,
		})
	}
	return items, nil
}

func restock(medicines []models.Medicine, items []models.OrderItem) {
	for _, it := range items {
		_, idx, ok := lo.FindIndexOf(medicines, func(m models.Medicine) bool { return m.ID.Hex() == it.MedicineID })
		if ok {
			medicines[idx].Stock += it.Quantity
		}
	}
}

func (s *Service) newOrder(owner models.Session, patientID, pharmacyID, prescriptionID string, items []models.OrderItem) models.Order {
	now := s.now()
	return models.Order{
		ID:             primitive.NewObjectID(),
		PatientID:      patientID,
		OwnerRole:      owner.Role,
		OwnerID:        owner.ID,
		PharmacyID:     pharmacyID,
		PrescriptionID: prescriptionID,
		Items:          items,
		Total:          roundMoney(lo.SumBy(items, models.OrderItem.Amount)),
		Status:         models.OrderPlaced,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// PlaceOrder reserves stock and records an order. Medicines and orders are
// written back to back under the service lock.
func (s *Service) PlaceOrder(ctx context.Context, owner models.Session, in PlaceOrderInput) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines, err := load[models.Medicine](ctx, s.store, kv.Medicines)
	if err != nil {
		return nil, err
	}
	items, err := reserve(medicines, in.PharmacyID, in.Lines)
	if err != nil {
		return nil, err
	}
	orders, err := load[models.Order](ctx, s.store, kv.Orders)
	if err != nil {
		return nil, err
	}
	order := s.newOrder(owner, in.PatientID, in.PharmacyID, in.PrescriptionID, items)

	if err := save(ctx, s.store, kv.Medicines, medicines); err != nil {
		return nil, err
	}
	if err := save(ctx, s.store, kv.Orders, append(orders, order)); err != nil {
		return nil, err
	}
	s.logger.Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("pharmacy_id", order.PharmacyID),
		zap.Float64("total", order.Total),
	)
	return &order, nil
}

// Checkout turns the owner's cart into one order per pharmacy and empties the cart.
func (s *Service) Checkout(ctx context.Context, owner models.Session, patientID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := load[models.CartItem](ctx, s.store, kv.Cart)
	if err != nil {
		return nil, err
	}
	mine := lo.Filter(cart, ownsCartItem(owner))
	if len(mine) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}

	medicines, err := load[models.Medicine](ctx, s.store, kv.Medicines)
	if err != nil {
		return nil, err
	}
	orders, err := load[models.Order](ctx, s.store, kv.Orders)
	if err != nil {
		return nil, err
	}

	byPharmacy := lo.GroupBy(mine, func(c models.CartItem) string { return c.PharmacyID })
	pharmacyIDs := lo.Keys(byPharmacy)
	sort.Strings(pharmacyIDs)

	placed := make([]models.Order, 0, len(pharmacyIDs))
	for _, pharmacyID := range pharmacyIDs {
		lines := lo.Map(byPharmacy[pharmacyID], func(c models.CartItem, _ int) OrderLine {
			return OrderLine{MedicineID: c.MedicineID, Quantity: c.Quantity}
		})
		items, err := reserve(medicines, pharmacyID, lines)
		if err != nil {
			// medicines is only written back on success, so earlier reservations are dropped
			return nil, err
		}
		placed = append(placed, s.newOrder(owner, patientID, pharmacyID, "", items))
	}

	if err := save(ctx, s.store, kv.Medicines, medicines); err != nil {
		return nil, err
	}
	if err := save(ctx, s.store, kv.Orders, append(orders, placed...)); err != nil {
		return nil, err
	}
	if err := save(ctx, s.store, kv.Cart, lo.Reject(cart, ownsCartItem(owner))); err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	orders, err := load[models.Order](ctx, s.store, kv.Orders)
	if err != nil {
		return nil, err
	}
	o, ok := lo.Find(orders, func(o models.Order) bool { return o.ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *Service) listOrders(ctx context.Context, keep func(models.Order) bool) ([]models.Order, error) {
	orders, err := load[models.Order](ctx, s.store, kv.Orders)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(orders, func(o models.Order, _ int) bool { return keep(o) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListOrdersByPharmacy returns a pharmacy's orders, optionally narrowed to one status.
func (s *Service) ListOrdersByPharmacy(ctx context.Context, pharmacyID string, status models.OrderStatus) ([]models.Order, error) {
	return s.listOrders(ctx, func(o models.Order) bool {
		return o.PharmacyID == pharmacyID && (status == "" || o.Status == status)
	})
}

func (s *Service) ListOrdersByOwner(ctx context.Context, owner models.Session) ([]models.Order, error) {
	return s.listOrders(ctx, func(o models.Order) bool {
		return o.OwnerRole == owner.Role && o.OwnerID == owner.ID
	})
}

// UpdateOrderStatus moves a pharmacy's order along. Cancelling puts the stock
// back; delivery issues a bill unless one already exists.
func (s *Service) UpdateOrderStatus(ctx context.Context, pharmacyID, id string, next models.OrderStatus) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := load[models.Order](ctx, s.store, kv.Orders)
	if err != nil {
		return nil, err
	}
	_, idx, ok := lo.FindIndexOf(orders, func(o models.Order) bool { return o.ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	order := &orders[idx]
	if order.PharmacyID != pharmacyID {
		return nil, ErrNotOwner
	}
	if !order.Status.CanMoveTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}
	order.Status = next
	order.UpdatedAt = s.now()

	switch next {
	case models.OrderCancelled:
		medicines, err := load[models.Medicine](ctx, s.store, kv.Medicines)
		if err != nil {
			return nil, err
		}
		restock(medicines, order.Items)
		if err := save(ctx, s.store, kv.Medicines, medicines); err != nil {
			return nil, err
		}
	case models.OrderDelivered:
		if _, err := s.createBillLocked(ctx, *order, 0); err != nil && !errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
	}

	if err := save(ctx, s.store, kv.Orders, orders); err != nil {
		return nil, err
	}
	updated := *order
	return &updated, nil
}
