package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventory(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ph := mustPharmacy(t, s, "9000000300")
	other := mustPharmacy(t, s, "9000000301")
	pid := ph.ID.Hex()

	assert.ErrorIs(t, s.AddMedicine(ctx, pid, &models.Medicine{Name: "X", Price: -1}), ErrInvalidInput)

	para := mustMedicine(t, s, pid, "Paracetamol", 20, 10)
	mustMedicine(t, s, pid, "amoxicillin", 65, 0)
	mustMedicine(t, s, other.ID.Hex(), "Paracetamol Syrup", 45, 5)

	list, err := s.ListMedicines(ctx, pid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "amoxicillin", list[0].Name)

	found, err := s.SearchMedicines(ctx, "para")
	require.NoError(t, err)
	assert.Len(t, found, 2)
	oos, err := s.SearchMedicines(ctx, "amox")
	require.NoError(t, err)
	assert.Empty(t, oos, "out of stock medicines are hidden")

	price := 22.5
	updated, err := s.UpdateMedicine(ctx, pid, para.ID.Hex(), MedicineUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 22.5, updated.Price)

	_, err = s.UpdateMedicine(ctx, other.ID.Hex(), para.ID.Hex(), MedicineUpdate{Price: &price})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = s.AdjustStock(ctx, para.ID.Hex(), -11)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	adjusted, err := s.AdjustStock(ctx, para.ID.Hex(), 5)
	require.NoError(t, err)
	assert.Equal(t, 15, adjusted.Stock)

	assert.ErrorIs(t, s.DeleteMedicine(ctx, other.ID.Hex(), para.ID.Hex()), ErrNotOwner)
	require.NoError(t, s.DeleteMedicine(ctx, pid, para.ID.Hex()))
	_, err = s.GetMedicine(ctx, para.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCart(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ph := mustPharmacy(t, s, "9000000300")
	med := mustMedicine(t, s, ph.ID.Hex(), "ORS", 18, 5)
	owner := models.Session{Role: models.RoleUser, ID: "u1"}
	stranger := models.Session{Role: models.RoleUser, ID: "u2"}

	_, err := s.AddToCart(ctx, owner, med.ID.Hex(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cart, err := s.AddToCart(ctx, owner, med.ID.Hex(), 2)
	require.NoError(t, err)
	require.Len(t, cart, 1)

	cart, err = s.AddToCart(ctx, owner, med.ID.Hex(), 3)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)
	assert.Equal(t, 90.0, CartTotal(cart))

	_, err = s.AddToCart(ctx, owner, med.ID.Hex(), 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = s.AddToCart(ctx, stranger, med.ID.Hex(), 1)
	require.NoError(t, err)

	_, err = s.UpdateCartItem(ctx, owner, med.ID.Hex(), 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	cart, err = s.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 5, cart[0].Quantity, "rejected update leaves the line alone")

	cart, err = s.UpdateCartItem(ctx, owner, med.ID.Hex(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart[0].Quantity)

	cart, err = s.UpdateCartItem(ctx, owner, med.ID.Hex(), 0)
	require.NoError(t, err)
	assert.Empty(t, cart)

	_, err = s.UpdateCartItem(ctx, owner, med.ID.Hex(), 2)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.ClearCart(ctx, stranger))
	cart, err = s.GetCart(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestPlaceOrderReservesStock(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ph := mustPharmacy(t, s, "9000000300")
	pid := ph.ID.Hex()
	a := mustMedicine(t, s, pid, "Paracetamol", 20, 10)
	b := mustMedicine(t, s, pid, "ORS", 18.5, 3)
	owner := models.Session{Role: models.RoleAsha, ID: "asha-1"}

	_, err := s.PlaceOrder(ctx, owner, PlaceOrderInput{PharmacyID: pid, Lines: []OrderLine{
		{MedicineID: a.ID.Hex(), Quantity: 2},
		{MedicineID: b.ID.Hex(), Quantity: 4},
	}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	unchanged, err := s.GetMedicine(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 10, unchanged.Stock, "failed order must not touch stock")

	order, err := s.PlaceOrder(ctx, owner, PlaceOrderInput{PatientID: "p1", PharmacyID: pid, Lines: []OrderLine{
		{MedicineID: a.ID.Hex(), Quantity: 2},
		{MedicineID: b.ID.Hex(), Quantity: 3},
	}})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPlaced, order.Status)
	assert.Equal(t, 95.5, order.Total)
	assert.Equal(t, "p1", order.PatientID)

	left, err := s.GetMedicine(ctx, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 0, left.Stock)

	other := mustPharmacy(t, s, "9000000301")
	_, err = s.PlaceOrder(ctx, owner, PlaceOrderInput{PharmacyID: other.ID.Hex(), Lines: []OrderLine{{MedicineID: a.ID.Hex(), Quantity: 1}}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckoutSplitsByPharmacy(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p1 := mustPharmacy(t, s, "9000000300")
	p2 := mustPharmacy(t, s, "9000000301")
	m1 := mustMedicine(t, s, p1.ID.Hex(), "Paracetamol", 20, 10)
	m2 := mustMedicine(t, s, p2.ID.Hex(), "Cetirizine", 15, 10)
	owner := models.Session{Role: models.RoleUser, ID: "u1"}

	_, err := s.Checkout(ctx, owner, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddToCart(ctx, owner, m1.ID.Hex(), 2)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, owner, m2.ID.Hex(), 1)
	require.NoError(t, err)

	orders, err := s.Checkout(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Empty(t, o.PatientID, "no patient unless one is named")
		assert.Equal(t, "u1", o.OwnerID)
	}

	cart, err := s.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, cart)

	mine, err := s.ListOrdersByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	stock, err := s.GetMedicine(ctx, m1.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 8, stock.Stock)
}

func TestCheckoutFailureLeavesEverythingUntouched(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p1 := mustPharmacy(t, s, "9000000300")
	p2 := mustPharmacy(t, s, "9000000301")
	m1 := mustMedicine(t, s, p1.ID.Hex(), "Paracetamol", 20, 10)
	m2 := mustMedicine(t, s, p2.ID.Hex(), "Cetirizine", 15, 10)
	owner := models.Session{Role: models.RoleUser, ID: "u1"}

	_, err := s.AddToCart(ctx, owner, m1.ID.Hex(), 2)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, owner, m2.ID.Hex(), 5)
	require.NoError(t, err)
	// The second pharmacy sells out after the line went into the cart.
	_, err = s.AdjustStock(ctx, m2.ID.Hex(), -8)
	require.NoError(t, err)

	_, err = s.Checkout(ctx, owner, "")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	first, err := s.GetMedicine(ctx, m1.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 10, first.Stock)
	second, err := s.GetMedicine(ctx, m2.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Stock)

	cart, err := s.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, cart, 2)
	mine, err := s.ListOrdersByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestConcurrentStockAdjustments(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ph := mustPharmacy(t, s, "9000000300")
	med := mustMedicine(t, s, ph.ID.Hex(), "ORS", 18, 0)

	const workers = 200
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AdjustStock(ctx, med.ID.Hex(), 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetMedicine(ctx, med.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, workers, got.Stock)
}

func TestConcurrentCartAdds(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ph := mustPharmacy(t, s, "9000000300")
	med := mustMedicine(t, s, ph.ID.Hex(), "ORS", 18, 1000)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddToCart(ctx, models.Session{Role: models.RoleUser, ID: "u1"}, med.ID.Hex(), 2)
		}()
	}
	wg.Wait()

	cart, err := s.GetCart(ctx, models.Session{Role: models.RoleUser, ID: "u1"})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 2*workers, cart[0].Quantity)
}

func TestOrderLifecycleAndBills(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ph := mustPharmacy(t, s, "9000000300")
	pid := ph.ID.Hex()
	med := mustMedicine(t, s, pid, "Paracetamol", 20, 10)
	owner := models.Session{Role: models.RoleUser, ID: "u1"}

	place := func() *models.Order {
		o, err := s.PlaceOrder(ctx, owner, PlaceOrderInput{PharmacyID: pid, Lines: []OrderLine{{MedicineID: med.ID.Hex(), Quantity: 3}}})
		require.NoError(t, err)
		return o
	}

	cancelled := place()
	_, err := s.UpdateOrderStatus(ctx, "other", cancelled.ID.Hex(), models.OrderAccepted)
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = s.UpdateOrderStatus(ctx, pid, cancelled.ID.Hex(), models.OrderCancelled)
	require.NoError(t, err)
	stock, err := s.GetMedicine(ctx, med.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 10, stock.Stock, "cancelling restores stock")
	_, err = s.CreateBill(ctx, pid, cancelled.ID.Hex(), 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	order := place()
	_, err = s.UpdateOrderStatus(ctx, pid, order.ID.Hex(), models.OrderDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	for _, next := range []models.OrderStatus{models.OrderAccepted, models.OrderReady, models.OrderDelivered} {
		_, err = s.UpdateOrderStatus(ctx, pid, order.ID.Hex(), next)
		require.NoError(t, err)
	}

	bills, err := s.ListBillsByPharmacy(ctx, pid)
	require.NoError(t, err)
	require.Len(t, bills, 1, "delivery issues a bill")
	assert.Equal(t, 60.0, bills[0].Total)
	assert.Empty(t, bills[0].PatientID)
	assert.Equal(t, models.RoleUser, bills[0].OwnerRole)
	assert.Equal(t, "u1", bills[0].OwnerID)

	_, err = s.CreateBill(ctx, pid, order.ID.Hex(), 0)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	paid, err := s.MarkBillPaid(ctx, pid, bills[0].ID.Hex())
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	mine, err := s.ListBillsByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	others, err := s.ListBillsByOwner(ctx, models.Session{Role: models.RoleAsha, ID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, others, "owner match includes the role")

	pending, err := s.ListOrdersByPharmacy(ctx, pid, models.OrderDelivered)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestCreateBillWithDiscount(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ph := mustPharmacy(t, s, "9000000300")
	pid := ph.ID.Hex()
	med := mustMedicine(t, s, pid, "Paracetamol", 20, 10)
	order, err := s.PlaceOrder(ctx, models.Session{Role: models.RoleUser, ID: "u1"}, PlaceOrderInput{
		PharmacyID: pid,
		Lines:      []OrderLine{{MedicineID: med.ID.Hex(), Quantity: 5}},
	})
	require.NoError(t, err)

	_, err = s.CreateBill(ctx, pid, order.ID.Hex(), 150)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bill, err := s.CreateBill(ctx, pid, order.ID.Hex(), 10)
	require.NoError(t, err)
	assert.Equal(t, 100.0, bill.Subtotal)
	assert.Equal(t, 90.0, bill.Total)

	got, err := s.GetBill(ctx, bill.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, bill.OrderID, got.OrderID)
}

func TestSeed(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	seeded, err := s.Seed(ctx, "hash")
	require.NoError(t, err)
	assert.True(t, seeded)

	doctors, err := s.ListDoctors(ctx, false)
	require.NoError(t, err)
	assert.Len(t, doctors, 3)
	assert.Equal(t, "hash", doctors[0].PasswordHash)

	pharmacies, err := s.ListPharmacies(ctx)
	require.NoError(t, err)
	require.Len(t, pharmacies, 1)
	meds, err := s.ListMedicines(ctx, pharmacies[0].ID.Hex())
	require.NoError(t, err)
	assert.Len(t, meds, 5)

	again, err := s.Seed(ctx, "hash")
	require.NoError(t, err)
	assert.False(t, again)
}
