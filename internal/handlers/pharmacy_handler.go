package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/services"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
	"go.uber.org/zap"
)

type medicineRequest struct {
	Name         string  `json:"name" binding:"required"`
	Manufacturer string  `json:"manufacturer"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	Unit         string  `json:"unit"`
	ExpiryDate   string  `json:"expiryDate"`
}

type cartRequest struct {
	MedicineID string `json:"medicineId" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// --- Inventory ---

// ListMedicines: ?pharmacyId= lists one shelf, ?q= searches in-stock medicines
// everywhere, and a pharmacy with neither gets its own shelf.
func (h *Handler) ListMedicines(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		meds []models.Medicine
		err  error
	)
	switch {
	case c.Query("pharmacyId") != "":
		meds, err = h.Store.ListMedicines(ctx, c.Query("pharmacyId"))
	case c.Query("q") != "" || sess.Role != models.RolePharmacy:
		meds, err = h.Store.SearchMedicines(ctx, c.Query("q"))
	default:
		meds, err = h.Store.ListMedicines(ctx, sess.ID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(meds))
}

func (h *Handler) GetMedicine(c *gin.Context) {
	m, err := h.Store.GetMedicine(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) AddMedicine(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req medicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m := models.Medicine{
		Name:         req.Name,
		Manufacturer: req.Manufacturer,
		Price:        req.Price,
		Stock:        req.Stock,
		Unit:         req.Unit,
		ExpiryDate:   req.ExpiryDate,
	}
	if err := h.Store.AddMedicine(c.Request.Context(), sess.ID, &m); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMedicine(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req storage.MedicineUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	m, err := h.Store.UpdateMedicine(c.Request.Context(), sess.ID, c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedicine(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteMedicine(c.Request.Context(), sess.ID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Medicine deleted"})
}

// AdjustStock applies a signed delta to a medicine on the caller's shelf.
func (h *Handler) AdjustStock(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	m, err := h.Store.GetMedicine(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if m.PharmacyID != sess.ID {
		h.respondError(c, storage.ErrNotOwner)
		return
	}
	m, err = h.Store.AdjustStock(ctx, m.ID.Hex(), req.Delta)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// --- Cart ---

func (h *Handler) GetCart(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	h.writeCart(c, sess, nil, nil)
}

func (h *Handler) AddToCart(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	items, err := h.Store.AddToCart(c.Request.Context(), sess, req.MedicineID, req.Quantity)
	h.writeCart(c, sess, items, err)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	items, err := h.Store.UpdateCartItem(c.Request.Context(), sess, c.Param("medicineId"), req.Quantity)
	h.writeCart(c, sess, items, err)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	items, err := h.Store.RemoveFromCart(c.Request.Context(), sess, c.Param("medicineId"))
	h.writeCart(c, sess, items, err)
}

// writeCart answers with the owner's items and total. A nil items slice
// with no error means the cart still has to be read.
func (h *Handler) writeCart(c *gin.Context, sess models.Session, items []models.CartItem, err error) {
	if err == nil && items == nil {
		items, err = h.Store.GetCart(c.Request.Context(), sess)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": nonNil(items), "total": storage.CartTotal(items)})
}

func (h *Handler) Checkout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req struct {
		PatientID string `json:"patientId"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	ctx := c.Request.Context()
	if req.PatientID != "" {
		if _, err := h.viewablePatient(ctx, sess, req.PatientID); err != nil {
			h.respondError(c, err)
			return
		}
	}
	orders, err := h.Store.Checkout(ctx, sess, req.PatientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orders)
}

// --- Orders ---

func (h *Handler) PlaceOrder(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req storage.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	if req.PatientID != "" {
		if _, err := h.viewablePatient(ctx, sess, req.PatientID); err != nil {
			h.respondError(c, err)
			return
		}
	}
	order, err := h.Store.PlaceOrder(ctx, sess, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders returns a pharmacy's incoming orders (optionally ?status=) or
// the orders the caller placed.
func (h *Handler) ListOrders(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		orders []models.Order
		err    error
	)
	if sess.Role == models.RolePharmacy {
		orders, err = h.Store.ListOrdersByPharmacy(ctx, sess.ID, models.OrderStatus(c.Query("status")))
	} else {
		orders, err = h.Store.ListOrdersByOwner(ctx, sess)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(orders))
}

func (h *Handler) GetOrder(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	o, err := h.Store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !orderParticipant(sess, o) {
		h.respondError(c, errForbidden)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	order, err := h.Store.UpdateOrderStatus(ctx, sess.ID, c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.Notifier != nil {
		owner, err := h.Auth.Resolve(ctx, models.Session{Role: order.OwnerRole, ID: order.OwnerID})
		if err == nil {
			h.Notifier.NotifyOrderStatus(owner.Base().Phone, order)
		} else {
			h.Logger.Warn("order notification skipped", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, order)
}

// --- Bills ---

func (h *Handler) CreateBill(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req struct {
		OrderID  string  `json:"orderId" binding:"required"`
		Discount float64 `json:"discount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	bill, err := h.Store.CreateBill(c.Request.Context(), sess.ID, req.OrderID, req.Discount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

// ListBills returns a pharmacy's bills, the caller's own bills, or one
// patient's bills via ?patientId=.
func (h *Handler) ListBills(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		bills []models.Bill
		err   error
	)
	switch {
	case sess.Role == models.RolePharmacy:
		bills, err = h.Store.ListBillsByPharmacy(ctx, sess.ID)
	case c.Query("patientId") == "":
		bills, err = h.Store.ListBillsByOwner(ctx, sess)
	default:
		p, perr := h.viewablePatient(ctx, sess, c.Query("patientId"))
		if perr != nil {
			h.respondError(c, perr)
			return
		}
		bills, err = h.Store.ListBillsByPatient(ctx, p.ID.Hex())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(bills))
}

func (h *Handler) GetBill(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	bill, err := h.Store.GetBill(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !billParticipant(sess, bill) {
		if sess.Role == models.RolePharmacy || bill.PatientID == "" {
			h.respondError(c, errForbidden)
			return
		}
		if _, err := h.viewablePatient(ctx, sess, bill.PatientID); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, bill)
}

func (h *Handler) PayBill(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	bill, err := h.Store.MarkBillPaid(c.Request.Context(), sess.ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// ExportBills streams the pharmacy's bills as an xlsx workbook.
func (h *Handler) ExportBills(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	bills, err := h.Store.ListBillsByPharmacy(c.Request.Context(), sess.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	data, err := services.ExportBills(bills)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=bills-%s.xlsx", h.Store.Now().Format("20060102")))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
