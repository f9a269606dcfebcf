package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/middleware"
	"github.com/harentsoaR/esannidhi-api/internal/models"
)

// Health reports whether the key-value store answers.
func (h *Handler) Health(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterRoutes mounts the public auth routes and the token-protected /api group.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/otp/request", h.RequestOTP)
		authRoutes.POST("/otp/login", h.LoginWithOTP)
		authRoutes.POST("/password/reset", h.ResetPassword)
		authRoutes.POST("/logout", h.Logout)
	}

	doctorOnly := middleware.RequireRole(models.RoleDoctor)
	pharmacyOnly := middleware.RequireRole(models.RolePharmacy)
	careGivers := middleware.RequireRole(models.RoleUser, models.RoleAsha)
	patientOwners := middleware.RequireRole(models.RoleUser, models.RoleAsha, models.RoleDoctor)
	clinicians := middleware.RequireRole(models.RoleDoctor, models.RoleAsha)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.Auth)) // Protect all /api routes
	{
		api.GET("/me", h.GetCurrentUser)
		api.PUT("/me", h.UpdateCurrentUser)

		// Patients and health records
		api.GET("/patients", h.ListPatients)
		api.POST("/patients", patientOwners, h.CreatePatient)
		api.GET("/patients/search", clinicians, h.SearchPatients)
		api.GET("/patients/:id", h.GetPatient)
		api.PUT("/patients/:id", h.UpdatePatient)
		api.DELETE("/patients/:id", h.DeletePatient)
		api.GET("/patients/:id/records", h.ListHealthRecords)
		api.POST("/patients/:id/records", h.AddHealthRecord)

		// Visits
		api.POST("/visits", careGivers, h.CreateVisit)
		api.GET("/visits", h.ListVisits)
		api.GET("/visits/:id", h.GetVisit)
		api.PATCH("/visits/:id/status", h.UpdateVisitStatus)
		api.PATCH("/visits/:id/notes", doctorOnly, h.UpdateVisitNotes)

		// Prescriptions
		api.POST("/prescriptions", doctorOnly, h.CreatePrescription)
		api.GET("/prescriptions", h.ListPrescriptions)
		api.GET("/prescriptions/:id", h.GetPrescription)

		// Messages
		api.POST("/messages", h.SendMessage)
		api.GET("/messages/inbox", h.Inbox)
		api.GET("/messages/conversation/:otherId", h.Conversation)
		api.PATCH("/messages/:id/read", h.MarkMessageRead)

		// Directory
		api.GET("/doctors", h.ListDoctors)
		api.GET("/doctors/:id", h.GetDoctor)
		api.GET("/pharmacies", h.ListPharmacies)

		// Inventory
		api.GET("/medicines", h.ListMedicines)
		api.GET("/medicines/:id", h.GetMedicine)
		api.POST("/medicines", pharmacyOnly, h.AddMedicine)
		api.PUT("/medicines/:id", pharmacyOnly, h.UpdateMedicine)
		api.PATCH("/medicines/:id/stock", pharmacyOnly, h.AdjustStock)
		api.DELETE("/medicines/:id", pharmacyOnly, h.DeleteMedicine)

		// Cart
		api.GET("/cart", careGivers, h.GetCart)
		api.POST("/cart", careGivers, h.AddToCart)
		api.PUT("/cart/:medicineId", careGivers, h.UpdateCartItem)
		api.DELETE("/cart/:medicineId", careGivers, h.RemoveFromCart)
		api.POST("/cart/checkout", careGivers, h.Checkout)

		// Orders
		api.POST("/orders", careGivers, h.PlaceOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.PATCH("/orders/:id/status", pharmacyOnly, h.UpdateOrderStatus)

		// Bills
		api.GET("/bills", h.ListBills)
		api.GET("/bills/export", pharmacyOnly, h.ExportBills)
		api.POST("/bills", pharmacyOnly, h.CreateBill)
		api.GET("/bills/:id", h.GetBill)
		api.PATCH("/bills/:id/pay", pharmacyOnly, h.PayBill)
	}
}
