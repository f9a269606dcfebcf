package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
)

func (h *Handler) CreatePrescription(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req storage.CreatePrescriptionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rx, err := h.Store.CreatePrescription(c.Request.Context(), sess.ID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rx)
}

// ListPrescriptions returns a doctor's own prescriptions, or those of the
// patient named by ?patientId=.
func (h *Handler) ListPrescriptions(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		list []models.Prescription
		err  error
	)
	if patientID := c.Query("patientId"); patientID != "" {
		p, perr := h.viewablePatient(ctx, sess, patientID)
		if perr != nil {
			h.respondError(c, perr)
			return
		}
		list, err = h.Store.ListPrescriptionsByPatient(ctx, p.ID.Hex())
	} else if sess.Role == models.RoleDoctor {
		list, err = h.Store.ListPrescriptionsByDoctor(ctx, sess.ID)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "patientId is required"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GetPrescription is open to the prescribing doctor, pharmacies filling it,
// and anyone who may view the patient.
func (h *Handler) GetPrescription(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rx, err := h.Store.GetPrescription(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if sess.Role != models.RolePharmacy && rx.DoctorID != sess.ID {
		if _, err := h.viewablePatient(ctx, sess, rx.PatientID); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, rx)
}
