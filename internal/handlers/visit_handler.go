package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
	"go.uber.org/zap"
)

// CreateVisit requests a consultation for a patient the caller may act for.
func (h *Handler) CreateVisit(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req storage.CreateVisitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	p, err := h.Store.GetPatient(ctx, req.PatientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !canEditPatient(sess, p) {
		h.respondError(c, errForbidden)
		return
	}

	visit, err := h.Store.CreateVisit(ctx, sess, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.Notifier != nil {
		if doctor, err := h.Store.GetDoctor(ctx, visit.DoctorID); err == nil {
			h.Notifier.NotifyVisitRequested(doctor, visit)
		} else {
			h.Logger.Warn("visit notification skipped", zap.String("visit_id", visit.ID.Hex()), zap.Error(err))
		}
	}
	c.JSON(http.StatusCreated, visit)
}

// ListVisits returns a doctor's queue (optionally ?status=) or the visits
// the caller requested. ?patientId= lists one patient's visits.
func (h *Handler) ListVisits(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		visits []models.Visit
		err    error
	)
	switch {
	case c.Query("patientId") != "":
		p, perr := h.viewablePatient(ctx, sess, c.Query("patientId"))
		if perr != nil {
			h.respondError(c, perr)
			return
		}
		visits, err = h.Store.ListVisitsByPatient(ctx, p.ID.Hex())
	case sess.Role == models.RoleDoctor:
		visits, err = h.Store.ListVisitsByDoctor(ctx, sess.ID, models.VisitStatus(c.Query("status")))
	default:
		visits, err = h.Store.ListVisitsByRequester(ctx, sess.Role, sess.ID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(visits))
}

func (h *Handler) GetVisit(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	v, err := h.Store.GetVisit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !visitParticipant(sess, v) {
		h.respondError(c, errForbidden)
		return
	}
	c.JSON(http.StatusOK, v)
}

// UpdateVisitStatus: the visit's doctor drives the consultation; the
// requester may only cancel.
func (h *Handler) UpdateVisitStatus(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req struct {
		Status models.VisitStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	v, err := h.Store.GetVisit(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	isDoctor := sess.Role == models.RoleDoctor && v.DoctorID == sess.ID
	isRequester := v.RequestedByRole == sess.Role && v.RequestedByID == sess.ID
	allowed := isDoctor || (req.Status == models.VisitCancelled && isRequester)
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the assigned doctor can move this visit to " + string(req.Status)})
		return
	}

	updated, err := h.Store.UpdateVisitStatus(ctx, v.ID.Hex(), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) UpdateVisitNotes(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	v, err := h.Store.GetVisit(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if v.DoctorID != sess.ID {
		h.respondError(c, errForbidden)
		return
	}
	updated, err := h.Store.UpdateVisitNotes(ctx, v.ID.Hex(), req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
