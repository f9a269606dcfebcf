package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
)

type createPatientRequest struct {
	Name           string `json:"name" binding:"required"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Phone          string `json:"phone"`
	Village        string `json:"village"`
	BloodGroup     string `json:"bloodGroup"`
	Allergies      string `json:"allergies"`
	MedicalHistory string `json:"medicalHistory"`
}

type healthRecordRequest struct {
	Kind   string         `json:"kind"`
	Title  string         `json:"title"`
	Notes  string         `json:"notes"`
	Vitals *models.Vitals `json:"vitals"`
}

func (h *Handler) CreatePatient(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req createPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := models.Patient{
		Name:           req.Name,
		Age:            req.Age,
		Gender:         req.Gender,
		Phone:          req.Phone,
		Village:        req.Village,
		BloodGroup:     req.BloodGroup,
		Allergies:      req.Allergies,
		MedicalHistory: req.MedicalHistory,
	}
	if err := h.Store.CreatePatient(c.Request.Context(), sess, &p); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListPatients returns the caller's own patients. Doctors see every patient.
func (h *Handler) ListPatients(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var (
		patients []models.Patient
		err      error
	)
	if sess.Role == models.RoleDoctor {
		patients, err = h.Store.SearchPatients(c.Request.Context(), "")
	} else {
		patients, err = h.Store.ListPatientsByOwner(c.Request.Context(), sess.Role, sess.ID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(patients))
}

func (h *Handler) SearchPatients(c *gin.Context) {
	patients, err := h.Store.SearchPatients(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	p, err := h.viewablePatient(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req storage.PatientUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ctx := c.Request.Context()
	p, err := h.Store.GetPatient(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !canEditPatient(sess, p) {
		h.respondError(c, errForbidden)
		return
	}
	updated, err := h.Store.UpdatePatient(ctx, p.ID.Hex(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.Store.GetPatient(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ownsPatient(sess, p) {
		h.respondError(c, errForbidden)
		return
	}
	if err := h.Store.DeletePatient(ctx, p.ID.Hex()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted"})
}

func (h *Handler) AddHealthRecord(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req healthRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	p, err := h.viewablePatient(ctx, sess, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	rec := models.HealthRecord{
		PatientID: p.ID.Hex(),
		Kind:      req.Kind,
		Title:     req.Title,
		Notes:     req.Notes,
		Vitals:    req.Vitals,
	}
	if err := h.Store.AddHealthRecord(ctx, sess, &rec); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListHealthRecords(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.viewablePatient(ctx, sess, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	records, err := h.Store.ListHealthRecords(ctx, p.ID.Hex())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(records))
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
