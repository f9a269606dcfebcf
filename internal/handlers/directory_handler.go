package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/samber/lo"
)

// ListDoctors returns doctors; ?available=true keeps only those taking visits.
func (h *Handler) ListDoctors(c *gin.Context) {
	onlyAvailable, _ := strconv.ParseBool(c.Query("available"))
	doctors, err := h.Store.ListDoctors(c.Request.Context(), onlyAvailable)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(doctors, func(d models.Doctor, _ int) models.Doctor { return d.Public() }))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	d, err := h.Store.GetDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Public())
}

func (h *Handler) ListPharmacies(c *gin.Context) {
	pharmacies, err := h.Store.ListPharmacies(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(pharmacies, func(p models.Pharmacy, _ int) models.Pharmacy { return p.Public() }))
}
