package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/middleware"
	"github.com/harentsoaR/esannidhi-api/internal/models"
)

func mustSession(c *gin.Context) (models.Session, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return sess, ok
}

func ownsPatient(sess models.Session, p *models.Patient) bool {
	return p.OwnerRole == sess.Role && p.OwnerID == sess.ID
}

// canViewPatient: owners, doctors and ASHAs see patient data.
func canViewPatient(sess models.Session, p *models.Patient) bool {
	return ownsPatient(sess, p) || sess.Role == models.RoleDoctor || sess.Role == models.RoleAsha
}

func canEditPatient(sess models.Session, p *models.Patient) bool {
	return ownsPatient(sess, p) || sess.Role == models.RoleAsha
}

// viewablePatient loads a patient and checks the caller may see it.
func (h *Handler) viewablePatient(ctx context.Context, sess models.Session, id string) (*models.Patient, error) {
	p, err := h.Store.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewPatient(sess, p) {
		return nil, errForbidden
	}
	return p, nil
}

func visitParticipant(sess models.Session, v *models.Visit) bool {
	switch {
	case sess.Role == models.RoleDoctor:
		return v.DoctorID == sess.ID
	case sess.Role == models.RoleAsha:
		return true
	}
	return v.RequestedByRole == sess.Role && v.RequestedByID == sess.ID
}

func orderParticipant(sess models.Session, o *models.Order) bool {
	if sess.Role == models.RolePharmacy {
		return o.PharmacyID == sess.ID
	}
	return o.OwnerRole == sess.Role && o.OwnerID == sess.ID
}

// billParticipant admits the issuing pharmacy and the ordering account.
// Anyone else goes through the patient check.
func billParticipant(sess models.Session, b *models.Bill) bool {
	if sess.Role == models.RolePharmacy {
		return b.PharmacyID == sess.ID
	}
	return b.OwnerRole == sess.Role && b.OwnerID == sess.ID
}
