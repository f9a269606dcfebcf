package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/auth"
	"github.com/harentsoaR/esannidhi-api/internal/middleware"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
)

type loginRequest struct {
	Role     models.Role `json:"role" binding:"required"`
	Phone    string      `json:"phone" binding:"required"`
	Password string      `json:"password" binding:"required"`
}

type otpRequest struct {
	Phone   string            `json:"phone" binding:"required"`
	Purpose models.OTPPurpose `json:"purpose" binding:"required"`
}

type otpLoginRequest struct {
	Role  models.Role `json:"role" binding:"required"`
	Phone string      `json:"phone" binding:"required"`
	Code  string      `json:"code" binding:"required"`
}

type resetPasswordRequest struct {
	Role        models.Role `json:"role" binding:"required"`
	Phone       string      `json:"phone" binding:"required"`
	Code        string      `json:"code" binding:"required"`
	NewPassword string      `json:"newPassword" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Role, req.Phone, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RequestOTP issues a code. The response never includes the code itself.
func (h *Handler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.OTP.Generate(c.Request.Context(), req.Phone, req.Purpose)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent", "expiresAt": entry.ExpiresAt})
}

func (h *Handler) LoginWithOTP(c *gin.Context) {
	var req otpLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Auth.LoginWithOTP(c.Request.Context(), req.Role, req.Phone, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), req.Role, req.Phone, req.Code, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetCurrentUser retrieves the profile of the authenticated account.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	profile, err := h.Auth.Resolve(c.Request.Context(), sess)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// profileUpdate holds every editable profile field; only those that apply
// to the caller's role are used.
type profileUpdate struct {
	Name    *string `json:"name"`
	Age     *int    `json:"age"`
	Gender  *string `json:"gender"`
	Village *string `json:"village"`

	Specialization  *string  `json:"specialization"`
	Qualification   *string  `json:"qualification"`
	ExperienceYears *int     `json:"experienceYears"`
	Hospital        *string  `json:"hospital"`
	ConsultationFee *float64 `json:"consultationFee"`
	Available       *bool    `json:"available"`

	WorkerID *string `json:"workerId"`
	District *string `json:"district"`
	PHC      *string `json:"phc"`

	OwnerName *string `json:"ownerName"`
	Address   *string `json:"address"`
	LicenseNo *string `json:"licenseNo"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (u profileUpdate) applyAccount(a *models.Account) {
	if u.Name != nil && *u.Name != "" {
		a.Name = *u.Name
	}
}

// UpdateCurrentUser lets an account edit its own profile. Phone and password
// are changed through other flows.
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	var req profileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var (
		profile models.Profile
		err     error
	)
	switch sess.Role {
	case models.RoleUser:
		profile, err = asProfile(h.Store.UpdateUser(ctx, sess.ID, func(u *models.User) error {
			req.applyAccount(&u.Account)
			if req.Age != nil {
				u.Age = *req.Age
			}
			setString(&u.Gender, req.Gender)
			setString(&u.Village, req.Village)
			return nil
		}))
	case models.RoleDoctor:
		profile, err = asProfile(h.Store.UpdateDoctor(ctx, sess.ID, func(d *models.Doctor) error {
			req.applyAccount(&d.Account)
			setString(&d.Specialization, req.Specialization)
			setString(&d.Qualification, req.Qualification)
			setString(&d.Hospital, req.Hospital)
			if req.ExperienceYears != nil {
				d.ExperienceYears = *req.ExperienceYears
			}
			if req.ConsultationFee != nil {
				if *req.ConsultationFee < 0 {
					return storage.ErrInvalidInput
				}
				d.ConsultationFee = *req.ConsultationFee
			}
			if req.Available != nil {
				d.Available = *req.Available
			}
			return nil
		}))
	case models.RoleAsha:
		profile, err = asProfile(h.Store.UpdateAsha(ctx, sess.ID, func(a *models.Asha) error {
			req.applyAccount(&a.Account)
			setString(&a.WorkerID, req.WorkerID)
			setString(&a.Village, req.Village)
			setString(&a.District, req.District)
			setString(&a.PHC, req.PHC)
			return nil
		}))
	case models.RolePharmacy:
		profile, err = asProfile(h.Store.UpdatePharmacy(ctx, sess.ID, func(p *models.Pharmacy) error {
			req.applyAccount(&p.Account)
			setString(&p.OwnerName, req.OwnerName)
			setString(&p.Address, req.Address)
			setString(&p.LicenseNo, req.LicenseNo)
			return nil
		}))
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Unknown role"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	profile.Base().PasswordHash = ""
	c.JSON(http.StatusOK, profile)
}

func asProfile[T any, PT interface {
	*T
	models.Profile
}](entity PT, err error) (models.Profile, error) {
	if err != nil {
		return nil, err
	}
	return entity, nil
}
