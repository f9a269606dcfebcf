// Package auth registers accounts, checks credentials and tracks who is
// logged in through the session pointer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/otp"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
	"github.com/harentsoaR/esannidhi-api/internal/utils"
	"go.uber.org/zap"
)

const MinPasswordLength = 6

var (
	// ErrInvalidCredentials is returned for an unknown phone or wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession is returned when nobody is logged in
	ErrNoSession = errors.New("no active session")

	// ErrOTPRequired is returned when registration needs a verified code and none was given
	ErrOTPRequired = errors.New("otp verification required")
)

type Options struct {
	BcryptCost int
	// RequireRegisterOTP makes Register verify a "register" code first.
	RequireRegisterOTP bool
}

type Service struct {
	store  *storage.Service
	otps   *otp.Service
	tokens *utils.TokenIssuer
	opts   Options
	logger *zap.Logger
}

func NewService(store *storage.Service, otps *otp.Service, tokens *utils.TokenIssuer, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, otps: otps, tokens: tokens, opts: opts, logger: logger}
}

// RegisterInput carries the shared fields plus the profile fields of every
// role; fields that do not apply to the chosen role are ignored.
type RegisterInput struct {
	Role     models.Role `json:"role" binding:"required"`
	Name     string      `json:"name" binding:"required"`
	Phone    string      `json:"phone" binding:"required"`
	Password string      `json:"password" binding:"required"`
	OTP      string      `json:"otp"`

	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Village string `json:"village"`

	Specialization  string  `json:"specialization"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experienceYears"`
	Hospital        string  `json:"hospital"`
	ConsultationFee float64 `json:"consultationFee"`

	WorkerID string `json:"workerId"`
	District string `json:"district"`
	PHC      string `json:"phc"`

	OwnerName string `json:"ownerName"`
	Address   string `json:"address"`
	LicenseNo string `json:"licenseNo"`
}

// Result is what a successful register or login hands back.
type Result struct {
	Token   string         `json:"token"`
	Session models.Session `json:"session"`
	Account models.Profile `json:"user"`
}

func (in RegisterInput) entity(hash string) models.Profile {
	acct := models.Account{Name: in.Name, Phone: in.Phone, PasswordHash: hash}
	switch in.Role {
	case models.RoleDoctor:
		return &models.Doctor{
			Account:         acct,
			Specialization:  in.Specialization,
			Qualification:   in.Qualification,
			ExperienceYears: in.ExperienceYears,
			Hospital:        in.Hospital,
			ConsultationFee: in.ConsultationFee,
			Available:       true,
		}
	case models.RoleAsha:
		return &models.Asha{Account: acct, WorkerID: in.WorkerID, Village: in.Village, District: in.District, PHC: in.PHC}
	case models.RolePharmacy:
		return &models.Pharmacy{Account: acct, OwnerName: in.OwnerName, Address: in.Address, LicenseNo: in.LicenseNo}
	default:
		return &models.User{Account: acct, Age: in.Age, Gender: in.Gender, Village: in.Village}
	}
}

func (s *Service) create(ctx context.Context, p models.Profile) error {
	switch e := p.(type) {
	case *models.User:
		return s.store.CreateUser(ctx, e)
	case *models.Doctor:
		return s.store.CreateDoctor(ctx, e)
	case *models.Asha:
		return s.store.CreateAsha(ctx, e)
	case *models.Pharmacy:
		return s.store.CreatePharmacy(ctx, e)
	}
	return fmt.Errorf("auth: unsupported profile %T", p)
}

// Register creates an account after a linear phone-uniqueness scan of the
// role's collection, and logs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", storage.ErrInvalidInput, in.Role)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", storage.ErrInvalidInput, MinPasswordLength)
	}
	in.Phone = storage.NormalizePhone(in.Phone)

	taken, err := s.store.PhoneRegistered(ctx, in.Role, in.Phone)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, storage.ErrPhoneTaken
	}

	if s.opts.RequireRegisterOTP {
		if strings.TrimSpace(in.OTP) == "" {
			return nil, ErrOTPRequired
		}
		if err := s.otps.Verify(ctx, in.Phone, models.OTPRegister, in.OTP); err != nil {
			return nil, err
		}
	}

	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to hash password: %w", err)
	}
	entity := in.entity(hash)
	if err := s.create(ctx, entity); err != nil {
		return nil, err
	}
	s.logger.Info("account registered", zap.String("role", string(in.Role)), zap.String("id", entity.Base().ID.Hex()))
	return s.startSession(ctx, in.Role, entity)
}

// Login checks phone and password against the role's collection.
func (s *Service) Login(ctx context.Context, role models.Role, phone, password string) (*Result, error) {
	entity, err := s.lookup(ctx, role, phone)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, entity.Base().PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(ctx, role, entity)
}

// LoginWithOTP logs in with a "login" code instead of a password.
func (s *Service) LoginWithOTP(ctx context.Context, role models.Role, phone, code string) (*Result, error) {
	entity, err := s.lookup(ctx, role, phone)
	if err != nil {
		return nil, err
	}
	if err := s.otps.Verify(ctx, phone, models.OTPLogin, code); err != nil {
		return nil, err
	}
	return s.startSession(ctx, role, entity)
}

// ResetPassword replaces the password after a "reset" code is verified.
func (s *Service) ResetPassword(ctx context.Context, role models.Role, phone, code, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", storage.ErrInvalidInput, MinPasswordLength)
	}
	entity, err := s.lookup(ctx, role, phone)
	if err != nil {
		return err
	}
	if err := s.otps.Verify(ctx, phone, models.OTPReset, code); err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword, s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return s.store.SetPasswordHash(ctx, role, entity.Base().ID.Hex(), hash)
}

func (s *Service) lookup(ctx context.Context, role models.Role, phone string) (models.Profile, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", storage.ErrInvalidInput, role)
	}
	entity, err := s.store.AccountByPhone(ctx, role, phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return entity, nil
}

func (s *Service) startSession(ctx context.Context, role models.Role, entity models.Profile) (*Result, error) {
	base := entity.Base()
	sess := models.Session{Role: role, ID: base.ID.Hex(), Name: base.Name}
	if err := s.store.SetSession(ctx, sess); err != nil {
		return nil, err
	}
	res := &Result{Session: sess, Account: scrub(entity)}
	if s.tokens != nil {
		token, err := s.IssueToken(sess)
		if err != nil {
			return nil, err
		}
		res.Token = token
	}
	return res, nil
}

// IssueToken signs a bearer token carrying the pointer.
func (s *Service) IssueToken(sess models.Session) (string, error) {
	if s.tokens == nil {
		return "", utils.ErrJWTSecretMissing
	}
	token, err := s.tokens.GenerateJWT(sess)
	if err != nil {
		return "", fmt.Errorf("auth: could not generate token: %w", err)
	}
	return token, nil
}

// Logout clears the session pointer.
func (s *Service) Logout(ctx context.Context) error {
	return s.store.ClearSession(ctx)
}

// CurrentSession returns the stored pointer or ErrNoSession.
func (s *Service) CurrentSession(ctx context.Context) (*models.Session, error) {
	sess, err := s.store.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}

// CurrentUser follows the session pointer into the role's collection. A
// pointer whose entity has been removed yields storage.ErrNotFound.
func (s *Service) CurrentUser(ctx context.Context) (models.Profile, error) {
	sess, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, *sess)
}

// Resolve looks up the entity a session pointer names.
func (s *Service) Resolve(ctx context.Context, sess models.Session) (models.Profile, error) {
	entity, err := s.store.AccountByID(ctx, sess.Role, sess.ID)
	if err != nil {
		return nil, err
	}
	return scrub(entity), nil
}

// ParseToken validates a bearer token and returns the pointer it carries.
func (s *Service) ParseToken(token string) (*models.Session, error) {
	if s.tokens == nil {
		return nil, utils.ErrJWTSecretMissing
	}
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, err
	}
	sess := claims.Session()
	return &sess, nil
}

// scrub clears the password hash. Entities come fresh from storage, so this
// never touches stored data.
func scrub(p models.Profile) models.Profile {
	p.Base().PasswordHash = ""
	return p
}
