package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var accountKeys = map[models.Role]string{
	models.RoleUser:     kv.Users,
	models.RoleDoctor:   kv.Doctors,
	models.RoleAsha:     kv.Ashas,
	models.RolePharmacy: kv.Pharmacies,
}

type accountPtr[T any] interface {
	*T
	models.Profile
}

func collectionFor(role models.Role) (string, error) {
	key, ok := accountKeys[role]
	if !ok {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return key, nil
}

// NormalizePhone keeps digits only and drops an Indian +91 prefix on 12-digit input.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) == 12 && strings.HasPrefix(d, "91") {
		return d[2:]
	}
	return d
}

func createAccount[T any, PT accountPtr[T]](ctx context.Context, s *Service, key string, entity PT) error {
	base := entity.Base()
	base.Name = strings.TrimSpace(base.Name)
	base.Phone = NormalizePhone(base.Phone)
	if base.Name == "" || base.Phone == "" {
		return fmt.Errorf("%w: name and phone are required", ErrInvalidInput)
	}

	return mutate(ctx, s, key, func(items []T) ([]T, error) {
		// uniqueness is a linear scan of the role's own collection
		for i := range items {
			if PT(&items[i]).Base().Phone == base.Phone {
				return nil, ErrPhoneTaken
			}
		}
		base.ID = primitive.NewObjectID()
		base.CreatedAt = s.now()
		s.logger.Info("account created", zap.String("collection", key), zap.String("id", base.ID.Hex()))
		return append(items, *entity), nil
	})
}

func getAccount[T any, PT accountPtr[T]](ctx context.Context, s *Service, key, id string) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	items, err := load[T](ctx, s.store, key)
	if err != nil {
		return nil, err
	}
	found, ok := lo.Find(items, func(item T) bool { return PT(&item).Base().ID == oid })
	if !ok {
		return nil, ErrNotFound
	}
	return &found, nil
}

func getAccountByPhone[T any, PT accountPtr[T]](ctx context.Context, s *Service, key, phone string) (*T, error) {
	phone = NormalizePhone(phone)
	items, err := load[T](ctx, s.store, key)
	if err != nil {
		return nil, err
	}
	found, ok := lo.Find(items, func(item T) bool { return PT(&item).Base().Phone == phone })
	if !ok {
		return nil, ErrNotFound
	}
	return &found, nil
}

// updateAccount applies fn to the stored entity. ID, phone and creation time are kept.
func updateAccount[T any, PT accountPtr[T]](ctx context.Context, s *Service, key, id string, fn func(PT) error) (*T, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var updated T
	err = mutate(ctx, s, key, func(items []T) ([]T, error) {
		for i := range items {
			base := PT(&items[i]).Base()
			if base.ID != oid {
				continue
			}
			keep := *base
			if err := fn(PT(&items[i])); err != nil {
				return nil, err
			}
			base.ID, base.Phone, base.CreatedAt = keep.ID, keep.Phone, keep.CreatedAt
			if strings.TrimSpace(base.Name) == "" {
				base.Name = keep.Name
			}
			updated = items[i]
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) CreateUser(ctx context.Context, u *models.User) error {
	return createAccount(ctx, s, kv.Users, u)
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	return getAccount[models.User](ctx, s, kv.Users, id)
}

func (s *Service) UpdateUser(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	return updateAccount(ctx, s, kv.Users, id, fn)
}

func (s *Service) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	return createAccount(ctx, s, kv.Doctors, d)
}

func (s *Service) GetDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	return getAccount[models.Doctor](ctx, s, kv.Doctors, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, id string, fn func(*models.Doctor) error) (*models.Doctor, error) {
	return updateAccount(ctx, s, kv.Doctors, id, fn)
}

// ListDoctors returns all doctors, or only those marked available.
func (s *Service) ListDoctors(ctx context.Context, onlyAvailable bool) ([]models.Doctor, error) {
	doctors, err := load[models.Doctor](ctx, s.store, kv.Doctors)
	if err != nil {
		return nil, err
	}
	if onlyAvailable {
		doctors = lo.Filter(doctors, func(d models.Doctor, _ int) bool { return d.Available })
	}
	return doctors, nil
}

func (s *Service) CreateAsha(ctx context.Context, a *models.Asha) error {
	return createAccount(ctx, s, kv.Ashas, a)
}

func (s *Service) GetAsha(ctx context.Context, id string) (*models.Asha, error) {
	return getAccount[models.Asha](ctx, s, kv.Ashas, id)
}

func (s *Service) UpdateAsha(ctx context.Context, id string, fn func(*models.Asha) error) (*models.Asha, error) {
	return updateAccount(ctx, s, kv.Ashas, id, fn)
}

func (s *Service) CreatePharmacy(ctx context.Context, p *models.Pharmacy) error {
	return createAccount(ctx, s, kv.Pharmacies, p)
}

func (s *Service) GetPharmacy(ctx context.Context, id string) (*models.Pharmacy, error) {
	return getAccount[models.Pharmacy](ctx, s, kv.Pharmacies, id)
}

func (s *Service) UpdatePharmacy(ctx context.Context, id string, fn func(*models.Pharmacy) error) (*models.Pharmacy, error) {
	return updateAccount(ctx, s, kv.Pharmacies, id, fn)
}

func (s *Service) ListPharmacies(ctx context.Context) ([]models.Pharmacy, error) {
	return load[models.Pharmacy](ctx, s.store, kv.Pharmacies)
}

// PhoneRegistered reports whether phone is already used within role.
func (s *Service) PhoneRegistered(ctx context.Context, role models.Role, phone string) (bool, error) {
	_, err := s.AccountByPhone(ctx, role, phone)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// AccountByPhone finds the entity of the given role by phone.
func (s *Service) AccountByPhone(ctx context.Context, role models.Role, phone string) (models.Profile, error) {
	key, err := collectionFor(role)
	if err != nil {
		return nil, err
	}
	switch role {
	case models.RoleUser:
		return asProfile(getAccountByPhone[models.User](ctx, s, key, phone))
	case models.RoleDoctor:
		return asProfile(getAccountByPhone[models.Doctor](ctx, s, key, phone))
	case models.RoleAsha:
		return asProfile(getAccountByPhone[models.Asha](ctx, s, key, phone))
	default:
		return asProfile(getAccountByPhone[models.Pharmacy](ctx, s, key, phone))
	}
}

// AccountByID finds the entity of the given role by id.
func (s *Service) AccountByID(ctx context.Context, role models.Role, id string) (models.Profile, error) {
	key, err := collectionFor(role)
	if err != nil {
		return nil, err
	}
	switch role {
	case models.RoleUser:
		return asProfile(getAccount[models.User](ctx, s, key, id))
	case models.RoleDoctor:
		return asProfile(getAccount[models.Doctor](ctx, s, key, id))
	case models.RoleAsha:
		return asProfile(getAccount[models.Asha](ctx, s, key, id))
	default:
		return asProfile(getAccount[models.Pharmacy](ctx, s, key, id))
	}
}

// SetPasswordHash replaces the stored hash for the account of role with the given id.
func (s *Service) SetPasswordHash(ctx context.Context, role models.Role, id, hash string) error {
	key, err := collectionFor(role)
	if err != nil {
		return err
	}
	set := func(p models.Profile) error {
		p.Base().PasswordHash = hash
		return nil
	}
	switch role {
	case models.RoleUser:
		_, err = updateAccount(ctx, s, key, id, func(u *models.User) error { return set(u) })
	case models.RoleDoctor:
		_, err = updateAccount(ctx, s, key, id, func(d *models.Doctor) error { return set(d) })
	case models.RoleAsha:
		_, err = updateAccount(ctx, s, key, id, func(a *models.Asha) error { return set(a) })
	default:
		_, err = updateAccount(ctx, s, key, id, func(p *models.Pharmacy) error { return set(p) })
	}
	return err
}

func asProfile[T any, PT accountPtr[T]](entity PT, err error) (models.Profile, error) {
	if err != nil {
		return nil, err
	}
	return entity, nil
}
