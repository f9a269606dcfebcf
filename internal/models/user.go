package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser     Role = "user" // patient self-registered account
	RoleDoctor   Role = "doctor"
	RoleAsha     Role = "asha"
	RolePharmacy Role = "pharmacy"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDoctor, RoleAsha, RolePharmacy:
		return true
	}
	return false
}

// Account holds the identity fields every role shares. Phone is the natural key.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone" json:"phone"`
	PasswordHash string             `bson:"passwordHash" json:"passwordHash,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

type User struct {
	Account `bson:",inline"`
	Age     int    `bson:"age" json:"age"`
	Gender  string `bson:"gender" json:"gender"`
	Village string `bson:"village" json:"village"`
}

type Doctor struct {
	Account         `bson:",inline"`
	Specialization  string  `bson:"specialization" json:"specialization"`
	Qualification   string  `bson:"qualification" json:"qualification"`
	ExperienceYears int     `bson:"experienceYears" json:"experienceYears"`
	Hospital        string  `bson:"hospital" json:"hospital"`
	ConsultationFee float64 `bson:"consultationFee" json:"consultationFee"`
	Available       bool    `bson:"available" json:"available"`
}

type Asha struct {
	Account  `bson:",inline"`
	WorkerID string `bson:"workerId" json:"workerId"`
	Village  string `bson:"village" json:"village"`
	District string `bson:"district" json:"district"`
	PHC      string `bson:"phc" json:"phc"` // primary health centre
}

type Pharmacy struct {
	Account   `bson:",inline"`
	OwnerName string `bson:"ownerName" json:"ownerName"`
	Address   string `bson:"address" json:"address"`
	LicenseNo string `bson:"licenseNo" json:"licenseNo"`
}

// Public returns a copy safe to send to clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

func (d Doctor) Public() Doctor {
	d.PasswordHash = ""
	return d
}

func (a Asha) Public() Asha {
	a.PasswordHash = ""
	return a
}

func (p Pharmacy) Public() Pharmacy {
	p.PasswordHash = ""
	return p
}

// Base exposes the shared identity fields of any role entity.
func (a *Account) Base() *Account { return a }

// Profile is implemented by *User, *Doctor, *Asha and *Pharmacy.
type Profile interface {
	Base() *Account
}
