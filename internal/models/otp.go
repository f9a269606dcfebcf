package models

import "time"

type OTPPurpose string

const (
	OTPRegister OTPPurpose = "register"
	OTPLogin    OTPPurpose = "login"
	OTPReset    OTPPurpose = "reset"
)

// OTP represents a one-time code sent to a phone number
type OTP struct {
	Phone     string     `bson:"phone" json:"phone"`
	Purpose   OTPPurpose `bson:"purpose" json:"purpose"`
	Code      string     `bson:"code" json:"code"`
	Attempts  int        `bson:"attempts" json:"attempts"`
	ExpiresAt time.Time  `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}

func (o OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
