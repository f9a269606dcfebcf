package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Patient struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerRole      Role               `bson:"ownerRole" json:"ownerRole"`
	OwnerID        string             `bson:"ownerId" json:"ownerId"`
	Name           string             `bson:"name" json:"name"`
	Age            int                `bson:"age" json:"age"`
	Gender         string             `bson:"gender" json:"gender"`
	Phone          string             `bson:"phone" json:"phone"`
	Village        string             `bson:"village" json:"village"`
	BloodGroup     string             `bson:"bloodGroup" json:"bloodGroup"`
	Allergies      string             `bson:"allergies" json:"allergies"`
	MedicalHistory string             `bson:"medicalHistory" json:"medicalHistory"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const (
	RecordVitals = "vitals"
	RecordNote   = "note"
	RecordLab    = "lab"
)

type Vitals struct {
	BloodPressure string  `bson:"bp,omitempty" json:"bp,omitempty"`
	Pulse         int     `bson:"pulse,omitempty" json:"pulse,omitempty"`
	Temperature   float64 `bson:"temperature,omitempty" json:"temperature,omitempty"`
	SpO2          int     `bson:"spo2,omitempty" json:"spo2,omitempty"`
	WeightKg      float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	BloodSugar    float64 `bson:"sugar,omitempty" json:"sugar,omitempty"`
}

type HealthRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID      string             `bson:"patientId" json:"patientId"`
	RecordedByRole Role               `bson:"recordedByRole" json:"recordedByRole"`
	RecordedByID   string             `bson:"recordedById" json:"recordedById"`
	Kind           string             `bson:"kind" json:"kind"`
	Title          string             `bson:"title" json:"title"`
	Notes          string             `bson:"notes" json:"notes"`
	Vitals         *Vitals            `bson:"vitals,omitempty" json:"vitals,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
