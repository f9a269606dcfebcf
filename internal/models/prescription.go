package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PrescriptionItem struct {
	Medicine     string `bson:"medicine" json:"medicine"`
	Dosage       string `bson:"dosage" json:"dosage"`
	Frequency    string `bson:"frequency" json:"frequency"`
	DurationDays int    `bson:"durationDays" json:"durationDays"`
	Instructions string `bson:"instructions" json:"instructions"`
}

type Prescription struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VisitID     string             `bson:"visitId" json:"visitId"`
	PatientID   string             `bson:"patientId" json:"patientId"`
	PatientName string             `bson:"patientName" json:"patientName"`
	DoctorID    string             `bson:"doctorId" json:"doctorId"`
	DoctorName  string             `bson:"doctorName" json:"doctorName"`
	Items       []PrescriptionItem `bson:"items" json:"items"`
	Advice      string             `bson:"advice" json:"advice"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
