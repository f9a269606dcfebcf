package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VisitStatus string

const (
	VisitRequested  VisitStatus = "requested"
	VisitAccepted   VisitStatus = "accepted"
	VisitInProgress VisitStatus = "in_progress"
	VisitCompleted  VisitStatus = "completed"
	VisitCancelled  VisitStatus = "cancelled"
)

// A doctor may prescribe straight from a request, which completes it.
var visitTransitions = map[VisitStatus][]VisitStatus{
	VisitRequested:  {VisitAccepted, VisitInProgress, VisitCompleted, VisitCancelled},
	VisitAccepted:   {VisitInProgress, VisitCompleted, VisitCancelled},
	VisitInProgress: {VisitCompleted, VisitCancelled},
}

// CanMoveTo reports whether a visit in status s may move to next.
// Completed and cancelled visits are final.
func (s VisitStatus) CanMoveTo(next VisitStatus) bool {
	for _, allowed := range visitTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Visit is a teleconsultation between a patient and a doctor, requested by
// the patient themselves or by an ASHA on their behalf.
type Visit struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID       string             `bson:"patientId" json:"patientId"`
	PatientName     string             `bson:"patientName" json:"patientName"`
	DoctorID        string             `bson:"doctorId" json:"doctorId"`
	DoctorName      string             `bson:"doctorName" json:"doctorName"`
	RequestedByRole Role               `bson:"requestedByRole" json:"requestedByRole"`
	RequestedByID   string             `bson:"requestedById" json:"requestedById"`
	Symptoms        string             `bson:"symptoms" json:"symptoms"`
	Status          VisitStatus        `bson:"status" json:"status"`
	RoomID          string             `bson:"roomId" json:"roomId"`
	ScheduledAt     *time.Time         `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	Notes           string             `bson:"notes" json:"notes"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
