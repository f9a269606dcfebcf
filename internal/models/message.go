package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VisitID   string             `bson:"visitId,omitempty" json:"visitId,omitempty"`
	FromRole  Role               `bson:"fromRole" json:"fromRole"`
	FromID    string             `bson:"fromId" json:"fromId"`
	FromName  string             `bson:"fromName" json:"fromName"`
	ToRole    Role               `bson:"toRole" json:"toRole"`
	ToID      string             `bson:"toId" json:"toId"`
	Text      string             `bson:"text" json:"text"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
