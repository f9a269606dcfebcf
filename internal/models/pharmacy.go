package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Medicine is one line of a pharmacy's inventory.
type Medicine struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PharmacyID   string             `bson:"pharmacyId" json:"pharmacyId"`
	Name         string             `bson:"name" json:"name"`
	Manufacturer string             `bson:"manufacturer" json:"manufacturer"`
	Price        float64            `bson:"price" json:"price"`
	Stock        int                `bson:"stock" json:"stock"`
	Unit         string             `bson:"unit" json:"unit"`
	ExpiryDate   string             `bson:"expiryDate" json:"expiryDate"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CartItem struct {
	OwnerRole  Role    `bson:"ownerRole" json:"ownerRole"`
	OwnerID    string  `bson:"ownerId" json:"ownerId"`
	MedicineID string  `bson:"medicineId" json:"medicineId"`
	PharmacyID string  `bson:"pharmacyId" json:"pharmacyId"`
	Name       string  `bson:"name" json:"name"`
	Price      float64 `bson:"price" json:"price"`
	Quantity   int     `bson:"quantity" json:"quantity"`
}

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderAccepted  OrderStatus = "accepted"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced:   {OrderAccepted, OrderCancelled},
	OrderAccepted: {OrderReady, OrderCancelled},
	OrderReady:    {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) CanMoveTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderItem struct {
	MedicineID string  `bson:"medicineId" json:"medicineId"`
	Name       string  `bson:"name" json:"name"`
	Price      float64 `bson:"price" json:"price"`
	Quantity   int     `bson:"quantity" json:"quantity"`
}

func (i OrderItem) Amount() float64 {
	return i.Price * float64(i.Quantity)
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID      string             `bson:"patientId,omitempty" json:"patientId,omitempty"`
	OwnerRole      Role               `bson:"ownerRole" json:"ownerRole"`
	OwnerID        string             `bson:"ownerId" json:"ownerId"`
	PharmacyID     string             `bson:"pharmacyId" json:"pharmacyId"`
	PrescriptionID string             `bson:"prescriptionId,omitempty" json:"prescriptionId,omitempty"`
	Items          []OrderItem        `bson:"items" json:"items"`
	Total          float64            `bson:"total" json:"total"`
	Status         OrderStatus        `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Bill carries the ordering account so the buyer can read it back.
type Bill struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID    string             `bson:"orderId" json:"orderId"`
	PharmacyID string             `bson:"pharmacyId" json:"pharmacyId"`
	PatientID  string             `bson:"patientId,omitempty" json:"patientId,omitempty"`
	OwnerRole  Role               `bson:"ownerRole" json:"ownerRole"`
	OwnerID    string             `bson:"ownerId" json:"ownerId"`
	Items      []OrderItem        `bson:"items" json:"items"`
	Subtotal   float64            `bson:"subtotal" json:"subtotal"`
	Discount   float64            `bson:"discount" json:"discount"`
	Total      float64            `bson:"total" json:"total"`
	Paid       bool               `bson:"paid" json:"paid"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
