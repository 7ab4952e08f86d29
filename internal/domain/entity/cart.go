package entity

import "time"

type SourceType string

const (
	SourceCrop SourceType = "crop"
	SourcePool SourceType = "pool"
)

func (s SourceType) Valid() bool {
	return s == SourceCrop || s == SourcePool
}

// OrderType is the order-side name for a source type.
func (s SourceType) OrderType() string {
	if s == SourcePool {
		return "pool"
	}
	return "direct"
}

// CartLine is a consumer's pending selection. The farmer fields are a
// snapshot taken at SnapshotAt; ID equals SourceID so re-adding a source
// overwrites the earlier line.
type CartLine struct {
	ID         string     `json:"id" firestore:"id"`
	SourceType SourceType `json:"source_type" firestore:"sourceType"`
	SourceID   string     `json:"source_id" firestore:"sourceId"`
	CropName   string     `json:"crop_name" firestore:"cropName"`
	Price      float64    `json:"price" firestore:"price"`
	Quantity   int        `json:"quantity" firestore:"quantity"`
	TotalPrice float64    `json:"total_price" firestore:"totalPrice"`

	FarmerID        string `json:"farmer_id" firestore:"farmerId"`
	FarmerName      string `json:"farmer_name" firestore:"farmerName"`
	FarmerPhone     string `json:"farmer_phone" firestore:"farmerPhone"`
	FarmerPaymentID string `json:"farmer_payment_id" firestore:"farmerPaymentId"`

	// Token changes on every write of the line and keys order idempotency.
	Token      string    `json:"token" firestore:"token"`
	SnapshotAt time.Time `json:"snapshot_at" firestore:"snapshotAt"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}
