package entity

import "time"

// Review lives under users/{farmerId}/reviews and is never edited.
type Review struct {
	ID         string    `json:"id" firestore:"id"`
	FarmerID   string    `json:"farmer_id" firestore:"farmerId"`
	ConsumerID string    `json:"consumer_id" firestore:"consumerId"`
	Rating     int       `json:"rating" firestore:"rating"`
	Review     string    `json:"review" firestore:"review"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}
