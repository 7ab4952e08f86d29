package entity

import (
	"fmt"
	"time"
)

type Season string

const (
	SeasonKharif Season = "kharif"
	SeasonRabi   Season = "rabi"
	SeasonSummer Season = "summer"
)

var Seasons = []Season{SeasonKharif, SeasonRabi, SeasonSummer}

func (s Season) Valid() bool {
	for _, v := range Seasons {
		if s == v {
			return true
		}
	}
	return false
}

type Quality string

const (
	QualityPremium  Quality = "premium"
	QualityStandard Quality = "standard"
	QualityEconomy  Quality = "economy"
)

func (q Quality) Valid() bool {
	return q == QualityPremium || q == QualityStandard || q == QualityEconomy
}

const (
	CropStatusActive  = "active"
	CropStatusSoldOut = "sold_out"
)

// Crop is one farmer's sellable lot. Quantity is in quintals.
type Crop struct {
	ID        string  `json:"id" firestore:"id"`
	FarmerID  string  `json:"farmer_id" firestore:"farmerId"`
	CropType  string  `json:"crop_type" firestore:"cropType"`
	Region    string  `json:"region" firestore:"region"`
	Season    Season  `json:"season" firestore:"season"`
	Quality   Quality `json:"quality" firestore:"quality"`
	Quantity  int     `json:"quantity" firestore:"quantity"`
	BasePrice float64 `json:"base_price" firestore:"basePrice"`
	Status    string  `json:"status" firestore:"status"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Take removes qty from the lot, failing if not enough remains.
func (c *Crop) Take(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if c.Quantity < qty {
		return ErrInsufficientStock
	}
	c.Quantity -= qty
	c.syncStatus()
	return nil
}

// Restore puts qty back, used when an order write fails after the decrement.
func (c *Crop) Restore(qty int) {
	c.Quantity += qty
	c.syncStatus()
}

func (c *Crop) syncStatus() {
	if c.Quantity == 0 {
		c.Status = CropStatusSoldOut
	} else {
		c.Status = CropStatusActive
	}
}

// ListingValue is quantity × base price, used by the sales analytics.
func (c *Crop) ListingValue() float64 {
	return LineTotal(c.BasePrice, c.Quantity)
}
