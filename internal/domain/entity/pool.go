package entity

import (
	"fmt"
	"math"
	"time"
)

const (
	PoolStatusActive = "active"
	PoolStatusClosed = "closed"
)

// Pool aggregates quantity from several farmers up to a target.
//
// Joins grow CurrentQuantity; orders grow SoldQuantity. The two counters are
// kept apart so a sale never erases a member's contribution.
type Pool struct {
	ID              string  `json:"id" firestore:"id"`
	CropType        string  `json:"crop_type" firestore:"cropType"`
	Region          string  `json:"region,omitempty" firestore:"region,omitempty"`
	Season          Season  `json:"season,omitempty" firestore:"season,omitempty"`
	Price           float64 `json:"price" firestore:"price"`
	TargetQuantity  int     `json:"target_quantity" firestore:"targetQuantity"`
	CurrentQuantity int     `json:"current_quantity" firestore:"currentQuantity"`
	SoldQuantity    int     `json:"sold_quantity" firestore:"soldQuantity"`
	MembersCount    int     `json:"members_count" firestore:"membersCount"`
	Status          string  `json:"status" firestore:"status"`
	CreatedBy       string  `json:"created_by" firestore:"createdBy"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (p *Pool) IsClosed() bool {
	return p.Status == PoolStatusClosed
}

// Available is what can still be sold from the pool.
func (p *Pool) Available() int {
	if p.IsClosed() {
		return 0
	}
	if n := p.CurrentQuantity - p.SoldQuantity; n > 0 {
		return n
	}
	return 0
}

func (p *Pool) Remaining() int {
	return p.TargetQuantity - p.CurrentQuantity
}

func (p *Pool) FillPercentage() int {
	if p.TargetQuantity <= 0 {
		return 0
	}
	pct := int(math.Round(float64(p.CurrentQuantity) / float64(p.TargetQuantity) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// Join adds a member contribution and closes the pool when it fills.
func (p *Pool) Join(qty int, newMember bool) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if p.IsClosed() {
		return ErrPoolClosed
	}
	if p.CurrentQuantity+qty > p.TargetQuantity {
		return fmt.Errorf("%w: %d remaining", ErrPoolCapacity, p.Remaining())
	}
	p.CurrentQuantity += qty
	if newMember {
		p.MembersCount++
	}
	if p.CurrentQuantity >= p.TargetQuantity {
		p.Status = PoolStatusClosed
	}
	return nil
}

// Sell reserves qty of the pooled stock for an order.
func (p *Pool) Sell(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if p.IsClosed() {
		return ErrPoolClosed
	}
	if p.Available() < qty {
		return ErrInsufficientStock
	}
	p.SoldQuantity += qty
	return nil
}

// Unsell reverses a Sell whose order could not be written.
func (p *Pool) Unsell(qty int) {
	p.SoldQuantity -= qty
	if p.SoldQuantity < 0 {
		p.SoldQuantity = 0
	}
}

// PoolMember records one farmer's contribution to a pool.
type PoolMember struct {
	ID       string    `json:"id" firestore:"id"`
	PoolID   string    `json:"pool_id" firestore:"poolId"`
	FarmerID string    `json:"farmer_id" firestore:"farmerId"`
	Quantity int       `json:"quantity" firestore:"quantity"`
	JoinedAt time.Time `json:"joined_at" firestore:"joinedAt"`
}

func PoolMemberID(poolID, farmerID string) string {
	return poolID + "_" + farmerID
}
