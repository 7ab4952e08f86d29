package entity

import (
	"strings"
	"time"
)

type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleConsumer Role = "consumer"
)

func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleConsumer
}

// Farm is the farmer-only sub-record of a profile.
type Farm struct {
	Size        float64 `json:"size" firestore:"size"`
	Unit        string  `json:"unit" firestore:"unit"`
	Location    string  `json:"location" firestore:"location"`
	MemberSince string  `json:"member_since" firestore:"memberSince"`
}

type User struct {
	ID        string `json:"id" firestore:"id"`
	Email     string `json:"email" firestore:"email"`
	Role      Role   `json:"role" firestore:"role"`
	FullName  string `json:"full_name" firestore:"fullName"`
	Phone     string `json:"phone" firestore:"phone"`
	PaymentID string `json:"payment_id,omitempty" firestore:"paymentId,omitempty"`

	Address string `json:"address,omitempty" firestore:"address,omitempty"`
	City    string `json:"city,omitempty" firestore:"city,omitempty"`
	State   string `json:"state,omitempty" firestore:"state,omitempty"`
	Pincode string `json:"pincode,omitempty" firestore:"pincode,omitempty"`

	Farm       *Farm    `json:"farm,omitempty" firestore:"farm,omitempty"`
	CropsGrown []string `json:"crops_grown,omitempty" firestore:"cropsGrown,omitempty"`

	Rating      float64 `json:"rating" firestore:"rating"`
	RatingCount int     `json:"rating_count" firestore:"ratingCount"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsFarmer() bool {
	return u.Role == RoleFarmer
}

func (u *User) IsConsumer() bool {
	return u.Role == RoleConsumer
}

// DeliveryAddress joins the non-empty address parts into a single line.
func (u *User) DeliveryAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{u.Address, u.City, u.State, u.Pincode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ApplyRating folds one new rating into the stored running average.
func (u *User) ApplyRating(rating int) {
	u.Rating = RunningAverage(u.Rating, u.RatingCount, rating)
	u.RatingCount++
}

// Contact is the public subset of a farmer profile shown next to listings.
type Contact struct {
	Name             string    `json:"farmer_name"`
	Phone            string    `json:"farmer_phone"`
	PaymentID        string    `json:"farmer_payment_id"`
	ProfileUpdatedAt time.Time `json:"-"`
}

func (u *User) Contact() Contact {
	if u == nil {
		return Contact{}
	}
	return Contact{
		Name:             u.FullName,
		Phone:            u.Phone,
		PaymentID:        u.PaymentID,
		ProfileUpdatedAt: u.UpdatedAt,
	}
}

// ValidPaymentID reports whether id looks like a UPI handle: one '@' with
// text on both sides.
func ValidPaymentID(id string) bool {
	id = strings.TrimSpace(id)
	at := strings.IndexByte(id, '@')
	if at <= 0 || at == len(id)-1 {
		return false
	}
	return strings.Count(id, "@") == 1 && !strings.ContainsAny(id, " \t")
}
