package entity

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderInDelivery OrderStatus = "in_delivery"
	OrderDelivered  OrderStatus = "delivered"
	// OrderCancelled is only ever set outside the app.
	OrderCancelled OrderStatus = "cancelled"
)

var nextStatus = map[OrderStatus]OrderStatus{
	OrderProcessing: OrderInDelivery,
	OrderInDelivery: OrderDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderProcessing, OrderInDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanAdvance allows exactly one forward step along
// processing -> in_delivery -> delivered.
func (s OrderStatus) CanAdvance(to OrderStatus) error {
	if s.Terminal() {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, s)
	}
	if next, ok := nextStatus[s]; !ok || next != to {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, s, to)
	}
	return nil
}

type PaymentMethod string

const (
	PaymentUPI   PaymentMethod = "UPI"
	PaymentPhone PaymentMethod = "PHONE"
	PaymentCOD   PaymentMethod = "COD"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentUPI || m == PaymentPhone || m == PaymentCOD
}

// Order is written once per consumed cart line. Only Status changes later.
type Order struct {
	ID             string  `json:"id" firestore:"id"`
	CropName       string  `json:"crop_name" firestore:"cropName"`
	Quantity       int     `json:"quantity" firestore:"quantity"`
	TotalPrice     float64 `json:"total_price" firestore:"totalPrice"`
	DeliveryCharge int64   `json:"delivery_charge" firestore:"deliveryCharge"`
	FinalPay       float64 `json:"final_pay" firestore:"finalPay"`

	OrderType  string     `json:"order_type" firestore:"orderType"`
	SourceType SourceType `json:"source_type" firestore:"sourceType"`
	SourceID   string     `json:"source_id" firestore:"sourceId"`
	CartLineID string     `json:"cart_line_id" firestore:"cartLineId"`

	FarmerID        string `json:"farmer_id" firestore:"farmerId"`
	FarmerName      string `json:"farmer_name" firestore:"farmerName"`
	FarmerPhone     string `json:"farmer_phone" firestore:"farmerPhone"`
	FarmerPaymentID string `json:"farmer_payment_id" firestore:"farmerPaymentId"`

	ConsumerID      string `json:"consumer_id" firestore:"consumerId"`
	ConsumerName    string `json:"consumer_name" firestore:"consumerName"`
	ConsumerPhone   string `json:"consumer_phone" firestore:"consumerPhone"`
	DeliveryAddress string `json:"delivery_address" firestore:"deliveryAddress"`

	PaymentMethod PaymentMethod `json:"payment_method" firestore:"paymentMethod"`
	Status        OrderStatus   `json:"status" firestore:"status"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Counts reports whether the order contributes to spend and income totals.
func (o *Order) Counts() bool {
	return o.Status != OrderCancelled
}
