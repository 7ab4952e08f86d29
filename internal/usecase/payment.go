package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"agrimarket/internal/domain/entity"
)

// PaymentHandoff tells the consumer how to pay the farmer. Nothing here is
// verified; the order stays in processing whatever happens.
type PaymentHandoff struct {
	Method  entity.PaymentMethod `json:"method"`
	Amount  float64              `json:"amount"`
	UPILink string               `json:"upi_link,omitempty"`
	Phone   string               `json:"phone,omitempty"`
	TelLink string               `json:"tel_link,omitempty"`
	Note    string               `json:"note,omitempty"`
}

func paymentNote(o *entity.Order) string {
	short := o.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Order %s - %s", short, o.CropName)
}

// UPILink builds a upi://pay deep link for the given payee and amount.
func UPILink(payeeID, payeeName string, amount float64, note string) string {
	params := []struct{ k, v string }{
		{"pa", payeeID},
		{"pn", payeeName},
		{"am", entity.FormatAmount(amount)},
		{"cu", "INR"},
		{"tn", note},
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.k+"="+strings.ReplaceAll(url.QueryEscape(p.v), "+", "%20"))
	}
	return "upi://pay?" + strings.Join(parts, "&")
}

// BuildHandoff returns nil for cash on delivery.
func BuildHandoff(o *entity.Order) *PaymentHandoff {
	switch o.PaymentMethod {
	case entity.PaymentUPI:
		note := paymentNote(o)
		return &PaymentHandoff{
			Method:  entity.PaymentUPI,
			Amount:  o.FinalPay,
			UPILink: UPILink(o.FarmerPaymentID, o.FarmerName, o.FinalPay, note),
			Note:    note,
		}
	case entity.PaymentPhone:
		h := &PaymentHandoff{
			Method: entity.PaymentPhone,
			Amount: o.FinalPay,
			Phone:  o.FarmerPhone,
		}
		if o.FarmerPhone != "" {
			h.TelLink = "tel:" + strings.ReplaceAll(o.FarmerPhone, " ", "")
		}
		return h
	}
	return nil
}
