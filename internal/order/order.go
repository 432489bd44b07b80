package order

import "github.com/shopspring/decimal"

type Status string

const (
	// StatusPending marks an order that holds frozen prices but has not
	// been paid for. Stock is untouched while pending.
	StatusPending Status = "pending"
	// StatusAccepted marks a confirmed order whose stock has been taken.
	StatusAccepted Status = "accepted"
)

// Line is one product position frozen into an order. Title and Price are
// snapshots taken at creation time; later catalog edits do not reach them.
type Line struct {
	ProductID int             `json:"id"`
	Title     string          `json:"title"`
	Count     int             `json:"count"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID           int             `json:"orderId"`
	UserID       int             `json:"-"`
	CreatedAt    string          `json:"createdAt"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	DeliveryType string          `json:"deliveryType"`
	PaymentType  string          `json:"paymentType"`
	City         string          `json:"city"`
	Address      string          `json:"address"`
	Status       Status          `json:"status"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Products     []Line          `json:"products"`
}

// LineInput is a product position as posted by the client.
type LineInput struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// ConfirmRequest carries the checkout fields. Pointer fields distinguish
// "absent" from "set to empty"; absent fields keep their stored value.
// Products, when present, are the positions to commit stock for; when
// absent the order's frozen lines are committed.
type ConfirmRequest struct {
	FullName     *string     `json:"fullName,omitempty"`
	Email        *string     `json:"email,omitempty"`
	Phone        *string     `json:"phone,omitempty"`
	DeliveryType *string     `json:"deliveryType,omitempty"`
	PaymentType  *string     `json:"paymentType,omitempty"`
	City         *string     `json:"city,omitempty"`
	Address      *string     `json:"address,omitempty"`
	Products     []LineInput `json:"products,omitempty"`
}

func (r ConfirmRequest) applyTo(ord *Order) {
	if r.FullName != nil {
		ord.FullName = *r.FullName
	}
	if r.Email != nil {
		ord.Email = *r.Email
	}
	if r.Phone != nil {
		ord.Phone = *r.Phone
	}
	if r.DeliveryType != nil {
		ord.DeliveryType = *r.DeliveryType
	}
	if r.PaymentType != nil {
		ord.PaymentType = *r.PaymentType
	}
	if r.City != nil {
		ord.City = *r.City
	}
	if r.Address != nil {
		ord.Address = *r.Address
	}
}
