package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"

	PaymentMethodCard     = "card"
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodClick    = "click"
	PaymentMethodPayme    = "payme"
)

func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCard, PaymentMethodCash, PaymentMethodTransfer, PaymentMethodClick, PaymentMethodPayme:
		return true
	}
	return false
}

type Payment struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"userId"`
	User          *PaymentUser `json:"user,omitempty"`
	Amount        int64        `json:"amount"`
	Method        string       `json:"paymentMethod"`
	Description   string       `json:"description"`
	Status        string       `json:"status"`
	TransactionID string       `json:"transactionId"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type PaymentUser struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type PaymentStats struct {
	TotalPayments   int64 `json:"totalPayments"`
	MonthlyPayments int64 `json:"monthlyPayments"`
	CurrentBalance  int64 `json:"currentBalance"`
}
