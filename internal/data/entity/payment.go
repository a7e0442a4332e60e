package entity

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the payment attempt has an outcome.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// Payment is the payment sub-state carried by every booking. Provider fields
// are opaque references handed over by the payment collaborator.
type Payment struct {
	Status     PaymentStatus `db:"payment_status"`
	Provider   *string       `db:"payment_provider"`
	ProviderID *string       `db:"payment_provider_id"`
	ReceiptURL *string       `db:"payment_receipt_url"`
}
