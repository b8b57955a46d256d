package transfer

// PaymentEvent is the webhook body sent by the payment provider.
type PaymentEvent struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	CreatedAt string      `json:"created_at"`
	Data      PaymentData `json:"data"`
}

type PaymentData struct {
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Customer  PaymentCustomer `json:"customer"`
	Metadata  PaymentMetadata `json:"metadata"`
}

type PaymentCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type PaymentMetadata struct {
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
}

const PaymentCompleted = "payment.completed"
