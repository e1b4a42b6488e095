package usecase

// CreatedMsg is published on RabbitMQ after an order is stored; the
// notification consumer picks it up from order.created.q.
type CreatedMsg struct {
	OrderID       string `json:"orderId"`
	OrderNumber   string `json:"orderNumber"`
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	TotalCents    int64  `json:"totalCents"`
	PaymentMethod string `json:"paymentMethod"`
}

// PaymentResultMsg arrives on Kafka from the payment gateway bridge
// (vnpay/momo/card callbacks) once a settlement attempt finishes.
type PaymentResultMsg struct {
	OrderID       string `json:"orderId"`
	Method        string `json:"method"`
	Result        string `json:"result"` // "SUCCESS" or "FAILED"
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message,omitempty"`
}
