package payment

import "time"

// Customer identifies the payer on the gateway's checkout page.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LineItem is one purchasable row shown at checkout.
type LineItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type TransactionRequest struct {
	OrderID     string
	GrossAmount int64
	Customer    Customer
	Items       []LineItem
}

type TransactionResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	Raw         []byte `json:"-"`
}

// Notification is the gateway's asynchronous payment callback. GrossAmount
// stays a string because the signature is computed over the exact bytes the
// gateway sent (e.g. "49000.00").
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	SignatureKey      string `json:"signature_key"`
	FraudStatus       string `json:"fraud_status"`
	SettlementTime    string `json:"settlement_time"`
}

// settlementLayouts are tried in order when parsing SettlementTime.
var settlementLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// SettledAtIn parses SettlementTime; ok is false when the field is absent or
// unparseable. Bare timestamps carry no offset and are read in loc — the
// gateway reports its own wall clock (WIB for Midtrans) — while RFC3339
// values keep their embedded offset.
func (n *Notification) SettledAtIn(loc *time.Location) (time.Time, bool) {
	if n.SettlementTime == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range settlementLayouts {
		if t, err := time.ParseInLocation(layout, n.SettlementTime, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
