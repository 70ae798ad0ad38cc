package payment

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MidtransClient creates Snap checkout transactions and verifies notification
// signatures. Signature verification never makes a network call.
type MidtransClient struct {
	BaseURL   string
	ServerKey string
	client    *http.Client
}

func NewMidtransClient(baseURL, serverKey string) *MidtransClient {
	if baseURL == "" {
		baseURL = "https://app.sandbox.midtrans.com"
	}
	return &MidtransClient{
		BaseURL:   baseURL,
		ServerKey: serverKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapCustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

type snapItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type snapRequest struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	CustomerDetails    snapCustomerDetails    `json:"customer_details"`
	ItemDetails        []snapItemDetail       `json:"item_details,omitempty"`
}

type snapResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

func (c *MidtransClient) CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	payload := snapRequest{
		TransactionDetails: snapTransactionDetails{
			OrderID:     req.OrderID,
			GrossAmount: req.GrossAmount,
		},
		CustomerDetails: snapCustomerDetails{
			FirstName: req.Customer.Name,
			Email:     req.Customer.Email,
		},
	}
	for _, item := range req.Items {
		payload.ItemDetails = append(payload.ItemDetails, snapItemDetail(item))
	}

	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.ServerKey+":")))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, raw)
	}

	var out snapResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("gateway response decode: %w", err)
	}
	if out.Token == "" {
		return nil, fmt.Errorf("gateway returned no token: %s", raw)
	}

	return &TransactionResponse{Token: out.Token, RedirectURL: out.RedirectURL, Raw: raw}, nil
}

// VerifySignature recomputes SHA-512(order_id + status_code + gross_amount +
// serverKey) and compares it to the notification's signature_key.
func (c *MidtransClient) VerifySignature(n *Notification) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + c.ServerKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}
