package payment

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	client := &MidtransClient{ServerKey: "server-key"}

	n := &Notification{
		OrderID:     "SUB-1-1710072000000",
		StatusCode:  "200",
		GrossAmount: "49000.00",
	}
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + "server-key"))
	n.SignatureKey = hex.EncodeToString(sum[:])

	assert.True(t, client.VerifySignature(n))

	tampered := *n
	tampered.GrossAmount = "1.00"
	assert.False(t, client.VerifySignature(&tampered))

	forged := *n
	forged.SignatureKey = "deadbeef"
	assert.False(t, client.VerifySignature(&forged))
}

func TestSettledAtIn(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)

	n := &Notification{SettlementTime: "2024-03-10 12:34:56"}
	got, ok := n.SettledAtIn(wib)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, time.March, 10, 12, 34, 56, 0, wib)))
	assert.True(t, got.Equal(time.Date(2024, time.March, 10, 5, 34, 56, 0, time.UTC)),
		"a bare gateway timestamp is read on the gateway's clock")

	// an RFC3339 value keeps its own offset regardless of loc
	n = &Notification{SettlementTime: "2024-03-10T12:34:56Z"}
	got, ok = n.SettledAtIn(wib)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, time.March, 10, 12, 34, 56, 0, time.UTC)))

	n = &Notification{SettlementTime: "2024-03-10 12:34:56"}
	got, ok = n.SettledAtIn(nil)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, time.March, 10, 12, 34, 56, 0, time.UTC)))

	n = &Notification{}
	_, ok = n.SettledAtIn(wib)
	assert.False(t, ok)

	n = &Notification{SettlementTime: "not-a-time"}
	_, ok = n.SettledAtIn(wib)
	assert.False(t, ok)
}

func TestCreateTransaction(t *testing.T) {
	var gotAuth string
	var gotBody snapRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"token":        "tok-123",
			"redirect_url": "https://gateway.example/pay/tok-123",
		})
	}))
	defer server.Close()

	client := NewMidtransClient(server.URL, "server-key")
	resp, err := client.CreateTransaction(context.Background(), TransactionRequest{
		OrderID:     "SUB-1-1710072000000",
		GrossAmount: 49000,
		Customer:    Customer{Name: "Budi", Email: "budi@example.com"},
		Items:       []LineItem{{ID: "PLAN-1", Name: "Starter Monthly", Price: 49000, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "tok-123", resp.Token)
	assert.Equal(t, "https://gateway.example/pay/tok-123", resp.RedirectURL)
	assert.NotEmpty(t, resp.Raw)

	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("server-key:"))
	assert.Equal(t, expectedAuth, gotAuth)
	assert.Equal(t, "SUB-1-1710072000000", gotBody.TransactionDetails.OrderID)
	assert.Equal(t, int64(49000), gotBody.TransactionDetails.GrossAmount)
	require.Len(t, gotBody.ItemDetails, 1)
	assert.Equal(t, "Starter Monthly", gotBody.ItemDetails[0].Name)
}

func TestCreateTransactionGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_messages":["unauthorized"]}`))
	}))
	defer server.Close()

	client := NewMidtransClient(server.URL, "bad-key")
	_, err := client.CreateTransaction(context.Background(), TransactionRequest{OrderID: "SUB-1-1", GrossAmount: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
