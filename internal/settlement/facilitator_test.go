package settlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFacilitator(t *testing.T) {
	payload := &Payload{X402Version: 1, Scheme: SchemeExact, Network: "celo-alfajores", Payload: json.RawMessage(`{"signature":"0x01"}`)}
	req := Requirements{Scheme: SchemeExact, Network: "celo-alfajores", MaxAmountRequired: "1000000", PayTo: "0xmerchant"}

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		var body facilitatorRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.PaymentRequirements.PayTo != "0xmerchant" || body.PaymentPayload.Scheme != SchemeExact {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/verify":
			_ = json.NewEncoder(w).Encode(VerifyResponse{IsValid: true, Payer: "0xabc"})
		case "/settle":
			_ = json.NewEncoder(w).Encode(SettleResponse{Success: true, Transaction: "0xtx", Network: "celo-alfajores", Payer: "0xabc"})
		}
	}))
	defer srv.Close()

	f := NewHTTPFacilitator(srv.URL+"/", nil)

	verified, err := f.Verify(context.Background(), payload, req)
	require.NoError(t, err)
	assert.True(t, verified.IsValid)
	assert.Equal(t, "0xabc", verified.Payer)

	settled, err := f.Settle(context.Background(), payload, req)
	require.NoError(t, err)
	assert.Equal(t, "0xtx", settled.Transaction)

	assert.Equal(t, []string{"POST /verify", "POST /settle"}, seen)
}

func TestHTTPFacilitatorErrors(t *testing.T) {
	payload := &Payload{X402Version: 1, Scheme: SchemeExact, Payload: json.RawMessage(`{}`)}

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad network", http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := NewHTTPFacilitator(srv.URL, nil).Verify(context.Background(), payload, Requirements{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := NewHTTPFacilitator(srv.URL, nil).Settle(context.Background(), payload, Requirements{})
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewHTTPFacilitator(url, nil).Verify(context.Background(), payload, Requirements{})
		assert.Error(t, err)
	})
}
