package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
)

const defaultPort = "8092"

type FacilitatorRequest struct {
	X402Version         int                 `json:"x402Version"`
	PaymentPayload      PaymentPayload      `json:"paymentPayload"`
	PaymentRequirements PaymentRequirements `json:"paymentRequirements"`
}

type PaymentPayload struct {
	Scheme  string          `json:"scheme"`
	Network string          `json:"network"`
	Payload json.RawMessage `json:"payload"`
}

type PaymentRequirements struct {
	Scheme            string `json:"scheme"`
	Network           string `json:"network"`
	MaxAmountRequired string `json:"maxAmountRequired"`
	PayTo             string `json:"payTo"`
	Asset             string `json:"asset"`
}

// authorization is the part of the scheme payload this mock looks at.
type authorization struct {
	From  string `json:"from"`
	Nonce string `json:"nonce"`
}

type VerifyResponse struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

type SettleResponse struct {
	Success     bool   `json:"success"`
	ErrorReason string `json:"errorReason,omitempty"`
	Transaction string `json:"transaction"`
	Network     string `json:"network"`
	Payer       string `json:"payer,omitempty"`
}

// brokePayers always fail verification so tests can exercise rejected payments.
var brokePayers = map[string]bool{
	"0x000000000000000000000000000000000000dead": true,
}

var (
	mu     sync.Mutex
	nonces = map[string]bool{}
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/verify", handleVerify)
	http.HandleFunc("/settle", handleSettle)

	log.Printf("Mock x402 facilitator starting on port %s", port)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "facilitator",
		"version": "1.0.0",
	})
}

func handleVerify(w http.ResponseWriter, r *http.Request) {
	req, auth, ok := decode(w, r)
	if !ok {
		return
	}
	if reason := check(req, auth); reason != "" {
		log.Printf("Payment from %s rejected: %s", auth.From, reason)
		writeJSON(w, http.StatusOK, VerifyResponse{IsValid: false, InvalidReason: reason, Payer: auth.From})
		return
	}

	mu.Lock()
	used := nonces[auth.Nonce]
	mu.Unlock()
	if used {
		writeJSON(w, http.StatusOK, VerifyResponse{IsValid: false, InvalidReason: "nonce_used", Payer: auth.From})
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{IsValid: true, Payer: auth.From})
}

// handleSettle consumes the nonce and returns a deterministic fake transaction hash.
func handleSettle(w http.ResponseWriter, r *http.Request) {
	req, auth, ok := decode(w, r)
	if !ok {
		return
	}
	network := req.PaymentRequirements.Network
	if reason := check(req, auth); reason != "" {
		writeJSON(w, http.StatusOK, SettleResponse{ErrorReason: reason, Network: network, Payer: auth.From})
		return
	}

	mu.Lock()
	used := nonces[auth.Nonce]
	nonces[auth.Nonce] = true
	mu.Unlock()
	if used {
		writeJSON(w, http.StatusOK, SettleResponse{ErrorReason: "nonce_used", Network: network, Payer: auth.From})
		return
	}

	sum := sha256.Sum256(append([]byte(auth.From+auth.Nonce), req.PaymentPayload.Payload...))
	tx := "0x" + hex.EncodeToString(sum[:])
	log.Printf("Settled %s %s from %s to %s: %s", req.PaymentRequirements.MaxAmountRequired, req.PaymentRequirements.Asset, auth.From, req.PaymentRequirements.PayTo, tx)

	writeJSON(w, http.StatusOK, SettleResponse{Success: true, Transaction: tx, Network: network, Payer: auth.From})
}

func decode(w http.ResponseWriter, r *http.Request) (FacilitatorRequest, authorization, bool) {
	var req FacilitatorRequest
	var auth authorization
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return req, auth, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return req, auth, false
	}
	if err := json.Unmarshal(req.PaymentPayload.Payload, &auth); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scheme payload"})
		return req, auth, false
	}
	return req, auth, true
}

func check(req FacilitatorRequest, auth authorization) string {
	switch {
	case req.PaymentPayload.Scheme != req.PaymentRequirements.Scheme:
		return "unsupported_scheme"
	case req.PaymentPayload.Network != req.PaymentRequirements.Network:
		return "invalid_network"
	case auth.From == "" || auth.Nonce == "":
		return "invalid_payload"
	case brokePayers[strings.ToLower(auth.From)]:
		return "insufficient_funds"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
