// Package main provides a CLI for producing identity proofs and payment headers
// against a local proofwall. Keys it generates are throwaway dev keys.
package main

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"proofwall/internal/identity"
	"proofwall/internal/settlement"
	"proofwall/pkg/domain"
)

const (
	defaultRole          = "journalist"
	defaultCredentialTTL = 24 * time.Hour
	defaultNetwork       = "celo-alfajores"
)

type proofOutput struct {
	Header     string            `json:"header"`
	DID        string            `json:"did"`
	Issuer     string            `json:"issuer"`
	Role       string            `json:"role"`
	Nonce      string            `json:"nonce"`
	Credential string            `json:"credential"`
	Keys       map[string]string `json:"keys"`
}

func main() {
	keyCmd := flag.NewFlagSet("key", flag.ExitOnError)
	keyJSON := keyCmd.Bool("json", false, "Output as JSON")

	proofCmd := flag.NewFlagSet("proof", flag.ExitOnError)
	proofHolder := proofCmd.String("holder-key", "", "Hex secp256k1 key of the DID holder. Generated if empty.")
	proofIssuer := proofCmd.String("issuer-key", "", "Hex secp256k1 key of the credential issuer. Generated if empty.")
	proofRole := proofCmd.String("role", defaultRole, "Role claim: journalist, premium or anything else for none")
	proofNonce := proofCmd.String("nonce", "", "Nonce to sign. Generated if empty.")
	proofPrefix := proofCmd.String("prefix", identity.DefaultMessagePrefix, "Ownership message prefix; must match SIGNING_MESSAGE_PREFIX")
	proofTTL := proofCmd.Duration("ttl", defaultCredentialTTL, "Credential time-to-live, 0 for none")
	proofJSON := proofCmd.Bool("json", false, "Output as JSON")

	payCmd := flag.NewFlagSet("payment", flag.ExitOnError)
	payPayer := payCmd.String("payer", "", "Payer wallet address. Generated if empty.")
	payNetwork := payCmd.String("network", defaultNetwork, "Payment network; must match PAY_NETWORK")
	payAmount := payCmd.String("amount", "", "Atomic amount being authorized (informational)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "key":
		keyCmd.Parse(os.Args[2:])
		generateKey(*keyJSON)
	case "proof":
		proofCmd.Parse(os.Args[2:])
		generateProof(*proofHolder, *proofIssuer, *proofRole, *proofNonce, *proofPrefix, *proofTTL, *proofJSON)
	case "payment":
		payCmd.Parse(os.Args[2:])
		generatePayment(*payPayer, *payNetwork, *payAmount)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`proofgen - Generate identity proofs and payment headers for proofwall

WARNING: Generated keys are printed in clear text. Only use for local development.

Usage:
  proofgen <command> [flags]

Commands:
  key       Generate a secp256k1 key and its did:ethr identifier
  proof     Sign an ownership message, issue a credential and print the X-Proof header
  payment   Print a sample X-PAYMENT header for the dev facilitator

Examples:
  # Journalist proof with throwaway keys
  proofgen proof

  # Premium proof for an existing holder, issued by a fixed issuer
  proofgen proof -role premium -holder-key <hex> -issuer-key <hex>

  # Call the gateway with the proof
  curl -H "X-Proof: $(proofgen proof -json | jq -r .header)" http://localhost:3001/access/<id>

  # Pay through the dev facilitator
  curl -X POST -H "X-PAYMENT: $(proofgen payment)" http://localhost:3001/pay/journalist/<id>

Use "proofgen <command> -h" for more information about a command.`)
}

func generateKey(jsonOutput bool) {
	key := mustKey("")
	if jsonOutput {
		printJSON(map[string]string{
			"private_key": encodeKey(key),
			"did":         identity.EthrDID(key),
			"address":     crypto.PubkeyToAddress(key.PublicKey).Hex(),
		})
		return
	}
	fmt.Printf("Private Key: %s\n", encodeKey(key))
	fmt.Printf("DID:         %s\n", identity.EthrDID(key))
	fmt.Printf("Address:     %s\n", crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func generateProof(holderHex, issuerHex, role, nonce, prefix string, ttl time.Duration, jsonOutput bool) {
	holder := mustKey(holderHex)
	issuer := mustKey(issuerHex)
	if nonce == "" {
		nonce = uuid.NewString()
	}

	credential, err := identity.IssueCredential(issuer, identity.EthrDID(holder), domain.ParseRole(role), time.Now(), ttl)
	if err != nil {
		fail("issuing credential", err)
	}
	assertion, err := identity.NewAssertion(holder, prefix, nonce, credential)
	if err != nil {
		fail("signing ownership message", err)
	}
	header, err := identity.EncodeHeader(assertion)
	if err != nil {
		fail("encoding header", err)
	}

	if jsonOutput {
		printJSON(proofOutput{
			Header:     header,
			DID:        assertion.DID,
			Issuer:     identity.EthrDID(issuer),
			Role:       role,
			Nonce:      nonce,
			Credential: credential,
			Keys: map[string]string{
				"holder": encodeKey(holder),
				"issuer": encodeKey(issuer),
			},
		})
		return
	}

	fmt.Println("Identity Proof")
	fmt.Println("==============")
	fmt.Printf("DID:        %s\n", assertion.DID)
	fmt.Printf("Issuer:     %s\n", identity.EthrDID(issuer))
	fmt.Printf("Role:       %s\n", role)
	fmt.Printf("Nonce:      %s\n", nonce)
	fmt.Printf("Holder Key: %s\n", encodeKey(holder))
	fmt.Printf("Issuer Key: %s\n", encodeKey(issuer))
	fmt.Println()
	fmt.Println("X-Proof:")
	fmt.Println(header)
	fmt.Println()
	fmt.Println("Note: set ALLOWED_ISSUERS to the issuer DID, or leave it empty to trust any issuer.")
}

func generatePayment(payer, network, amount string) {
	if payer == "" {
		payer = crypto.PubkeyToAddress(mustKey("").PublicKey).Hex()
	}
	body, err := json.Marshal(map[string]string{
		"from":   payer,
		"value":  amount,
		"nonce":  "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		"scheme": settlement.SchemeExact,
	})
	if err != nil {
		fail("encoding payment", err)
	}
	header, err := settlement.EncodePayment(settlement.Payload{
		X402Version: settlement.X402Version,
		Scheme:      settlement.SchemeExact,
		Network:     network,
		Payload:     body,
	})
	if err != nil {
		fail("encoding payment", err)
	}
	fmt.Println(header)
}

func mustKey(hexKey string) *ecdsa.PrivateKey {
	if hexKey == "" {
		key, err := crypto.GenerateKey()
		if err != nil {
			fail("generating key", err)
		}
		return key
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid key: %v\n", err)
		os.Exit(1)
	}
	return key
}

func encodeKey(key *ecdsa.PrivateKey) string {
	return "0x" + hex.EncodeToString(crypto.FromECDSA(key))
}

func fail(action string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", action, err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
