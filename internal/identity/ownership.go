package identity

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultMessagePrefix is prepended to the nonce to form the signed ownership message.
const DefaultMessagePrefix = "prove_self:"

var errBadSignature = errors.New("malformed signature")

// RecoverSigner returns the account that produced an EIP-191 personal_sign
// signature over message. The signature is 65 hex-encoded bytes (r || s || v).
func RecoverSigner(message, signature string) (common.Address, error) {
	if !strings.HasPrefix(signature, "0x") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", errBadSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", errBadSignature, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", errBadSignature, sig[crypto.RecoveryIDOffset])
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", errBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignOwnership produces the personal_sign signature a DID controller sends with a nonce.
func SignOwnership(key *ecdsa.PrivateKey, prefix, nonce string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(prefix+nonce)), key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// checkOwnership returns "" when the signature over prefix+nonce recovers to the DID's account.
func checkOwnership(a *Assertion, prefix string) Reason {
	signer, err := RecoverSigner(prefix+a.Nonce, a.Signature)
	if err != nil {
		return ReasonSigInvalid
	}
	owner, err := AddressFromDID(a.DID)
	if err != nil {
		return ReasonSigMismatch
	}
	if signer != owner {
		return ReasonSigMismatch
	}
	return ""
}
