package identity

import (
	"crypto/ecdsa"
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
)

// secp256k1 JWT algorithms used by did:ethr issuers. ES256K carries r || s;
// ES256K-R appends the one-byte recovery id.
var (
	SigningMethodES256K  = &signingMethodSecp256k1{alg: "ES256K"}
	SigningMethodES256KR = &signingMethodSecp256k1{alg: "ES256K-R", recoverable: true}
)

func init() {
	jwt.RegisterSigningMethod(SigningMethodES256K.Alg(), func() jwt.SigningMethod { return SigningMethodES256K })
	jwt.RegisterSigningMethod(SigningMethodES256KR.Alg(), func() jwt.SigningMethod { return SigningMethodES256KR })
}

type signingMethodSecp256k1 struct {
	alg         string
	recoverable bool
}

func (m *signingMethodSecp256k1) Alg() string {
	return m.alg
}

// Verify accepts either the issuer's account (common.Address), checked by public key
// recovery, or an explicit *ecdsa.PublicKey.
func (m *signingMethodSecp256k1) Verify(signingString string, sig []byte, key any) error {
	digest := sha256.Sum256([]byte(signingString))

	switch k := key.(type) {
	case common.Address:
		return m.verifyRecovered(digest[:], sig, k)
	case *ecdsa.PublicKey:
		if len(sig) < 64 {
			return jwt.ErrSignatureInvalid
		}
		if !crypto.VerifySignature(crypto.CompressPubkey(k), digest[:], sig[:64]) {
			return jwt.ErrSignatureInvalid
		}
		return nil
	default:
		return jwt.ErrInvalidKeyType
	}
}

func (m *signingMethodSecp256k1) verifyRecovered(digest, sig []byte, want common.Address) error {
	var candidates [][]byte
	switch {
	case len(sig) == 65 && m.recoverable:
		c := append([]byte(nil), sig...)
		if c[64] >= 27 {
			c[64] -= 27
		}
		candidates = append(candidates, c)
	case len(sig) == 64:
		for v := byte(0); v <= 1; v++ {
			candidates = append(candidates, append(append([]byte(nil), sig...), v))
		}
	default:
		return jwt.ErrSignatureInvalid
	}

	for _, c := range candidates {
		pub, err := crypto.SigToPub(digest, c)
		if err == nil && crypto.PubkeyToAddress(*pub) == want {
			return nil
		}
	}
	return jwt.ErrSignatureInvalid
}

func (m *signingMethodSecp256k1) Sign(signingString string, key any) ([]byte, error) {
	priv, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}
	digest := sha256.Sum256([]byte(signingString))
	sig, err := crypto.Sign(digest[:], priv)
	if err != nil {
		return nil, err
	}
	if m.recoverable {
		return sig, nil
	}
	return sig[:64], nil
}
