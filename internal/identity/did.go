package identity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrUnsupportedDID is returned for DIDs that do not embed a secp256k1 account.
var ErrUnsupportedDID = errors.New("unsupported DID")

// AddressFromDID extracts the Ethereum account bound to a DID. Accepted forms:
//
//	did:ethr:<address>
//	did:ethr:<network>:<address>
//	did:ethr[:<network>]:<compressed public key>
//	did:pkh:eip155:<chain id>:<address>
func AddressFromDID(did string) (common.Address, error) {
	parts := strings.Split(did, ":")
	if len(parts) < 3 || parts[0] != "did" {
		return common.Address{}, fmt.Errorf("%w: %q", ErrUnsupportedDID, did)
	}

	switch parts[1] {
	case "ethr":
		var id string
		switch len(parts) {
		case 3:
			id = parts[2]
		case 4:
			id = parts[3]
		default:
			return common.Address{}, fmt.Errorf("%w: %q", ErrUnsupportedDID, did)
		}
		return ethrIdentifier(id)
	case "pkh":
		if len(parts) != 5 || parts[2] != "eip155" {
			return common.Address{}, fmt.Errorf("%w: %q", ErrUnsupportedDID, did)
		}
		if _, err := strconv.ParseUint(parts[3], 10, 64); err != nil {
			return common.Address{}, fmt.Errorf("%w: bad chain id in %q", ErrUnsupportedDID, did)
		}
		if !isHexAddress(parts[4]) {
			return common.Address{}, fmt.Errorf("%w: bad address in %q", ErrUnsupportedDID, did)
		}
		return common.HexToAddress(parts[4]), nil
	default:
		return common.Address{}, fmt.Errorf("%w: method %q", ErrUnsupportedDID, parts[1])
	}
}

// IsEthereumDID reports whether did uses a method whose keys are secp256k1 accounts.
func IsEthereumDID(did string) bool {
	return strings.HasPrefix(did, "did:ethr:") || strings.HasPrefix(did, "did:pkh:eip155:")
}

func ethrIdentifier(id string) (common.Address, error) {
	if isHexAddress(id) {
		return common.HexToAddress(id), nil
	}
	// 0x + 33-byte compressed public key
	if len(id) == 68 {
		raw, err := hexutil.Decode(id)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: %v", ErrUnsupportedDID, err)
		}
		pub, err := crypto.DecompressPubkey(raw)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: %v", ErrUnsupportedDID, err)
		}
		return crypto.PubkeyToAddress(*pub), nil
	}
	return common.Address{}, fmt.Errorf("%w: identifier %q", ErrUnsupportedDID, id)
}

func isHexAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}
