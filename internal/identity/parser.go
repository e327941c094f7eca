package identity

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// HeaderProof carries a base64-encoded JSON Assertion.
const HeaderProof = "X-Proof"

const maxAssertionBytes = 16 << 10

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Parse extracts an Assertion from the X-Proof header or, when the header is absent,
// from a JSON body carrying all four fields. It returns nil for anything malformed.
func Parse(r *http.Request) *Assertion {
	if raw := strings.TrimSpace(r.Header.Get(HeaderProof)); raw != "" {
		return parseHeader(raw)
	}
	return parseBody(r)
}

func parseHeader(raw string) *Assertion {
	if len(raw) > maxAssertionBytes {
		return nil
	}
	for _, enc := range encodings {
		decoded, err := enc.DecodeString(raw)
		if err != nil {
			continue
		}
		a, err := decodeStrict(decoded)
		if err != nil {
			return nil
		}
		return a
	}
	return nil
}

func parseBody(r *http.Request) *Assertion {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAssertionBytes+1))
	if err != nil || len(data) == 0 || len(data) > maxAssertionBytes {
		return nil
	}
	a, err := decodeStrict(data)
	if err != nil || !a.Complete() {
		return nil
	}
	return a
}

// decodeStrict accepts exactly one JSON object with only the Assertion keys.
func decodeStrict(data []byte) (*Assertion, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var a Assertion
	if err := dec.Decode(&a); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after assertion")
	}
	return &a, nil
}
