package validation

import (
	"fmt"

	dErrors "proofwall/pkg/domain-errors"
)

// Request field length limits.
const (
	// MaxReferenceLength bounds the caller-supplied content reference.
	MaxReferenceLength = 512

	// MaxContentHashLength fits a 0x-prefixed 512-bit hex digest.
	MaxContentHashLength = 130

	// MaxProofJobIDLength is the maximum length of a prover job id.
	MaxProofJobIDLength = 256

	// MaxPayerLength is the maximum length of a payer address or DID.
	MaxPayerLength = 256

	// MaxReceiptLength is the maximum length of a settlement receipt.
	MaxReceiptLength = 512
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// Field pairs a request field with its length limit.
type Field struct {
	Name  string
	Value string
	Max   int
}

// CheckLengths returns the first length violation among fields.
func CheckLengths(fields ...Field) error {
	for _, f := range fields {
		if err := CheckStringLength(f.Name, f.Value, f.Max); err != nil {
			return err
		}
	}
	return nil
}
