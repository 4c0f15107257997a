package validation

import (
	"fmt"

	dErrors "nftgate/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (16 KB).
	// A registration payload is five short strings.
	MaxBodySize = 16 * 1024
)

// String element length limits
const (
	// MaxWalletAddressLength bounds the opaque wallet identifier.
	MaxWalletAddressLength = 128

	// MaxNameLength is the maximum length of a registrant name.
	MaxNameLength = 200

	// MaxEnumLength bounds free-form enumeration fields (gender, marital status).
	MaxEnumLength = 32
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
