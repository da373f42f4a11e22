package security

import (
	"strings"

	"github.com/google/uuid"
)

const RegistrationCodeLength = 8

// NewRegistrationCode returns 8 uppercase hex characters taken from a random UUID.
func NewRegistrationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:RegistrationCodeLength])
}

// NewTransactionID builds ledger ids such as TXN1A2B3C4D5E6F.
func NewTransactionID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:12])
}
