package domain

import (
	"strings"

	"github.com/google/uuid"
)

// NewBookingReference returns a customer-facing reference like FLY3F2A81C4.
func NewBookingReference() string {
	return "FLY" + referenceSuffix(8)
}

// NewTicketNumber returns a ticket number like TKT9C41D27E0B.
func NewTicketNumber() string {
	return "TKT" + referenceSuffix(10)
}

func referenceSuffix(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:n]
}
