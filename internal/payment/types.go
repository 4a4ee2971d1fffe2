package payment

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the normalized payment state reported by the gateway. It is
// authoritative: fulfillment happens only for StatusCompleted.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusUnknown   Status = "UNKNOWN"
)

// ParseStatus maps the gateway's status string onto the enum. Anything
// unrecognized stays unknown; the raw string is still passed through to the
// caller untouched.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDING", "WAITING":
		return StatusPending
	case "COMPLETED", "FINISHED", "CONFIRMED":
		return StatusCompleted
	case "FAILED", "EXPIRED":
		return StatusFailed
	case "CANCELLED", "CANCELED", "REFUNDED":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// VerificationResult is the normalized response from the gateway's verify
// endpoint.
type VerificationResult struct {
	Status        Status
	RawStatus     string
	Amount        int64
	InvoiceID     string
	TransactionID string
	Metadata      map[string]interface{}
	RedirectURL   string
}

// ErrMissingIdentifier means the inbound payload carried neither invoice_id
// nor order_id.
var ErrMissingIdentifier = errors.New("missing invoice identifier")

// ErrConfiguration means the gateway secret key is absent; nothing can be
// verified without it.
var ErrConfiguration = errors.New("payment gateway api key not configured")

// UpstreamError is a non-2xx reply from the gateway's verify endpoint.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway verification failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway verification failed: %s", e.Message)
}
