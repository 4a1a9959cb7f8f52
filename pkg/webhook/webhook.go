// Package webhook authenticates provider callbacks and defines the events
// bridge and fiat providers deliver.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// HeaderTimestamp carries the unix time (seconds) the payload was signed at
	HeaderTimestamp = "X-Webhook-Timestamp"
	// HeaderSignature carries hex(HMAC-SHA256(secret, timestamp + "." + body))
	HeaderSignature = "X-Webhook-Signature"

	// DefaultMaxSkew is the accepted distance between the signed timestamp and now
	DefaultMaxSkew = 5 * time.Minute
)

var (
	ErrNotConfigured    = errors.New("webhook secret not configured")
	ErrMissingSignature = errors.New("missing webhook signature headers")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside allowed skew")
)

// Bridge provider events
const (
	BridgeEventDetected   = "event_detected"
	BridgeDestTxBuilding  = "dest_tx_building"
	BridgeDestTxSubmitted = "dest_tx_submitted"
	BridgeTransferFailed  = "failed"
	BridgeRefundStarted   = "refunding"
	BridgeRefundCompleted = "refunded"
)

// Fiat provider events
const (
	FiatPayoutCompleted = "payout_completed"
	FiatPayoutFailed    = "payout_failed"
)

const maxSignatureLength = 128

// BridgeEvent is a progress notification from the bridge provider
type BridgeEvent struct {
	BridgeID   uuid.UUID `json:"bridge_id" validate:"required"`
	Event      string    `json:"event" validate:"required,oneof=event_detected dest_tx_building dest_tx_submitted failed refunding refunded"`
	DestTxHash string    `json:"dest_tx_hash,omitempty" validate:"required_if=Event dest_tx_submitted,max=128"`
	Reason     string    `json:"reason,omitempty" validate:"max=512"`
}

// FiatEvent is a payout notification from the fiat off-ramp provider
type FiatEvent struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id" validate:"required"`
	Event        string    `json:"event" validate:"required,oneof=payout_completed payout_failed"`
	Reason       string    `json:"reason,omitempty" validate:"max=512"`
}

// Verifier checks webhook signatures for one provider
type Verifier struct {
	secret  []byte
	maxSkew time.Duration
	now     func() time.Time
}

// NewVerifier creates a Verifier. An empty secret rejects every request.
func NewVerifier(secret string, maxSkew time.Duration) *Verifier {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}
	return &Verifier{
		secret:  []byte(secret),
		maxSkew: maxSkew,
		now:     time.Now,
	}
}

// Verify authenticates body against the timestamp and signature headers
func (v *Verifier) Verify(timestamp, signature string, body []byte) error {
	if len(v.secret) == 0 {
		return ErrNotConfigured
	}
	timestamp = strings.TrimSpace(timestamp)
	signature = strings.TrimSpace(signature)
	if timestamp == "" || signature == "" || len(signature) > maxSignatureLength {
		return ErrMissingSignature
	}

	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrStaleTimestamp
	}
	skew := v.now().Sub(time.Unix(secs, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxSkew {
		return ErrStaleTimestamp
	}

	got, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(signature), "sha256="))
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(mac(v.secret, timestamp, body), got) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the signature header value for body signed at timestamp
func Sign(secret, timestamp string, body []byte) string {
	return hex.EncodeToString(mac([]byte(secret), timestamp, body))
}

func mac(secret []byte, timestamp string, body []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(timestamp))
	h.Write([]byte("."))
	h.Write(body)
	return h.Sum(nil)
}
