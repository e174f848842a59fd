package appmax

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Header names the gateway signs deliveries with.
const (
	HeaderSignature = "x-appmax-signature"
	HeaderTimestamp = "x-appmax-timestamp"
)

const (
	defaultTolerance = 5 * time.Minute
	// millisecondThreshold separates unix seconds from unix milliseconds: no
	// seconds value reaches it before the year 33658.
	millisecondThreshold = 1_000_000_000_000
)

var (
	ErrSignatureMissing    = errors.New("signature header missing")
	ErrSignatureInvalid    = errors.New("signature mismatch")
	ErrTimestampStale      = errors.New("timestamp outside tolerance")
	ErrSecretNotConfigured = errors.New("webhook secret not configured")
)

// Verifier authenticates deliveries with HMAC-SHA256 over the raw body.
type Verifier struct {
	Secret string
	// AllowUnsigned skips verification when Secret is empty. Wiring only sets
	// it outside production.
	AllowUnsigned bool
	Tolerance     time.Duration
	Now           func() time.Time
}

// Skipped reports whether Verify accepts deliveries without checking them.
func (v Verifier) Skipped() bool {
	return strings.TrimSpace(v.Secret) == "" && v.AllowUnsigned
}

// Verify checks signature and, when present, timestamp freshness.
func (v Verifier) Verify(body []byte, signature, timestamp string) error {
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		if v.AllowUnsigned {
			return nil
		}
		return ErrSecretNotConfigured
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrSignatureMissing
	}
	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if len(signature) != len(expected) ||
		subtle.ConstantTimeCompare([]byte(strings.ToLower(signature)), []byte(expected)) != 1 {
		return ErrSignatureInvalid
	}

	if strings.TrimSpace(timestamp) != "" && !v.fresh(timestamp) {
		return ErrTimestampStale
	}
	return nil
}

func (v Verifier) fresh(raw string) bool {
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return false
	}
	var sent time.Time
	if ts > millisecondThreshold {
		sent = time.UnixMilli(ts)
	} else {
		sent = time.Unix(ts, 0)
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	tolerance := v.Tolerance
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}

	diff := now().Sub(sent)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// Sign returns the header value the gateway would send for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
