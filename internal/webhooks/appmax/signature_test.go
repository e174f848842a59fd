package appmax

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestVerifierAcceptsValidSignature(t *testing.T) {
	body := []byte(`{"event":"Pedido aprovado","order_id":"123"}`)
	now := time.Unix(1_700_000_000, 0)
	v := Verifier{Secret: "whsec", Now: func() time.Time { return now }}

	cases := map[string]string{
		"bare":     Sign("whsec", body),
		"prefixed": "sha256=" + Sign("whsec", body),
	}
	for name, sig := range cases {
		t.Run(name, func(t *testing.T) {
			if err := v.Verify(body, sig, ""); err != nil {
				t.Fatalf("expected valid signature, got %v", err)
			}
		})
	}
}

func TestVerifierRejectsTamperedBody(t *testing.T) {
	v := Verifier{Secret: "whsec"}
	sig := Sign("whsec", []byte(`{"order_id":"123"}`))

	err := v.Verify([]byte(`{"order_id":"124"}`), sig, "")
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifierRejectsLengthMismatch(t *testing.T) {
	v := Verifier{Secret: "whsec"}
	if err := v.Verify([]byte(`{}`), "abc", ""); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifierMissingSignature(t *testing.T) {
	v := Verifier{Secret: "whsec"}
	if err := v.Verify([]byte(`{}`), "  ", ""); !errors.Is(err, ErrSignatureMissing) {
		t.Fatalf("expected ErrSignatureMissing, got %v", err)
	}
}

func TestVerifierTimestampTolerance(t *testing.T) {
	body := []byte(`{"order_id":"1"}`)
	sig := Sign("whsec", body)
	now := time.Unix(1_700_000_000, 0)
	v := Verifier{Secret: "whsec", Now: func() time.Time { return now }}

	cases := []struct {
		name      string
		timestamp string
		wantErr   error
	}{
		{name: "seconds fresh", timestamp: strconv.FormatInt(now.Add(-4*time.Minute).Unix(), 10)},
		{name: "millis fresh", timestamp: strconv.FormatInt(now.Add(-time.Minute).UnixMilli(), 10)},
		{name: "future within tolerance", timestamp: strconv.FormatInt(now.Add(2*time.Minute).Unix(), 10)},
		{name: "seconds stale", timestamp: strconv.FormatInt(now.Add(-6*time.Minute).Unix(), 10), wantErr: ErrTimestampStale},
		{name: "millis stale", timestamp: strconv.FormatInt(now.Add(-10*time.Minute).UnixMilli(), 10), wantErr: ErrTimestampStale},
		{name: "garbage", timestamp: "yesterday", wantErr: ErrTimestampStale},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Verify(body, sig, tc.timestamp)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestVerifierWithoutSecret(t *testing.T) {
	strict := Verifier{}
	if err := strict.Verify([]byte(`{}`), "", ""); !errors.Is(err, ErrSecretNotConfigured) {
		t.Fatalf("expected ErrSecretNotConfigured, got %v", err)
	}
	if strict.Skipped() {
		t.Fatal("strict verifier must not report skipped")
	}

	lenient := Verifier{AllowUnsigned: true}
	if err := lenient.Verify([]byte(`{}`), "", ""); err != nil {
		t.Fatalf("expected unsigned delivery to pass, got %v", err)
	}
	if !lenient.Skipped() {
		t.Fatal("expected lenient verifier to report skipped")
	}

	configured := Verifier{Secret: "whsec", AllowUnsigned: true}
	if configured.Skipped() {
		t.Fatal("a configured secret always verifies")
	}
}
