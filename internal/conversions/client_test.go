package conversions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gravadormedico/voicepen-backend/pkg/config"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig() config.ConversionsConfig {
	return config.ConversionsConfig{
		PixelID:     "pixel-1",
		AccessToken: "token-1",
		APIVersion:  "v19.0",
		BaseURL:     "http://meta.test",
		Currency:    "BRL",
		TestCode:    "TEST123",
		Timeout:     time.Second,
	}
}

func sha(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func TestSendPurchaseHashesContactAndPostsEvent(t *testing.T) {
	var capturedURL string
	var payload map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"events_received":1}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient(testConfig(), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.SendPurchase(context.Background(), Purchase{
		OrderID: "123",
		Email:   " A@B.com ",
		Phone:   "+55 (11) 99999-0000",
		Name:    "Maria da Silva",
		Amount:  decimal.NewFromInt(100),
		At:      time.Unix(1700000000, 0),
	})
	if err != nil {
		t.Fatalf("send purchase: %v", err)
	}

	if capturedURL != "http://meta.test/v19.0/pixel-1/events?access_token=token-1" {
		t.Fatalf("unexpected url %q", capturedURL)
	}
	if payload["test_event_code"] != "TEST123" {
		t.Fatalf("missing test event code: %v", payload["test_event_code"])
	}

	data := payload["data"].([]any)
	evt := data[0].(map[string]any)
	if evt["event_name"] != "Purchase" || evt["event_id"] != "123" {
		t.Fatalf("unexpected event %v", evt)
	}
	if evt["event_time"].(float64) != 1700000000 {
		t.Fatalf("unexpected event_time %v", evt["event_time"])
	}

	user := evt["user_data"].(map[string]any)
	if got := user["em"].([]any)[0]; got != sha("a@b.com") {
		t.Fatalf("email not normalized before hashing: %v", got)
	}
	if got := user["ph"].([]any)[0]; got != sha("5511999990000") {
		t.Fatalf("phone not normalized before hashing: %v", got)
	}
	if got := user["fn"].([]any)[0]; got != sha("maria") {
		t.Fatalf("unexpected first name hash %v", got)
	}
	if got := user["ln"].([]any)[0]; got != sha("silva") {
		t.Fatalf("unexpected last name hash %v", got)
	}

	custom := evt["custom_data"].(map[string]any)
	if custom["value"].(float64) != 100 || custom["currency"] != "BRL" || custom["order_id"] != "123" {
		t.Fatalf("unexpected custom data %v", custom)
	}
}

func TestSendPurchaseSurfacesUpstreamErrors(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"Invalid parameter"}}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient(testConfig(), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.SendPurchase(context.Background(), Purchase{OrderID: "1", Amount: decimal.NewFromInt(1)})
	if err == nil || !strings.Contains(err.Error(), "Invalid parameter") {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestNewClientRequiresPixel(t *testing.T) {
	cfg := testConfig()
	cfg.AccessToken = ""
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error without access token")
	}
}

type stubSender struct {
	calls atomic.Int32
	err   error
	ctxOK atomic.Bool
}

func (s *stubSender) SendPurchase(ctx context.Context, _ Purchase) error {
	s.calls.Add(1)
	_, hasDeadline := ctx.Deadline()
	s.ctxOK.Store(ctx.Err() == nil && hasDeadline)
	return s.err
}

func TestAsyncNotifierDetachesFromRequestContext(t *testing.T) {
	sender := &stubSender{}
	n := NewAsyncNotifier(sender, time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.NotifyPurchase(ctx, Purchase{OrderID: "1"})
	n.Wait()

	if sender.calls.Load() != 1 {
		t.Fatalf("expected one send, got %d", sender.calls.Load())
	}
	if !sender.ctxOK.Load() {
		t.Fatal("send context should be live and carry its own deadline")
	}
}

func TestAsyncNotifierSwallowsErrorsAndNilSender(t *testing.T) {
	sender := &stubSender{err: errors.New("boom")}
	n := NewAsyncNotifier(sender, time.Second, logger.Nop())
	n.NotifyPurchase(context.Background(), Purchase{OrderID: "1"})
	n.Wait()
	if sender.calls.Load() != 1 {
		t.Fatalf("expected one send, got %d", sender.calls.Load())
	}

	disabled := NewAsyncNotifier(nil, 0, nil)
	disabled.NotifyPurchase(context.Background(), Purchase{OrderID: "1"})
	disabled.Wait()
}
