package conversions

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/gravadormedico/voicepen-backend/pkg/config"
	pkgerrors "github.com/gravadormedico/voicepen-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://graph.facebook.com"
	defaultAPIVersion           = "v19.0"
	defaultCurrency             = "BRL"
	responseBodyReadLimit int64 = 1024
)

var errNotConfigured = errors.New("conversions pixel id and access token are required")

// Purchase is a converted order as the ads platform needs it. Contact fields
// are plain text here and hashed on the wire.
type Purchase struct {
	OrderID       string
	Email         string
	Phone         string
	Name          string
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	At            time.Time
}

// Client posts server-side events to the Meta Conversions API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	pixelID    string
	token      string
	testCode   string
	currency   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the client from config. It fails when the pixel is not
// configured; callers treat that as "conversions disabled".
func NewClient(cfg config.ConversionsConfig, opts ...Option) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errNotConfigured
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    firstNonEmpty(cfg.BaseURL, defaultBaseURL),
		apiVersion: firstNonEmpty(cfg.APIVersion, defaultAPIVersion),
		pixelID:    strings.TrimSpace(cfg.PixelID),
		token:      strings.TrimSpace(cfg.AccessToken),
		testCode:   strings.TrimSpace(cfg.TestCode),
		currency:   firstNonEmpty(cfg.Currency, defaultCurrency),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type eventRequest struct {
	Data          []event `json:"data"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

type event struct {
	EventName    string     `json:"event_name"`
	EventTime    int64      `json:"event_time"`
	EventID      string     `json:"event_id"`
	ActionSource string     `json:"action_source"`
	UserData     userData   `json:"user_data"`
	CustomData   customData `json:"custom_data"`
}

type userData struct {
	Email     []string `json:"em,omitempty"`
	Phone     []string `json:"ph,omitempty"`
	FirstName []string `json:"fn,omitempty"`
	LastName  []string `json:"ln,omitempty"`
}

type customData struct {
	Value         json.Number `json:"value"`
	Currency      string      `json:"currency"`
	OrderID       string      `json:"order_id"`
	PaymentMethod string      `json:"payment_method,omitempty"`
}

// SendPurchase posts one Purchase event. The order id doubles as event_id so
// the platform dedupes gateway replays against the browser pixel.
func (c *Client) SendPurchase(ctx context.Context, p Purchase) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "conversions client not configured")
	}
	if strings.TrimSpace(p.OrderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase order id is required")
	}

	at := p.At
	if at.IsZero() {
		at = time.Now()
	}
	first, last := splitName(p.Name)
	body := eventRequest{
		Data: []event{{
			EventName:    "Purchase",
			EventTime:    at.Unix(),
			EventID:      p.OrderID,
			ActionSource: "website",
			UserData: userData{
				Email:     hashed(strings.ToLower(strings.TrimSpace(p.Email))),
				Phone:     hashed(digitsOnly(p.Phone)),
				FirstName: hashed(first),
				LastName:  hashed(last),
			},
			CustomData: customData{
				Value:         json.Number(p.Amount.StringFixed(2)),
				Currency:      firstNonEmpty(p.Currency, c.currency),
				OrderID:       p.OrderID,
				PaymentMethod: p.PaymentMethod,
			},
		}},
		TestEventCode: c.testCode,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal conversions event")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.eventsURL(), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build conversions request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute conversions request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "conversions request failed")
	}
	return nil
}

func (c *Client) eventsURL() string {
	base := strings.TrimRight(c.baseURL, "/")
	q := url.Values{}
	q.Set("access_token", c.token)
	return fmt.Sprintf("%s/%s/%s/events?%s", base, url.PathEscape(c.apiVersion), url.PathEscape(c.pixelID), q.Encode())
}

func hashed(value string) []string {
	if value == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(value))
	return []string{hex.EncodeToString(sum[:])}
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitName(full string) (string, string) {
	parts := strings.Fields(strings.ToLower(full))
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
