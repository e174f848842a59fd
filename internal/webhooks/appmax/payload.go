package appmax

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gravadormedico/voicepen-backend/pkg/enums"
)

// Delivery is the subset of a gateway payload the reconciler reads. The
// gateway sends it flat or nested under "data"; nested values win.
type Delivery struct {
	Event  string
	Status string
	Fields Fields
}

// Fields are the order and contact values extracted from a payload.
type Fields struct {
	OrderID       string
	Email         string
	Name          *string
	Phone         *string
	CPF           *string
	Amount        *decimal.Decimal
	PaymentMethod *string
}

// HasKeys reports whether the minimum keys for reconciliation are present.
func (f Fields) HasKeys() bool {
	return f.OrderID != "" && f.Email != ""
}

// ParseDelivery decodes a raw body. Only malformed JSON is an error; missing
// fields are left empty for the caller to judge.
func ParseDelivery(body []byte) (Delivery, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return Delivery{}, fmt.Errorf("decode payload: %w", err)
	}
	if root == nil {
		return Delivery{}, fmt.Errorf("decode payload: not an object")
	}

	scopes := []map[string]any{}
	if data, ok := root["data"].(map[string]any); ok {
		scopes = append(scopes, data)
	}
	scopes = append(scopes, root)
	p := payload(scopes)

	fields := Fields{
		OrderID: p.str("order_id", "appmax_order_id"),
		Email:   strings.ToLower(p.str("customer_email")),
		Name:    optional(p.str("customer_name")),
		Phone:   optional(p.str("customer_phone")),
		CPF:     optional(p.str("customer_cpf")),
	}
	if fields.OrderID == "" {
		if order := p.object("order"); order != nil {
			fields.OrderID = scalarString(order["id"])
		}
	}
	if customer := p.object("customer"); customer != nil {
		c := payload{customer}
		if fields.Email == "" {
			fields.Email = strings.ToLower(c.str("email"))
		}
		if fields.Name == nil {
			fields.Name = optional(c.str("name", "full_name"))
		}
		if fields.Phone == nil {
			fields.Phone = optional(c.str("phone", "telephone"))
		}
		if fields.CPF == nil {
			fields.CPF = optional(c.str("cpf", "document_number"))
		}
	}
	if amount, ok := p.decimal("total_amount", "amount", "total"); ok {
		fields.Amount = &amount
	}
	if method := p.str("payment_method", "payment_type"); method != "" {
		if parsed, err := enums.ParsePaymentMethod(method); err == nil {
			method = string(parsed)
		}
		fields.PaymentMethod = &method
	}

	return Delivery{
		Event:  p.str("event", "type"),
		Status: p.str("status"),
		Fields: fields,
	}, nil
}

// payload looks keys up across scopes in priority order.
type payload []map[string]any

func (p payload) str(keys ...string) string {
	for _, scope := range p {
		for _, key := range keys {
			if v := scalarString(scope[key]); v != "" {
				return v
			}
		}
	}
	return ""
}

func (p payload) object(key string) map[string]any {
	for _, scope := range p {
		if obj, ok := scope[key].(map[string]any); ok {
			return obj
		}
	}
	return nil
}

func (p payload) decimal(keys ...string) (decimal.Decimal, bool) {
	for _, scope := range p {
		for _, key := range keys {
			raw := scalarString(scope[key])
			if raw == "" {
				continue
			}
			// gateways sometimes send "197,00"
			if !strings.Contains(raw, ".") {
				raw = strings.Replace(raw, ",", ".", 1)
			}
			if d, err := decimal.NewFromString(raw); err == nil {
				return d, true
			}
		}
	}
	return decimal.Decimal{}, false
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
