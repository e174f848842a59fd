package appmax

import (
	"strings"

	"github.com/gravadormedico/voicepen-backend/pkg/enums"
)

// Outcome is a delivery reduced to the internal taxonomy.
type Outcome struct {
	Status        enums.SaleStatus
	FailureReason string
}

// eventTable maps the gateway's event vocabulary, English and Portuguese, to
// an outcome. Keys are lower-cased.
var eventTable = map[string]Outcome{
	"orderapproved":     {Status: enums.SaleStatusApproved},
	"order.approved":    {Status: enums.SaleStatusApproved},
	"pedido aprovado":   {Status: enums.SaleStatusApproved},
	"pedido autorizado": {Status: enums.SaleStatusApproved},

	"orderpaid":        {Status: enums.SaleStatusPaid},
	"orderpaidbypix":   {Status: enums.SaleStatusPaid},
	"order.paid":       {Status: enums.SaleStatusPaid},
	"pedido pago":      {Status: enums.SaleStatusPaid},
	"pix pago":         {Status: enums.SaleStatusPaid},
	"boleto pago":      {Status: enums.SaleStatusPaid},
	"orderintegrated":  {Status: enums.SaleStatusPaid},
	"pedido integrado": {Status: enums.SaleStatusPaid},

	"orderpixcreated":    {Status: enums.SaleStatusPending},
	"orderbilletcreated": {Status: enums.SaleStatusPending},
	"pix gerado":         {Status: enums.SaleStatusPending},
	"boleto gerado":      {Status: enums.SaleStatusPending},

	"orderpixexpired":   {Status: enums.SaleStatusExpired, FailureReason: "PIX Expirado"},
	"order.pix_expired": {Status: enums.SaleStatusExpired, FailureReason: "PIX Expirado"},
	"pix expirado":      {Status: enums.SaleStatusExpired, FailureReason: "PIX Expirado"},

	"orderbilletoverdue": {Status: enums.SaleStatusExpired, FailureReason: "Boleto Vencido"},
	"boleto vencido":     {Status: enums.SaleStatusExpired, FailureReason: "Boleto Vencido"},

	"paymentnotauthorized":     {Status: enums.SaleStatusRefused, FailureReason: "Pagamento não autorizado"},
	"payment.failed":           {Status: enums.SaleStatusRefused, FailureReason: "Pagamento não autorizado"},
	"pagamento não autorizado": {Status: enums.SaleStatusRefused, FailureReason: "Pagamento não autorizado"},
	"pagamento nao autorizado": {Status: enums.SaleStatusRefused, FailureReason: "Pagamento não autorizado"},

	"orderrefund":      {Status: enums.SaleStatusRefunded},
	"order.refunded":   {Status: enums.SaleStatusRefunded},
	"pedido estornado": {Status: enums.SaleStatusRefunded},

	"ordercanceled":    {Status: enums.SaleStatusCancelled},
	"order.cancelled":  {Status: enums.SaleStatusCancelled},
	"pedido cancelado": {Status: enums.SaleStatusCancelled},

	"chargebackdispute":     {Status: enums.SaleStatusChargeback},
	"chargeback em disputa": {Status: enums.SaleStatusChargeback},
	"pedido com chargeback": {Status: enums.SaleStatusChargeback},
}

// statusBuckets folds raw status strings into the closed set.
var statusBuckets = map[string]enums.SaleStatus{
	"approved":   enums.SaleStatusApproved,
	"paid":       enums.SaleStatusPaid,
	"completed":  enums.SaleStatusPaid,
	"pending":    enums.SaleStatusPending,
	"processing": enums.SaleStatusPending,
	"refused":    enums.SaleStatusRefused,
	"rejected":   enums.SaleStatusRefused,
	"failed":     enums.SaleStatusRefused,
	"cancelled":  enums.SaleStatusCancelled,
	"canceled":   enums.SaleStatusCancelled,
	"refunded":   enums.SaleStatusRefunded,
	"chargeback": enums.SaleStatusChargeback,
	"expired":    enums.SaleStatusExpired,
}

// Normalize resolves an event name, falling back to the raw status. The event
// name always wins when both resolve. ok is false when neither does, which
// callers acknowledge as an ignored event.
func Normalize(event, status string) (Outcome, bool) {
	if out, ok := eventTable[normalizeKey(event)]; ok {
		return out, true
	}
	if s, ok := statusBuckets[normalizeKey(status)]; ok {
		return Outcome{Status: s}, true
	}
	return Outcome{}, false
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
