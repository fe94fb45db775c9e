package attribution

import (
	"net/url"
	"strconv"

	"bioAffiliate/domain"
)

// Signal is the fixed internal form of a conversion report, whatever network
// or admin screen it came from.
type Signal struct {
	OrderID       string
	TransactionID string
	Amount        *float64
	Currency      string
	// ClickID is the tracking token carried through the click→redirect→purchase
	// funnel. Kept as the raw string until the resolver looks it up.
	ClickID   string
	PartnerID *uint
	ProductID *uint
	Type      string
}

// Alias tables per field, in lookup priority order. Different networks use
// different key names for the same concept; extending support for a new
// network means adding its alias here, not touching attribution logic.
var (
	orderIDAliases       = []string{"order_id", "orderId", "transaction_id"}
	transactionIDAliases = []string{"transaction_id", "transactionId", "txn_id"}
	amountAliases        = []string{"amount", "sale_amount", "total"}
	clickIDAliases       = []string{"click_id", "clickId", "subid", "sub_id"}
	partnerIDAliases     = []string{"partner_id", "partnerId"}
	productIDAliases     = []string{"product_id", "productId"}
	currencyAliases      = []string{"currency"}
	typeAliases          = []string{"conversion_type", "type"}
)

// SignalFromValues builds a Signal from form or query parameters.
func SignalFromValues(values url.Values) Signal {
	lookup := func(aliases []string) string {
		for _, key := range aliases {
			if v := values.Get(key); v != "" {
				return v
			}
		}
		return ""
	}

	return buildSignal(lookup)
}

// SignalFromJSON builds a Signal from a decoded JSON object.
func SignalFromJSON(payload map[string]any) Signal {
	lookup := func(aliases []string) string {
		for _, key := range aliases {
			if v, ok := payload[key]; ok {
				if s := stringify(v); s != "" {
					return s
				}
			}
		}
		return ""
	}

	return buildSignal(lookup)
}

func buildSignal(lookup func([]string) string) Signal {
	sig := Signal{
		OrderID:       lookup(orderIDAliases),
		TransactionID: lookup(transactionIDAliases),
		Currency:      lookup(currencyAliases),
		ClickID:       lookup(clickIDAliases),
		Type:          lookup(typeAliases),
	}

	if sig.Currency == "" {
		sig.Currency = "USD"
	}
	if sig.Type == "" {
		sig.Type = domain.ConversionTypeSale
	}

	if raw := lookup(amountAliases); raw != "" {
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			sig.Amount = &amount
		}
	}

	if raw := lookup(partnerIDAliases); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			partnerID := uint(id)
			sig.PartnerID = &partnerID
		}
	}

	if raw := lookup(productIDAliases); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			productID := uint(id)
			sig.ProductID = &productID
		}
	}

	return sig
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; render ids without an exponent.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
