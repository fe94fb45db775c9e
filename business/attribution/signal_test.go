package attribution

import (
	"net/url"
	"testing"

	"bioAffiliate/domain"
)

func TestSignalFromValues_Aliases(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		want   Signal
	}{
		{
			name: "canonical names",
			values: url.Values{
				"order_id":   {"ORD-1"},
				"amount":     {"99.90"},
				"click_id":   {"42"},
				"partner_id": {"7"},
				"currency":   {"EUR"},
			},
			want: Signal{OrderID: "ORD-1", Currency: "EUR", ClickID: "42"},
		},
		{
			name: "camelCase network",
			values: url.Values{
				"orderId": {"ORD-2"},
				"total":   {"15"},
				"clickId": {"43"},
			},
			want: Signal{OrderID: "ORD-2", Currency: "USD", ClickID: "43"},
		},
		{
			name: "subid style network",
			values: url.Values{
				"transaction_id": {"TXN-9"},
				"sale_amount":    {"250"},
				"subid":          {"44"},
			},
			// transaction_id doubles as the order id when nothing better is sent
			want: Signal{OrderID: "TXN-9", TransactionID: "TXN-9", Currency: "USD", ClickID: "44"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SignalFromValues(tc.values)

			if got.OrderID != tc.want.OrderID {
				t.Errorf("OrderID = %q, want %q", got.OrderID, tc.want.OrderID)
			}
			if got.ClickID != tc.want.ClickID {
				t.Errorf("ClickID = %q, want %q", got.ClickID, tc.want.ClickID)
			}
			if got.Currency != tc.want.Currency {
				t.Errorf("Currency = %q, want %q", got.Currency, tc.want.Currency)
			}
			if got.Amount == nil {
				t.Errorf("Amount = nil, want a value")
			}
		})
	}
}

func TestSignalFromValues_Defaults(t *testing.T) {
	got := SignalFromValues(url.Values{"order_id": {"ORD-1"}})

	if got.Currency != "USD" {
		t.Errorf("default currency = %q, want USD", got.Currency)
	}
	if got.Type != domain.ConversionTypeSale {
		t.Errorf("default type = %q, want sale", got.Type)
	}
	if got.Amount != nil {
		t.Errorf("expected nil amount, got %v", *got.Amount)
	}
}

func TestSignalFromJSON_NumericAndStringFields(t *testing.T) {
	payload := map[string]any{
		"orderId":    "ORD-3",
		"amount":     float64(120.5),
		"click_id":   float64(99),
		"partner_id": "12",
		"type":       "lead",
	}

	got := SignalFromJSON(payload)

	if got.OrderID != "ORD-3" {
		t.Errorf("OrderID = %q, want ORD-3", got.OrderID)
	}
	if got.Amount == nil || *got.Amount != 120.5 {
		t.Errorf("Amount = %v, want 120.5", got.Amount)
	}
	if got.ClickID != "99" {
		t.Errorf("ClickID = %q, want 99", got.ClickID)
	}
	if got.PartnerID == nil || *got.PartnerID != 12 {
		t.Errorf("PartnerID = %v, want 12", got.PartnerID)
	}
	if got.Type != domain.ConversionTypeLead {
		t.Errorf("Type = %q, want lead", got.Type)
	}
}

func TestSignalFromValues_AliasPriorityOrder(t *testing.T) {
	// order_id outranks transaction_id for the order id field
	got := SignalFromValues(url.Values{
		"order_id":       {"ORD-REAL"},
		"transaction_id": {"TXN-1"},
	})

	if got.OrderID != "ORD-REAL" {
		t.Errorf("OrderID = %q, want ORD-REAL", got.OrderID)
	}
	if got.TransactionID != "TXN-1" {
		t.Errorf("TransactionID = %q, want TXN-1", got.TransactionID)
	}
}
