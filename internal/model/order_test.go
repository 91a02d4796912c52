package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

func TestOrderTotal(t *testing.T) {
	o := &Order{Items: []LineItem{
		{Quantity: 2, Price: decimal.RequireFromString("9.99")},
		{Quantity: 1, Price: decimal.RequireFromString("4.50")},
	}}

	if got := o.Total(); !got.Equal(decimal.RequireFromString("24.48")) {
		t.Errorf("expected total 24.48, got %s", got)
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		cur    currency.Unit
		want   int64
	}{
		{"19.98", currency.USD, 1998},
		{"0", currency.USD, 0},
		{"9.995", currency.USD, 1000},
		{"9.994", currency.USD, 999},
		{"1500", currency.JPY, 1500},
		{"12.5", currency.EUR, 1250},
	}

	for _, tt := range tests {
		got := MinorUnits(decimal.RequireFromString(tt.amount), tt.cur)
		if got != tt.want {
			t.Errorf("MinorUnits(%s, %s) = %d, want %d", tt.amount, tt.cur, got, tt.want)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	cur, err := ParseCurrency("usd")
	if err != nil {
		t.Fatalf("ParseCurrency: %v", err)
	}
	if cur != currency.USD {
		t.Errorf("expected USD, got %s", cur)
	}

	if _, err := ParseCurrency("zzz"); err == nil {
		t.Error("expected error for unknown currency")
	}
}

func TestPriceMarshalsAsNumber(t *testing.T) {
	data, err := json.Marshal(LineItem{Quantity: 1, Price: decimal.RequireFromString("9.99")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"price":9.99`) {
		t.Errorf("expected numeric price, got %s", data)
	}
}

func TestOrderJSONIncludesTotalAmount(t *testing.T) {
	o := &Order{
		Status: OrderStatusPending,
		Items: []LineItem{
			{Quantity: 2, Price: decimal.RequireFromString("9.99")},
			{Quantity: 1, Price: decimal.RequireFromString("4.50")},
		},
	}

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"totalAmount":24.48`, `"status":"pending"`, `"shippingAddress":{`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in %s", want, data)
		}
	}

	var back Order
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(back.Items) != 2 || back.Status != OrderStatusPending {
		t.Errorf("round trip lost fields: %+v", back)
	}
}
