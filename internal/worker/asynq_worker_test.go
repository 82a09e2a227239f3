package worker

import (
	"testing"

	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildDispatchInputNilOrder(t *testing.T) {
	got := buildDispatchInput(nil, constants.NotifyEventOrderPlaced)
	if got.Event != constants.NotifyEventOrderPlaced || got.OrderNo != "" {
		t.Fatalf("unexpected input for nil order: %+v", got)
	}
}

func TestBuildDispatchInputFromOrder(t *testing.T) {
	order := &models.Order{
		OrderNo:       "ORD20260830120000123456",
		CustomerName:  "Ana Cruz",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "09171234567",
		TotalAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(266)),
	}

	got := buildDispatchInput(order, constants.NotifyEventOrderCompleted)
	if got.Event != constants.NotifyEventOrderCompleted {
		t.Fatalf("unexpected event: %s", got.Event)
	}
	if got.OrderNo != order.OrderNo || got.CustomerName != "Ana Cruz" ||
		got.CustomerEmail != "ana@example.com" || got.CustomerPhone != "09171234567" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Amount != "266.00" {
		t.Fatalf("unexpected amount: %s", got.Amount)
	}
}

func TestNotifyDedupeKeyDistinguishesEvents(t *testing.T) {
	placed := notifyDedupeKey(42, constants.NotifyEventOrderPlaced)
	completed := notifyDedupeKey(42, constants.NotifyEventOrderCompleted)
	if placed == completed {
		t.Fatalf("expected distinct keys, got %q for both", placed)
	}
}
