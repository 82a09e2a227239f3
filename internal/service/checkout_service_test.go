package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/payment/paypal"
)

type checkoutFixture struct {
	svc     *CheckoutService
	cartSvc *CartService
}

func newCheckoutFixture(paypalCfg *config.PaypalConfig, products ...*models.Product) *checkoutFixture {
	productRepo := newFakeProductRepo(products...)
	cartRepo := newFakeCartRepo(productRepo)
	cartSvc := NewCartService(cartRepo, productRepo, &config.CartConfig{
		PromoCodes: map[string]float64{"KIMKLE10": 10},
	})
	orderSvc := NewOrderService(newFakeOrderRepo(), cartRepo, newFakeUserRepo(), nil, &config.OrderConfig{
		Currency:              "PHP",
		ShippingFee:           "50.00",
		EstimatedDeliveryDays: 3,
	})
	return &checkoutFixture{
		svc:     NewCheckoutService(cartSvc, orderSvc, paypalCfg),
		cartSvc: cartSvc,
	}
}

func enabledPaypalConfig() *config.PaypalConfig {
	return &config.PaypalConfig{
		Enabled:      true,
		Sandbox:      true,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}
}

// fakePaypalGateway 模拟渠道接口：签发令牌，并以固定金额完成 PP-1 的捕获。
func fakePaypalGateway(t *testing.T, amount, currency string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token"}`)
	})
	mux.HandleFunc("/v2/checkout/orders/PP-1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "PP-1",
			"status": "COMPLETED",
			"payer": {"payer_id": "PAYER-1"},
			"purchase_units": [{"payments": {"captures": [{
				"id": "CAP-1",
				"status": "COMPLETED",
				"amount": {"value": %q, "currency_code": %q},
				"create_time": "2026-08-30T08:00:00Z"
			}]}}]
		}`, amount, currency)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreatePaymentOrderDisabled(t *testing.T) {
	f := newCheckoutFixture(nil, bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	if _, err := f.svc.CreatePaymentOrder(context.Background(), GuestSession("g1")); !errors.Is(err, ErrPaymentNotEnabled) {
		t.Fatalf("expected ErrPaymentNotEnabled, got %v", err)
	}
}

func TestCreatePaymentOrderEmptyCart(t *testing.T) {
	f := newCheckoutFixture(enabledPaypalConfig(), bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	if _, err := f.svc.CreatePaymentOrder(context.Background(), GuestSession("g1")); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCreatePaymentOrderRecomputesBreakdown(t *testing.T) {
	f := newCheckoutFixture(enabledPaypalConfig(), bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	if _, err := f.cartSvc.AddItem(session, 1, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := f.cartSvc.ApplyPromoCode(session, "KIMKLE10"); err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}

	var captured paypal.CreateInput
	f.svc.createOrderFn = func(ctx context.Context, cfg *paypal.Config, input paypal.CreateInput) (*paypal.CreateResult, error) {
		captured = input
		return &paypal.CreateResult{OrderID: "PP-1", ApprovalURL: "https://example.com/approve"}, nil
	}

	view, err := f.svc.CreatePaymentOrder(context.Background(), session)
	if err != nil {
		t.Fatalf("CreatePaymentOrder: %v", err)
	}

	// 金额分解服务端重算，不信任客户端
	if captured.ItemTotal != "240.00" || captured.Discount != "24.00" ||
		captured.ShippingFee != "50.00" || captured.Total != "266.00" || captured.Currency != "PHP" {
		t.Fatalf("unexpected breakdown sent to channel: %+v", captured)
	}
	if len(captured.Items) != 1 || captured.Items[0].Name != "Ube Cake" || captured.Items[0].Quantity != 2 {
		t.Fatalf("unexpected channel items: %+v", captured.Items)
	}
	if view.PaypalOrderID != "PP-1" || view.Total.String() != "266.00" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if f.svc.HasCapturedDraft(session) {
		t.Fatal("draft must not count as captured before approval")
	}
}

func TestOnPaymentApprovedCaptureFailure(t *testing.T) {
	f := newCheckoutFixture(enabledPaypalConfig(), bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")

	wantErr := errors.New("capture declined")
	f.svc.captureOrderFn = func(ctx context.Context, cfg *paypal.Config, paypalOrderID string) (*paypal.ProofOfCapture, error) {
		return nil, wantErr
	}

	if err := f.svc.OnPaymentApproved(context.Background(), session, "PP-1"); !errors.Is(err, wantErr) {
		t.Fatalf("expected capture error to surface, got %v", err)
	}
	if f.svc.HasCapturedDraft(session) {
		t.Fatal("failed capture must not leave a captured draft")
	}
}

func TestPlaceOrderPaypalWithoutCapture(t *testing.T) {
	f := newCheckoutFixture(enabledPaypalConfig(), bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	if _, err := f.cartSvc.AddItem(session, 1, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := f.svc.PlaceOrder(context.Background(), session, PlaceOrderInput{
		CustomerEmail: "ana@example.com",
		PaymentMethod: constants.PaymentMethodPaypal,
	})
	if !errors.Is(err, ErrMissingPaymentDraft) {
		t.Fatalf("expected ErrMissingPaymentDraft, got %v", err)
	}
}

func TestPlaceOrderPaypalAfterCapture(t *testing.T) {
	f := newCheckoutFixture(enabledPaypalConfig(), bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	if _, err := f.cartSvc.AddItem(session, 1, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// 捕获走真实渠道客户端，金额与应付一致：120.00 + 50.00 运费
	srv := fakePaypalGateway(t, "170.00", "PHP")
	f.svc.paypalCfg.BaseURL = srv.URL
	f.svc.createOrderFn = func(ctx context.Context, cfg *paypal.Config, input paypal.CreateInput) (*paypal.CreateResult, error) {
		return &paypal.CreateResult{OrderID: "PP-1"}, nil
	}

	if _, err := f.svc.CreatePaymentOrder(context.Background(), session); err != nil {
		t.Fatalf("CreatePaymentOrder: %v", err)
	}
	if err := f.svc.OnPaymentApproved(context.Background(), session, "PP-1"); err != nil {
		t.Fatalf("OnPaymentApproved: %v", err)
	}
	if !f.svc.HasCapturedDraft(session) {
		t.Fatal("expected captured draft after approval")
	}

	order, err := f.svc.PlaceOrder(context.Background(), session, PlaceOrderInput{
		CustomerName:  "Ana Cruz",
		CustomerEmail: "ana@example.com",
		PaymentMethod: constants.PaymentMethodPaypal,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.Status != constants.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
	if order.CaptureID != "CAP-1" || order.PayerReference != "PAYER-1" {
		t.Fatalf("unexpected capture references: %s %s", order.CaptureID, order.PayerReference)
	}
	if f.svc.HasCapturedDraft(session) {
		t.Fatal("draft must be consumed after placing the order")
	}
}

func TestPlaceOrderRejectsAmountDriftAfterCapture(t *testing.T) {
	f := newCheckoutFixture(enabledPaypalConfig(), bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	if _, err := f.cartSvc.AddItem(session, 1, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	srv := fakePaypalGateway(t, "170.00", "PHP")
	f.svc.paypalCfg.BaseURL = srv.URL
	f.svc.createOrderFn = func(ctx context.Context, cfg *paypal.Config, input paypal.CreateInput) (*paypal.CreateResult, error) {
		return &paypal.CreateResult{OrderID: "PP-1"}, nil
	}

	if _, err := f.svc.CreatePaymentOrder(context.Background(), session); err != nil {
		t.Fatalf("CreatePaymentOrder: %v", err)
	}
	if err := f.svc.OnPaymentApproved(context.Background(), session, "PP-1"); err != nil {
		t.Fatalf("OnPaymentApproved: %v", err)
	}

	// 捕获之后继续加购，应付金额不再等于捕获金额，落单必须被拒绝
	if _, err := f.cartSvc.AddItem(session, 1, 2); err != nil {
		t.Fatalf("AddItem after capture: %v", err)
	}
	_, err := f.svc.PlaceOrder(context.Background(), session, PlaceOrderInput{
		CustomerEmail: "ana@example.com",
		PaymentMethod: constants.PaymentMethodPaypal,
	})
	if !errors.Is(err, ErrPaymentAmountMismatch) {
		t.Fatalf("expected ErrPaymentAmountMismatch, got %v", err)
	}
	if !f.svc.HasCapturedDraft(session) {
		t.Fatal("rejected placement must not consume the captured draft")
	}
}

func TestPlaceOrderCashOnDelivery(t *testing.T) {
	// 货到付款不依赖在线支付开关，也不需要捕获草稿
	f := newCheckoutFixture(nil, bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	if _, err := f.cartSvc.AddItem(session, 1, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	order, err := f.svc.PlaceOrder(context.Background(), session, PlaceOrderInput{
		CustomerEmail: "ana@example.com",
		PaymentMethod: constants.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
}
