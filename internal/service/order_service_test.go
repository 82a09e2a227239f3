package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/payment/paypal"
)

type orderServiceFixture struct {
	svc       *OrderService
	orderRepo *fakeOrderRepo
	cartRepo  *fakeCartRepo
	userRepo  *fakeUserRepo
	cartSvc   *CartService
}

func newOrderServiceFixture(products ...*models.Product) *orderServiceFixture {
	productRepo := newFakeProductRepo(products...)
	cartRepo := newFakeCartRepo(productRepo)
	orderRepo := newFakeOrderRepo()
	userRepo := newFakeUserRepo()
	cartSvc := NewCartService(cartRepo, productRepo, &config.CartConfig{
		PromoCodes: map[string]float64{"KIMKLE10": 10},
	})
	svc := NewOrderService(orderRepo, cartRepo, userRepo, nil, &config.OrderConfig{
		Currency:              "PHP",
		ShippingFee:           "50.00",
		EstimatedDeliveryDays: 3,
	})
	return &orderServiceFixture{
		svc:       svc,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		cartSvc:   cartSvc,
	}
}

func (f *orderServiceFixture) seedCart(t *testing.T, session Session, productID uint, quantity int) {
	t.Helper()
	if _, err := f.cartSvc.AddItem(session, productID, quantity); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusPaid, true},
		{constants.OrderStatusPending, constants.OrderStatusProcessing, true},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPending, constants.OrderStatusCompleted, false},
		{constants.OrderStatusPaid, constants.OrderStatusProcessing, true},
		{constants.OrderStatusPaid, constants.OrderStatusCompleted, false},
		{constants.OrderStatusProcessing, constants.OrderStatusCompleted, true},
		{constants.OrderStatusProcessing, constants.OrderStatusCancelled, true},
		{constants.OrderStatusProcessing, constants.OrderStatusPaid, false},
		{constants.OrderStatusCompleted, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusProcessing, false},
		{"unknown", constants.OrderStatusPaid, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCreateOrderCashOnDelivery(t *testing.T) {
	f := newOrderServiceFixture(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	f.seedCart(t, session, 1, 2)
	if _, err := f.cartSvc.ApplyPromoCode(session, "KIMKLE10"); err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}

	before := time.Now()
	order, err := f.svc.CreateOrder(CreateOrderInput{
		Session:         session,
		CustomerName:    "Ana Cruz",
		CustomerEmail:   "Ana.Cruz@Example.com",
		CustomerPhone:   "09171234567",
		ShippingAddress: "123 Mabini St, Quezon City",
		PaymentMethod:   constants.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNo, constants.OrderNoPrefix) || len(order.OrderNo) != len(constants.OrderNoPrefix)+20 {
		t.Fatalf("unexpected order number %q", order.OrderNo)
	}
	if order.CustomerEmail != "ana.cruz@example.com" {
		t.Fatalf("expected lowercased email, got %s", order.CustomerEmail)
	}
	if order.ItemsSubtotal.String() != "240.00" || order.DiscountAmount.String() != "24.00" ||
		order.ShippingFee.String() != "50.00" || order.TotalAmount.String() != "266.00" {
		t.Fatalf("unexpected amounts: subtotal=%s discount=%s shipping=%s total=%s",
			order.ItemsSubtotal, order.DiscountAmount, order.ShippingFee, order.TotalAmount)
	}
	if order.Currency != "PHP" || order.PromoCode != "KIMKLE10" {
		t.Fatalf("unexpected currency/promo: %s %s", order.Currency, order.PromoCode)
	}
	if len(order.Items) != 1 || order.Items[0].ProductName != "Ube Cake" || order.Items[0].TotalPrice.String() != "240.00" {
		t.Fatalf("unexpected item snapshot: %+v", order.Items)
	}
	wantDelivery := before.AddDate(0, 0, 3)
	if order.EstimatedDeliveryAt.Before(wantDelivery.Add(-time.Minute)) || order.EstimatedDeliveryAt.After(wantDelivery.Add(time.Minute)) {
		t.Fatalf("unexpected estimated delivery %v", order.EstimatedDeliveryAt)
	}

	// 购物车在下单事务里清空，优惠码一并重置
	cart, _ := f.cartRepo.GetBySessionKey(session.Key())
	if cart == nil || len(cart.Items) != 0 || cart.PromoCode != "" || cart.DiscountPercent != 0 {
		t.Fatalf("expected cleared cart, got %+v", cart)
	}

	// 顾客按邮箱懒注册并关联订单
	user, _ := f.userRepo.GetByEmail("ana.cruz@example.com")
	if user == nil {
		t.Fatal("expected lazily registered user")
	}
	if user.PasswordHash != "" || user.OrderCount != 1 || order.UserID != user.ID {
		t.Fatalf("unexpected user state: %+v (order user %d)", user, order.UserID)
	}
}

func TestCreateOrderLinksExistingUser(t *testing.T) {
	f := newOrderServiceFixture(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	existing := &models.User{Email: "ana.cruz@example.com", Name: "Ana", OrderCount: 2}
	if err := f.userRepo.Create(existing); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	session := GuestSession("g1")
	f.seedCart(t, session, 1, 1)

	order, err := f.svc.CreateOrder(CreateOrderInput{
		Session:       session,
		CustomerEmail: "ana.cruz@example.com",
		PaymentMethod: constants.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.UserID != existing.ID {
		t.Fatalf("expected order linked to user %d, got %d", existing.ID, order.UserID)
	}
	user, _ := f.userRepo.GetByID(existing.ID)
	if user.OrderCount != 3 {
		t.Fatalf("expected order count 3, got %d", user.OrderCount)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrderServiceFixture(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")

	if _, err := f.svc.CreateOrder(CreateOrderInput{
		Session:       session,
		CustomerEmail: "ana@example.com",
		PaymentMethod: constants.PaymentMethodCashOnDelivery,
	}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	f.seedCart(t, session, 1, 1)
	if _, err := f.svc.CreateOrder(CreateOrderInput{
		Session:       session,
		CustomerEmail: "not-an-email",
		PaymentMethod: constants.PaymentMethodCashOnDelivery,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.svc.CreateOrder(CreateOrderInput{
		Session:       session,
		CustomerEmail: "ana@example.com",
		PaymentMethod: "gcash",
	}); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestMarkPaidRequiresProof(t *testing.T) {
	f := newOrderServiceFixture()
	if _, err := f.svc.MarkPaid("ORD123", nil); !errors.Is(err, ErrProofRequired) {
		t.Fatalf("expected ErrProofRequired, got %v", err)
	}
}

func TestCreateOrderRejectsProofWithoutAmount(t *testing.T) {
	f := newOrderServiceFixture(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	f.seedCart(t, session, 1, 1)

	// 空凭证没有捕获金额，不能据此落 paid
	if _, err := f.svc.CreateOrder(CreateOrderInput{
		Session:       session,
		CustomerEmail: "ana@example.com",
		PaymentMethod: constants.PaymentMethodPaypal,
		Proof:         &paypal.ProofOfCapture{},
	}); !errors.Is(err, ErrPaymentAmountMismatch) {
		t.Fatalf("expected ErrPaymentAmountMismatch, got %v", err)
	}
}

func TestMarkPaidRejectsAmountMismatch(t *testing.T) {
	f := newOrderServiceFixture()
	total, err := models.NewMoneyFromString("170.00")
	if err != nil {
		t.Fatalf("parse total: %v", err)
	}
	if err := f.orderRepo.Create(&models.Order{
		OrderNo:     "ORD1",
		Status:      constants.OrderStatusPending,
		Currency:    "PHP",
		TotalAmount: total,
	}); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	if _, err := f.svc.MarkPaid("ORD1", &paypal.ProofOfCapture{}); !errors.Is(err, ErrPaymentAmountMismatch) {
		t.Fatalf("expected ErrPaymentAmountMismatch, got %v", err)
	}
}

func seedOrder(t *testing.T, repo *fakeOrderRepo, orderNo, status string) {
	t.Helper()
	if err := repo.Create(&models.Order{OrderNo: orderNo, Status: status}); err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestApproveMovesPendingToProcessing(t *testing.T) {
	f := newOrderServiceFixture()
	seedOrder(t, f.orderRepo, "ORD1", constants.OrderStatusPending)

	order, err := f.svc.Approve("ORD1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if order.Status != constants.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", order.Status)
	}
}

func TestCompleteFromProcessing(t *testing.T) {
	f := newOrderServiceFixture()
	seedOrder(t, f.orderRepo, "ORD1", constants.OrderStatusProcessing)

	order, err := f.svc.Complete("ORD1")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if order.Status != constants.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", order.Status)
	}
	if order.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

func TestAdminTransitionsSkipIneligibleStates(t *testing.T) {
	f := newOrderServiceFixture()
	seedOrder(t, f.orderRepo, "ORD1", constants.OrderStatusPending)
	seedOrder(t, f.orderRepo, "ORD2", constants.OrderStatusCancelled)
	seedOrder(t, f.orderRepo, "ORD3", constants.OrderStatusCompleted)

	// 不适用状态静默忽略，原样返回订单
	order, err := f.svc.Complete("ORD1")
	if err != nil || order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending unchanged, got %s err=%v", order.Status, err)
	}
	order, err = f.svc.Approve("ORD2")
	if err != nil || order.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled unchanged, got %s err=%v", order.Status, err)
	}
	order, err = f.svc.Reject("ORD3")
	if err != nil || order.Status != constants.OrderStatusCompleted {
		t.Fatalf("expected completed unchanged, got %s err=%v", order.Status, err)
	}
}

func TestRejectSetsCancelledAt(t *testing.T) {
	f := newOrderServiceFixture()
	seedOrder(t, f.orderRepo, "ORD1", constants.OrderStatusPaid)

	order, err := f.svc.Reject("ORD1")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if order.Status != constants.OrderStatusCancelled || order.CancelledAt == nil {
		t.Fatalf("expected cancelled with timestamp, got %+v", order)
	}
}

func TestGetByOrderNoNotFound(t *testing.T) {
	f := newOrderServiceFixture()
	if _, err := f.svc.GetByOrderNo("ORD404"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
