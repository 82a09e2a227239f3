package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/logger"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/payment/paypal"
)

const draftTTL = 30 * time.Minute

// paymentDraft 结账草稿：创建支付单后记录渠道订单号，
// 捕获成功后持有凭证，等待 PlaceOrder 落库。
type paymentDraft struct {
	paypalOrderID string
	proof         *paypal.ProofOfCapture
	createdAt     time.Time
}

// CheckoutService 结账服务。两阶段：先创建并捕获支付，
// 再由 PlaceOrder 持久化订单。草稿按显式会话键保存在内存。
type CheckoutService struct {
	cartService  *CartService
	orderService *OrderService
	paypalCfg    *paypal.Config
	enabled      bool

	mu     sync.Mutex
	drafts map[string]*paymentDraft

	// 渠道调用入口（测试替换）
	createOrderFn  func(ctx context.Context, cfg *paypal.Config, input paypal.CreateInput) (*paypal.CreateResult, error)
	captureOrderFn func(ctx context.Context, cfg *paypal.Config, paypalOrderID string) (*paypal.ProofOfCapture, error)
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(cartService *CartService, orderService *OrderService, cfg *config.PaypalConfig) *CheckoutService {
	s := &CheckoutService{
		cartService:    cartService,
		orderService:   orderService,
		drafts:         map[string]*paymentDraft{},
		createOrderFn:  paypal.CreateOrder,
		captureOrderFn: paypal.CaptureOrder,
	}
	if cfg != nil && cfg.Enabled {
		s.enabled = true
		s.paypalCfg = paypal.NewConfig(cfg.ClientID, cfg.ClientSecret, cfg.Sandbox, cfg.TimeoutMS)
	}
	return s
}

// PaymentOrderView 创建支付单返回
type PaymentOrderView struct {
	PaypalOrderID string       `json:"paypal_order_id"`
	ApprovalURL   string       `json:"approval_url,omitempty"`
	ItemTotal     models.Money `json:"item_total"`
	ShippingFee   models.Money `json:"shipping_fee"`
	Discount      models.Money `json:"discount"`
	Total         models.Money `json:"total"`
	Currency      string       `json:"currency"`
}

// CreatePaymentOrder 创建支付单。金额分解从购物车行项目重算到分，
// 不信任客户端提交的金额。
func (s *CheckoutService) CreatePaymentOrder(ctx context.Context, session Session) (*PaymentOrderView, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}
	if !s.enabled {
		return nil, ErrPaymentNotEnabled
	}
	cart, err := s.cartService.GetCart(session)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	shipping := s.orderService.ShippingFee()
	total := models.NewMoneyFromDecimal(cart.Subtotal.Decimal.Sub(cart.DiscountAmount.Decimal).Add(shipping.Decimal))
	if !total.Decimal.IsPositive() {
		return nil, ErrInvalidTotal
	}

	items := make([]paypal.ItemInput, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, paypal.ItemInput{
			Name:      item.ProductName,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
		})
	}
	currency := s.orderService.Currency()
	result, err := s.createOrderFn(ctx, s.paypalCfg, paypal.CreateInput{
		OrderNo:     session.Key(),
		Currency:    currency,
		ItemTotal:   cart.Subtotal.String(),
		ShippingFee: shipping.String(),
		Discount:    cart.DiscountAmount.String(),
		Total:       total.String(),
		Description: "Kimkle's Cravings order",
		Items:       items,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.drafts[session.Key()] = &paymentDraft{
		paypalOrderID: result.OrderID,
		createdAt:     time.Now(),
	}
	s.pruneExpiredLocked(time.Now())
	s.mu.Unlock()

	return &PaymentOrderView{
		PaypalOrderID: result.OrderID,
		ApprovalURL:   result.ApprovalURL,
		ItemTotal:     cart.Subtotal,
		ShippingFee:   shipping,
		Discount:      cart.DiscountAmount,
		Total:         total,
		Currency:      currency,
	}, nil
}

// OnPaymentApproved 买家批准后服务端捕获。捕获凭证只在这里产生，
// 并写入会话草稿等待落库。
func (s *CheckoutService) OnPaymentApproved(ctx context.Context, session Session, paypalOrderID string) error {
	if !session.Valid() {
		return ErrInvalidSession
	}
	if !s.enabled {
		return ErrPaymentNotEnabled
	}
	paypalOrderID = strings.TrimSpace(paypalOrderID)
	if paypalOrderID == "" {
		return ErrMissingPaymentDraft
	}

	proof, err := s.captureOrderFn(ctx, s.paypalCfg, paypalOrderID)
	if err != nil {
		logger.Warnw("checkout_capture_failed", "session", session.Key(), "paypal_order_id", paypalOrderID, "error", err)
		return err
	}

	s.mu.Lock()
	draft, ok := s.drafts[session.Key()]
	if !ok || draft.paypalOrderID != paypalOrderID {
		draft = &paymentDraft{paypalOrderID: paypalOrderID, createdAt: time.Now()}
		s.drafts[session.Key()] = draft
	}
	draft.proof = proof
	s.mu.Unlock()

	logger.Infow("checkout_capture_succeeded", "session", session.Key(), "capture_id", proof.CaptureID())
	return nil
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	PaymentMethod   string
}

// PlaceOrder 落库下单。paypal 方式要求会话内存在已捕获草稿，
// 货到付款直接按表单创建 pending 订单。
func (s *CheckoutService) PlaceOrder(ctx context.Context, session Session, input PlaceOrderInput) (*models.Order, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))

	var proof *paypal.ProofOfCapture
	if method == constants.PaymentMethodPaypal {
		s.mu.Lock()
		draft, ok := s.drafts[session.Key()]
		if ok && draft.proof != nil && time.Since(draft.createdAt) <= draftTTL {
			proof = draft.proof
		}
		s.mu.Unlock()
		if proof == nil {
			return nil, ErrMissingPaymentDraft
		}
	}

	order, err := s.orderService.CreateOrder(CreateOrderInput{
		Session:         session,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   method,
		Proof:           proof,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.drafts, session.Key())
	s.mu.Unlock()
	return order, nil
}

// HasCapturedDraft 判断会话是否已有捕获草稿
func (s *CheckoutService) HasCapturedDraft(session Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[session.Key()]
	return ok && draft.proof != nil && time.Since(draft.createdAt) <= draftTTL
}

func (s *CheckoutService) pruneExpiredLocked(now time.Time) {
	for key, draft := range s.drafts {
		if now.Sub(draft.createdAt) > draftTTL {
			delete(s.drafts, key)
		}
	}
}

// IsPaymentEnabled 判断在线支付是否可用
func (s *CheckoutService) IsPaymentEnabled() bool {
	return s != nil && s.enabled
}
