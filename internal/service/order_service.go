package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/logger"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/payment/paypal"
	"github.com/jessmaeeGit/kimklesordering-api/internal/queue"
	"github.com/jessmaeeGit/kimklesordering-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// allowedTransitions 订单状态机。不在表内的流转一律拒绝，
// completed / cancelled 为终态。
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusPaid:       true,
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusCompleted: {},
	constants.OrderStatusCancelled: {},
}

// CanTransition 判断状态流转是否合法
func CanTransition(from, to string) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	userRepo    repository.UserRepository
	queueClient *queue.Client

	currency     string
	shippingFee  models.Money
	deliveryDays int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, userRepo repository.UserRepository, queueClient *queue.Client, cfg *config.OrderConfig) *OrderService {
	currency := constants.SiteCurrencyDefault
	shippingFee := models.NewMoneyFromDecimal(decimal.Zero)
	deliveryDays := 3
	if cfg != nil {
		if strings.TrimSpace(cfg.Currency) != "" {
			currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
		}
		if fee, err := models.NewMoneyFromString(cfg.ShippingFee); err == nil {
			shippingFee = fee
		}
		if cfg.EstimatedDeliveryDays > 0 {
			deliveryDays = cfg.EstimatedDeliveryDays
		}
	}
	return &OrderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		userRepo:     userRepo,
		queueClient:  queueClient,
		currency:     currency,
		shippingFee:  shippingFee,
		deliveryDays: deliveryDays,
	}
}

// Currency 返回下单币种
func (s *OrderService) Currency() string {
	return s.currency
}

// ShippingFee 返回配置运费
func (s *OrderService) ShippingFee() models.Money {
	return s.shippingFee
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	Session         Session
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	PaymentMethod   string
	Proof           *paypal.ProofOfCapture
}

// CreateOrder 创建订单。事务内：快照购物车为订单项、清空购物车、
// 按邮箱懒注册并关联用户。带捕获凭证时直接落 paid，否则 pending。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if !input.Session.Valid() {
		return nil, ErrInvalidSession
	}
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	name := strings.TrimSpace(input.CustomerName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: customer email", ErrInvalidInput)
	}
	if name == "" {
		name = emailLocalPart(email)
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if method != constants.PaymentMethodPaypal && method != constants.PaymentMethodCashOnDelivery {
		return nil, ErrInvalidPaymentMethod
	}

	cart, err := s.cartRepo.GetBySessionKey(input.Session.Key())
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal, discount, _, _ := computeCartTotals(cart.Items, cart.DiscountPercent)
	total := models.NewMoneyFromDecimal(subtotal.Decimal.Sub(discount.Decimal).Add(s.shippingFee.Decimal))
	if !total.Decimal.IsPositive() {
		return nil, ErrInvalidTotal
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:             generateOrderNo(),
		CustomerName:        name,
		CustomerEmail:       email,
		CustomerPhone:       strings.TrimSpace(input.CustomerPhone),
		ShippingAddress:     strings.TrimSpace(input.ShippingAddress),
		Status:              constants.OrderStatusPending,
		PaymentMethod:       method,
		Currency:            s.currency,
		ItemsSubtotal:       subtotal,
		ShippingFee:         s.shippingFee,
		DiscountAmount:      discount,
		TotalAmount:         total,
		PromoCode:           cart.PromoCode,
		EstimatedDeliveryAt: now.AddDate(0, 0, s.deliveryDays),
	}
	if input.Proof != nil {
		if err := verifyCapturedAmount(input.Proof, total, s.currency); err != nil {
			return nil, err
		}
		order.Status = constants.OrderStatusPaid
		order.CaptureID = input.Proof.CaptureID()
		order.PayerReference = input.Proof.PayerID()
		paidAt := input.Proof.CapturedAt()
		order.PaidAt = &paidAt
	}
	for _, item := range cart.Items {
		productName := ""
		if item.Product != nil {
			productName = item.Product.Name
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: productName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		})
	}

	err = s.runInTx(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo
		cartRepo := s.cartRepo
		userRepo := s.userRepo
		if tx != nil {
			orderRepo = s.orderRepo.WithTx(tx)
			cartRepo = s.cartRepo.WithTx(tx)
			userRepo = s.userRepo.WithTx(tx)
		}

		user, err := s.attachUser(userRepo, email, name, order.CustomerPhone)
		if err != nil {
			return err
		}
		order.UserID = user.ID

		if err := orderRepo.Create(order); err != nil {
			return err
		}
		if err := cartRepo.ClearItems(cart.ID); err != nil {
			return err
		}
		cart.PromoCode = ""
		cart.DiscountPercent = 0
		return cartRepo.UpdateCart(cart)
	})
	if err != nil {
		return nil, err
	}

	// 通知投递只尝试一次，失败不影响下单结果
	if err := s.queueClient.EnqueueOrderNotify(queue.OrderNotifyPayload{OrderID: order.ID}); err != nil {
		logger.Warnw("order_notify_enqueue_failed", "order_no", order.OrderNo, "error", err)
	}
	return order, nil
}

// verifyCapturedAmount 校验捕获金额与应付金额一致、币种相同。
// 捕获之后购物车仍可改动，落 paid 前必须把凭证绑回实际应付金额。
func verifyCapturedAmount(proof *paypal.ProofOfCapture, total models.Money, currency string) error {
	captured, err := models.NewMoneyFromString(proof.Amount())
	if err != nil {
		return fmt.Errorf("%w: captured amount %q", ErrPaymentAmountMismatch, proof.Amount())
	}
	if !captured.Decimal.Equal(total.Decimal) {
		return fmt.Errorf("%w: captured %s, expected %s", ErrPaymentAmountMismatch, captured, total)
	}
	if !strings.EqualFold(proof.Currency(), currency) {
		return fmt.Errorf("%w: captured currency %s, expected %s", ErrPaymentAmountMismatch, proof.Currency(), currency)
	}
	return nil
}

// attachUser 按邮箱懒注册或关联用户，并累计下单次数
func (s *OrderService) attachUser(userRepo repository.UserRepository, email, name, phone string) (*models.User, error) {
	user, err := userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			Email:      email,
			Name:       name,
			Phone:      phone,
			OrderCount: 1,
		}
		if user.Name == "" {
			user.Name = emailLocalPart(email)
		}
		if err := userRepo.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	user.OrderCount++
	if user.Name == "" {
		user.Name = name
	}
	if user.Phone == "" {
		user.Phone = phone
	}
	if err := userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByOrderNo 按订单编号查询
func (s *OrderService) GetByOrderNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(strings.TrimSpace(orderNo))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByID 按ID查询
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders 用户订单列表（最新在前）
func (s *OrderService) ListUserOrders(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(userID, page, pageSize)
}

// ListOrders 管理端订单列表
func (s *OrderService) ListOrders(status string, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.List(strings.TrimSpace(status), page, pageSize)
}

// MarkPaid 凭捕获凭证置为已支付。paid 只能经由该入口写入。
func (s *OrderService) MarkPaid(orderNo string, proof *paypal.ProofOfCapture) (*models.Order, error) {
	if proof == nil {
		return nil, ErrProofRequired
	}
	order, err := s.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order.Status == constants.OrderStatusPaid {
		return order, nil
	}
	if !CanTransition(order.Status, constants.OrderStatusPaid) {
		return order, nil
	}
	if err := verifyCapturedAmount(proof, order.TotalAmount, order.Currency); err != nil {
		return nil, err
	}
	paidAt := proof.CapturedAt()
	fields := map[string]interface{}{
		"status":          constants.OrderStatusPaid,
		"capture_id":      proof.CaptureID(),
		"payer_reference": proof.PayerID(),
		"paid_at":         &paidAt,
	}
	if err := s.orderRepo.UpdateFields(order.ID, fields); err != nil {
		return nil, err
	}
	return s.GetByOrderNo(orderNo)
}

// Approve 审核通过，进入备餐（pending/paid 之外静默忽略）
func (s *OrderService) Approve(orderNo string) (*models.Order, error) {
	return s.transition(orderNo, constants.OrderStatusProcessing)
}

// Complete 完成订单，成功流转时触发完成通知
func (s *OrderService) Complete(orderNo string) (*models.Order, error) {
	order, err := s.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	changed, updated, err := s.applyTransition(order, constants.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.queueClient.EnqueueOrderCompletedNotify(queue.OrderCompletedNotifyPayload{OrderID: updated.ID}); err != nil {
			logger.Warnw("order_completed_notify_enqueue_failed", "order_no", updated.OrderNo, "error", err)
		}
	}
	return updated, nil
}

// Reject 驳回订单，置为已取消
func (s *OrderService) Reject(orderNo string) (*models.Order, error) {
	return s.transition(orderNo, constants.OrderStatusCancelled)
}

// Cancel 取消订单
func (s *OrderService) Cancel(orderNo string) (*models.Order, error) {
	return s.transition(orderNo, constants.OrderStatusCancelled)
}

// transition 执行状态流转。目标状态相同或流转不合法时
// 原样返回订单，不报错（管理端操作对不适用状态静默忽略）。
func (s *OrderService) transition(orderNo, target string) (*models.Order, error) {
	order, err := s.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	_, updated, err := s.applyTransition(order, target)
	return updated, err
}

func (s *OrderService) applyTransition(order *models.Order, target string) (bool, *models.Order, error) {
	if order.Status == target {
		return false, order, nil
	}
	if !CanTransition(order.Status, target) {
		logger.Debugw("order_transition_skipped", "order_no", order.OrderNo, "from", order.Status, "to", target)
		return false, order, nil
	}
	now := time.Now()
	fields := map[string]interface{}{"status": target}
	switch target {
	case constants.OrderStatusCompleted:
		fields["completed_at"] = &now
	case constants.OrderStatusCancelled:
		fields["cancelled_at"] = &now
	}
	if err := s.orderRepo.UpdateFields(order.ID, fields); err != nil {
		return false, nil, err
	}
	updated, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return false, nil, err
	}
	if updated == nil {
		return false, nil, ErrOrderNotFound
	}
	logger.Infow("order_status_changed", "order_no", updated.OrderNo, "from", order.Status, "to", target)
	return true, updated, nil
}

func (s *OrderService) runInTx(fn func(tx *gorm.DB) error) error {
	if models.DB == nil {
		return fn(nil)
	}
	return models.DB.Transaction(fn)
}

// generateOrderNo 生成订单编号：ORD + 时间戳 + 6位随机数字
func generateOrderNo() string {
	return constants.OrderNoPrefix + time.Now().Format("20060102150405") + randNumeric(6)
}

func randNumeric(length int) string {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}

func emailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return email
}
