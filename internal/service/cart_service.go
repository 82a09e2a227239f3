package service

import (
	"strings"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	promoCodes  map[string]float64
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, cfg *config.CartConfig) *CartService {
	promoCodes := map[string]float64{}
	if cfg != nil {
		for code, percent := range cfg.PromoCodes {
			normalized := strings.ToUpper(strings.TrimSpace(code))
			if normalized == "" || percent <= 0 || percent > 100 {
				continue
			}
			promoCodes[normalized] = percent
		}
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		promoCodes:  promoCodes,
	}
}

// CartItemView 购物车项视图
type CartItemView struct {
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	ImageURL    string       `json:"image_url"`
	UnitPrice   models.Money `json:"unit_price"`
	Quantity    int          `json:"quantity"`
	LineTotal   models.Money `json:"line_total"`
}

// CartView 购物车视图。所有金额均由行项目当场重算，
// 不落库累计值，重复应用优惠码不会叠加折扣。
type CartView struct {
	Items           []CartItemView `json:"items"`
	TotalQuantity   int            `json:"total_quantity"`
	Subtotal        models.Money   `json:"subtotal"`
	PromoCode       string         `json:"promo_code,omitempty"`
	DiscountPercent float64        `json:"discount_percent"`
	DiscountAmount  models.Money   `json:"discount_amount"`
	Total           models.Money   `json:"total"`
}

// computeCartTotals 按行项目重算小计、折扣与合计（纯函数）
func computeCartTotals(items []models.CartItem, discountPercent float64) (subtotal, discount, total models.Money, totalQuantity int) {
	sum := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
		totalQuantity += item.Quantity
	}
	subtotal = models.NewMoneyFromDecimal(sum)
	if discountPercent > 0 {
		discount = models.NewMoneyFromDecimal(sum.Mul(decimal.NewFromFloat(discountPercent)).Div(decimal.NewFromInt(100)))
	} else {
		discount = models.NewMoneyFromDecimal(decimal.Zero)
	}
	total = models.NewMoneyFromDecimal(subtotal.Decimal.Sub(discount.Decimal))
	return subtotal, discount, total, totalQuantity
}

// GetCart 获取购物车视图
func (s *CartService) GetCart(session Session) (*CartView, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}
	cart, err := s.cartRepo.GetBySessionKey(session.Key())
	if err != nil {
		return nil, err
	}
	return s.buildView(cart), nil
}

// AddItem 加入购物车（同商品合并数量）
func (s *CartService) AddItem(session Session, productID uint, quantity int) (*CartView, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Status != constants.ProductStatusActive {
		return nil, ErrProductUnavailable
	}

	cart, err := s.cartRepo.GetOrCreate(session.Key())
	if err != nil {
		return nil, err
	}
	existing, err := s.cartRepo.GetItem(cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		if err := s.cartRepo.CreateItem(item); err != nil {
			return nil, err
		}
	} else {
		existing.Quantity += quantity
		if err := s.cartRepo.UpdateItem(existing); err != nil {
			return nil, err
		}
	}
	return s.reload(session)
}

// RemoveItem 数量减一，减到零时删除该行
func (s *CartService) RemoveItem(session Session, productID uint) (*CartView, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}
	cart, err := s.cartRepo.GetBySessionKey(session.Key())
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartItemNotFound
	}
	item, err := s.cartRepo.GetItem(cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if item.Quantity <= 1 {
		if err := s.cartRepo.DeleteItem(cart.ID, productID); err != nil {
			return nil, err
		}
	} else {
		item.Quantity--
		if err := s.cartRepo.UpdateItem(item); err != nil {
			return nil, err
		}
	}
	return s.reload(session)
}

// DeleteItem 整行移除
func (s *CartService) DeleteItem(session Session, productID uint) (*CartView, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}
	cart, err := s.cartRepo.GetBySessionKey(session.Key())
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.DeleteItem(cart.ID, productID); err != nil {
		return nil, err
	}
	return s.reload(session)
}

// ApplyPromoCode 应用优惠码（幂等，重复应用同一码折扣不变）
func (s *CartService) ApplyPromoCode(session Session, code string) (*CartView, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))
	percent, ok := s.promoCodes[normalized]
	if !ok {
		return nil, ErrInvalidPromoCode
	}
	cart, err := s.cartRepo.GetOrCreate(session.Key())
	if err != nil {
		return nil, err
	}
	cart.PromoCode = normalized
	cart.DiscountPercent = percent
	if err := s.cartRepo.UpdateCart(cart); err != nil {
		return nil, err
	}
	return s.reload(session)
}

// ClearCart 清空购物车并重置优惠码状态
func (s *CartService) ClearCart(session Session) error {
	if !session.Valid() {
		return ErrInvalidSession
	}
	cart, err := s.cartRepo.GetBySessionKey(session.Key())
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	if err := s.cartRepo.ClearItems(cart.ID); err != nil {
		return err
	}
	cart.PromoCode = ""
	cart.DiscountPercent = 0
	return s.cartRepo.UpdateCart(cart)
}

func (s *CartService) reload(session Session) (*CartView, error) {
	cart, err := s.cartRepo.GetBySessionKey(session.Key())
	if err != nil {
		return nil, err
	}
	return s.buildView(cart), nil
}

func (s *CartService) buildView(cart *models.Cart) *CartView {
	view := &CartView{Items: []CartItemView{}}
	if cart == nil {
		subtotal, discount, total, _ := computeCartTotals(nil, 0)
		view.Subtotal = subtotal
		view.DiscountAmount = discount
		view.Total = total
		return view
	}
	for _, item := range cart.Items {
		itemView := CartItemView{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: models.NewMoneyFromDecimal(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		}
		if item.Product != nil {
			itemView.ProductName = item.Product.Name
			itemView.ImageURL = item.Product.ImageURL
		}
		view.Items = append(view.Items, itemView)
	}
	subtotal, discount, total, totalQuantity := computeCartTotals(cart.Items, cart.DiscountPercent)
	view.TotalQuantity = totalQuantity
	view.Subtotal = subtotal
	view.PromoCode = cart.PromoCode
	view.DiscountPercent = cart.DiscountPercent
	view.DiscountAmount = discount
	view.Total = total
	return view
}
