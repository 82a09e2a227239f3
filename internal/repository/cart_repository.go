package repository

import (
	"errors"

	"github.com/jessmaeeGit/kimklesordering-api/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetBySessionKey(sessionKey string) (*models.Cart, error)
	GetOrCreate(sessionKey string) (*models.Cart, error)
	UpdateCart(cart *models.Cart) error
	GetItem(cartID, productID uint) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	DeleteItem(cartID, productID uint) error
	ClearItems(cartID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetBySessionKey 按会话键查询购物车（含商品项）
func (r *GormCartRepository) GetBySessionKey(sessionKey string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.created_at asc")
	}).Preload("Items.Product").Where("session_key = ?", sessionKey).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate 按会话键获取购物车，不存在则创建
func (r *GormCartRepository) GetOrCreate(sessionKey string) (*models.Cart, error) {
	cart, err := r.GetBySessionKey(sessionKey)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{SessionKey: sessionKey}
	if err := r.db.Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateCart 更新购物车头（优惠码状态）
func (r *GormCartRepository) UpdateCart(cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	return r.db.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
		"promo_code":       cart.PromoCode,
		"discount_percent": cart.DiscountPercent,
	}).Error
}

// GetItem 查询购物车项
func (r *GormCartRepository) GetItem(cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem 创建购物车项
func (r *GormCartRepository) CreateItem(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// UpdateItem 更新购物车项数量
func (r *GormCartRepository) UpdateItem(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	return r.db.Model(&models.CartItem{}).Where("id = ?", item.ID).Update("quantity", item.Quantity).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(cartID, productID uint) error {
	return r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{}).Error
}

// ClearItems 清空购物车项
func (r *GormCartRepository) ClearItems(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
