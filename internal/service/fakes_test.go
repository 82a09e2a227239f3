package service

import (
	"context"
	"sync"
	"time"

	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/notify/notificationapi"
	"github.com/jessmaeeGit/kimklesordering-api/internal/repository"

	"gorm.io/gorm"
)

type fakeProductRepo struct {
	products map[uint]*models.Product
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[uint]*models.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (f *fakeProductRepo) List(category string, page, pageSize int) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductRepo) GetByID(id uint) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProductRepo) GetBySlug(slug string) (*models.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) Create(product *models.Product) error { f.products[product.ID] = product; return nil }
func (f *fakeProductRepo) Update(product *models.Product) error { f.products[product.ID] = product; return nil }

type fakeCartRepo struct {
	products   *fakeProductRepo
	carts      map[string]*models.Cart
	nextCartID uint
	nextItemID uint
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{products: products, carts: map[string]*models.Cart{}}
}

func (f *fakeCartRepo) GetBySessionKey(sessionKey string) (*models.Cart, error) {
	cart, ok := f.carts[sessionKey]
	if !ok {
		return nil, nil
	}
	return cart, nil
}

func (f *fakeCartRepo) GetOrCreate(sessionKey string) (*models.Cart, error) {
	if cart, ok := f.carts[sessionKey]; ok {
		return cart, nil
	}
	f.nextCartID++
	cart := &models.Cart{ID: f.nextCartID, SessionKey: sessionKey}
	f.carts[sessionKey] = cart
	return cart, nil
}

func (f *fakeCartRepo) UpdateCart(cart *models.Cart) error {
	for _, existing := range f.carts {
		if existing.ID == cart.ID {
			existing.PromoCode = cart.PromoCode
			existing.DiscountPercent = cart.DiscountPercent
			return nil
		}
	}
	return nil
}

func (f *fakeCartRepo) findCart(cartID uint) *models.Cart {
	for _, cart := range f.carts {
		if cart.ID == cartID {
			return cart
		}
	}
	return nil
}

func (f *fakeCartRepo) GetItem(cartID, productID uint) (*models.CartItem, error) {
	cart := f.findCart(cartID)
	if cart == nil {
		return nil, nil
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			clone := cart.Items[i]
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeCartRepo) CreateItem(item *models.CartItem) error {
	cart := f.findCart(item.CartID)
	if cart == nil {
		return nil
	}
	f.nextItemID++
	item.ID = f.nextItemID
	if f.products != nil {
		if p, _ := f.products.GetByID(item.ProductID); p != nil {
			item.Product = p
		}
	}
	cart.Items = append(cart.Items, *item)
	return nil
}

func (f *fakeCartRepo) UpdateItem(item *models.CartItem) error {
	for _, cart := range f.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == item.ID {
				cart.Items[i].Quantity = item.Quantity
				return nil
			}
		}
	}
	return nil
}

func (f *fakeCartRepo) DeleteItem(cartID, productID uint) error {
	cart := f.findCart(cartID)
	if cart == nil {
		return nil
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

func (f *fakeCartRepo) ClearItems(cartID uint) error {
	cart := f.findCart(cartID)
	if cart != nil {
		cart.Items = nil
	}
	return nil
}

func (f *fakeCartRepo) WithTx(tx *gorm.DB) *repository.GormCartRepository { return nil }

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) List(page, pageSize int) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) *repository.GormUserRepository { return nil }

type fakeOrderRepo struct {
	orders  map[uint]*models.Order
	byNo    map[string]uint
	nextID  uint
	created []string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uint]*models.Order{}, byNo: map[string]uint{}}
}

func (f *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	clone := *o
	return &clone, nil
}

func (f *fakeOrderRepo) GetByOrderNo(orderNo string) (*models.Order, error) {
	id, ok := f.byNo[orderNo]
	if !ok {
		return nil, nil
	}
	return f.GetByID(id)
}

func (f *fakeOrderRepo) ListByUser(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) List(status string, page, pageSize int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) Create(order *models.Order) error {
	f.nextID++
	order.ID = f.nextID
	clone := *order
	f.orders[order.ID] = &clone
	f.byNo[order.OrderNo] = order.ID
	f.created = append(f.created, order.OrderNo)
	return nil
}

func (f *fakeOrderRepo) Update(order *models.Order) error {
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeOrderRepo) UpdateFields(orderID uint, fields map[string]interface{}) error {
	o, ok := f.orders[orderID]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "status":
			o.Status = value.(string)
		case "capture_id":
			o.CaptureID = value.(string)
		case "payer_reference":
			o.PayerReference = value.(string)
		case "paid_at":
			o.PaidAt = value.(*time.Time)
		case "completed_at":
			o.CompletedAt = value.(*time.Time)
		case "cancelled_at":
			o.CancelledAt = value.(*time.Time)
		}
	}
	return nil
}

func (f *fakeOrderRepo) WithTx(tx *gorm.DB) *repository.GormOrderRepository { return nil }

type fakeEmailSender struct {
	mu         sync.Mutex
	configured bool
	failFor    map[string]error
	sent       []notificationapi.SendInput
}

func (f *fakeEmailSender) Configured() bool { return f.configured }

func (f *fakeEmailSender) Send(ctx context.Context, input notificationapi.SendInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[input.Email]; ok {
		return err
	}
	f.sent = append(f.sent, input)
	return nil
}

type fakeSMSSender struct {
	mu         sync.Mutex
	configured bool
	failFor    map[string]error
	sent       []string
}

func (f *fakeSMSSender) Configured() bool { return f.configured }

func (f *fakeSMSSender) SendSMS(ctx context.Context, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[phone]; ok {
		return err
	}
	f.sent = append(f.sent, phone)
	return nil
}
