package service

import (
	"errors"
	"testing"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
)

func bakeryProduct(id uint, slug, name, price string) *models.Product {
	money, _ := models.NewMoneyFromString(price)
	return &models.Product{
		ID:     id,
		Slug:   slug,
		Name:   name,
		Price:  money,
		Stock:  50,
		Status: constants.ProductStatusActive,
	}
}

func newTestCartService(products ...*models.Product) (*CartService, *fakeCartRepo) {
	productRepo := newFakeProductRepo(products...)
	cartRepo := newFakeCartRepo(productRepo)
	svc := NewCartService(cartRepo, productRepo, &config.CartConfig{
		PromoCodes: map[string]float64{"KIMKLE10": 10},
	})
	return svc, cartRepo
}

func TestAddItemMergesSameProduct(t *testing.T) {
	svc, _ := newTestCartService(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")

	if _, err := svc.AddItem(session, 1, 1); err != nil {
		t.Fatalf("first AddItem: %v", err)
	}
	view, err := svc.AddItem(session, 1, 2)
	if err != nil {
		t.Fatalf("second AddItem: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", view.Items[0].Quantity)
	}
	if got := view.Subtotal.String(); got != "360.00" {
		t.Fatalf("expected subtotal 360.00, got %s", got)
	}
	if got := view.Items[0].LineTotal.String(); got != "360.00" {
		t.Fatalf("expected line total 360.00, got %s", got)
	}
}

func TestAddItemValidation(t *testing.T) {
	inactive := bakeryProduct(2, "retired-roll", "Retired Roll", "80.00")
	inactive.Status = constants.ProductStatusInactive
	svc, _ := newTestCartService(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"), inactive)
	session := GuestSession("g1")

	if _, err := svc.AddItem(session, 1, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.AddItem(session, 99, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svc.AddItem(session, 2, 1); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
	if _, err := svc.AddItem(Session{}, 1, 1); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestRemoveItemDecrementsThenDeletes(t *testing.T) {
	svc, _ := newTestCartService(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	if _, err := svc.AddItem(session, 1, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	view, err := svc.RemoveItem(session, 1)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1 after decrement, got %+v", view.Items)
	}

	view, err = svc.RemoveItem(session, 1)
	if err != nil {
		t.Fatalf("RemoveItem at quantity 1: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected line deleted at quantity 0, got %d lines", len(view.Items))
	}

	if _, err := svc.RemoveItem(session, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestDeleteItemRemovesWholeLine(t *testing.T) {
	svc, _ := newTestCartService(
		bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"),
		bakeryProduct(2, "cheese-roll", "Cheese Roll", "45.00"),
	)
	session := GuestSession("g1")
	if _, err := svc.AddItem(session, 1, 3); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.AddItem(session, 2, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	view, err := svc.DeleteItem(session, 1)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != 2 {
		t.Fatalf("expected only product 2 left, got %+v", view.Items)
	}
	if got := view.Subtotal.String(); got != "45.00" {
		t.Fatalf("expected subtotal 45.00, got %s", got)
	}
}

func TestApplyPromoCodeIsIdempotent(t *testing.T) {
	svc, _ := newTestCartService(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	if _, err := svc.AddItem(session, 1, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	first, err := svc.ApplyPromoCode(session, " kimkle10 ")
	if err != nil {
		t.Fatalf("first ApplyPromoCode: %v", err)
	}
	second, err := svc.ApplyPromoCode(session, "KIMKLE10")
	if err != nil {
		t.Fatalf("second ApplyPromoCode: %v", err)
	}

	if first.DiscountPercent != 10 || second.DiscountPercent != 10 {
		t.Fatalf("expected discount percent 10, got %v then %v", first.DiscountPercent, second.DiscountPercent)
	}
	if first.DiscountAmount.String() != "24.00" || second.DiscountAmount.String() != "24.00" {
		t.Fatalf("expected discount 24.00 both times, got %s then %s", first.DiscountAmount, second.DiscountAmount)
	}
	if second.Total.String() != "216.00" {
		t.Fatalf("expected total 216.00 after repeated apply, got %s", second.Total)
	}
}

func TestApplyPromoCodeUnknown(t *testing.T) {
	svc, _ := newTestCartService(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	if _, err := svc.ApplyPromoCode(GuestSession("g1"), "NOPE"); !errors.Is(err, ErrInvalidPromoCode) {
		t.Fatalf("expected ErrInvalidPromoCode, got %v", err)
	}
}

func TestClearCartResetsPromoState(t *testing.T) {
	svc, cartRepo := newTestCartService(bakeryProduct(1, "ube-cake", "Ube Cake", "120.00"))
	session := GuestSession("g1")
	if _, err := svc.AddItem(session, 1, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.ApplyPromoCode(session, "KIMKLE10"); err != nil {
		t.Fatalf("ApplyPromoCode: %v", err)
	}

	if err := svc.ClearCart(session); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	cart, _ := cartRepo.GetBySessionKey(session.Key())
	if cart == nil {
		t.Fatal("expected cart to survive clear")
	}
	if len(cart.Items) != 0 || cart.PromoCode != "" || cart.DiscountPercent != 0 {
		t.Fatalf("expected empty cart without promo, got %+v", cart)
	}

	view, err := svc.GetCart(session)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if view.Total.String() != "0.00" {
		t.Fatalf("expected total 0.00, got %s", view.Total)
	}
}
