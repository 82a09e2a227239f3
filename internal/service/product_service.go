package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jessmaeeGit/kimklesordering-api/internal/cache"
	"github.com/jessmaeeGit/kimklesordering-api/internal/logger"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// List 商品列表
func (s *ProductService) List(category string, page, pageSize int) ([]models.Product, int64, error) {
	return s.productRepo.List(strings.TrimSpace(category), page, pageSize)
}

// GetBySlug 按标识查询商品（带缓存）
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProductNotFound
	}

	cacheKey := fmt.Sprintf("product:slug:%s", slug)
	var cached models.Product
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := cache.SetJSON(ctx, cacheKey, product, productCacheTTL); err != nil {
		logger.Debugw("product_cache_set_failed", "slug", slug, "error", err)
	}
	return product, nil
}

// GetByID 按ID查询商品
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
