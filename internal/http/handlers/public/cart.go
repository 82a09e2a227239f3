package public

import (
	"strconv"

	"github.com/jessmaeeGit/kimklesordering-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// ApplyPromoRequest 应用优惠码请求
type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	cart, err := h.CartService.GetCart(session)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cart)
}

// AddCartItem 加入购物车（同商品合并数量）
func (h *Handler) AddCartItem(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "request invalid", err)
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	cart, err := h.CartService.AddItem(session, req.ProductID, quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cart)
}

// RemoveCartItem 购物车数量减一，减到零删除该行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.RemoveItem(session, productID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cart)
}

// DeleteCartItem 整行移除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.DeleteItem(session, productID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cart)
}

// ApplyPromoCode 应用优惠码（幂等）
func (h *Handler) ApplyPromoCode(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "request invalid", err)
		return
	}
	cart, err := h.CartService.ApplyPromoCode(session, req.Code)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, cart)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.CartService.ClearCart(session); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

func parseProductID(c *gin.Context) (uint, bool) {
	raw := c.Param("product_id")
	productID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return 0, false
	}
	return uint(productID), true
}
