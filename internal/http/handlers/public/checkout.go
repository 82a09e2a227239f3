package public

import (
	"github.com/jessmaeeGit/kimklesordering-api/internal/http/response"
	"github.com/jessmaeeGit/kimklesordering-api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCheckoutConfig 获取结账配置
func (h *Handler) GetCheckoutConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"payment_enabled": h.CheckoutService.IsPaymentEnabled(),
		"currency":        h.OrderService.Currency(),
		"shipping_fee":    h.OrderService.ShippingFee(),
	})
}

// CreatePaymentOrder 创建支付单（金额服务端重算）
func (h *Handler) CreatePaymentOrder(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := h.CheckoutService.CreatePaymentOrder(c.Request.Context(), session)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, view)
}

// PaymentApprovedRequest 买家批准回调请求
type PaymentApprovedRequest struct {
	PaypalOrderID string `json:"paypal_order_id" binding:"required"`
}

// PaymentApproved 买家批准后服务端捕获
func (h *Handler) PaymentApproved(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	var req PaymentApprovedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "request invalid", err)
		return
	}
	if err := h.CheckoutService.OnPaymentApproved(c.Request.Context(), session, req.PaypalOrderID); err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, gin.H{"captured": true})
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email" binding:"required"`
	CustomerPhone   string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
}

// PlaceOrder 落库下单
func (h *Handler) PlaceOrder(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "request invalid", err)
		return
	}
	order, err := h.CheckoutService.PlaceOrder(c.Request.Context(), session, service.PlaceOrderInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, order)
}
