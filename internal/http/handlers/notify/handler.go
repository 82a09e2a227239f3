package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/notify/notificationapi"
	"github.com/jessmaeeGit/kimklesordering-api/internal/service"

	"github.com/gin-gonic/gin"
)

// dispatcher 通知分发入口（测试替换）
type dispatcher interface {
	Dispatch(ctx context.Context, input service.DispatchInput) (*service.DispatchResult, error)
}

// Handler 通知转发接口。保持原有前端对接的裸 JSON 结构，
// 不走统一响应封装。
type Handler struct {
	cfg        config.NotifyConfig
	dispatcher dispatcher
	email      service.EmailSender
}

// New 创建通知转发处理器
func New(cfg config.NotifyConfig, d *service.NotificationService) *Handler {
	return &Handler{
		cfg:        cfg,
		dispatcher: d,
		email:      notificationapi.NewClient(cfg.NotificationAPI),
	}
}

// NotifyOrderRequest 下单通知请求
type NotifyOrderRequest struct {
	OrderID       string `json:"orderId"`
	Amount        string `json:"amount"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

// NotifyOrder 下单通知转发
func (h *Handler) NotifyOrder(c *gin.Context) {
	var req NotifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.Amount) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId and amount are required"})
		return
	}

	h.dispatch(c, service.DispatchInput{
		Event:         constants.NotifyEventOrderPlaced,
		OrderNo:       strings.TrimSpace(req.OrderID),
		Amount:        strings.TrimSpace(req.Amount),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
	}, "Order notification processed")
}

// NotifyOrderCompletionRequest 完成通知请求
type NotifyOrderCompletionRequest struct {
	OrderID       string `json:"orderId"`
	Amount        string `json:"amount"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

// NotifyOrderCompletion 订单完成通知转发
func (h *Handler) NotifyOrderCompletion(c *gin.Context) {
	var req NotifyOrderCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId and customerEmail are required"})
		return
	}

	h.dispatch(c, service.DispatchInput{
		Event:         constants.NotifyEventOrderCompleted,
		OrderNo:       strings.TrimSpace(req.OrderID),
		Amount:        strings.TrimSpace(req.Amount),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
	}, "Order completion notification processed")
}

// TestNotificationRequest 通道自检请求
type TestNotificationRequest struct {
	Email string `json:"email"`
}

// TestNotification 向指定邮箱发送测试邮件，用于核对 NotificationAPI 凭证
func (h *Handler) TestNotification(c *gin.Context) {
	var req TestNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if h.email == nil || !h.email.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notificationapi credentials not configured"})
		return
	}

	err := h.email.Send(c.Request.Context(), notificationapi.SendInput{
		NotificationID: "test_notification",
		Email:          email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to send test email",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Test email sent successfully",
	})
}

// Health 通道配置健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                     "ok",
		"notificationapi_configured": h.cfg.NotificationAPI.Configured(),
		"movider_configured":         h.cfg.Movider.Configured(),
		"owner_email":                strings.TrimSpace(h.cfg.OwnerEmail) != "",
		"owner_phone_configured":     strings.TrimSpace(h.cfg.OwnerPhone) != "",
	})
}

func (h *Handler) dispatch(c *gin.Context, input service.DispatchInput, message string) {
	result, err := h.dispatcher.Dispatch(c.Request.Context(), input)
	if err != nil {
		var dispatchErr *service.DispatchError
		if errors.As(err, &dispatchErr) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "all notification channels failed",
				"details": dispatchErr.Details,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           message,
		"notificationsSent": result.SuccessCount,
		"totalAttempted":    result.TotalAttempted,
	})
}
