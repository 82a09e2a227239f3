package public

import (
	"strconv"
	"strings"

	"github.com/jessmaeeGit/kimklesordering-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetOrderByOrderNo 按订单编号查询订单（下单确认页/游客跟单）
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "order no required", nil)
		return
	}
	order, err := h.OrderService.GetByOrderNo(orderNo)
	if err != nil {
		respondOrderFetchError(c, err)
		return
	}
	response.Success(c, order)
}

// ListMyOrders 当前用户订单列表（最新在前）
func (h *Handler) ListMyOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListUserOrders(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, orders, pagination)
}

// GetMyOrder 当前用户订单详情
func (h *Handler) GetMyOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "order no required", nil)
		return
	}
	order, err := h.OrderService.GetByOrderNo(orderNo)
	if err != nil {
		respondOrderFetchError(c, err)
		return
	}
	if order.UserID != uid {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}
	response.Success(c, order)
}
