package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jessmaeeGit/kimklesordering-api/internal/http/response"
	"github.com/jessmaeeGit/kimklesordering-api/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListOrders 订单列表（可按状态筛选）
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	orders, total, err := h.OrderService.ListOrders(status, page, pageSize)
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

// AdminGetOrder 订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderNo, ok := orderNoParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetByOrderNo(orderNo)
	if err != nil {
		h.respondOrderActionError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminApproveOrder 审核通过，进入备餐
func (h *Handler) AdminApproveOrder(c *gin.Context) {
	orderNo, ok := orderNoParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.Approve(orderNo)
	if err != nil {
		h.respondOrderActionError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminCompleteOrder 完成订单，触发完成通知
func (h *Handler) AdminCompleteOrder(c *gin.Context) {
	orderNo, ok := orderNoParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.Complete(orderNo)
	if err != nil {
		h.respondOrderActionError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminRejectOrder 驳回订单
func (h *Handler) AdminRejectOrder(c *gin.Context) {
	orderNo, ok := orderNoParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.Reject(orderNo)
	if err != nil {
		h.respondOrderActionError(c, err)
		return
	}
	response.Success(c, order)
}

func orderNoParam(c *gin.Context) (string, bool) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "order no required", nil)
		return "", false
	}
	return orderNo, true
}

func (h *Handler) respondOrderActionError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrOrderNotFound) {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}
	respondError(c, response.CodeInternal, "order operation failed", err)
}
