package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jessmaeeGit/kimklesordering-api/internal/cache"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/logger"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/provider"
	"github.com/jessmaeeGit/kimklesordering-api/internal/queue"
	"github.com/jessmaeeGit/kimklesordering-api/internal/service"

	"github.com/hibiken/asynq"
)

// notifyDedupeTTL 同一订单同一事件的通知去重窗口
const notifyDedupeTTL = 24 * time.Hour

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderNotify, c.handleOrderNotify)
	mux.HandleFunc(queue.TaskOrderCompletedNotify, c.handleOrderCompletedNotify)
}

func (c *Consumer) handleOrderNotify(ctx context.Context, task *asynq.Task) error {
	return c.handleNotifyTask(ctx, task, constants.NotifyEventOrderPlaced)
}

func (c *Consumer) handleOrderCompletedNotify(ctx context.Context, task *asynq.Task) error {
	return c.handleNotifyTask(ctx, task, constants.NotifyEventOrderCompleted)
}

// handleNotifyTask 通知投递主流程。通知属尽力而为：订单缺失、
// 无可用通道、全通道失败都不让任务重试。
func (c *Consumer) handleNotifyTask(ctx context.Context, task *asynq.Task, event string) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notify_skip_nil", "event", event, "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notify_unmarshal_failed", "event", event, "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_notify_skip_invalid_payload", "event", event, "order_id", payload.OrderID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notify_skip_service_nil", "event", event, "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_notify_fetch_order_failed", "event", event, "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_notify_skip_order_not_found", "event", event, "order_id", payload.OrderID)
		return nil
	}

	dedupeKey := notifyDedupeKey(order.ID, event)
	acquired, err := cache.SetNX(ctx, dedupeKey, time.Now().Unix(), notifyDedupeTTL)
	if err != nil {
		logger.Warnw("worker_notify_dedupe_check_failed", "event", event, "order_no", order.OrderNo, "error", err)
	} else if !acquired {
		logger.Debugw("worker_notify_skip_duplicate", "event", event, "order_no", order.OrderNo)
		return nil
	}

	result, err := c.NotificationService.Dispatch(ctx, buildDispatchInput(order, event))
	if err != nil {
		var dispatchErr *service.DispatchError
		if errors.As(err, &dispatchErr) {
			logger.Warnw("worker_notify_all_channels_failed",
				"event", event,
				"order_no", order.OrderNo,
				"attempted", len(dispatchErr.Details),
			)
			return nil
		}
		logger.Warnw("worker_notify_dispatch_failed", "event", event, "order_no", order.OrderNo, "error", err)
		return nil
	}
	logger.Infow("worker_notify_dispatched",
		"event", event,
		"order_no", order.OrderNo,
		"success", result.SuccessCount,
		"attempted", result.TotalAttempted,
	)
	return nil
}

// buildDispatchInput 将订单快照转换为通知分发输入
func buildDispatchInput(order *models.Order, event string) service.DispatchInput {
	if order == nil {
		return service.DispatchInput{Event: event}
	}
	return service.DispatchInput{
		Event:         event,
		OrderNo:       order.OrderNo,
		Amount:        order.TotalAmount.String(),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
	}
}

func notifyDedupeKey(orderID uint, event string) string {
	return fmt.Sprintf("notify:dedupe:%s:%d", event, orderID)
}
