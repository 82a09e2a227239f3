package queue

import (
	"encoding/json"

	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderNotify 下单通知任务
	TaskOrderNotify = constants.TaskOrderNotify
	// TaskOrderCompletedNotify 订单完成通知任务
	TaskOrderCompletedNotify = constants.TaskOrderCompletedNotify
)

// OrderNotifyPayload 下单通知任务载荷
type OrderNotifyPayload struct {
	OrderID uint `json:"order_id"`
}

// OrderCompletedNotifyPayload 订单完成通知任务载荷
type OrderCompletedNotifyPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderNotifyTask 创建下单通知任务
func NewOrderNotifyTask(payload OrderNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderNotify, body), nil
}

// NewOrderCompletedNotifyTask 创建订单完成通知任务
func NewOrderCompletedNotifyTask(payload OrderCompletedNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCompletedNotify, body), nil
}
