package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/logger"
	"github.com/jessmaeeGit/kimklesordering-api/internal/notify/notificationapi"
)

// EmailSender 邮件通道
type EmailSender interface {
	Configured() bool
	Send(ctx context.Context, input notificationapi.SendInput) error
}

// SMSSender 短信通道
type SMSSender interface {
	Configured() bool
	SendSMS(ctx context.Context, phone, text string) error
}

// NotificationService 通知分发服务。每次事件最多产生四条投递：
// 店主邮件、店主短信、顾客邮件、顾客短信；未配置的通道直接跳过。
type NotificationService struct {
	cfg   config.NotifyConfig
	email EmailSender
	sms   SMSSender
}

// NewNotificationService 创建通知服务
func NewNotificationService(cfg config.NotifyConfig, email EmailSender, sms SMSSender) *NotificationService {
	return &NotificationService{
		cfg:   cfg,
		email: email,
		sms:   sms,
	}
}

// DispatchInput 分发输入
type DispatchInput struct {
	Event         string
	OrderNo       string
	Amount        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// ChannelResult 单通道投递结果
type ChannelResult struct {
	Channel string `json:"channel"`
	Target  string `json:"target"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DispatchResult 分发结果。部分成功视为成功。
type DispatchResult struct {
	SuccessCount   int
	TotalAttempted int
	Details        []ChannelResult
}

// DispatchError 全部通道失败时返回，携带逐通道明细
type DispatchError struct {
	Details []ChannelResult
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("all %d notification channels failed", len(e.Details))
}

type channelAttempt struct {
	channel string
	target  string
	send    func(ctx context.Context) error
}

// Dispatch 并发投递所有已构建通道并等待全部结束（不重试、不提前放弃）。
// 至少一条成功即成功；有尝试但全部失败返回 DispatchError。
func (s *NotificationService) Dispatch(ctx context.Context, input DispatchInput) (*DispatchResult, error) {
	attempts := s.buildAttempts(input)
	result := &DispatchResult{
		TotalAttempted: len(attempts),
		Details:        make([]ChannelResult, len(attempts)),
	}
	if len(attempts) == 0 {
		logger.Warnw("notify_dispatch_no_channels", "event", input.Event, "order_no", input.OrderNo)
		return result, nil
	}

	var wg sync.WaitGroup
	for i, attempt := range attempts {
		wg.Add(1)
		go func(idx int, attempt channelAttempt) {
			defer wg.Done()
			detail := ChannelResult{Channel: attempt.channel, Target: attempt.target}
			if err := attempt.send(ctx); err != nil {
				detail.Error = err.Error()
				logger.Warnw("notify_channel_failed",
					"event", input.Event,
					"order_no", input.OrderNo,
					"channel", attempt.channel,
					"error", err,
				)
			} else {
				detail.Success = true
			}
			result.Details[idx] = detail
		}(i, attempt)
	}
	wg.Wait()

	for _, detail := range result.Details {
		if detail.Success {
			result.SuccessCount++
		}
	}
	logger.Infow("notify_dispatch_settled",
		"event", input.Event,
		"order_no", input.OrderNo,
		"success", result.SuccessCount,
		"attempted", result.TotalAttempted,
	)
	if result.SuccessCount == 0 {
		return result, &DispatchError{Details: result.Details}
	}
	return result, nil
}

// buildAttempts 构建通道列表。顺序固定：店主邮件、店主短信、
// 顾客邮件、顾客短信。
func (s *NotificationService) buildAttempts(input DispatchInput) []channelAttempt {
	var attempts []channelAttempt
	ownerEmail := strings.TrimSpace(s.cfg.OwnerEmail)
	ownerPhone := strings.TrimSpace(s.cfg.OwnerPhone)
	customerEmail := strings.TrimSpace(input.CustomerEmail)
	customerPhone := strings.TrimSpace(input.CustomerPhone)

	emailConfigured := s.email != nil && s.email.Configured()
	smsConfigured := s.sms != nil && s.sms.Configured()

	if emailConfigured && ownerEmail != "" {
		attempts = append(attempts, channelAttempt{
			channel: constants.NotifyChannelOwnerEmail,
			target:  ownerEmail,
			send: func(ctx context.Context) error {
				return s.email.Send(ctx, notificationapi.SendInput{
					NotificationID: emailTemplateFor(input.Event),
					Email:          ownerEmail,
					MergeTags:      mergeTagsFor(input),
				})
			},
		})
	}
	if smsConfigured && ownerPhone != "" {
		attempts = append(attempts, channelAttempt{
			channel: constants.NotifyChannelOwnerSMS,
			target:  ownerPhone,
			send: func(ctx context.Context) error {
				return s.sms.SendSMS(ctx, ownerPhone, ownerSMSText(input))
			},
		})
	}
	if emailConfigured && customerEmail != "" {
		attempts = append(attempts, channelAttempt{
			channel: constants.NotifyChannelCustomerEmail,
			target:  customerEmail,
			send: func(ctx context.Context) error {
				return s.email.Send(ctx, notificationapi.SendInput{
					NotificationID: emailTemplateFor(input.Event),
					Email:          customerEmail,
					MergeTags:      mergeTagsFor(input),
				})
			},
		})
	}
	if smsConfigured && customerPhone != "" {
		attempts = append(attempts, channelAttempt{
			channel: constants.NotifyChannelCustomerSMS,
			target:  customerPhone,
			send: func(ctx context.Context) error {
				return s.sms.SendSMS(ctx, customerPhone, customerSMSText(input))
			},
		})
	}
	return attempts
}

func emailTemplateFor(event string) string {
	if event == constants.NotifyEventOrderCompleted {
		return "order_completion"
	}
	return "order_notification"
}

func mergeTagsFor(input DispatchInput) map[string]string {
	return map[string]string{
		"orderId":      input.OrderNo,
		"amount":       input.Amount,
		"customerName": input.CustomerName,
	}
}

func ownerSMSText(input DispatchInput) string {
	if input.Event == constants.NotifyEventOrderCompleted {
		return fmt.Sprintf("Order %s has been completed.", input.OrderNo)
	}
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = "a customer"
	}
	return fmt.Sprintf("New order %s (PHP %s) from %s.", input.OrderNo, input.Amount, name)
}

func customerSMSText(input DispatchInput) string {
	if input.Event == constants.NotifyEventOrderCompleted {
		return fmt.Sprintf("Kimkle's Cravings: your order %s is complete. Enjoy!", input.OrderNo)
	}
	return fmt.Sprintf("Kimkle's Cravings: we received your order %s (PHP %s). We'll start preparing it soon.", input.OrderNo, input.Amount)
}
