package notificationapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jessmaeeGit/kimklesordering-api/internal/config"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured = errors.New("notificationapi not configured")
	ErrSendFailed    = errors.New("notificationapi send failed")
)

const defaultTimeout = 10 * time.Second

// Client NotificationAPI 邮件通道客户端
type Client struct {
	cfg  config.NotificationAPIConfig
	http *resty.Client
}

// NewClient 创建客户端
func NewClient(cfg config.NotificationAPIConfig) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &Client{
		cfg:  cfg,
		http: resty.New().SetTimeout(timeout),
	}
}

// Configured 判断通道是否已配置
func (c *Client) Configured() bool {
	return c != nil && c.cfg.Configured()
}

// SendInput 发送输入
type SendInput struct {
	NotificationID string            // 通知模板标识
	Email          string            // 收件邮箱
	MergeTags      map[string]string // 模板变量
}

// Send 发送一条邮件通知
func (c *Client) Send(ctx context.Context, input SendInput) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return fmt.Errorf("%w: email is empty", ErrSendFailed)
	}

	mergeTags := map[string]interface{}{}
	for k, v := range input.MergeTags {
		mergeTags[k] = v
	}
	body := map[string]interface{}{
		"notificationId": strings.TrimSpace(input.NotificationID),
		"user": map[string]string{
			"id":    email,
			"email": email,
		},
		"mergeTags": mergeTags,
	}

	endpoint := fmt.Sprintf("%s/%s/sender",
		strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/"),
		strings.TrimSpace(c.cfg.ClientID),
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}
