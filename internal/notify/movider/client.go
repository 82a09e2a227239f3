package movider

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
	ErrNotConfigured = errors.New("movider not configured")
	ErrInvalidPhone  = errors.New("movider invalid phone number")
	ErrSendFailed    = errors.New("movider send failed")
)

const defaultTimeout = 10 * time.Second

// Client Movider 短信通道客户端
type Client struct {
	cfg  config.MoviderConfig
	http *resty.Client
}

// NewClient 创建客户端
func NewClient(cfg config.MoviderConfig) *Client {
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

// SendSMS 发送一条短信（号码先按菲律宾格式归一化）
func (c *Client) SendSMS(ctx context.Context, phone, text string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	to, err := FormatPhilippineNumber(phone)
	if err != nil {
		return err
	}

	form := map[string]string{
		"api_key":    c.cfg.APIKey,
		"api_secret": c.cfg.APISecret,
		"to":         to,
		"text":       text,
	}
	if sender := strings.TrimSpace(c.cfg.Sender); sender != "" {
		form["from"] = sender
	}

	endpoint := strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/") + "/v1/sms"
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFormData(form).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}
