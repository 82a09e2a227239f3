package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("paypal config invalid")
	ErrAuthFailed      = errors.New("paypal auth failed")
	ErrRequestFailed   = errors.New("paypal request failed")
	ErrResponseInvalid = errors.New("paypal response invalid")
	ErrCaptureDeclined = errors.New("paypal capture declined")
)

const (
	defaultSandboxBaseURL = "https://api-m.sandbox.paypal.com"
	defaultLiveBaseURL    = "https://api-m.paypal.com"
	defaultTimeout        = 12 * time.Second
)

// Config PayPal 渠道配置。
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	BrandName    string
	Timeout      time.Duration
}

// NewConfig 构建渠道配置（sandbox 为真时使用沙箱地址）
func NewConfig(clientID, clientSecret string, sandbox bool, timeoutMS int) *Config {
	cfg := &Config{
		ClientID:     strings.TrimSpace(clientID),
		ClientSecret: strings.TrimSpace(clientSecret),
	}
	if sandbox {
		cfg.BaseURL = defaultSandboxBaseURL
	} else {
		cfg.BaseURL = defaultLiveBaseURL
	}
	if timeoutMS > 0 {
		cfg.Timeout = time.Duration(timeoutMS) * time.Millisecond
	} else {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return fmt.Errorf("%w: client_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return fmt.Errorf("%w: client_secret is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.BaseURL)); err != nil {
		return fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// ItemInput 订单行输入。
type ItemInput struct {
	Name      string
	UnitPrice string
	Quantity  int
}

// CreateInput 创建 PayPal 订单输入。金额分解由调用方按行项目重算到分。
type CreateInput struct {
	OrderNo     string
	Currency    string
	ItemTotal   string
	ShippingFee string
	Discount    string
	Total       string
	Description string
	Items       []ItemInput
}

// CreateResult 创建 PayPal 订单返回。
type CreateResult struct {
	OrderID     string
	ApprovalURL string
	Status      string
	Raw         map[string]interface{}
}

// ProofOfCapture 服务端捕获凭证。只能由本包在捕获成功后构造，
// 订单置为已支付必须持有该凭证。
type ProofOfCapture struct {
	paypalOrderID string
	captureID     string
	payerID       string
	amount        string
	currency      string
	capturedAt    time.Time
}

// PaypalOrderID 返回 PayPal 订单号
func (p *ProofOfCapture) PaypalOrderID() string { return p.paypalOrderID }

// CaptureID 返回捕获ID
func (p *ProofOfCapture) CaptureID() string { return p.captureID }

// PayerID 返回付款人参考号
func (p *ProofOfCapture) PayerID() string { return p.payerID }

// Amount 返回捕获金额
func (p *ProofOfCapture) Amount() string { return p.amount }

// Currency 返回捕获币种
func (p *ProofOfCapture) Currency() string { return p.currency }

// CapturedAt 返回捕获时间
func (p *ProofOfCapture) CapturedAt() time.Time { return p.capturedAt }

// CreateOrder 创建 PayPal 订单（intent=CAPTURE）。
func CreateOrder(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.OrderNo) == "" || strings.TrimSpace(input.Total) == "" || strings.TrimSpace(input.Currency) == "" {
		return nil, fmt.Errorf("%w: order input is invalid", ErrConfigInvalid)
	}

	token, err := getAccessToken(ctx, cfg)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	breakdown := map[string]interface{}{
		"item_total": map[string]string{
			"currency_code": currency,
			"value":         strings.TrimSpace(input.ItemTotal),
		},
	}
	if isPositiveAmount(input.ShippingFee) {
		breakdown["shipping"] = map[string]string{
			"currency_code": currency,
			"value":         strings.TrimSpace(input.ShippingFee),
		}
	}
	if isPositiveAmount(input.Discount) {
		breakdown["discount"] = map[string]string{
			"currency_code": currency,
			"value":         strings.TrimSpace(input.Discount),
		}
	}

	items := make([]map[string]interface{}, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, map[string]interface{}{
			"name":     strings.TrimSpace(item.Name),
			"quantity": strconv.Itoa(item.Quantity),
			"unit_amount": map[string]string{
				"currency_code": currency,
				"value":         strings.TrimSpace(item.UnitPrice),
			},
		})
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"invoice_id": strings.TrimSpace(input.OrderNo),
				"amount": map[string]interface{}{
					"currency_code": currency,
					"value":         strings.TrimSpace(input.Total),
					"breakdown":     breakdown,
				},
				"items":       items,
				"description": strings.TrimSpace(input.Description),
			},
		},
	}
	if cfg.BrandName != "" {
		payload["application_context"] = map[string]string{
			"brand_name":  cfg.BrandName,
			"user_action": "PAY_NOW",
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request failed", ErrRequestFailed)
	}

	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, "/v2/checkout/orders", token, body)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create order status %d", ErrResponseInvalid, statusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}

	result := &CreateResult{Raw: raw}
	result.OrderID = strings.TrimSpace(readString(raw, "id"))
	result.Status = strings.TrimSpace(readString(raw, "status"))
	result.ApprovalURL = extractLinkByRel(raw, "approve")
	if result.OrderID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrResponseInvalid)
	}
	return result, nil
}

// CaptureOrder 捕获 PayPal 订单，成功时返回捕获凭证。
func CaptureOrder(ctx context.Context, cfg *Config, paypalOrderID string) (*ProofOfCapture, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	paypalOrderID = strings.TrimSpace(paypalOrderID)
	if paypalOrderID == "" {
		return nil, fmt.Errorf("%w: order id is empty", ErrConfigInvalid)
	}

	token, err := getAccessToken(ctx, cfg)
	if err != nil {
		return nil, err
	}

	endpoint := "/v2/checkout/orders/" + url.PathEscape(paypalOrderID) + "/capture"
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, endpoint, token, []byte("{}"))
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: capture status %d", ErrResponseInvalid, statusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}

	proof := &ProofOfCapture{
		paypalOrderID: strings.TrimSpace(readString(raw, "id")),
		payerID:       strings.TrimSpace(readString(raw, "payer", "payer_id")),
		capturedAt:    time.Now(),
	}
	if proof.paypalOrderID == "" {
		proof.paypalOrderID = paypalOrderID
	}

	status := strings.TrimSpace(readString(raw, "status"))
	captures := readArray(raw, "purchase_units", "0", "payments", "captures")
	if len(captures) > 0 {
		if captureMap, ok := captures[0].(map[string]interface{}); ok {
			proof.captureID = strings.TrimSpace(readString(captureMap, "id"))
			if s := strings.TrimSpace(readString(captureMap, "status")); s != "" {
				status = s
			}
			proof.amount = strings.TrimSpace(readString(captureMap, "amount", "value"))
			proof.currency = strings.TrimSpace(readString(captureMap, "amount", "currency_code"))
			if rawTime := strings.TrimSpace(readString(captureMap, "create_time")); rawTime != "" {
				if parsed, err := time.Parse(time.RFC3339, rawTime); err == nil {
					proof.capturedAt = parsed
				}
			}
		}
	}

	if proof.captureID == "" {
		return nil, fmt.Errorf("%w: missing capture id", ErrResponseInvalid)
	}
	if !strings.EqualFold(status, "COMPLETED") {
		return nil, fmt.Errorf("%w: capture status %s", ErrCaptureDeclined, status)
	}
	return proof, nil
}

func isPositiveAmount(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	f, err := strconv.ParseFloat(value, 64)
	return err == nil && f > 0
}

func getAccessToken(ctx context.Context, cfg *Config) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	values := url.Values{}
	values.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(cfg.BaseURL, "/")+"/v1/oauth2/token", strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build token request failed", ErrAuthFailed)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(cfg.ClientID, cfg.ClientSecret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request token failed", ErrAuthFailed)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response failed", ErrAuthFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token status %d", ErrAuthFailed, resp.StatusCode)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode token response failed", ErrAuthFailed)
	}
	token := strings.TrimSpace(readString(parsed, "access_token"))
	if token == "" {
		return "", fmt.Errorf("%w: access_token is empty", ErrAuthFailed)
	}
	return token, nil
}

func doJSONRequest(ctx context.Context, cfg *Config, method, endpoint, token string, body []byte) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := withTimeout(ctx, cfg)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(cfg.BaseURL, "/")+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: http request failed", ErrRequestFailed)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	return respBody, resp.StatusCode, nil
}

func withTimeout(ctx context.Context, cfg *Config) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	timeout := defaultTimeout
	if cfg != nil && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return context.WithTimeout(ctx, timeout)
}

func extractLinkByRel(raw map[string]interface{}, rel string) string {
	links, ok := raw["links"].([]interface{})
	if !ok {
		return ""
	}
	rel = strings.ToLower(strings.TrimSpace(rel))
	for _, item := range links {
		linkMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if strings.ToLower(strings.TrimSpace(readString(linkMap, "rel"))) != rel {
			continue
		}
		if href := strings.TrimSpace(readString(linkMap, "href")); href != "" {
			return href
		}
	}
	return ""
}

func readString(raw map[string]interface{}, path ...string) string {
	if raw == nil {
		return ""
	}
	var current interface{} = raw
	for _, seg := range path {
		if idx, err := strconv.Atoi(seg); err == nil {
			arr, ok := current.([]interface{})
			if !ok || idx < 0 || idx >= len(arr) {
				return ""
			}
			current = arr[idx]
			continue
		}
		next, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current = next[seg]
	}
	if current == nil {
		return ""
	}
	if str, ok := current.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", current)
}

func readArray(raw map[string]interface{}, path ...string) []interface{} {
	if raw == nil {
		return nil
	}
	var current interface{} = raw
	for _, seg := range path {
		if idx, err := strconv.Atoi(seg); err == nil {
			arr, ok := current.([]interface{})
			if !ok || idx < 0 || idx >= len(arr) {
				return nil
			}
			current = arr[idx]
			continue
		}
		next, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current = next[seg]
	}
	arr, ok := current.([]interface{})
	if !ok {
		return nil
	}
	return arr
}
