package public

import (
	"errors"

	"github.com/jessmaeeGit/kimklesordering-api/internal/http/response"
	"github.com/jessmaeeGit/kimklesordering-api/internal/payment/paypal"
	"github.com/jessmaeeGit/kimklesordering-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidSession, code: response.CodeBadRequest, msg: "session key required"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductUnavailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "quantity must be positive"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
	{target: service.ErrInvalidPromoCode, code: response.CodeBadRequest, msg: "promo code invalid"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidSession, code: response.CodeBadRequest, msg: "session key required"},
	{target: service.ErrPaymentNotEnabled, code: response.CodeBadRequest, msg: "online payment not enabled"},
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrInvalidTotal, code: response.CodeBadRequest, msg: "order total invalid"},
	{target: service.ErrMissingPaymentDraft, code: response.CodeBadRequest, msg: "payment not captured for this session"},
	{target: service.ErrPaymentAmountMismatch, code: response.CodeBadRequest, msg: "payment amount mismatch"},
	{target: service.ErrInvalidPaymentMethod, code: response.CodeBadRequest, msg: "payment method invalid"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "request invalid"},
	{target: paypal.ErrCaptureDeclined, code: response.CodeBadRequest, msg: "payment capture declined"},
	{target: paypal.ErrAuthFailed, code: response.CodeInternal, msg: "payment gateway auth failed"},
	{target: paypal.ErrRequestFailed, code: response.CodeInternal, msg: "payment gateway request failed"},
	{target: paypal.ErrResponseInvalid, code: response.CodeInternal, msg: "payment gateway response invalid"},
	{target: paypal.ErrConfigInvalid, code: response.CodeInternal, msg: "payment gateway config invalid"},
}

var orderFetchErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(checkoutErrorRules, cartErrorRules), response.CodeInternal, "checkout failed")
}

func respondOrderFetchError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderFetchErrorRules, response.CodeInternal, "order fetch failed")
}
