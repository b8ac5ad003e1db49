package ui

import (
	"errors"

	"github.com/storefront-next/internal/gateway"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

// 购物车 / 收藏变更共用的错误映射
var storeCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCartBusy, code: response.CodeConflict, msg: "another cart update is in progress"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "quantity must be a positive integer"},
	{target: service.ErrInvalidProduct, code: response.CodeBadRequest, msg: "product reference invalid"},
	{target: service.ErrStaleLine, code: response.CodeConflict, msg: "cart is out of sync, refresh and retry"},
	{target: gateway.ErrUnauthorized, code: response.CodeUnauthorized, msg: "session expired, please log in again"},
	{target: gateway.ErrNotFound, code: response.CodeNotFound, msg: "resource not found on server"},
	{target: gateway.ErrRequestFailed, code: response.CodeBadGateway, msg: "shop server unavailable"},
	{target: gateway.ErrResponseInvalid, code: response.CodeBadGateway, msg: "shop server returned invalid data"},
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrNotAuthenticated, code: response.CodeUnauthorized, msg: "not logged in"},
	{target: gateway.ErrUnauthorized, code: response.CodeUnauthorized, msg: "invalid credentials"},
	{target: gateway.ErrRequestFailed, code: response.CodeBadGateway, msg: "shop server unavailable"},
	{target: gateway.ErrResponseInvalid, code: response.CodeBadGateway, msg: "shop server returned invalid data"},
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

func respondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		requestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// requestLog 提供携带 request_id 的日志实例。
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.S().With("request_id", id)
		}
	}
	return logger.S()
}
