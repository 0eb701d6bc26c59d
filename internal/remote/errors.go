package remote

import (
	"errors"
	"fmt"
)

// ErrMissingCredential 客户没有可用的远程令牌
// 必须在发起任何远程调用之前返回
var ErrMissingCredential = errors.New("missing remote credential")

// APIError 远程平台返回的业务错误
// 永不自动重试，原样上抛给操作员
type APIError struct {
	Service string `json:"service"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote API error: %s (code: %d)", e.Service, e.Code)
	}
	return fmt.Sprintf("remote API error: %s: %s (code: %d)", e.Service, e.Message, e.Code)
}
