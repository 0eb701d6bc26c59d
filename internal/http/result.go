package httpapi

// Result 统一响应信封
// - code: 2000 成功
// - type: 'success' | 'error' | 'warning'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// FailWith 携带结构化明细的错误响应（字段级校验错误）
func FailWith[T any](message string, result T) Result[T] {
	return Result[T]{Code: ResultError, Type: "error", Message: message, Result: result}
}
