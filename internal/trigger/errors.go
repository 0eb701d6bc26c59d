package trigger

import (
	"fmt"
	"strings"
)

// 字段级错误码
const (
	CodeRequired   = "required"
	CodeBoundOrder = "bound_order" // lower/upper 交叉校验失败
	CodeOutOfRange = "out_of_range"
	CodeBadChoice  = "bad_choice"
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError 参数校验错误（字段错误列表）
// 校验在向导内闭环解决，不会传播到同步器
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add 追加一条字段错误
func (e *ValidationError) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// HasField 是否存在指定字段的错误
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ErrOrNil 无字段错误时返回 nil，供 Validate 统一收尾
func (e *ValidationError) ErrOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// checkBounds lower/upper 交叉校验
// 顺序不一致时两个字段各记一条 BoundOrderError：操作员最后编辑的
// 可能是任一字段，两个方向都要能独立观察到
func checkBounds(v *ValidationError, lowerField string, lower float64, upperField string, upper float64) {
	if lower > upper {
		v.Add(lowerField, CodeBoundOrder,
			fmt.Sprintf("must not exceed %s (%v > %v)", upperField, lower, upper))
	}
	if upper < lower {
		v.Add(upperField, CodeBoundOrder,
			fmt.Sprintf("must not be less than %s (%v < %v)", lowerField, upper, lower))
	}
}

// checkSpeedRange 速度字段限制在 [0,256] km/h
func checkSpeedRange(v *ValidationError, field string, value int) {
	if value < MinSpeedLimit || value > MaxSpeedLimit {
		v.Add(field, CodeOutOfRange,
			fmt.Sprintf("must be between %d and %d km/h", MinSpeedLimit, MaxSpeedLimit))
	}
}

// checkChoice 封闭整数枚举校验
func checkChoice(v *ValidationError, field string, value int, allowed ...int) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, CodeBadChoice, fmt.Sprintf("must be one of %v", allowed))
}

// 速度上下限（km/h）
const (
	MinSpeedLimit = 0
	MaxSpeedLimit = 256
)
