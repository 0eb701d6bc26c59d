package domain

import (
	"encoding/json"
	"time"

	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
)

// DeliveryMethod 通知投递方式
type DeliveryMethod string

const (
	MethodSMS   DeliveryMethod = "sms"
	MethodVoice DeliveryMethod = "voice"
)

// Valid 投递方式是否合法
func (m DeliveryMethod) Valid() bool {
	return m == MethodSMS || m == MethodVoice
}

// 通知级时间字段上限（秒），由远程平台规定
const (
	MaxAlarmTimeout    = 1800
	MaxAlarmDuration   = 86400
	MaxPrevishDuration = 86400
)

// Notification 已提交的通知实体（对应 notifications 表）
// RemoteID 在远程创建成功后设置且只设置一次；为 0 时实体在远程不存在，
// 不得视为已启用
type Notification struct {
	ID         string `json:"id" db:"id"` // UUID, PRIMARY KEY
	CustomerID string `json:"customer_id" db:"customer_id"`
	RemoteID   int64  `json:"remote_id" db:"remote_id"` // 远程平台分配的标识，0=尚未创建

	Name    string         `json:"name" db:"name"`
	Message string         `json:"message" db:"message"` // 消息模板（可含平台宏）
	Method  DeliveryMethod `json:"method" db:"method"`

	TriggerKind   trigger.Kind       `json:"trigger_kind" db:"trigger_kind"`
	TriggerParams trigger.Parameters `json:"trigger_params" db:"trigger_params"` // JSONB

	UnitIDs []int64 `json:"unit_ids" db:"unit_list"` // JSONB

	Schedule        Schedule `json:"schedule" db:"schedule"`                 // JSONB，生效调度
	ControlSchedule Schedule `json:"control_schedule" db:"control_schedule"` // JSONB，触发器评估调度

	ActivationTime     int64  `json:"activation_time" db:"activation_time"`     // UNIX 秒，0=未设置
	DeactivationTime   int64  `json:"deactivation_time" db:"deactivation_time"` // UNIX 秒，0=永不
	MaxAlarms          int    `json:"max_alarms" db:"max_alarms"`               // 0=不限
	MaxMessageInterval int    `json:"max_message_interval" db:"max_message_interval"`
	AlarmTimeout       int    `json:"alarm_timeout" db:"alarm_timeout"`                // 秒，≤1800
	MinDurationAlarm   int    `json:"min_duration_alarm" db:"min_duration_alarm"`      // 秒，≤86400
	MinDurationPrev    int    `json:"min_duration_prev" db:"min_duration_prev"`        // 秒，≤86400
	ControlPeriod      int    `json:"control_period" db:"control_period"`              // 秒
	Flags              int    `json:"flags" db:"flags"`
	Language           string `json:"language" db:"language"` // 两字母语言码
	Timezone           int    `json:"timezone" db:"timezone"` // 时区偏移

	Enabled bool `json:"enabled" db:"enabled"`

	// 由 Message/Method 派生的渲染结果，源字段变化时必须重算
	Text    string          `json:"text" db:"text"`       // URL 编码的投递文本
	Actions json.RawMessage `json:"actions" db:"actions"` // 渲染后的动作列表

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsLive 是否在远程平台存在且处于启用状态
func (n *Notification) IsLive() bool {
	return n.RemoteID != 0 && n.Enabled
}

// Validate 校验通知级字段（触发器参数已在向导中校验）
func (n *Notification) Validate() error {
	v := &trigger.ValidationError{}
	if n.Name == "" {
		v.Add("name", trigger.CodeRequired, "name is required")
	}
	if n.Message == "" {
		v.Add("message", trigger.CodeRequired, "message is required")
	}
	if !n.Method.Valid() {
		v.Add("method", trigger.CodeBadChoice, "must be sms or voice")
	}
	if n.AlarmTimeout < 0 || n.AlarmTimeout > MaxAlarmTimeout {
		v.Add("alarm_timeout", trigger.CodeOutOfRange, "must be between 0 and 1800 seconds")
	}
	if n.MinDurationAlarm < 0 || n.MinDurationAlarm > MaxAlarmDuration {
		v.Add("min_duration_alarm", trigger.CodeOutOfRange, "must be between 0 and 86400 seconds")
	}
	if n.MinDurationPrev < 0 || n.MinDurationPrev > MaxPrevishDuration {
		v.Add("min_duration_prev", trigger.CodeOutOfRange, "must be between 0 and 86400 seconds")
	}
	if n.MaxAlarms < 0 {
		v.Add("max_alarms", trigger.CodeOutOfRange, "must not be negative")
	}
	if len(n.Language) != 2 {
		v.Add("language", trigger.CodeBadChoice, "must be a 2-letter language code")
	}
	if len(n.UnitIDs) == 0 {
		v.Add("unit_list", trigger.CodeRequired, "at least one unit is required")
	}
	if n.TriggerParams == nil {
		v.Add("trigger", trigger.CodeRequired, "trigger parameters are required")
	}
	return v.ErrOrNil()
}
