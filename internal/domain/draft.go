package domain

import (
	"encoding/json"
	"time"

	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
)

// DraftStep 创建向导所处的步骤
type DraftStep string

const (
	StepSelectUnits     DraftStep = "select_units"
	StepSelectTrigger   DraftStep = "select_trigger"
	StepConfigureParams DraftStep = "configure_parameters"
	StepReview          DraftStep = "review"
)

// NotificationDraft 向导进行中的草稿，以不透明 token 存于 Redis，
// 过期自动丢弃。各步骤只能在前一步完成后推进
type NotificationDraft struct {
	Token      string `json:"token"`
	CustomerID string `json:"customer_id"`
	ResourceID int64  `json:"resource_id"`

	Step DraftStep `json:"step"`

	UnitIDs       []int64         `json:"unit_ids,omitempty"`
	TriggerKind   trigger.Kind    `json:"trigger_kind,omitempty"`
	TriggerParams json.RawMessage `json:"trigger_params,omitempty"` // 已校验参数的序列化形态

	CreatedAt time.Time `json:"created_at"`
}
