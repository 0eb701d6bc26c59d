package wire

import (
	"bytes"
	"encoding/json"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
	"github.com/terminusgps/terminusgps-notifications/internal/trigger"
)

// 远程调用模式判别符
const (
	CallModeCreate = "create"
	CallModeUpdate = "update"
	CallModeDelete = "delete"
)

// FlagEnabled fl 最低位承载启用状态，enable/disable 以 update 调用下发
const FlagEnabled = 0x1

// Trigger 远程触发器结构 {t, p}
type Trigger struct {
	Kind   string             `json:"t"`
	Params trigger.Parameters `json:"p"`
}

// Payload 远程 update_notification 调用参数
// 字段名与远程平台逐字节对齐，不得更改；create/update/delete 共用同一
// 形态，只有 callMode 与 id 不同
type Payload struct {
	ItemID             int64           `json:"itemId"`
	ID                 int64           `json:"id"` // create 时恒为 0
	CallMode           string          `json:"callMode"`
	Name               string          `json:"n"`
	Text               string          `json:"txt"`
	ActivationTime     int64           `json:"ta"` // UNIX 秒，0=未设置
	DeactivationTime   int64           `json:"td"` // UNIX 秒，0=永不
	MaxAlarms          int             `json:"ma"` // 0=不限
	MaxMessageInterval int             `json:"mmtd"`
	AlarmTimeout       int             `json:"cdt"`
	MinDurationAlarm   int             `json:"mast"`
	MinDurationPrev    int             `json:"mpst"`
	ControlPeriod      int             `json:"cp"`
	Flags              int             `json:"fl"`
	Language           string          `json:"la"`
	Timezone           int             `json:"tz"`
	Units              []int64         `json:"un"`
	Trigger            Trigger         `json:"trg"`
	Actions            json.RawMessage `json:"act"`
	Schedule           domain.Schedule `json:"sch"`
	ControlSchedule    domain.Schedule `json:"ctrl_sch"`
}

// newPayload 由通知实体构造远程参数，三种调用模式共用
func newPayload(resourceID int64, n *domain.Notification, callMode string, id int64) *Payload {
	units := n.UnitIDs
	if units == nil {
		units = []int64{}
	}
	actions := n.Actions
	if len(actions) == 0 {
		actions = json.RawMessage("[]")
	}
	flags := n.Flags &^ FlagEnabled
	if n.Enabled {
		flags |= FlagEnabled
	}
	return &Payload{
		ItemID:             resourceID,
		ID:                 id,
		CallMode:           callMode,
		Name:               n.Name,
		Text:               n.Text,
		ActivationTime:     n.ActivationTime,
		DeactivationTime:   n.DeactivationTime,
		MaxAlarms:          n.MaxAlarms,
		MaxMessageInterval: n.MaxMessageInterval,
		AlarmTimeout:       n.AlarmTimeout,
		MinDurationAlarm:   n.MinDurationAlarm,
		MinDurationPrev:    n.MinDurationPrev,
		ControlPeriod:      n.ControlPeriod,
		Flags:              flags,
		Language:           n.Language,
		Timezone:           n.Timezone,
		Units:              units,
		Trigger:            Trigger{Kind: n.TriggerKind.String(), Params: n.TriggerParams},
		Actions:            actions,
		Schedule:           n.Schedule,
		ControlSchedule:    n.ControlSchedule,
	}
}

// EncodeCreate 创建调用，id 恒为哨兵值 0，远程返回权威标识
func EncodeCreate(resourceID int64, n *domain.Notification) *Payload {
	return newPayload(resourceID, n, CallModeCreate, 0)
}

// EncodeUpdate 更新调用，id 为已存储的远程标识
func EncodeUpdate(resourceID int64, n *domain.Notification) *Payload {
	return newPayload(resourceID, n, CallModeUpdate, n.RemoteID)
}

// EncodeDelete 删除调用
func EncodeDelete(resourceID int64, n *domain.Notification) *Payload {
	return newPayload(resourceID, n, CallModeDelete, n.RemoteID)
}

// SameRemoteState 两个实体是否会编码出相同的更新参数
// 调用参数即远程可见状态的全集，编码结果一致说明远程无需同步；
// 无法编码时按“有变化”处理
func SameRemoteState(a, b *domain.Notification) bool {
	ab, err := json.Marshal(newPayload(0, a, CallModeUpdate, a.RemoteID))
	if err != nil {
		return false
	}
	bb, err := json.Marshal(newPayload(0, b, CallModeUpdate, b.RemoteID))
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
