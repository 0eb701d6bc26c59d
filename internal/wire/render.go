package wire

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
)

// 远程平台在投递时展开的宏
const (
	macroUnit    = "%UNIT%"
	macroUser    = "%CURR_USER%"
	macroMsgTime = "%MSG_TIME%"
)

// RenderText 将消息模板渲染为投递文本
// 远程平台要求 URL 编码的键值串；unit/user/time 占位符保留宏形态，
// 由平台在触发时替换。url.Values 按键名排序，重复编码结果逐字节一致
func RenderText(message string) string {
	v := url.Values{}
	v.Set("msg", message)
	v.Set("unit", macroUnit)
	v.Set("user", macroUser)
	v.Set("time", macroMsgTime)
	return v.Encode()
}

// action 远程动作结构 {t, p}
type action struct {
	Type   string            `json:"t"`
	Params map[string]string `json:"p"`
}

// RenderActions 按投递方式渲染动作列表
// 平台触发时向回调地址推送消息，路径尾段区分 sms/voice
func RenderActions(method domain.DeliveryMethod, callbackURL string) (json.RawMessage, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("render actions: unsupported delivery method %q", method)
	}
	acts := []action{
		{
			Type: "push_messages",
			Params: map[string]string{
				"url": callbackURL + "/" + string(method),
			},
		},
	}
	raw, err := json.Marshal(acts)
	if err != nil {
		return nil, fmt.Errorf("render actions: %w", err)
	}
	return raw, nil
}
