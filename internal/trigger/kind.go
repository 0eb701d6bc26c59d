package trigger

import (
	"errors"
	"fmt"
)

// Kind 触发器类型（远程平台的固定类型码，不可改动）
type Kind string

const (
	KindGeofence      Kind = "geozone"
	KindAddress       Kind = "address"
	KindSpeed         Kind = "speed"
	KindAlarm         Kind = "alarm"
	KindDigitalInput  Kind = "digital_input"
	KindParameter     Kind = "msg_param"
	KindSensorValue   Kind = "sensor_value"
	KindOutage        Kind = "outage"
	KindInterposition Kind = "interposition"
	KindExcess        Kind = "msgs_counter"
	KindRoute         Kind = "route_control"
	KindDriver        Kind = "driver"
	KindTrailer       Kind = "trailer"
	// 远程平台的类型码即为 "service_interals"，保持逐字节一致
	KindMaintenance Kind = "service_interals"
	KindFuelFilling Kind = "fuel_filling"
	KindFuelDrain   Kind = "fuel_theft"
	KindHealthCheck Kind = "health_check"
)

// ErrUnknownKind 类型码不在封闭集合内
// 类型码来自前一向导步骤的非可信输入，必须显式检查
var ErrUnknownKind = errors.New("unknown trigger kind")

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Label 触发器类型的展示名称
func (k Kind) Label() string {
	if spec, ok := registry[k]; ok {
		return spec.Label
	}
	return string(k)
}

// Valid 类型码是否属于封闭集合
func (k Kind) Valid() bool {
	_, ok := registry[k]
	return ok
}

// ParseKind 解析非可信的类型码字符串
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}
