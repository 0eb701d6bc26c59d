package trigger

import (
	"encoding/json"
	"fmt"
)

// Choice 枚举字段的一个取值
type Choice struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// FieldSpec 参数字段描述（供外部 UI 协作方渲染表单）
type FieldSpec struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"` // number / integer / string / choice
	Default any      `json:"default"`
	Min     *int     `json:"min,omitempty"`
	Max     *int     `json:"max,omitempty"`
	Choices []Choice `json:"choices,omitempty"`
}

// Spec 一种触发器类型的参数模式与构造器
type Spec struct {
	Kind   Kind        `json:"kind"`
	Label  string      `json:"label"`
	Fields []FieldSpec `json:"fields"`
	// New 返回带默认值的参数实例（空参数集也可提交）
	New func() Parameters `json:"-"`
}

// Lookup 按类型码查找参数模式
// 类型码来自前一步骤的非可信输入，不在封闭集合内时返回 ErrUnknownKind
func Lookup(kind Kind) (Spec, error) {
	spec, ok := registry[kind]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return spec, nil
}

// Kinds 返回全部触发器类型（固定顺序）
func Kinds() []Kind {
	return append([]Kind(nil), kindOrder...)
}

// Decode 解析并校验一种类型的原始参数
// 先套默认值再反序列化，缺省字段保持默认；校验失败返回 *ValidationError
func Decode(kind Kind, raw json.RawMessage) (Parameters, error) {
	spec, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	params := spec.New()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, params); err != nil {
			return nil, fmt.Errorf("failed to decode %s parameters: %w", kind, err)
		}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

var kindOrder = []Kind{
	KindGeofence, KindAddress, KindSpeed, KindAlarm, KindDigitalInput,
	KindParameter, KindSensorValue, KindOutage, KindInterposition,
	KindExcess, KindRoute, KindDriver, KindTrailer, KindMaintenance,
	KindFuelFilling, KindFuelDrain, KindHealthCheck,
}

// ============================================
// 字段描述构造辅助
// ============================================

func numberField(name string, def float64) FieldSpec {
	return FieldSpec{Name: name, Type: "number", Default: def}
}

func intField(name string, def int) FieldSpec {
	return FieldSpec{Name: name, Type: "integer", Default: def}
}

func rangedIntField(name string, def, min, max int) FieldSpec {
	return FieldSpec{Name: name, Type: "integer", Default: def, Min: &min, Max: &max}
}

func stringField(name, def string) FieldSpec {
	return FieldSpec{Name: name, Type: "string", Default: def}
}

func choiceField(name string, def any, choices ...Choice) FieldSpec {
	return FieldSpec{Name: name, Type: "choice", Default: def, Choices: choices}
}

func sensorTypeField() FieldSpec {
	choices := make([]Choice, len(SensorTypes))
	for i, s := range SensorTypes {
		label := s
		if s == "" {
			label = "Any"
		}
		choices[i] = Choice{Value: s, Label: label}
	}
	return FieldSpec{Name: "sensor_type", Type: "choice", Default: "", Choices: choices}
}

var (
	prevMsgDiffChoices = []Choice{
		{0, "Relative to absolute value"},
		{1, "Relative to previous value"},
	}
	mergeChoices = []Choice{
		{0, "Calculate separately"},
		{1, "Sum up values"},
	}
	rangeChoices = []Choice{
		{0, "In the specified range"},
		{1, "Out of the specified range"},
	}
	yesNoChoices = []Choice{
		{0, "No"},
		{1, "Yes"},
	}
	logicChoices = []Choice{
		{"AND", "Logical AND"},
		{"OR", "Logical OR"},
	}
)

// 上下界 + 速度窗 + 传感器掩码组成的公共字段组
func boundPairFields() []FieldSpec {
	return []FieldSpec{
		numberField("lower_bound", 0),
		numberField("upper_bound", 0),
	}
}

func speedWindowFields() []FieldSpec {
	return []FieldSpec{
		rangedIntField("min_speed", 0, MinSpeedLimit, MaxSpeedLimit),
		rangedIntField("max_speed", 0, MinSpeedLimit, MaxSpeedLimit),
	}
}

func sensorMaskFields() []FieldSpec {
	return []FieldSpec{
		stringField("sensor_name_mask", DefaultMask),
		sensorTypeField(),
	}
}

func concat(groups ...[]FieldSpec) []FieldSpec {
	var out []FieldSpec
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var registry = map[Kind]Spec{
	KindGeofence: {
		Kind: KindGeofence, Label: "Geofence",
		New: func() Parameters { return NewGeofenceParams() },
		Fields: concat(sensorMaskFields(), boundPairFields(), speedWindowFields(), []FieldSpec{
			choiceField("prev_msg_diff", 0, prevMsgDiffChoices...),
			choiceField("merge", 0, mergeChoices...),
			choiceField("reversed", 0, yesNoChoices...),
			stringField("geozone_ids", ""),
			choiceField("type", 0, Choice{0, "Entering geofence"}, Choice{1, "Leaving geofence"}),
			choiceField("include_lbs", 0, yesNoChoices...),
			choiceField("lo", "AND", logicChoices...),
		}),
	},
	KindAddress: {
		Kind: KindAddress, Label: "Address",
		New: func() Parameters { return NewAddressParams() },
		Fields: concat([]FieldSpec{
			stringField("country", ""),
			stringField("region", ""),
			stringField("city", ""),
			stringField("street", ""),
			stringField("house", ""),
			intField("radius", 100),
		}, sensorMaskFields(), boundPairFields(), speedWindowFields(), []FieldSpec{
			choiceField("prev_msg_diff", 0, prevMsgDiffChoices...),
			choiceField("merge", 0, mergeChoices...),
			choiceField("reversed", 0, yesNoChoices...),
			choiceField("type", 0, Choice{0, "Entering address"}, Choice{1, "Leaving address"}),
			choiceField("include_lbs", 0, yesNoChoices...),
		}),
	},
	KindSpeed: {
		Kind: KindSpeed, Label: "Speed",
		New: func() Parameters { return NewSpeedParams() },
		Fields: concat(boundPairFields(), speedWindowFields(), sensorMaskFields(), []FieldSpec{
			choiceField("prev_msg_diff", 0, prevMsgDiffChoices...),
			choiceField("merge", 0, mergeChoices...),
			choiceField("reversed", 0, yesNoChoices...),
		}),
	},
	KindAlarm: {
		Kind: KindAlarm, Label: "Alarm (SOS)",
		New:  func() Parameters { return NewAlarmParams() },
	},
	KindDigitalInput: {
		Kind: KindDigitalInput, Label: "Digital input",
		New: func() Parameters { return NewDigitalInputParams() },
		Fields: []FieldSpec{
			rangedIntField("input_index", 1, 1, 32),
			choiceField("type", 0, Choice{0, "Check for activation"}, Choice{1, "Check for deactivation"}),
		},
	},
	KindParameter: {
		Kind: KindParameter, Label: "Parameter in a message",
		New: func() Parameters { return NewParameterParams() },
		Fields: concat([]FieldSpec{
			choiceField("kind", 0,
				Choice{0, "Value range"},
				Choice{1, "Text mask"},
				Choice{2, "Parameter availability"},
				Choice{3, "Parameter lack"}),
			stringField("param", ""),
			stringField("text_mask", DefaultMask),
		}, boundPairFields(), []FieldSpec{
			choiceField("type", 0, rangeChoices...),
		}),
	},
	KindSensorValue: {
		Kind: KindSensorValue, Label: "Sensor value",
		New: func() Parameters { return NewSensorValueParams() },
		Fields: concat(boundPairFields(), sensorMaskFields(), []FieldSpec{
			choiceField("merge", 0, mergeChoices...),
			choiceField("prev_msg_diff", 0, prevMsgDiffChoices...),
			choiceField("type", 0, rangeChoices...),
		}),
	},
	KindOutage: {
		Kind: KindOutage, Label: "Connection loss",
		New: func() Parameters { return NewOutageParams() },
		Fields: []FieldSpec{
			choiceField("type", 0, Choice{0, "Coordinates loss"}, Choice{1, "Connection loss"}),
			intField("time", 300),
			choiceField("check_restore", 0,
				Choice{0, "Connection lost"},
				Choice{1, "Connection lost and restored"},
				Choice{2, "Connection restored"}),
			stringField("geozones_list", ""),
			choiceField("geozones_type", 0, Choice{0, "Out of geofence"}, Choice{1, "In geofence"}),
			choiceField("include_lbs", 0, yesNoChoices...),
		},
	},
	KindInterposition: {
		Kind: KindInterposition, Label: "Interposition of units",
		New: func() Parameters { return NewInterpositionParams() },
		Fields: concat([]FieldSpec{
			stringField("unit_guids", ""),
			intField("radius", 100),
			choiceField("type", 0,
				Choice{0, "Control approaching to units"},
				Choice{1, "Control moving away from units"}),
			choiceField("lo", "AND", logicChoices...),
		}, boundPairFields(), speedWindowFields(), sensorMaskFields(), []FieldSpec{
			choiceField("merge", 0, mergeChoices...),
			choiceField("prev_msg_diff", 0, prevMsgDiffChoices...),
			choiceField("reversed", 0, rangeChoices...),
			choiceField("include_lbs", 0, yesNoChoices...),
		}),
	},
	KindExcess: {
		Kind: KindExcess, Label: "Excess of messages",
		New: func() Parameters { return NewExcessParams() },
		Fields: []FieldSpec{
			choiceField("flags", 1, Choice{1, "Data messages"}, Choice{2, "SMS messages"}),
			intField("msgs_limit", 0),
			intField("time_offset", 0),
		},
	},
	KindRoute: {
		Kind: KindRoute, Label: "Route progress",
		New: func() Parameters { return NewRouteParams() },
		Fields: []FieldSpec{
			stringField("mask", DefaultMask),
			stringField("round_mask", DefaultMask),
			stringField("schedule_mask", DefaultMask),
			stringField("types", ""),
		},
	},
	KindDriver: {
		Kind: KindDriver, Label: "Driver",
		New: func() Parameters { return NewDriverParams() },
		Fields: []FieldSpec{
			stringField("driver_code_mask", DefaultMask),
			choiceField("flags", 1, Choice{1, "Driver assignment"}, Choice{2, "Driver separation"}),
		},
	},
	KindTrailer: {
		Kind: KindTrailer, Label: "Trailer",
		New: func() Parameters { return NewTrailerParams() },
		Fields: []FieldSpec{
			stringField("driver_code_mask", DefaultMask),
			choiceField("flags", 1, Choice{1, "Trailer assignment"}, Choice{2, "Trailer separation"}),
		},
	},
	KindMaintenance: {
		Kind: KindMaintenance, Label: "Maintenance",
		New: func() Parameters { return NewMaintenanceParams() },
		Fields: []FieldSpec{
			choiceField("flags", 0,
				Choice{0, "Control all service intervals"},
				Choice{1, "Mileage interval"},
				Choice{2, "Engine hours interval"},
				Choice{4, "Days interval"}),
			stringField("mask", DefaultMask),
			intField("mileage", 0),
			intField("engine_hours", 0),
			intField("days", 0),
			choiceField("val", 1,
				Choice{1, "Notify when service term approaches"},
				Choice{-1, "Notify when service term is expired"}),
		},
	},
	KindFuelFilling: {
		Kind: KindFuelFilling, Label: "Fuel filling/battery charge",
		New:    func() Parameters { return NewFuelFillingParams() },
		Fields: fuelFields(),
	},
	KindFuelDrain: {
		Kind: KindFuelDrain, Label: "Fuel drain/theft",
		New:    func() Parameters { return NewFuelDrainParams() },
		Fields: fuelFields(),
	},
	KindHealthCheck: {
		Kind: KindHealthCheck, Label: "Health check",
		New: func() Parameters { return NewHealthCheckParams() },
		Fields: []FieldSpec{
			choiceField("healthy", 0, yesNoChoices...),
			choiceField("unhealthy", 1, yesNoChoices...),
			choiceField("needAttention", 0, yesNoChoices...),
			choiceField("triggerForEachIncident", 0, yesNoChoices...),
		},
	},
}

func fuelFields() []FieldSpec {
	return []FieldSpec{
		stringField("sensor_name_mask", DefaultMask),
		choiceField("geozones_type", 0,
			Choice{0, "Disabled/outside geofence"},
			Choice{1, "Inside geofence"}),
		stringField("geozones_list", ""),
		choiceField("realtime_only", 0, yesNoChoices...),
	}
}
