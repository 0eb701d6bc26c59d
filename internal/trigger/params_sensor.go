package trigger

// SensorValueParams 传感器数值触发参数
type SensorValueParams struct {
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
	Merge          int     `json:"merge"`         // 0=分别计算 1=求和
	PrevMsgDiff    int     `json:"prev_msg_diff"` // 0=相对绝对值 1=相对上一条消息
	SensorNameMask string  `json:"sensor_name_mask"`
	SensorType     string  `json:"sensor_type"`
	Type           int     `json:"type"` // 0=范围内触发 1=范围外触发
}

// NewSensorValueParams 返回带默认值的参数
func NewSensorValueParams() *SensorValueParams {
	return &SensorValueParams{SensorNameMask: DefaultMask}
}

func (p *SensorValueParams) Kind() Kind { return KindSensorValue }

func (p *SensorValueParams) Validate() error {
	v := &ValidationError{}
	checkBounds(v, "lower_bound", p.LowerBound, "upper_bound", p.UpperBound)
	checkChoice(v, "merge", p.Merge, 0, 1)
	checkChoice(v, "prev_msg_diff", p.PrevMsgDiff, 0, 1)
	checkChoice(v, "type", p.Type, 0, 1)
	checkSensorType(v, "sensor_type", p.SensorType)
	return v.ErrOrNil()
}

// ParameterParams 消息参数触发参数
type ParameterParams struct {
	Mode       int     `json:"kind"` // 0=数值范围 1=文本掩码 2=参数出现 3=参数缺失
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Param      string  `json:"param"` // 消息参数名
	TextMask   string  `json:"text_mask"`
	Type       int     `json:"type"` // 0=范围内触发 1=范围外触发
}

// NewParameterParams 返回带默认值的参数
func NewParameterParams() *ParameterParams {
	return &ParameterParams{TextMask: DefaultMask}
}

func (p *ParameterParams) Kind() Kind { return KindParameter }

func (p *ParameterParams) Validate() error {
	v := &ValidationError{}
	checkBounds(v, "lower_bound", p.LowerBound, "upper_bound", p.UpperBound)
	checkChoice(v, "kind", p.Mode, 0, 1, 2, 3)
	checkChoice(v, "type", p.Type, 0, 1)
	if p.Param == "" {
		v.Add("param", CodeRequired, "parameter name is required")
	}
	return v.ErrOrNil()
}

// DigitalInputParams 数字输入触发参数
type DigitalInputParams struct {
	InputIndex int `json:"input_index"` // 1..32
	Type       int `json:"type"`        // 0=激活 1=失活
}

// NewDigitalInputParams 返回带默认值的参数
func NewDigitalInputParams() *DigitalInputParams {
	return &DigitalInputParams{InputIndex: 1}
}

func (p *DigitalInputParams) Kind() Kind { return KindDigitalInput }

func (p *DigitalInputParams) Validate() error {
	v := &ValidationError{}
	if p.InputIndex < 1 || p.InputIndex > 32 {
		v.Add("input_index", CodeOutOfRange, "must be between 1 and 32")
	}
	checkChoice(v, "type", p.Type, 0, 1)
	return v.ErrOrNil()
}
