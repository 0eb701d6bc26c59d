package trigger

// SpeedParams 速度触发参数
type SpeedParams struct {
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
	MinSpeed       int     `json:"min_speed"`
	MaxSpeed       int     `json:"max_speed"`
	Merge          int     `json:"merge"`
	PrevMsgDiff    int     `json:"prev_msg_diff"`
	Reversed       int     `json:"reversed"`
	SensorNameMask string  `json:"sensor_name_mask"`
	SensorType     string  `json:"sensor_type"`
}

// NewSpeedParams 返回带默认值的参数
func NewSpeedParams() *SpeedParams {
	return &SpeedParams{SensorNameMask: DefaultMask}
}

func (p *SpeedParams) Kind() Kind { return KindSpeed }

func (p *SpeedParams) Validate() error {
	v := &ValidationError{}
	checkBounds(v, "lower_bound", p.LowerBound, "upper_bound", p.UpperBound)
	checkSpeedRange(v, "min_speed", p.MinSpeed)
	checkSpeedRange(v, "max_speed", p.MaxSpeed)
	checkChoice(v, "merge", p.Merge, 0, 1)
	checkChoice(v, "prev_msg_diff", p.PrevMsgDiff, 0, 1)
	checkChoice(v, "reversed", p.Reversed, 0, 1)
	checkSensorType(v, "sensor_type", p.SensorType)
	return v.ErrOrNil()
}
