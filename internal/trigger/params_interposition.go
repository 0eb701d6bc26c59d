package trigger

// InterpositionParams 车辆相对位置触发参数
type InterpositionParams struct {
	IncludeLBS     int     `json:"include_lbs"`
	Logic          string  `json:"lo"` // AND / OR
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
	MinSpeed       int     `json:"min_speed"`
	MaxSpeed       int     `json:"max_speed"`
	Merge          int     `json:"merge"`
	PrevMsgDiff    int     `json:"prev_msg_diff"`
	Radius         int     `json:"radius"` // 米
	Reversed       int     `json:"reversed"`
	SensorNameMask string  `json:"sensor_name_mask"`
	SensorType     string  `json:"sensor_type"`
	Type           int     `json:"type"`       // 0=接近监控 1=远离监控
	UnitGUIDs      string  `json:"unit_guids"` // 逗号分隔的对照单元列表
}

// NewInterpositionParams 返回带默认值的参数
func NewInterpositionParams() *InterpositionParams {
	return &InterpositionParams{SensorNameMask: DefaultMask, Logic: "AND", Radius: 100}
}

func (p *InterpositionParams) Kind() Kind { return KindInterposition }

func (p *InterpositionParams) Validate() error {
	v := &ValidationError{}
	checkBounds(v, "lower_bound", p.LowerBound, "upper_bound", p.UpperBound)
	checkSpeedRange(v, "min_speed", p.MinSpeed)
	checkSpeedRange(v, "max_speed", p.MaxSpeed)
	checkChoice(v, "merge", p.Merge, 0, 1)
	checkChoice(v, "prev_msg_diff", p.PrevMsgDiff, 0, 1)
	checkChoice(v, "reversed", p.Reversed, 0, 1)
	checkChoice(v, "type", p.Type, 0, 1)
	checkChoice(v, "include_lbs", p.IncludeLBS, 0, 1)
	checkSensorType(v, "sensor_type", p.SensorType)
	if p.Logic != "AND" && p.Logic != "OR" {
		v.Add("lo", CodeBadChoice, "must be AND or OR")
	}
	if p.Radius <= 0 {
		v.Add("radius", CodeOutOfRange, "must be positive")
	}
	if p.UnitGUIDs == "" {
		v.Add("unit_guids", CodeRequired, "at least one unit is required")
	}
	return v.ErrOrNil()
}
