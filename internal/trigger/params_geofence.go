package trigger

// GeofenceParams 地理围栏触发参数
type GeofenceParams struct {
	SensorType     string  `json:"sensor_type"`
	SensorNameMask string  `json:"sensor_name_mask"`
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
	PrevMsgDiff    int     `json:"prev_msg_diff"` // 0=相对绝对值 1=相对上一条消息
	Merge          int     `json:"merge"`         // 0=分别计算 1=求和
	Reversed       int     `json:"reversed"`
	GeozoneIDs     string  `json:"geozone_ids"` // 逗号分隔的围栏 id 列表
	Type           int     `json:"type"`        // 0=进入 1=离开
	MinSpeed       int     `json:"min_speed"`
	MaxSpeed       int     `json:"max_speed"`
	IncludeLBS     int     `json:"include_lbs"`
	Logic          string  `json:"lo"` // AND / OR
}

// NewGeofenceParams 返回带默认值的参数
func NewGeofenceParams() *GeofenceParams {
	return &GeofenceParams{SensorNameMask: DefaultMask, Logic: "AND"}
}

func (p *GeofenceParams) Kind() Kind { return KindGeofence }

func (p *GeofenceParams) Validate() error {
	v := &ValidationError{}
	checkBounds(v, "lower_bound", p.LowerBound, "upper_bound", p.UpperBound)
	checkSpeedRange(v, "min_speed", p.MinSpeed)
	checkSpeedRange(v, "max_speed", p.MaxSpeed)
	checkChoice(v, "prev_msg_diff", p.PrevMsgDiff, 0, 1)
	checkChoice(v, "merge", p.Merge, 0, 1)
	checkChoice(v, "reversed", p.Reversed, 0, 1)
	checkChoice(v, "type", p.Type, 0, 1)
	checkChoice(v, "include_lbs", p.IncludeLBS, 0, 1)
	checkSensorType(v, "sensor_type", p.SensorType)
	if p.Logic != "AND" && p.Logic != "OR" {
		v.Add("lo", CodeBadChoice, "must be AND or OR")
	}
	if p.GeozoneIDs == "" {
		v.Add("geozone_ids", CodeRequired, "at least one geofence id is required")
	}
	return v.ErrOrNil()
}

// AddressParams 地址触发参数
type AddressParams struct {
	City           string  `json:"city"`
	Country        string  `json:"country"`
	House          string  `json:"house"`
	Street         string  `json:"street"`
	Region         string  `json:"region"`
	Radius         int     `json:"radius"` // 米
	IncludeLBS     int     `json:"include_lbs"`
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
	MinSpeed       int     `json:"min_speed"`
	MaxSpeed       int     `json:"max_speed"`
	Merge          int     `json:"merge"`
	PrevMsgDiff    int     `json:"prev_msg_diff"`
	Reversed       int     `json:"reversed"`
	SensorNameMask string  `json:"sensor_name_mask"`
	SensorType     string  `json:"sensor_type"`
	Type           int     `json:"type"`
}

// NewAddressParams 返回带默认值的参数
func NewAddressParams() *AddressParams {
	return &AddressParams{SensorNameMask: DefaultMask, Radius: 100}
}

func (p *AddressParams) Kind() Kind { return KindAddress }

func (p *AddressParams) Validate() error {
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
	if p.Radius <= 0 {
		v.Add("radius", CodeOutOfRange, "must be positive")
	}
	return v.ErrOrNil()
}
