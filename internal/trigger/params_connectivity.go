package trigger

// OutageParams 失联/丢定位触发参数
type OutageParams struct {
	CheckRestore int    `json:"check_restore"` // 0=丢失 1=丢失并恢复 2=恢复
	GeozonesList string `json:"geozones_list"` // 逗号分隔的围栏 id 列表（可为空）
	GeozonesType int    `json:"geozones_type"` // 0=围栏外 1=围栏内
	IncludeLBS   int    `json:"include_lbs"`
	Time         int    `json:"time"` // 失联判定时间（秒）
	Type         int    `json:"type"` // 0=坐标丢失 1=连接丢失
}

// NewOutageParams 返回带默认值的参数
func NewOutageParams() *OutageParams {
	return &OutageParams{Time: 300}
}

func (p *OutageParams) Kind() Kind { return KindOutage }

func (p *OutageParams) Validate() error {
	v := &ValidationError{}
	checkChoice(v, "check_restore", p.CheckRestore, 0, 1, 2)
	checkChoice(v, "geozones_type", p.GeozonesType, 0, 1)
	checkChoice(v, "include_lbs", p.IncludeLBS, 0, 1)
	checkChoice(v, "type", p.Type, 0, 1)
	if p.Time <= 0 {
		v.Add("time", CodeOutOfRange, "must be positive")
	}
	return v.ErrOrNil()
}

// ExcessParams 消息超量触发参数
type ExcessParams struct {
	Flags      int `json:"flags"` // 1=数据消息 2=SMS消息
	MsgsLimit  int `json:"msgs_limit"`
	TimeOffset int `json:"time_offset"` // 统计窗口（秒）
}

// NewExcessParams 返回带默认值的参数
func NewExcessParams() *ExcessParams {
	return &ExcessParams{Flags: 1}
}

func (p *ExcessParams) Kind() Kind { return KindExcess }

func (p *ExcessParams) Validate() error {
	v := &ValidationError{}
	checkChoice(v, "flags", p.Flags, 1, 2)
	if p.MsgsLimit <= 0 {
		v.Add("msgs_limit", CodeOutOfRange, "must be positive")
	}
	if p.TimeOffset < 0 {
		v.Add("time_offset", CodeOutOfRange, "must not be negative")
	}
	return v.ErrOrNil()
}
