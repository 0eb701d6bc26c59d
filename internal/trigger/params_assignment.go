package trigger

// RouteParams 路线进度触发参数
type RouteParams struct {
	Mask         string `json:"mask"`          // 路线名称掩码
	RoundMask    string `json:"round_mask"`    // 班次名称掩码
	ScheduleMask string `json:"schedule_mask"` // 时刻表名称掩码
	Types        string `json:"types"`         // 逗号分隔的路线事件类型
}

// NewRouteParams 返回带默认值的参数
func NewRouteParams() *RouteParams {
	return &RouteParams{Mask: DefaultMask, RoundMask: DefaultMask, ScheduleMask: DefaultMask}
}

func (p *RouteParams) Kind() Kind { return KindRoute }

func (p *RouteParams) Validate() error {
	v := &ValidationError{}
	if p.Types == "" {
		v.Add("types", CodeRequired, "at least one route event type is required")
	}
	return v.ErrOrNil()
}

// DriverParams 司机绑定触发参数
type DriverParams struct {
	DriverCodeMask string `json:"driver_code_mask"`
	Flags          int    `json:"flags"` // 1=绑定 2=解绑
}

// NewDriverParams 返回带默认值的参数
func NewDriverParams() *DriverParams {
	return &DriverParams{DriverCodeMask: DefaultMask, Flags: 1}
}

func (p *DriverParams) Kind() Kind { return KindDriver }

func (p *DriverParams) Validate() error {
	v := &ValidationError{}
	checkChoice(v, "flags", p.Flags, 1, 2)
	return v.ErrOrNil()
}

// TrailerParams 挂车绑定触发参数
// 远程平台沿用 driver_code_mask 作为掩码键名
type TrailerParams struct {
	DriverCodeMask string `json:"driver_code_mask"`
	Flags          int    `json:"flags"` // 1=绑定 2=解绑
}

// NewTrailerParams 返回带默认值的参数
func NewTrailerParams() *TrailerParams {
	return &TrailerParams{DriverCodeMask: DefaultMask, Flags: 1}
}

func (p *TrailerParams) Kind() Kind { return KindTrailer }

func (p *TrailerParams) Validate() error {
	v := &ValidationError{}
	checkChoice(v, "flags", p.Flags, 1, 2)
	return v.ErrOrNil()
}
