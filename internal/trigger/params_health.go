package trigger

// AlarmParams SOS 报警触发参数（无参数）
type AlarmParams struct{}

// NewAlarmParams 返回带默认值的参数
func NewAlarmParams() *AlarmParams { return &AlarmParams{} }

func (p *AlarmParams) Kind() Kind { return KindAlarm }

func (p *AlarmParams) Validate() error { return nil }

// HealthCheckParams 设备健康检查触发参数
// 四个独立的 0/1 开关；键名与远程平台一致（混合命名风格来自上游）
type HealthCheckParams struct {
	Healthy                int `json:"healthy"`
	Unhealthy              int `json:"unhealthy"`
	NeedAttention          int `json:"needAttention"`
	TriggerForEachIncident int `json:"triggerForEachIncident"`
}

// NewHealthCheckParams 返回带默认值的参数
func NewHealthCheckParams() *HealthCheckParams {
	return &HealthCheckParams{Unhealthy: 1}
}

func (p *HealthCheckParams) Kind() Kind { return KindHealthCheck }

func (p *HealthCheckParams) Validate() error {
	v := &ValidationError{}
	checkChoice(v, "healthy", p.Healthy, 0, 1)
	checkChoice(v, "unhealthy", p.Unhealthy, 0, 1)
	checkChoice(v, "needAttention", p.NeedAttention, 0, 1)
	checkChoice(v, "triggerForEachIncident", p.TriggerForEachIncident, 0, 1)
	return v.ErrOrNil()
}
