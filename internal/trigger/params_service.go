package trigger

// MaintenanceParams 保养周期触发参数
type MaintenanceParams struct {
	Days        int    `json:"days"`
	EngineHours int    `json:"engine_hours"`
	Mileage     int    `json:"mileage"`
	Flags       int    `json:"flags"` // 0=全部周期 1=里程 2=发动机小时 4=天数
	Mask        string `json:"mask"`  // 保养项名称掩码
	Val         int    `json:"val"`   // 1=临近提醒 -1=过期提醒
}

// NewMaintenanceParams 返回带默认值的参数
func NewMaintenanceParams() *MaintenanceParams {
	return &MaintenanceParams{Mask: DefaultMask, Val: 1}
}

func (p *MaintenanceParams) Kind() Kind { return KindMaintenance }

func (p *MaintenanceParams) Validate() error {
	v := &ValidationError{}
	checkChoice(v, "flags", p.Flags, 0, 1, 2, 4)
	checkChoice(v, "val", p.Val, 1, -1)
	if p.Days < 0 {
		v.Add("days", CodeOutOfRange, "must not be negative")
	}
	if p.EngineHours < 0 {
		v.Add("engine_hours", CodeOutOfRange, "must not be negative")
	}
	if p.Mileage < 0 {
		v.Add("mileage", CodeOutOfRange, "must not be negative")
	}
	return v.ErrOrNil()
}

// FuelFillingParams 加油/充电触发参数
type FuelFillingParams struct {
	SensorNameMask string `json:"sensor_name_mask"`
	GeozonesType   int    `json:"geozones_type"` // 0=停用/围栏外 1=围栏内
	GeozonesList   string `json:"geozones_list"`
	RealtimeOnly   int    `json:"realtime_only"`
}

// NewFuelFillingParams 返回带默认值的参数
func NewFuelFillingParams() *FuelFillingParams {
	return &FuelFillingParams{SensorNameMask: DefaultMask}
}

func (p *FuelFillingParams) Kind() Kind { return KindFuelFilling }

func (p *FuelFillingParams) Validate() error {
	v := &ValidationError{}
	checkChoice(v, "geozones_type", p.GeozonesType, 0, 1)
	checkChoice(v, "realtime_only", p.RealtimeOnly, 0, 1)
	return v.ErrOrNil()
}

// FuelDrainParams 燃油流失/盗油触发参数
type FuelDrainParams struct {
	SensorNameMask string `json:"sensor_name_mask"`
	GeozonesType   int    `json:"geozones_type"`
	GeozonesList   string `json:"geozones_list"`
	RealtimeOnly   int    `json:"realtime_only"`
}

// NewFuelDrainParams 返回带默认值的参数
func NewFuelDrainParams() *FuelDrainParams {
	return &FuelDrainParams{SensorNameMask: DefaultMask}
}

func (p *FuelDrainParams) Kind() Kind { return KindFuelDrain }

func (p *FuelDrainParams) Validate() error {
	v := &ValidationError{}
	checkChoice(v, "geozones_type", p.GeozonesType, 0, 1)
	checkChoice(v, "realtime_only", p.RealtimeOnly, 0, 1)
	return v.ErrOrNil()
}
