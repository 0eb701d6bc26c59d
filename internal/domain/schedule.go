package domain

// Schedule 通知调度掩码（对应远程平台 sch / ctrl_sch 结构）
// 两个时段按从零点起的分钟数表示；m/y/w 为按位掩码
type Schedule struct {
	From1    int    `json:"f1"` // 时段1开始（分钟）
	From2    int    `json:"f2"` // 时段2开始（分钟）
	To1      int    `json:"t1"` // 时段1结束（分钟）
	To2      int    `json:"t2"` // 时段2结束（分钟）
	DayMask  uint32 `json:"m"`  // 月内日掩码（bit0=1号）
	MonMask  uint32 `json:"y"`  // 月份掩码（bit0=一月）
	WeekMask uint32 `json:"w"`  // 星期掩码（bit0=周一）
	Flags    int    `json:"f"`
}

// IsZero 未设置任何约束时返回 true（远程平台视为全天生效）
func (s Schedule) IsZero() bool {
	return s == Schedule{}
}
