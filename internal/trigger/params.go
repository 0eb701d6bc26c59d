package trigger

// DefaultMask 名称掩码默认值（匹配全部）
// 掩码为不透明字符串，通配符语法由远程平台解释，本地不做校验
const DefaultMask = "*"

// Parameters 触发器参数（按 Kind 区分的变体类型）
// json 标签即远程平台 trg.p 的键名，编码/解码直接走 encoding/json
type Parameters interface {
	// Kind 参数所属的触发器类型
	Kind() Kind
	// Validate 校验并返回 nil 或 *ValidationError；无副作用
	Validate() error
}

// SensorTypes 远程平台的传感器类型封闭集合（空串表示任意类型）
var SensorTypes = []string{
	"",
	"mileage",
	"odometer",
	"engine operation",
	"alarm trigger",
	"private mode",
	"real-time motion sensor",
	"digital",
	"voltage",
	"weight",
	"accelerometer",
	"temperature",
	"temperature coefficient",
	"engine rpm",
	"engine efficiency",
	"engine hours",
	"relative engine hours",
	"impulse fuel consumption",
	"absolute fuel consumption",
	"instant fuel consumption",
	"fuel level",
	"fuel level impulse sensor",
	"battery level",
	"counter",
	"custom",
	"driver",
	"trailer",
	"tag",
}

func checkSensorType(v *ValidationError, field, value string) {
	for _, s := range SensorTypes {
		if value == s {
			return
		}
	}
	v.Add(field, CodeBadChoice, "unknown sensor type")
}
