package trigger

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds_ClosedSet(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 17)

	seen := map[Kind]bool{}
	for _, k := range kinds {
		assert.True(t, k.Valid(), "kind %s should be valid", k)
		assert.False(t, seen[k], "kind %s duplicated", k)
		seen[k] = true

		spec, err := Lookup(k)
		require.NoError(t, err)
		require.NotNil(t, spec.New)
		assert.Equal(t, k, spec.New().Kind())
		assert.NotEmpty(t, spec.Label)
	}
}

func TestLookup_UnknownKind(t *testing.T) {
	_, err := Lookup(Kind("geofence")) // 展示名不是类型码
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = ParseKind("no_such_trigger")
	assert.ErrorIs(t, err, ErrUnknownKind)

	k, err := ParseKind("sensor_value")
	require.NoError(t, err)
	assert.Equal(t, KindSensorValue, k)
}

func TestDecode_AppliesDefaults(t *testing.T) {
	// 空参数集也可提交：每个字段都有默认值
	params, err := Decode(KindSensorValue, nil)
	require.NoError(t, err)

	p, ok := params.(*SensorValueParams)
	require.True(t, ok)
	assert.Equal(t, DefaultMask, p.SensorNameMask)
	assert.Equal(t, 0, p.Merge)
	assert.Equal(t, 0, p.PrevMsgDiff)
	assert.Equal(t, 0, p.Type)
}

func TestDecode_RoundTrip(t *testing.T) {
	// 每种类型：合法参数 编码→解码 保持相等
	// 默认值缺必填字段的类型补一条最小合法输入
	minimal := map[Kind]json.RawMessage{
		KindGeofence:      json.RawMessage(`{"geozone_ids":"101,102"}`),
		KindParameter:     json.RawMessage(`{"param":"pwr_ext"}`),
		KindInterposition: json.RawMessage(`{"unit_guids":"2001,2002"}`),
		KindExcess:        json.RawMessage(`{"msgs_limit":100}`),
		KindRoute:         json.RawMessage(`{"types":"1,2"}`),
	}

	for _, k := range Kinds() {
		original, err := Decode(k, minimal[k])
		require.NoError(t, err, "kind %s", k)

		data, err := json.Marshal(original)
		require.NoError(t, err, "kind %s", k)

		decoded, err := Decode(k, data)
		require.NoError(t, err, "kind %s", k)
		assert.Equal(t, original, decoded, "kind %s", k)
	}
}

func TestDecode_RoundTripSensorValue(t *testing.T) {
	raw := json.RawMessage(`{"lower_bound":-1.0,"upper_bound":1.0,"sensor_name_mask":"*IGN*","type":0}`)
	params, err := Decode(KindSensorValue, raw)
	require.NoError(t, err)

	data, err := json.Marshal(params)
	require.NoError(t, err)
	decoded, err := Decode(KindSensorValue, data)
	require.NoError(t, err)
	assert.Equal(t, params, decoded)

	p := params.(*SensorValueParams)
	assert.Equal(t, -1.0, p.LowerBound)
	assert.Equal(t, 1.0, p.UpperBound)
	assert.Equal(t, "*IGN*", p.SensorNameMask)
}

func TestDecode_BadJSON(t *testing.T) {
	_, err := Decode(KindSpeed, json.RawMessage(`{"lower_bound":"not-a-number"}`))
	require.Error(t, err)
	var vErr *ValidationError
	assert.False(t, errors.As(err, &vErr), "decode error should not be a validation error")
}

func TestBoundOrder_BothDirections(t *testing.T) {
	// lower=5, upper=1：两个方向都要能独立观察到
	p := NewSensorValueParams()
	p.LowerBound = 5
	p.UpperBound = 1

	err := p.Validate()
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))

	// lower_bound > upper_bound → 错误挂在 lower_bound
	assert.True(t, vErr.HasField("lower_bound"))
	// upper_bound < lower_bound → 错误挂在 upper_bound
	assert.True(t, vErr.HasField("upper_bound"))

	for _, f := range vErr.Fields {
		assert.Equal(t, CodeBoundOrder, f.Code)
	}
}

func TestBoundOrder_EqualBoundsValid(t *testing.T) {
	p := NewSensorValueParams()
	p.LowerBound = 1
	p.UpperBound = 1
	assert.NoError(t, p.Validate())
}

func TestSpeedRange(t *testing.T) {
	p := NewSpeedParams()
	p.UpperBound = 100
	p.MaxSpeed = 257
	err := p.Validate()
	require.Error(t, err)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.True(t, vErr.HasField("max_speed"))

	p.MaxSpeed = 256
	assert.NoError(t, p.Validate())

	p.MinSpeed = -1
	err = p.Validate()
	require.Error(t, err)
	require.True(t, errors.As(err, &vErr))
	assert.True(t, vErr.HasField("min_speed"))
}

func TestDigitalInput_IndexRange(t *testing.T) {
	p := NewDigitalInputParams()
	assert.NoError(t, p.Validate())

	p.InputIndex = 0
	assert.Error(t, p.Validate())

	p.InputIndex = 33
	assert.Error(t, p.Validate())

	p.InputIndex = 32
	assert.NoError(t, p.Validate())
}

func TestAlarm_NoParameters(t *testing.T) {
	params, err := Decode(KindAlarm, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.NoError(t, params.Validate())

	data, err := json.Marshal(params)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestHealthCheck_Switches(t *testing.T) {
	params, err := Decode(KindHealthCheck, json.RawMessage(`{"healthy":1,"unhealthy":0,"needAttention":1,"triggerForEachIncident":1}`))
	require.NoError(t, err)

	p := params.(*HealthCheckParams)
	assert.Equal(t, 1, p.Healthy)
	assert.Equal(t, 0, p.Unhealthy)
	assert.Equal(t, 1, p.NeedAttention)
	assert.Equal(t, 1, p.TriggerForEachIncident)

	_, err = Decode(KindHealthCheck, json.RawMessage(`{"healthy":2}`))
	assert.Error(t, err)
}

func TestMaintenance_Choices(t *testing.T) {
	p := NewMaintenanceParams()
	assert.NoError(t, p.Validate())

	p.Flags = 3 // 不在 {0,1,2,4} 中
	assert.Error(t, p.Validate())

	p.Flags = 4
	p.Val = -1
	assert.NoError(t, p.Validate())
}

func TestSensorType_ClosedSet(t *testing.T) {
	p := NewSensorValueParams()
	p.SensorType = "engine operation"
	assert.NoError(t, p.Validate())

	p.SensorType = "flux capacitor"
	err := p.Validate()
	require.Error(t, err)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.True(t, vErr.HasField("sensor_type"))
}

func TestGeofence_RequiresGeozones(t *testing.T) {
	p := NewGeofenceParams()
	err := p.Validate()
	require.Error(t, err)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.True(t, vErr.HasField("geozone_ids"))

	p.GeozoneIDs = "101,102"
	assert.NoError(t, p.Validate())
}
