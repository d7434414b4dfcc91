package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/work-time-logger/internal/model"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := model.ParseTimeOfDay("09:05:07")
	require.NoError(t, err)
	assert.Equal(t, model.TimeOfDay(9*3600+5*60+7), tod)
	assert.Equal(t, "09:05:07", tod.String())

	for _, bad := range []string{"", "9:5", "24:00:00", "12:60:00", "noon"} {
		_, err := model.ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestTimeOfDaySubAndOn(t *testing.T) {
	a := model.MustTimeOfDay("12:30:00")
	b := model.MustTimeOfDay("09:00:00")
	assert.Equal(t, 3*time.Hour+30*time.Minute, a.Sub(b))
	assert.Equal(t, -(3*time.Hour + 30*time.Minute), b.Sub(a))

	day := time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 17, 12, 30, 0, 0, time.UTC), a.On(day))
	assert.Equal(t, a, model.TimeOfDayFrom(a.On(day)))
}

func TestIntervalElapsed(t *testing.T) {
	open := model.Interval{Start: model.MustTimeOfDay("09:00:00")}
	assert.True(t, open.Open())
	assert.Equal(t, time.Hour, open.Elapsed(model.MustTimeOfDay("10:00:00")))

	open.Close(model.MustTimeOfDay("09:30:00"))
	assert.False(t, open.Open())
	assert.Equal(t, 30*time.Minute, open.Elapsed(model.MustTimeOfDay("23:00:00")))
}

func TestIntervalJSON(t *testing.T) {
	end := model.MustTimeOfDay("12:00:00")
	day := model.DayLog{
		{Start: model.MustTimeOfDay("09:00:00"), End: &end},
		{Start: model.MustTimeOfDay("13:00:00")},
	}
	data, err := json.Marshal(day)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"START":"09:00:00","END":"12:00:00"},{"START":"13:00:00","END":""}]`, string(data))

	var back model.DayLog
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 2)
	assert.Equal(t, end, *back[0].End)
	assert.True(t, back.HasOpen())
}

func TestIntervalJSONNullEnd(t *testing.T) {
	var iv model.Interval
	require.NoError(t, json.Unmarshal([]byte(`{"START":"08:00:00","END":null}`), &iv))
	assert.True(t, iv.Open())
}

func TestIntervalJSONRejectsBadTimes(t *testing.T) {
	var iv model.Interval
	assert.Error(t, json.Unmarshal([]byte(`{"START":"8am","END":""}`), &iv))
	assert.Error(t, json.Unmarshal([]byte(`{"START":"08:00:00","END":"5pm"}`), &iv))
}

func TestDayLogLast(t *testing.T) {
	var empty model.DayLog
	assert.Nil(t, empty.Last())
	assert.False(t, empty.HasOpen())

	day := model.DayLog{{Start: model.MustTimeOfDay("09:00:00")}}
	day.Last().Close(model.MustTimeOfDay("10:00:00"))
	assert.False(t, day.HasOpen(), "Last must point into the slice")
}

func TestActivityCountsTotal(t *testing.T) {
	assert.Equal(t, int64(7), model.ActivityCounts{Active: 3, Inactive: 4}.Total())
}
