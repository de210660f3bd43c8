package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric_Names(t *testing.T) {
	tests := []struct {
		metric Metric
		key    string
		title  string
		unit   string
	}{
		{Temperature, "temperature", "Temperature", "°C"},
		{Humidity, "humidity", "Humidity", "%"},
		{Noise, "noise", "Noise Level", ""},
		{Gas, "gas", "Gas Level", ""},
		{Metric(99), "unknown", "Unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.metric.String())
			assert.Equal(t, tt.title, tt.metric.Title())
			assert.Equal(t, tt.unit, tt.metric.Unit())
		})
	}
}

func TestMetric_FormatValue(t *testing.T) {
	assert.Equal(t, "41 °C", Temperature.FormatValue(41))
	assert.Equal(t, "23.5 °C", Temperature.FormatValue(23.5))
	assert.Equal(t, "50%", Humidity.FormatValue(50))
	assert.Equal(t, "250", Noise.FormatValue(250))
	assert.Equal(t, "0.1", Gas.FormatValue(0.1))
}

func TestReading_String(t *testing.T) {
	r := Reading{Metric: Temperature, Value: 41}
	assert.Equal(t, "Temperature: 41 °C", r.String())

	r = Reading{Metric: Noise, Value: 250}
	assert.Equal(t, "Noise Level: 250", r.String())
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"temperature", Temperature, false},
		{"Temperature", Temperature, false},
		{" temp ", Temperature, false},
		{"humidity", Humidity, false},
		{"noise", Noise, false},
		{"noise_level", Noise, false},
		{"gas", Gas, false},
		{"MQ2", Gas, false},
		{"mq-2", Gas, false},
		{"pressure", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMetrics(t *testing.T) {
	got, err := ParseMetrics([]string{"noise", "temperature", "Noise", "gas"})
	require.NoError(t, err)
	assert.Equal(t, []Metric{Noise, Temperature, Gas}, got)

	_, err = ParseMetrics([]string{"temperature", "wind"})
	assert.Error(t, err)

	got, err = ParseMetrics(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
