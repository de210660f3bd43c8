package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"nil slice", nil, "(none)"},
		{"empty slice", []string{}, "(none)"},
		{"single port", []string{"/dev/ttyUSB0"}, "/dev/ttyUSB0"},
		{"several labels", []string{"temp", "t", "temperature"}, "temp, t, temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.items))
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "-", JoinOrDefault(nil, "-"))
	assert.Equal(t, "", JoinOrDefault([]string{}, ""))
	assert.Equal(t, "temperature, humidity", JoinOrDefault([]string{"temperature", "humidity"}, "-"))
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "captures"},
		{1, "capture"},
		{2, "captures"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pluralize(tt.count, "capture", "captures"))
	}
}
