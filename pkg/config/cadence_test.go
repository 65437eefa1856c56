package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCadence(t *testing.T) {
	cases := []struct {
		name    string
		d       time.Duration
		wantErr bool
	}{
		{"7s_not_divisor", 7 * time.Second, true},
		{"15s_divides_60", 15 * time.Second, false},
		{"1s", time.Second, false},
		{"60s_is_one_minute", 60 * time.Second, false}, // falls into minute bucket, 1m divides 60m
		{"13m_not_divisor", 13 * time.Minute, true},
		{"20m_divides_60", 20 * time.Minute, false},
		{"5h_not_divisor", 5 * time.Hour, true}, // 24%5 != 0
		{"6h_divides_24", 6 * time.Hour, false},
		{"48h_multiple_of_24", 48 * time.Hour, false},
		{"36h_not_multiple", 36 * time.Hour, true},
		{"zero", 0, true},
		{"negative", -time.Second, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCadence(tc.d)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCadence_ErrorMessage(t *testing.T) {
	err := ValidateCadence(7 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second cadence must divide 60")
}

func TestNextTick_AlreadyAligned(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 30, 0, time.Local)
	got := NextTick(now, 15*time.Second)
	assert.Equal(t, now, got)
}

func TestNextTick_RoundsUp(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 31, 0, time.Local)
	got := NextTick(now, 15*time.Second)
	want := time.Date(2026, 1, 1, 10, 0, 45, 0, time.Local)
	assert.Equal(t, want, got)
}
