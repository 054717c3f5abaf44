package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{"0 9 * * *", false},
		{"*/15 * * * *", false},
		{"@daily", false},
		{"", true},
		{"0 9 * *", true},
		{"61 9 * * *", true},
		{"0 0 9 * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("Asia/Kolkata"))
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.Error(t, ValidateTimezone(""))
	assert.Error(t, ValidateTimezone("Mars/Olympus_Mons"))
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(5, 1, 10))
	assert.NoError(t, ValidateIntRange(1, 1, 10))
	assert.Error(t, ValidateIntRange(0, 1, 10))
	assert.Error(t, ValidateIntRange(11, 1, 10))
	assert.Error(t, ValidateIntRange(5, 10, 1))
}
