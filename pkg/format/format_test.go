package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		in       int64
		expected string
	}{
		{0, "0.00B"},
		{512, "512.00B"},
		{1536, "1.50KB"},
		{1048576, "1.00MB"},
		{5 * 1024 * 1024 * 1024, "5.00GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3.00TB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Bytes(tt.in))
	}
}

func TestMegaBytes(t *testing.T) {
	assert.Equal(t, 1.0, MegaBytes(1048576))
	assert.Equal(t, 1.5, MegaBytes(1572864))
	assert.Equal(t, 0.0, MegaBytes(0))
	// Rounded to two decimals.
	assert.Equal(t, 0.01, MegaBytes(10486))
}

func TestClock(t *testing.T) {
	assert.Equal(t, "00:00:00", Clock(0))
	assert.Equal(t, "00:02:05", Clock(125*time.Second))
	assert.Equal(t, "01:01:05", Clock(3665*time.Second))
	assert.Equal(t, "27:46:40", Clock(100000*time.Second))
	assert.Equal(t, "00:00:00", Clock(-5*time.Second))
}

func TestSpeed(t *testing.T) {
	assert.Equal(t, "2.00MB/s", Speed(2*1024*1024))
	assert.Equal(t, "0.00MB/s", Speed(0))
}
