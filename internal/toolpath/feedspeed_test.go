package toolpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFeedSpeed_FaceMill88(t *testing.T) {
	fs, err := CalculateFeedSpeed(88, 4, 120, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 434, fs.SpindleSpeed)
	assert.Equal(t, 347, fs.FeedRate)
}

func TestCalculateFeedSpeed_OtherConstants(t *testing.T) {
	// 100 m/min, 0.15 mm: 100000/(pi*50) = 636.6 -> 637; 637*0.15*2 = 191.1 -> 191
	fs, err := CalculateFeedSpeed(50, 2, 100, 0.15)
	require.NoError(t, err)
	assert.Equal(t, 637, fs.SpindleSpeed)
	assert.Equal(t, 191, fs.FeedRate)
}

func TestCalculateFeedSpeed_PositiveAndMonotonic(t *testing.T) {
	prev := int(^uint(0) >> 1)
	for d := 1.0; d <= 200; d += 0.5 {
		for n := 1; n <= 24; n++ {
			fs, err := CalculateFeedSpeed(d, n, 120, 0.2)
			require.NoError(t, err)
			assert.Greater(t, fs.SpindleSpeed, 0)
			assert.Greater(t, fs.FeedRate, 0)
		}
		fs, _ := CalculateFeedSpeed(d, 1, 120, 0.2)
		assert.LessOrEqual(t, fs.SpindleSpeed, prev, "spindle speed must not rise with diameter (d=%g)", d)
		prev = fs.SpindleSpeed
	}

	small, _ := CalculateFeedSpeed(10, 4, 120, 0.2)
	large, _ := CalculateFeedSpeed(100, 4, 120, 0.2)
	assert.Greater(t, small.SpindleSpeed, large.SpindleSpeed)
}

func TestCalculateFeedSpeed_Degenerate(t *testing.T) {
	cases := []struct {
		name     string
		diameter float64
		inserts  int
		speed    float64
		chip     float64
	}{
		{"zero diameter", 0, 4, 120, 0.2},
		{"negative diameter", -5, 4, 120, 0.2},
		{"no inserts", 10, 0, 120, 0.2},
		{"zero surface speed", 10, 4, 0, 0.2},
		{"zero chip", 10, 4, 120, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CalculateFeedSpeed(tc.diameter, tc.inserts, tc.speed, tc.chip)
			assert.ErrorIs(t, err, ErrDegenerate)
		})
	}
}
