package dispatcher

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	start := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		max      uint32
		offsets  []time.Duration
		expected []bool
	}{
		{
			"UnderLimit",
			3,
			[]time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond},
			[]bool{true, true, true},
		},
		{
			"OverLimit",
			2,
			[]time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond},
			[]bool{true, true, false},
		},
		{
			"NewWindow",
			1,
			[]time.Duration{0, 500 * time.Millisecond, time.Second},
			[]bool{true, false, true},
		},
		{
			"Disabled",
			0,
			[]time.Duration{0, 0, 0, 0},
			[]bool{true, true, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRateLimiter(tt.max)
			for i, offset := range tt.offsets {
				allowed := r.Allow(start.Add(offset))
				if allowed != tt.expected[i] {
					t.Errorf("event %d: expected=%v, got=%v", i, tt.expected[i], allowed)
				}
			}
		})
	}
}

func TestRateLimiterRate(t *testing.T) {
	start := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(10)

	for i := range 4 {
		r.Allow(start.Add(time.Duration(i) * time.Millisecond))
	}
	if r.Count() != 4 {
		t.Errorf("expected Count=4, got=%d", r.Count())
	}

	r.Allow(start.Add(time.Second))
	if r.Rate() != 4 || r.Count() != 1 {
		t.Errorf("expected Rate=4 Count=1, got Rate=%d Count=%d", r.Rate(), r.Count())
	}
}
