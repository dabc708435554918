package domain

import (
	"testing"
	"time"
)

func TestLatencyMillis(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want float64
	}{
		{in: 0, want: 0},
		{in: 1500 * time.Microsecond, want: 1.5},
		{in: 1234567 * time.Nanosecond, want: 1.234},
		{in: 2 * time.Second, want: 2000},
	}
	for _, tt := range tests {
		if got := LatencyMillis(tt.in); got != tt.want {
			t.Fatalf("LatencyMillis(%v)=%v, want %v", tt.in, got, tt.want)
		}
	}
}
