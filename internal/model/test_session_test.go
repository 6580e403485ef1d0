package model

import "testing"

func TestApplyScorePercentage(t *testing.T) {
	cases := []struct {
		name  string
		total int
		max   int
		want  float64
	}{
		{"half", 5, 10, 50.00},
		{"third rounds half-up", 1, 3, 33.33},
		{"two thirds rounds half-up", 2, 3, 66.67},
		{"exact half-cent rounds up", 1, 8, 12.5},
		{"perfect", 7, 7, 100.00},
		{"zero max", 3, 0, 0},
		{"zero total", 0, 12, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := TestSession{}
			s.ApplyScore(tc.total, tc.max)
			if s.Percentage != tc.want {
				t.Errorf("ApplyScore(%d, %d): percentage = %v, want %v", tc.total, tc.max, s.Percentage, tc.want)
			}
			if s.ScoreTotal != tc.total || s.ScoreMax != tc.max {
				t.Errorf("scores not applied: got (%d, %d)", s.ScoreTotal, s.ScoreMax)
			}
		})
	}
}

func TestSlotEndTimeDerived(t *testing.T) {
	slot := TimeSlot{StartTime: "09:00", DurationMinutes: 60}
	if got := slot.EndTime(); got != "10:00" {
		t.Errorf("EndTime() = %q, want %q", got, "10:00")
	}

	slot = TimeSlot{StartTime: "23:30", DurationMinutes: 45}
	if got := slot.EndTime(); got != "00:15" {
		t.Errorf("EndTime() = %q, want %q", got, "00:15")
	}
}
