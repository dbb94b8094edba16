package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlotOverlaps(t *testing.T) {
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := &AvailabilitySlot{
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
	}

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		overlap bool
	}{
		{"identical window", day.Add(10 * time.Hour), day.Add(11 * time.Hour), true},
		{"partial intersection", day.Add(10*time.Hour + 30*time.Minute), day.Add(11*time.Hour + 30*time.Minute), true},
		{"contained window", day.Add(10*time.Hour + 15*time.Minute), day.Add(10*time.Hour + 45*time.Minute), true},
		{"containing window", day.Add(9 * time.Hour), day.Add(12 * time.Hour), true},
		{"touching after", day.Add(11 * time.Hour), day.Add(12 * time.Hour), false},
		{"touching before", day.Add(9 * time.Hour), day.Add(10 * time.Hour), false},
		{"disjoint", day.Add(13 * time.Hour), day.Add(14 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlap, slot.Overlaps(tt.start, tt.end))
		})
	}
}
