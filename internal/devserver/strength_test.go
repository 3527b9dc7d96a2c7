package devserver

import (
	"testing"

	"github.com/interview-prep/studyclient/internal/models"
)

func intPtr(v int) *int { return &v }

func TestKFactor(t *testing.T) {
	tests := []struct {
		scored int
		want   float64
	}{
		{0, 0.6},
		{2, 0.6},
		{3, 0.4},
		{9, 0.4},
		{10, 0.25},
		{50, 0.25},
	}
	for _, tt := range tests {
		if got := kFactor(tt.scored); got != tt.want {
			t.Errorf("kFactor(%d) = %f, want %f", tt.scored, got, tt.want)
		}
	}
}

func TestNextStrength(t *testing.T) {
	tests := []struct {
		name    string
		current *int
		avg     float64
		scored  int
		want    int
	}{
		{"first session sets rating", nil, 6.6, 0, 7},
		{"early session moves fast", intPtr(4), 9, 1, 7},
		{"mature topic moves slowly", intPtr(4), 9, 20, 5},
		{"drop is symmetric", intPtr(8), 3, 1, 5},
		{"clamped high", nil, 12, 0, 10},
		{"clamped low", intPtr(0), -4, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextStrength(tt.current, tt.avg, tt.scored); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestTargetDifficulty(t *testing.T) {
	tests := []struct {
		strength *int
		want     models.Difficulty
	}{
		{nil, models.DifficultyMedium},
		{intPtr(0), models.DifficultyEasy},
		{intPtr(3), models.DifficultyEasy},
		{intPtr(4), models.DifficultyMedium},
		{intPtr(6), models.DifficultyMedium},
		{intPtr(7), models.DifficultyHard},
		{intPtr(10), models.DifficultyHard},
	}
	for _, tt := range tests {
		if got := targetDifficulty(tt.strength); got != tt.want {
			t.Errorf("targetDifficulty(%v): expected %s, got %s", tt.strength, tt.want, got)
		}
	}
}
