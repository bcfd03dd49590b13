package trust

import (
	"testing"
)

func TestClampPage(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		skip      int
		wantLimit int
		wantSkip  int
	}{
		{name: "zero limit defaults", limit: 0, skip: 0, wantLimit: defaultPageSize, wantSkip: 0},
		{name: "negative limit defaults", limit: -5, skip: 0, wantLimit: defaultPageSize, wantSkip: 0},
		{name: "limit within range passes", limit: 25, skip: 10, wantLimit: 25, wantSkip: 10},
		{name: "limit capped at max", limit: 500, skip: 0, wantLimit: maxPageSize, wantSkip: 0},
		{name: "negative skip floored", limit: 10, skip: -3, wantLimit: 10, wantSkip: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, skip := clampPage(tt.limit, tt.skip)
			if limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", limit, tt.wantLimit)
			}
			if skip != tt.wantSkip {
				t.Errorf("skip = %d, want %d", skip, tt.wantSkip)
			}
		})
	}
}

func TestLevelThresholdsOrder(t *testing.T) {
	thresholds := LevelThresholds()
	if len(thresholds) != 5 {
		t.Fatalf("expected 5 thresholds, got %d", len(thresholds))
	}
	for i, th := range thresholds {
		if int(th.Level) != i {
			t.Errorf("threshold %d has level %d", i, th.Level)
		}
		if i > 0 && th.MinScore <= thresholds[i-1].MinScore {
			t.Errorf("thresholds not strictly ascending at %d", i)
		}
	}
}
