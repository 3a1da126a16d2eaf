package service

import (
	"testing"
	"time"

	"github.com/fortuna/vesta/internal/store"
)

func TestCurrentSeason(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"january is the prior year's season", time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), 2024},
		{"september is still the prior season", time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC), 2024},
		{"october starts the new season", time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), 2025},
		{"december stays in the same season", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), 2025},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentSeason(tt.now); got != tt.want {
				t.Errorf("CurrentSeason = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSeasonRange(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC) // season 2024

	intp := func(v int) *int { return &v }

	tests := []struct {
		name      string
		draftYear *int
		want      []int
	}{
		{"no draft year uses the floor", nil, []int{2015, 2016, 2017, 2018, 2019, 2020, 2021, 2022, 2023, 2024}},
		{"draft year before the floor is clamped", intp(2003), []int{2015, 2016, 2017, 2018, 2019, 2020, 2021, 2022, 2023, 2024}},
		{"recent draft year narrows the range", intp(2022), []int{2022, 2023, 2024}},
		{"rookie gets a single season", intp(2024), []int{2024}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seasonRange(tt.draftYear, now)
			if len(got) != len(tt.want) {
				t.Fatalf("seasonRange = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("seasonRange = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMissingSeasonsStoredRowsWin(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC) // season 2024
	draftYear := 2022

	// The sync job writes a single current-team summary row; that row
	// covers its season and blocks a per-team recompute.
	stored := []*store.PlayerSeasonStat{
		{PlayerID: 101, Season: 2024, TeamID: 7, GamesPlayed: 20},
		{PlayerID: 101, Season: 2022, TeamID: 3, GamesPlayed: 60},
	}

	missing := missingSeasons(stored, &draftYear, now)

	if len(missing) != 1 || missing[0] != 2023 {
		t.Errorf("missing = %v, want [2023]", missing)
	}
}

func TestMissingSeasonsEmptyStore(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	draftYear := 2023

	missing := missingSeasons(nil, &draftYear, now)

	if len(missing) != 2 || missing[0] != 2023 || missing[1] != 2024 {
		t.Errorf("missing = %v, want [2023 2024]", missing)
	}
}
