package service

import "time"

// seasonFloor is the earliest season the stats provider covers reliably.
const seasonFloor = 2015

// CurrentSeason returns the NBA season in progress at now. Seasons start
// in October, so before October the current season is the prior year.
func CurrentSeason(now time.Time) int {
	if now.Month() < time.October {
		return now.Year() - 1
	}
	return now.Year()
}

// seasonRange lists the seasons a player may have stat lines for, from
// their draft year (clamped at the provider's floor) through the current
// season. With no draft year on record the floor is used.
func seasonRange(draftYear *int, now time.Time) []int {
	start := seasonFloor
	if draftYear != nil && *draftYear > seasonFloor {
		start = *draftYear
	}

	current := CurrentSeason(now)
	var seasons []int
	for year := start; year <= current; year++ {
		seasons = append(seasons, year)
	}
	return seasons
}
