package placement

import (
	"sort"
	"testing"
)

func TestCorrectInterval(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		timeline []int
		want     int
	}{
		{"empty timeline", 1990, nil, 0},
		{"before all", 1970, []int{1980, 1999}, 0},
		{"between", 1990, []int{1980, 1999}, 1},
		{"after all", 2005, []int{1980, 1999}, 2},
		{"tie lands before equal entry", 1999, []int{1980, 1999}, 1},
		{"tie with run of duplicates", 1995, []int{1990, 1995, 1995, 2001}, 1},
		{"single entry equal", 1988, []int{1988}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CorrectInterval(tt.year, tt.timeline); got != tt.want {
				t.Errorf("CorrectInterval(%d, %v) = %d, want %d", tt.year, tt.timeline, got, tt.want)
			}
		})
	}
}

func TestValidIntervals(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		timeline []int
		want     []int
	}{
		{"absent year yields single slot", 1990, []int{1980, 1999}, []int{1}},
		{"absent year empty timeline", 1990, nil, []int{0}},
		{"duplicate year yields both neighbors", 1995, []int{1990, 1995}, []int{1, 2}},
		{"duplicate at head", 1990, []int{1990, 1995}, []int{0, 1}},
		{"duplicate pair", 1995, []int{1995, 1995}, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidIntervals(tt.year, tt.timeline)
			if len(got) != len(tt.want) {
				t.Fatalf("ValidIntervals(%d, %v) = %v, want %v", tt.year, tt.timeline, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ValidIntervals(%d, %v) = %v, want %v", tt.year, tt.timeline, got, tt.want)
					break
				}
			}
		})
	}
}

// For years not present, ValidIntervals must agree with CorrectInterval.
func TestValidIntervalsAbsentYearMatchesCorrectInterval(t *testing.T) {
	timeline := []int{1972, 1985, 1994, 2008}
	for year := 1960; year <= 2020; year++ {
		present := false
		for _, y := range timeline {
			if y == year {
				present = true
			}
		}
		if present {
			continue
		}
		got := ValidIntervals(year, timeline)
		if len(got) != 1 || got[0] != CorrectInterval(year, timeline) {
			t.Errorf("year %d: ValidIntervals = %v, CorrectInterval = %d", year, got, CorrectInterval(year, timeline))
		}
	}
}

func TestInsertKeepsSorted(t *testing.T) {
	timeline := []int{1980, 1990, 1990, 2003}
	for year := 1975; year <= 2010; year += 5 {
		out := Insert(year, timeline)
		if !sort.IntsAreSorted(out) {
			t.Errorf("Insert(%d, %v) = %v, not sorted", year, timeline, out)
		}
		if len(out) != len(timeline)+1 {
			t.Errorf("Insert(%d, %v) length = %d, want %d", year, timeline, len(out), len(timeline)+1)
		}
	}
	// input untouched
	if timeline[0] != 1980 || len(timeline) != 4 {
		t.Errorf("input timeline mutated: %v", timeline)
	}
}

// Inserting at the returned interval and re-deriving the interval for the
// same year again must keep the timeline sorted.
func TestInsertionIdempotence(t *testing.T) {
	timeline := []int{1985, 1995}
	year := 1995

	once := Insert(year, timeline)
	twice := Insert(year, once)
	if !sort.IntsAreSorted(twice) {
		t.Errorf("repeated insertion broke ordering: %v", twice)
	}
}
