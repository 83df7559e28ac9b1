// Package placement computes insertion intervals on a timeline.
//
// A timeline of length N has N+1 intervals, indexed 0..N: interval i sits
// before the i-th entry. All functions assume the timeline is sorted
// ascending, which the rest of the system guarantees.
package placement

// CorrectInterval returns the index a card for year would occupy if inserted
// to keep the timeline sorted: every entry before it is strictly less than
// year, every entry from it onward is >= year. A tie with an existing equal
// year lands before that entry.
func CorrectInterval(year int, timeline []int) int {
	i := 0
	for i < len(timeline) && timeline[i] < year {
		i++
	}
	return i
}

// ValidIntervals returns every interval that counts as a correct placement
// for year. When year already occurs in the timeline there is no objective
// order between two movies released the same year, so both the slot before
// and the slot after that occurrence are correct. Otherwise there is exactly
// one correct slot.
//
// Scoring must always judge against this, never against CorrectInterval
// alone, or duplicate years would unfairly penalize one of the two fair
// placements.
func ValidIntervals(year int, timeline []int) []int {
	i := CorrectInterval(year, timeline)
	if i < len(timeline) && timeline[i] == year {
		return []int{i, i + 1}
	}
	return []int{i}
}

// Contains reports whether interval is one of the intervals in valid.
func Contains(valid []int, interval int) bool {
	for _, v := range valid {
		if v == interval {
			return true
		}
	}
	return false
}

// Insert returns a new timeline with year inserted at its correct interval.
// The input slice is not modified.
func Insert(year int, timeline []int) []int {
	i := CorrectInterval(year, timeline)
	out := make([]int, 0, len(timeline)+1)
	out = append(out, timeline[:i]...)
	out = append(out, year)
	out = append(out, timeline[i:]...)
	return out
}
