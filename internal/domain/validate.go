package domain

import "fmt"

// SnapshotSummary describes a persisted station list.
type SnapshotSummary struct {
	Total    int
	ByCity   map[City]int
	Problems []string
}

// CheckSnapshot verifies the output invariants of a station list: non-empty
// unique IDs, known cities, non-negative counts, and coordinates that are
// either in range or the 0 default.
func CheckSnapshot(stations []Station) SnapshotSummary {
	sum := SnapshotSummary{
		Total:  len(stations),
		ByCity: make(map[City]int),
	}
	seen := make(map[string]int, len(stations))

	for i, st := range stations {
		sum.ByCity[st.City]++

		if st.ID == "" {
			sum.Problems = append(sum.Problems, fmt.Sprintf("row %d: empty sno", i))
		} else if first, dup := seen[st.ID]; dup {
			sum.Problems = append(sum.Problems, fmt.Sprintf("row %d: duplicate sno %s (first at row %d)", i, st.ID, first))
		} else {
			seen[st.ID] = i
		}
		if !st.City.Valid() {
			sum.Problems = append(sum.Problems, fmt.Sprintf("row %d: sno %s has unknown city %q", i, st.ID, st.City))
		}
		if st.Bikes < 0 || st.Docks < 0 {
			sum.Problems = append(sum.Problems, fmt.Sprintf("row %d: sno %s has negative counts sbi=%d bemp=%d", i, st.ID, st.Bikes, st.Docks))
		}
		if st.Lat < -90 || st.Lat > 90 || st.Lng < -180 || st.Lng > 180 {
			sum.Problems = append(sum.Problems, fmt.Sprintf("row %d: sno %s has out-of-range coordinates %g,%g", i, st.ID, st.Lat, st.Lng))
		}
	}
	return sum
}
