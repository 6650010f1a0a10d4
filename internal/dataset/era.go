package dataset

// Era is a named historical sub-period with distinct data-collection
// conventions. Intervals are closed and must not overlap.
type Era struct {
	Code      int
	Label     string
	StartYear int
	EndYear   int
}

// Contains reports whether year falls inside the era's closed interval.
func (e Era) Contains(year int) bool {
	return year >= e.StartYear && year <= e.EndYear
}

// EraTable classifies years into eras. Records outside every interval
// are unclassified and must be excluded from era-conditioned aggregates,
// never coerced into a default bucket.
type EraTable []Era

// DefaultEras covers the study period 1863-2024.
var DefaultEras = EraTable{
	{Code: 1, Label: "NB Era", StartYear: 1863, EndYear: 1913},
	{Code: 2, Label: "Early Fed", StartYear: 1914, EndYear: 1928},
	{Code: 3, Label: "Depression", StartYear: 1929, EndYear: 1934},
	{Code: 4, Label: "Deposit Insurance", StartYear: 1935, EndYear: 1979},
	{Code: 5, Label: "S&L Crisis", StartYear: 1980, EndYear: 1994},
	{Code: 6, Label: "Modern", StartYear: 1995, EndYear: 2024},
}

// Classify returns the era containing year. The second return value is
// false when the year is outside every interval.
func (t EraTable) Classify(year int) (Era, bool) {
	for _, e := range t {
		if e.Contains(year) {
			return e, true
		}
	}
	return Era{}, false
}

// Validate reports whether the table's intervals are non-overlapping.
func (t EraTable) Validate() bool {
	for i, a := range t {
		if a.StartYear > a.EndYear {
			return false
		}
		for _, b := range t[i+1:] {
			if a.StartYear <= b.EndYear && b.StartYear <= a.EndYear {
				return false
			}
		}
	}
	return true
}
