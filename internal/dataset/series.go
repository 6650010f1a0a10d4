package dataset

import "sort"

// AnnualSeries holds one annual observation per year. Years with no
// observation are missing; Value returns the missing sentinel for them.
type AnnualSeries struct {
	values map[int]float64
}

// NewAnnualSeries creates an empty annual series.
func NewAnnualSeries() *AnnualSeries {
	return &AnnualSeries{values: make(map[int]float64)}
}

// Set records the observation for a year. Setting a missing value is
// equivalent to leaving the year unset.
func (s *AnnualSeries) Set(year int, value float64) {
	if IsMissing(value) {
		delete(s.values, year)
		return
	}
	s.values[year] = value
}

// Value returns the observation for a year, or missing if none exists.
func (s *AnnualSeries) Value(year int) float64 {
	if v, ok := s.values[year]; ok {
		return v
	}
	return Missing()
}

// Has reports whether the series has a non-missing observation for year.
func (s *AnnualSeries) Has(year int) bool {
	_, ok := s.values[year]
	return ok
}

// Len returns the number of non-missing observations.
func (s *AnnualSeries) Len() int {
	return len(s.values)
}

// Years returns the years with non-missing observations in ascending order.
func (s *AnnualSeries) Years() []int {
	years := make([]int, 0, len(s.values))
	for y := range s.values {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// FirstYear returns the earliest year with data, or 0 if the series is empty.
func (s *AnnualSeries) FirstYear() int {
	years := s.Years()
	if len(years) == 0 {
		return 0
	}
	return years[0]
}

// LastYear returns the latest year with data, or 0 if the series is empty.
func (s *AnnualSeries) LastYear() int {
	years := s.Years()
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}
