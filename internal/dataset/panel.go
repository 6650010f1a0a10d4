package dataset

import "time"

// PanelRow is one row of the merged bank-failure panel: the last call
// report preceding one failure event, joined with that event's
// receivership outcome. A bank with multiple failure events appears
// once per event, distinguished by EventIndex.
type PanelRow struct {
	BankRecord

	// EventIndex is 1-based and monotonically increasing per bank.
	EventIndex int

	ReceivershipDate time.Time
	EndCause         EndCause
	Dividends        float64
	RecoveryRate     float64
	FullRecovery     bool

	GoodAssets          float64
	DoubtfulAssets      float64
	WorthlessAssets     float64
	AdditionalAssets    float64
	CollectedFromAssets float64

	// Trailing growth measures: assets at t over t-3, and t-3 over t-10,
	// in call-report periods within the bank's own stream.
	AssetGrowthShort float64
	AssetGrowthLong  float64

	// Within-year quintile buckets of the growth measures, 1-5.
	// 0 means the underlying growth value was missing (no bucket).
	GrowthQuintileShort int
	GrowthQuintileLong  int

	// Failed is 1 when the row's event ended in receivership, 0 for the
	// other terminal causes, missing when the cause is unknown.
	Failed float64
}

// EraCode returns the row's era code from the given table, or 0 when
// the row falls outside every era interval.
func (r PanelRow) EraCode(eras EraTable) int {
	era, ok := eras.Classify(r.Year)
	if !ok {
		return 0
	}
	return era.Code
}
