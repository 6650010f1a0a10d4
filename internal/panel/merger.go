// Package panel builds the merged bank-failure panel: call-report
// streams joined with receivership events under last-observation-
// before-event semantics, one output row per (bank, failure event).
package panel

import (
	"log/slog"
	"sort"
	"time"

	"fbpanel/internal/dataset"
	"fbpanel/internal/derive"
)

// Lag spans for the trailing asset-growth measures, in call-report
// periods: short is t versus t-3, long is t-3 versus t-10.
const (
	shortGrowthLag = 3
	longGrowthLag  = 10
)

// Observation is one call-report record annotated with the failure
// information known for it at merge time. Vintage distinguishes
// duplicate timestamps across data releases; the highest vintage wins.
type Observation struct {
	Record  dataset.BankRecord
	Vintage int

	// LastBeforeEvent flags the record as the last observation filed
	// before a failure-resolution event.
	LastBeforeEvent bool

	// ResolutionDate is zero when the source date was malformed; such
	// records are non-joinable on date and continue the current event.
	ResolutionDate time.Time
	EndCause       dataset.EndCause
	Dividends      float64
}

// Merger builds the failure panel from raw observation streams.
type Merger struct {
	logger *slog.Logger
}

// NewMerger creates a merger. A nil logger falls back to slog.Default.
func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger}
}

// Merge produces one panel row per (bank, failure event), left-joining
// the receivership ledger onto the qualifying records. A bank with zero
// qualifying records contributes no rows; a row with no ledger match
// keeps missing asset-quality fields, never zero. Growth quintiles are
// bucketed within each calendar year across banks, never within-bank.
func (m *Merger) Merge(observations []Observation, receiverships []dataset.ReceivershipRecord) []dataset.PanelRow {
	banks := m.groupByBank(observations)

	ledger := make(map[string][]dataset.ReceivershipRecord)
	for _, r := range receiverships {
		ledger[r.BankID] = append(ledger[r.BankID], r)
	}

	// Trailing growth per bank, then year-cross-section quintiles over
	// the pooled observations.
	type obsGrowth struct {
		obs         *Observation
		short, long float64
	}
	var pooled []obsGrowth
	for _, obs := range banks {
		short, long := trailingGrowth(obs)
		for i := range obs {
			pooled = append(pooled, obsGrowth{obs: &obs[i], short: short[i], long: long[i]})
		}
	}

	shortVals := make([]float64, len(pooled))
	longVals := make([]float64, len(pooled))
	years := make([]int, len(pooled))
	for i, p := range pooled {
		shortVals[i] = p.short
		longVals[i] = p.long
		years[i] = p.obs.Record.Year
	}
	shortBuckets := derive.QuintilesBy(shortVals, years)
	longBuckets := derive.QuintilesBy(longVals, years)

	growthFor := make(map[*Observation]obsGrowth, len(pooled))
	bucketShort := make(map[*Observation]int, len(pooled))
	bucketLong := make(map[*Observation]int, len(pooled))
	for i, p := range pooled {
		growthFor[p.obs] = p
		bucketShort[p.obs] = shortBuckets[i]
		bucketLong[p.obs] = longBuckets[i]
	}

	var rows []dataset.PanelRow
	bankIDs := make([]string, 0, len(banks))
	for id := range banks {
		bankIDs = append(bankIDs, id)
	}
	sort.Strings(bankIDs)

	for _, id := range bankIDs {
		obs := banks[id]

		// Restrict to last-observation-before-event records, then split
		// the stream into failure events and keep the temporally last
		// record of each.
		var qualifying []*Observation
		for i := range obs {
			if obs[i].LastBeforeEvent {
				qualifying = append(qualifying, &obs[i])
			}
		}
		if len(qualifying) == 0 {
			continue
		}

		for _, group := range splitEvents(qualifying) {
			last := group.records[len(group.records)-1]
			row := m.buildRow(last, group.index, matchReceivership(ledger[id], last.ResolutionDate))
			row.AssetGrowthShort = growthFor[last].short
			row.AssetGrowthLong = growthFor[last].long
			row.GrowthQuintileShort = bucketShort[last]
			row.GrowthQuintileLong = bucketLong[last]
			rows = append(rows, row)
		}
	}

	m.logger.Info("merged failure panel",
		slog.Int("banks", len(banks)),
		slog.Int("rows", len(rows)))
	return rows
}

// groupByBank sorts each bank's stream by time key and resolves
// duplicate timestamps by keeping the highest vintage.
func (m *Merger) groupByBank(observations []Observation) map[string][]Observation {
	banks := make(map[string][]Observation)
	for _, o := range observations {
		banks[o.Record.BankID] = append(banks[o.Record.BankID], o)
	}

	for id, obs := range banks {
		sort.SliceStable(obs, func(i, j int) bool {
			pi, pj := obs[i].Record.PeriodIndex(), obs[j].Record.PeriodIndex()
			if pi != pj {
				return pi < pj
			}
			return obs[i].Vintage < obs[j].Vintage
		})

		deduped := obs[:0]
		for i := range obs {
			if i+1 < len(obs) && obs[i+1].Record.PeriodIndex() == obs[i].Record.PeriodIndex() {
				continue
			}
			deduped = append(deduped, obs[i])
		}
		banks[id] = deduped
	}
	return banks
}

// trailingGrowth computes the two asset-growth measures over one bank's
// time-sorted stream.
func trailingGrowth(obs []Observation) (short, long []float64) {
	assets := make([]float64, len(obs))
	for i := range obs {
		assets[i] = obs[i].Record.Assets
	}
	short = derive.Growth(assets, shortGrowthLag)
	long = derive.Lag(derive.Growth(assets, longGrowthLag-shortGrowthLag), shortGrowthLag)
	return short, long
}

type eventGroup struct {
	index   int
	records []*Observation
}

// splitEvents assigns a monotonically increasing event index per bank.
// A new event begins when the resolution date changes and the cause is
// terminal; a record with no parseable date continues the current
// event.
func splitEvents(records []*Observation) []eventGroup {
	var groups []eventGroup
	var prevDate time.Time

	for _, rec := range records {
		newEvent := len(groups) == 0
		if !newEvent && !rec.ResolutionDate.IsZero() && rec.EndCause.Terminal() &&
			!prevDate.IsZero() && !rec.ResolutionDate.Equal(prevDate) {
			newEvent = true
		}
		if newEvent {
			groups = append(groups, eventGroup{index: len(groups) + 1})
		}
		g := &groups[len(groups)-1]
		g.records = append(g.records, rec)
		if !rec.ResolutionDate.IsZero() {
			prevDate = rec.ResolutionDate
		}
	}
	return groups
}

// matchReceivership finds the ledger record for one qualifying
// observation: an exact date match when both sides carry one, otherwise
// the bank's only ledger record. Ambiguous or absent matches return nil
// and the panel row keeps missing asset-quality fields.
func matchReceivership(recs []dataset.ReceivershipRecord, date time.Time) *dataset.ReceivershipRecord {
	if !date.IsZero() {
		for i := range recs {
			if recs[i].ReceivershipDate.Equal(date) {
				return &recs[i]
			}
		}
	}
	if len(recs) == 1 {
		return &recs[0]
	}
	return nil
}

func (m *Merger) buildRow(o *Observation, eventIndex int, ledger *dataset.ReceivershipRecord) dataset.PanelRow {
	dividends := o.Dividends
	good := dataset.Missing()
	doubtful := dataset.Missing()
	worthless := dataset.Missing()
	additional := dataset.Missing()
	collected := dataset.Missing()
	if ledger != nil {
		if dataset.IsMissing(dividends) {
			dividends = ledger.Dividends
		}
		good = ledger.GoodAssets
		doubtful = ledger.DoubtfulAssets
		worthless = ledger.WorthlessAssets
		additional = ledger.AdditionalAssets
		collected = ledger.CollectedFromAssets
	}

	rec := dataset.ReceivershipRecord{
		BankID:           o.Record.BankID,
		ReceivershipDate: o.ResolutionDate,
		EndCause:         o.EndCause,
		Dividends:        dividends,
	}

	failed := dataset.Missing()
	switch o.EndCause {
	case dataset.CauseReceivership:
		failed = 1
	case dataset.CauseVoluntaryLiquidation, dataset.CauseOther:
		failed = 0
	}

	return dataset.PanelRow{
		BankRecord:          o.Record,
		EventIndex:          eventIndex,
		ReceivershipDate:    o.ResolutionDate,
		EndCause:            o.EndCause,
		Dividends:           dataset.ClampDividends(dividends),
		RecoveryRate:        rec.RecoveryRate(),
		FullRecovery:        rec.FullRecovery(),
		GoodAssets:          good,
		DoubtfulAssets:      doubtful,
		WorthlessAssets:     worthless,
		AdditionalAssets:    additional,
		CollectedFromAssets: collected,
		Failed:              failed,
	}
}
