package dataset

import "time"

// PanelKind distinguishes the two sub-panels. The historical (national
// bank era) and modern (FDIC era) sub-panels use different identifier
// and periodicity conventions and must not be silently mixed.
type PanelKind int

const (
	PanelHistorical PanelKind = iota + 1
	PanelModern
)

func (k PanelKind) String() string {
	switch k {
	case PanelHistorical:
		return "historical"
	case PanelModern:
		return "modern"
	default:
		return "unknown"
	}
}

// BankRecord is one call-report snapshot. Quarter is 0 for annual
// filings (the historical sub-panel) and 1-4 for quarterly filings.
// All balance-sheet fields use the missing sentinel when not reported.
type BankRecord struct {
	BankID  string
	Year    int
	Quarter int
	Kind    PanelKind

	Assets      float64
	Loans       float64
	Deposits    float64
	Equity      float64
	Surplus     float64
	Circulation float64
	Cash        float64
	Bonds       float64
}

// PeriodIndex returns a sortable integer time key: years for annual
// records, year*4+quarter-1 for quarterly ones.
func (r BankRecord) PeriodIndex() int {
	if r.Quarter == 0 {
		return r.Year * 4
	}
	return r.Year*4 + r.Quarter - 1
}

// SolvencyRatio is assets over deposits, missing when either operand is
// missing or deposits are zero.
func (r BankRecord) SolvencyRatio() float64 {
	if IsMissing(r.Assets) || IsMissing(r.Deposits) || r.Deposits == 0 {
		return Missing()
	}
	return r.Assets / r.Deposits
}

// EndCause classifies how a closed bank's charter ended.
type EndCause int

const (
	CauseUnknown EndCause = iota
	CauseReceivership
	CauseVoluntaryLiquidation
	CauseOther
)

func (c EndCause) String() string {
	switch c {
	case CauseReceivership:
		return "receivership"
	case CauseVoluntaryLiquidation:
		return "voluntary_liquidation"
	case CauseOther:
		return "other"
	default:
		return "unknown"
	}
}

// Terminal reports whether the cause ends a failure-resolution event.
func (c EndCause) Terminal() bool {
	return c == CauseReceivership || c == CauseVoluntaryLiquidation || c == CauseOther
}

// ReceivershipRecord is one failure event and its resolution.
type ReceivershipRecord struct {
	BankID           string
	ReceivershipDate time.Time // zero when the source date failed to parse
	EndCause         EndCause

	// Dividends is the cumulative payout percentage. It is clamped to
	// [0,100] before any recovery-rate computation.
	Dividends float64

	GoodAssets          float64
	DoubtfulAssets      float64
	WorthlessAssets     float64
	AdditionalAssets    float64
	CollectedFromAssets float64
}

// FullRecoveryThreshold classifies near-complete payouts as full
// recoveries; source payouts above 99.9 reflect rounding in the
// original receivership ledgers.
const FullRecoveryThreshold = 99.9

// ClampDividends restricts a dividend percentage to [0,100]. Missing
// values pass through.
func ClampDividends(d float64) float64 {
	if IsMissing(d) {
		return d
	}
	if d < 0 {
		return 0
	}
	if d > 100 {
		return 100
	}
	return d
}

// RecoveryRate is the clamped dividend payout as a fraction of claims.
func (r ReceivershipRecord) RecoveryRate() float64 {
	d := ClampDividends(r.Dividends)
	if IsMissing(d) {
		return Missing()
	}
	return d / 100
}

// FullRecovery reports whether creditors were repaid in full.
func (r ReceivershipRecord) FullRecovery() bool {
	d := ClampDividends(r.Dividends)
	return !IsMissing(d) && d > FullRecoveryThreshold
}
