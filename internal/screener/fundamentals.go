package screener

// Fundamentals is one stock's fundamentals record as returned by the data
// providers. Nil fields mean the provider had no value; they contribute zero
// score and fail any filter that targets them.
type Fundamentals struct {
	Symbol string `json:"symbol"`
	Sector string `json:"sector,omitempty"`

	// Growth
	EPSGrowth         *float64 `json:"eps_growth,omitempty"`          // percent, year over year
	ForecastEPSGrowth *float64 `json:"forecast_eps_growth,omitempty"` // percent, next fiscal year
	RevenueGrowth     *float64 `json:"revenue_growth,omitempty"`      // percent, year over year
	ROE               *float64 `json:"roe,omitempty"`                 // percent

	// Value
	PER *float64 `json:"per,omitempty"`
	PBR *float64 `json:"pbr,omitempty"`
	PSR *float64 `json:"psr,omitempty"`

	// Financial health
	EquityRatio  *float64 `json:"equity_ratio,omitempty"` // percent
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	DebtToEquity *float64 `json:"debt_to_equity,omitempty"`

	// Dividend
	DividendYield *float64 `json:"dividend_yield,omitempty"` // percent
	PayoutRatio   *float64 `json:"payout_ratio,omitempty"`   // percent

	// Technical filter fields
	RSI            *float64 `json:"rsi,omitempty"`
	PriceVsSMA20   *float64 `json:"price_vs_sma20,omitempty"` // percent above/below
	VolumeRatio    *float64 `json:"volume_ratio,omitempty"`   // vs average volume
	MarketCap      *float64 `json:"market_cap,omitempty"`
	Week52Position *float64 `json:"week52_position,omitempty"` // 0..1 within 52w range
}

// Filters is the set of screener constraints. Nil filters are vacuously
// true; a non-nil filter whose stock field is nil fails (fail-closed on
// missing data).
type Filters struct {
	MinEPSGrowth     *float64 `json:"min_eps_growth,omitempty"`
	MinRevenueGrowth *float64 `json:"min_revenue_growth,omitempty"`
	MinROE           *float64 `json:"min_roe,omitempty"`
	MaxPER           *float64 `json:"max_per,omitempty"`
	MaxPBR           *float64 `json:"max_pbr,omitempty"`
	MinDividendYield *float64 `json:"min_dividend_yield,omitempty"`
	MaxPayoutRatio   *float64 `json:"max_payout_ratio,omitempty"`
	MinEquityRatio   *float64 `json:"min_equity_ratio,omitempty"`
	MaxDebtToEquity  *float64 `json:"max_debt_to_equity,omitempty"`
	MinMarketCap     *float64 `json:"min_market_cap,omitempty"`
	MaxRSI           *float64 `json:"max_rsi,omitempty"`
	RequireDividend  *bool    `json:"require_dividend,omitempty"`
	Sectors          []string `json:"sectors,omitempty"`
}

// Matches applies the filter conjunction to one fundamentals record.
func Matches(f Fundamentals, flt Filters) bool {
	if !minOK(f.EPSGrowth, flt.MinEPSGrowth) {
		return false
	}
	if !minOK(f.RevenueGrowth, flt.MinRevenueGrowth) {
		return false
	}
	if !minOK(f.ROE, flt.MinROE) {
		return false
	}
	if !maxOK(f.PER, flt.MaxPER) {
		return false
	}
	if !maxOK(f.PBR, flt.MaxPBR) {
		return false
	}
	if !minOK(f.DividendYield, flt.MinDividendYield) {
		return false
	}
	if !maxOK(f.PayoutRatio, flt.MaxPayoutRatio) {
		return false
	}
	if !minOK(f.EquityRatio, flt.MinEquityRatio) {
		return false
	}
	if !maxOK(f.DebtToEquity, flt.MaxDebtToEquity) {
		return false
	}
	if !minOK(f.MarketCap, flt.MinMarketCap) {
		return false
	}
	if !maxOK(f.RSI, flt.MaxRSI) {
		return false
	}
	if flt.RequireDividend != nil && *flt.RequireDividend {
		if f.DividendYield == nil || *f.DividendYield <= 0 {
			return false
		}
	}
	if len(flt.Sectors) > 0 {
		if f.Sector == "" {
			return false
		}
		found := false
		for _, s := range flt.Sectors {
			if s == f.Sector {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func minOK(field, min *float64) bool {
	if min == nil {
		return true
	}
	return field != nil && *field >= *min
}

func maxOK(field, max *float64) bool {
	if max == nil {
		return true
	}
	return field != nil && *field <= *max
}
