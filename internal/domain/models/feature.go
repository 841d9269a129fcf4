package models

// QuoteQuality tags how trustworthy the bid/ask pair is.
type QuoteQuality string

const (
	// QualityReal means both sides were observed upstream with ask > bid.
	QualityReal QuoteQuality = "real"
	// QualityEstimated means the spread was synthesized around the last price.
	QualityEstimated QuoteQuality = "estimated"
	// QualityUnknown means no usable pricing was available.
	QualityUnknown QuoteQuality = "unknown"
)

// Headline is a single news citation returned by a headline provider.
type Headline struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	URL       string `json:"url"`
	TS        string `json:"ts,omitempty"`
}

// Quote is the displayed quote for a ticker. Bid/Ask are pointers so a fully
// synthetic payload can carry nulls instead of misleading zeros.
type Quote struct {
	Last    float64      `json:"last"`
	Bid     *float64     `json:"bid"`
	Ask     *float64     `json:"ask"`
	Quality QuoteQuality `json:"quality"`
}

// FeatureSet holds the named signals consumed by the recommendation scorer.
type FeatureSet struct {
	SentMean      float64 `json:"sent_mean"`
	SentStd       float64 `json:"sent_std"`
	R1m           float64 `json:"r_1m"`
	R5m           float64 `json:"r_5m"`
	AboveSMA20    bool    `json:"above_sma20"`
	MinsSinceNews int     `json:"mins_since_news"`
	RV20          float64 `json:"rv20"`
	EarningsSoon  bool    `json:"earnings_soon"`
	LiquidityFlag bool    `json:"liquidity_flag"`
}

// RefSlots is the fixed number of citation slots carried by a payload.
// Padding to this length keeps citation numbering positionally stable.
const RefSlots = 3

// FeaturePayload is the per-ticker aggregation result.
//
// Refs always has exactly RefSlots entries; nil marks an empty slot.
// Error is a non-fatal diagnostic: a payload carrying one is degraded but
// still structurally valid and usable downstream.
type FeaturePayload struct {
	Ticker      string      `json:"ticker,omitempty"`
	Features    FeatureSet  `json:"features"`
	TopHeadline *Headline   `json:"top_headline"`
	Refs        []*Headline `json:"refs"`
	RefsSources []string    `json:"refs_sources"`
	Error       string      `json:"error,omitempty"`
	Quote       Quote       `json:"quote"`
	TS          string      `json:"ts"`
}

// PadRefs extends refs with nil slots up to RefSlots entries.
func PadRefs(refs []*Headline) []*Headline {
	for len(refs) < RefSlots {
		refs = append(refs, nil)
	}
	return refs
}
