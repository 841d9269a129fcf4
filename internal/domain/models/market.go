package models

import "time"

// Candle is a single OHLCV bar, oldest-to-newest in provider responses.
type Candle struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// RawQuote is a provider quote before any fallback or spread synthesis.
// Fields may be zero when the upstream omits them.
type RawQuote struct {
	Last float64 `json:"last"`
	Bid  float64 `json:"bid"`
	Ask  float64 `json:"ask"`
}

// QuoteSample is one (timestamp, last price) observation in the quote ring.
type QuoteSample struct {
	TS    time.Time
	Price float64
}

// Tick is a streamed last-price update from a market stream.
type Tick struct {
	Ticker    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
