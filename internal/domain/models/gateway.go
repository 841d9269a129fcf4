package models

// ContextPayload is the gateway-side view of the context service response.
// Features and Quote stay untyped so scorer inputs pass through unchanged.
type ContextPayload struct {
	Ticker      string                 `json:"ticker"`
	Features    map[string]interface{} `json:"features"`
	TopHeadline *Headline              `json:"top_headline"`
	Refs        []*Headline            `json:"refs"`
	RefsSources []string               `json:"refs_sources"`
	Error       string                 `json:"error,omitempty"`
	Quote       map[string]interface{} `json:"quote"`
	TS          string                 `json:"ts"`
}

// Recommendation is the scorer response. Class and confidence are read out of
// it; any extra fields ride along untouched.
type Recommendation map[string]interface{}

// Class returns the classification label, defaulting when absent.
func (r Recommendation) Class() string {
	if v, ok := r["class"].(string); ok && v != "" {
		return v
	}
	return "NO_ACTION"
}

// Confidence returns the scorer confidence in [0, 1], zero when absent.
func (r Recommendation) Confidence() float64 {
	if v, ok := r["confidence"].(float64); ok {
		return v
	}
	return 0
}

// RefNumber maps a citation number to its URL for link rendering.
type RefNumber struct {
	N   int    `json:"n"`
	URL string `json:"url"`
}

// OneLiner is the composed explanation string plus its citation map.
type OneLiner struct {
	Text        string      `json:"text"`
	RefsNumbers []RefNumber `json:"refs_numbers,omitempty"`
}

// RunResponse is the composite gateway response for a single ticker.
type RunResponse struct {
	Ticker          string                 `json:"ticker"`
	Features        map[string]interface{} `json:"features"`
	Recommendation  Recommendation         `json:"recommendation"`
	OneLiner        *OneLiner              `json:"one_liner"`
	Quote           map[string]interface{} `json:"quote"`
	TopHeadline     *Headline              `json:"top_headline"`
	Refs            []*Headline            `json:"refs"`
	RefsSources     []string               `json:"refs_sources"`
	TSCtx           string                 `json:"ts_ctx"`
	TSGateway       string                 `json:"ts_gateway"`
	CacheAgeSeconds *int64                 `json:"cache_age_seconds"`
	FeaturesNote    string                 `json:"features_note,omitempty"`
}
