package models

// Requests for context and gateway HTTP endpoints. Defined in domain for consistency and reuse.

type FeatureRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,min=1,max=12"`
}

type RunRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,min=1,max=12"`
}

// OneLinerRequest carries a classification plus up to RefSlots citation slots.
// The class_ key matches the field name used by the recommendation scorer.
type OneLinerRequest struct {
	Class      string      `json:"class_" default:"NO_ACTION"`
	Confidence float64     `json:"confidence" validate:"gte=0,lte=1"`
	Title      string      `json:"title"`
	Publisher  string      `json:"publisher"`
	URL        string      `json:"url"`
	Refs       []*Headline `json:"refs"`
}
