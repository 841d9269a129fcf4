package scoring

import (
	"context"

	domsvc "Midas/internal/domain/service"
	"Midas/pkg/config"
)

// maxSentimentTexts caps the batch sent to the scorer.
const maxSentimentTexts = 8

type HTTPSentimentScorer struct{ base *HTTPServiceBase }

func NewHTTPSentimentScorer(cfg *config.Config) *HTTPSentimentScorer {
	return &HTTPSentimentScorer{base: NewHTTPServiceBase(cfg.Sentiment.BaseURL, cfg.Sentiment.Timeout)}
}

type sentimentReq struct {
	Texts []string `json:"texts"`
}

type sentimentResp struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Score posts headline titles to the sentiment service. Callers treat any
// error as non-fatal and fall back to a neutral score.
func (s *HTTPSentimentScorer) Score(ctx context.Context, texts []string) (float64, float64, error) {
	if len(texts) > maxSentimentTexts {
		texts = texts[:maxSentimentTexts]
	}
	var sr sentimentResp
	if err := s.base.PostJSON(ctx, "/api/sentiment", sentimentReq{Texts: texts}, &sr); err != nil {
		return 0, 0, err
	}
	return sr.Mean, sr.Std, nil
}

var _ domsvc.SentimentScorer = (*HTTPSentimentScorer)(nil)
