package scoring

import (
	"context"
	"fmt"

	"Midas/internal/domain/models"
	domsvc "Midas/internal/domain/service"
	"Midas/pkg/config"
)

type HTTPRecommendationScorer struct{ base *HTTPServiceBase }

func NewHTTPRecommendationScorer(cfg *config.Config) *HTTPRecommendationScorer {
	return &HTTPRecommendationScorer{base: NewHTTPServiceBase(cfg.Gateway.RecommendURL, cfg.Gateway.Timeout)}
}

// Recommend posts the feature mapping and returns the scorer response with
// class/confidence plus whatever extra fields the scorer attaches.
func (s *HTTPRecommendationScorer) Recommend(ctx context.Context, features map[string]interface{}) (models.Recommendation, error) {
	var rec models.Recommendation
	if err := s.base.PostJSON(ctx, "/api/recommend", features, &rec); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return rec, nil
}

var _ domsvc.RecommendationScorer = (*HTTPRecommendationScorer)(nil)
