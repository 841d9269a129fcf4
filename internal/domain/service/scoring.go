package service

import (
	"context"

	"Midas/internal/domain/models"
)

// SentimentScorer scores a batch of headline titles.
type SentimentScorer interface {
	Score(ctx context.Context, texts []string) (mean, std float64, err error)
}

// RecommendationScorer turns a feature mapping into a classification.
type RecommendationScorer interface {
	Recommend(ctx context.Context, features map[string]interface{}) (models.Recommendation, error)
}
