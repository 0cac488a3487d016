package models

import "context"

// SnapshotProvider fetches market snapshots for a pair
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, symbol, interval string, limit int) (*MarketSnapshot, error)
}

// SentimentClassifier labels a short text with sentiment scores
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) ([]ClassifierLabel, error)
}
