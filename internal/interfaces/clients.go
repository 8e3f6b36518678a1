// Package interfaces defines service contracts for Aplus
package interfaces

import "context"

// InsightClient generates model commentary for briefs. A nil client is a
// valid configuration; callers degrade to briefs without commentary.
type InsightClient interface {
	// GenerateInsight produces commentary for a prompt.
	GenerateInsight(ctx context.Context, prompt string) (string, error)
}
