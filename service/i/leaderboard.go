package i

import "context"

// Ranking is a leaderboard row.
type Ranking struct {
	Rank       int64  `json:"rank"`
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
}

// Leaderboard keeps the best score of every player.
type Leaderboard interface {
	// Submit records score for player if it beats the stored best. It reports whether
	// the stored best changed.
	Submit(ctx context.Context, player string, score int) (bool, error)

	// Top returns up to limit rankings, best first.
	Top(ctx context.Context, limit int64) ([]Ranking, error)
}
