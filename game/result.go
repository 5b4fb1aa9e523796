package game

import (
	"time"

	"github.com/google/uuid"
)

// maxScore is awarded for reaching the exit along a shortest route.
const maxScore = 1000

// Result is the record of a finished maze run.
type Result struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	SessionID    uuid.UUID `json:"session_id" bson:"sessionId"`
	PlayerName   string    `json:"player_name" bson:"playerName"`
	Width        int       `json:"width" bson:"width"`
	Height       int       `json:"height" bson:"height"`
	Algorithm    string    `json:"algorithm" bson:"algorithm"`
	Moves        int       `json:"moves" bson:"moves"`
	OptimalMoves int       `json:"optimal_moves" bson:"optimalMoves"`
	Score        int       `json:"score" bson:"score"`
	DurationMs   int64     `json:"duration_ms" bson:"durationMs"`
	FinishedAt   time.Time `json:"finished_at" bson:"finishedAt"`
}

// Score rates a run by how close the player came to the shortest route.
// A shortest route scores maxScore; wandering lowers the score proportionally.
func Score(optimal, moves int) int {
	if optimal <= 0 || moves <= 0 {
		return 0
	}
	return optimal * maxScore / max(moves, optimal)
}
