package entity

import (
	"time"
)

// Dominance is the area count of a board: stones plus exclusively bordered
// empty regions per color.
type Dominance struct {
	Black           int `json:"black"`
	White           int `json:"white"`
	Neutral         int `json:"neutral"`
	BlackPercentage int `json:"black_percentage"`
	WhitePercentage int `json:"white_percentage"`
}

// Game is the stored aggregate: a board together with its roster.
type Game struct {
	ID         string     `json:"id"`
	Players    Players    `json:"players"`
	Board      *Board     `json:"board"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Result     *Dominance `json:"result,omitempty"`
	Winner     string     `json:"winner,omitempty"`
}

func NewGame(id string, players Players, board *Board, now time.Time) *Game {
	return &Game{
		ID:        id,
		Players:   players,
		Board:     board,
		CreatedAt: now,
	}
}

func (that *Game) IsFinished() bool {
	return that.Board != nil && that.Board.IsEnded()
}

// Finish records the outcome. The board status is the rules' concern.
func (that *Game) Finish(result Dominance, winnerID string, now time.Time) {
	that.Result = &result
	that.Winner = winnerID
	that.FinishedAt = &now
}
