package rules

import (
	"fmt"

	"github.com/rocketscienceinc/goban-backend/internal/apperror"
	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

// Move validates move against board and returns the resulting board. The
// input board is never modified; on error it is still the authoritative state.
func Move(board *entity.Board, players entity.Players, move entity.Field) (*entity.Board, error) {
	if err := validateMove(board, players, move); err != nil {
		return nil, fmt.Errorf("invalid move: %w", err)
	}

	next := board.Clone()

	if err := next.SetColor(move.Vertex, move.Color); err != nil {
		return nil, err
	}

	if _, err := captureInPlace(next, move.Vertex, move.Color); err != nil {
		return nil, fmt.Errorf("failed to resolve captures: %w", err)
	}

	opponent, ok := players.Other(board.CurrentPlayer)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotInGame, board.CurrentPlayer)
	}

	next.CurrentPlayer = opponent.ID
	next.Pass = false
	next.History = append(next.History, move)
	next.Status = entity.StatusRunning

	return next, nil
}

// validateMove - checks, in order: status, bounds, turn, occupancy, suicide, ko.
func validateMove(board *entity.Board, players entity.Players, move entity.Field) error {
	if err := checkPlayable(board); err != nil {
		return err
	}

	if !IsInBounds(board, move) {
		return fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, move.Vertex)
	}

	current, ok := players.ByID(board.CurrentPlayer)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrNotInGame, board.CurrentPlayer)
	}

	if current.Color != move.Color {
		return fmt.Errorf("%w: %s to play", apperror.ErrWrongTurn, current.Color)
	}

	occupied, err := IsOccupied(board, move.Vertex)
	if err != nil {
		return err
	}

	if occupied {
		return fmt.Errorf("%w: %s", apperror.ErrAlreadyOccupied, move.Vertex)
	}

	suicide, err := IsSuicide(board, move.Vertex, move.Color)
	if err != nil {
		return err
	}

	if suicide {
		return fmt.Errorf("%w: %s", apperror.ErrSuicideMove, move.Vertex)
	}

	if IsKo(board, move) {
		return fmt.Errorf("%w: %s", apperror.ErrKoViolation, move.Vertex)
	}

	return nil
}

// checkPlayable rejects boards in a terminal state: ENDED and ERROR.
func checkPlayable(board *entity.Board) error {
	switch board.Status {
	case entity.StatusEnded:
		return apperror.ErrGameFinished
	case entity.StatusError:
		return apperror.ErrCorruptedBoard
	default:
		return nil
	}
}

// Pass records a pass. A second consecutive pass leaves the board as it is;
// ending the game is left to the caller (see Resign). The current player is
// not switched. Boards in a terminal state are rejected.
func Pass(board *entity.Board) (*entity.Board, error) {
	if err := checkPlayable(board); err != nil {
		return nil, fmt.Errorf("invalid pass: %w", err)
	}

	next := board.Clone()
	if board.Pass {
		return next, nil
	}

	next.Pass = true
	next.Status = entity.StatusRunning

	return next, nil
}

// Resign ends the game.
func Resign(board *entity.Board) *entity.Board {
	next := board.Clone()
	next.Status = entity.StatusEnded

	return next
}
