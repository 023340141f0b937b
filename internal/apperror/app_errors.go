package apperror

import "errors"

// rule violations
var (
	ErrOutOfBounds        = errors.New("move is outside the board")
	ErrWrongTurn          = errors.New("it's not your turn")
	ErrAlreadyOccupied    = errors.New("vertex is already occupied")
	ErrSuicideMove        = errors.New("move would be suicide")
	ErrKoViolation        = errors.New("move violates ko")
	ErrInvalidPlayerCount = errors.New("a game needs exactly two players")
	ErrVertexNotFound     = errors.New("vertex not found on board")
)

var (
	ErrInvalidPlayerColors = errors.New("players must be one black and one white")
	ErrInvalidBoardSize    = errors.New("invalid board size")
	ErrCorruptedBoard      = errors.New("board is corrupted")
	ErrGameFinished        = errors.New("game is already finished")
	ErrNotInGame           = errors.New("player is not in this game")
	ErrPlayerInGame        = errors.New("player is already in a game")
)
