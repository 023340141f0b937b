package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/goban-backend/internal/apperror"
	"github.com/rocketscienceinc/goban-backend/internal/entity"
	"github.com/rocketscienceinc/goban-backend/internal/repository"
	"github.com/rocketscienceinc/goban-backend/internal/rules"
	"github.com/rocketscienceinc/goban-backend/internal/sgf"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]string, error)
}

// GameManager runs rule operations against stored games. Every operation on a
// game is a single load, apply, store cycle and at most one such cycle runs
// per game at a time.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo

	locker *gameLocker
	now    func() time.Time
	newID  func() string
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		locker: newGameLocker(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// CreateGame seats blackID and whiteID on a new board of the given size.
// Black moves first. A size of 0 means the default board.
func (that *GameManager) CreateGame(ctx context.Context, blackID, whiteID string, size int) (*entity.Game, error) {
	if size == 0 {
		size = entity.DefaultBoardSize
	}

	players, err := entity.NewPlayers(
		entity.Player{ID: blackID, Color: entity.ColorBlack},
		entity.Player{ID: whiteID, Color: entity.ColorWhite},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to seat players: %w", err)
	}

	for _, player := range players {
		if err = that.ensureFree(ctx, player.ID); err != nil {
			return nil, err
		}
	}

	board, err := entity.NewBoard(size, blackID)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	game := entity.NewGame(that.newID(), players, board, that.now())
	for i := range game.Players {
		game.Players[i].GameID = game.ID
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	for i := range game.Players {
		if err = that.playerRepo.CreateOrUpdate(ctx, &game.Players[i]); err != nil {
			that.discardGame(ctx, game.ID)
			return nil, fmt.Errorf("failed to update player: %w", err)
		}
	}

	that.logger.Info("game created", "gameID", game.ID, "black", blackID, "white", whiteID, "size", size)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGameByID(ctx, gameID)
}

// ActiveGames lists the IDs of games that have not ended.
func (that *GameManager) ActiveGames(ctx context.Context) ([]string, error) {
	ids, err := that.gameRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return ids, nil
}

// MakeMove plays a stone of playerID's color at v.
func (that *GameManager) MakeMove(ctx context.Context, gameID, playerID string, v entity.Vertex) (*entity.Game, error) {
	unlock := that.locker.Lock(gameID)
	defer unlock()

	game, player, err := that.loadOngoing(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	board, err := rules.Move(game.Board, game.Players, entity.NewField(v, player.Color))
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	captured := len(board.Captures) - len(game.Board.Captures)
	game.Board = board

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Debug("move played", "gameID", gameID, "player", playerID, "vertex", v.String(), "captured", captured)

	return game, nil
}

// Pass records a pass by the player to move.
func (that *GameManager) Pass(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	unlock := that.locker.Lock(gameID)
	defer unlock()

	game, _, err := that.loadOngoing(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	if game.Board.CurrentPlayer != playerID {
		return nil, fmt.Errorf("failed to pass: %w", apperror.ErrWrongTurn)
	}

	if game.Board.Pass {
		// TODO: end the game on a double pass once dead stone marking exists.
		that.logger.Info("double pass", "gameID", gameID, "player", playerID)
	}

	board, err := rules.Pass(game.Board)
	if err != nil {
		return nil, err
	}

	game.Board = board

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// Resign ends the game in favor of playerID's opponent and frees both players.
func (that *GameManager) Resign(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	log := that.logger.With("method", "Resign", "gameID", gameID)

	unlock := that.locker.Lock(gameID)
	defer unlock()

	game, _, err := that.loadOngoing(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	winner, _ := game.Players.Other(playerID)

	game.Board = rules.Resign(game.Board)
	game.Finish(rules.CalculateDominance(game.Board), winner.ID, that.now())

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.releasePlayers(ctx, game)

	log.Info("game finished", "winner", winner.ID)

	return game, nil
}

// Score calculates the current dominance of a game.
func (that *GameManager) Score(ctx context.Context, gameID string) (entity.Dominance, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return entity.Dominance{}, err
	}

	return rules.CalculateDominance(game.Board), nil
}

// ExportSGF renders the game record as SGF text.
func (that *GameManager) ExportSGF(ctx context.Context, gameID string) (string, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return "", err
	}

	record, err := sgf.FromGame(game)
	if err != nil {
		return "", fmt.Errorf("failed to build sgf: %w", err)
	}

	return sgf.Serialize(record), nil
}

// loadOngoing loads a game that is still being played together with the
// acting player's roster entry.
func (that *GameManager) loadOngoing(ctx context.Context, gameID, playerID string) (*entity.Game, entity.Player, error) {
	game, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, entity.Player{}, err
	}

	if game.IsFinished() {
		return nil, entity.Player{}, apperror.ErrGameFinished
	}

	if game.Board.Status == entity.StatusError {
		return nil, entity.Player{}, fmt.Errorf("%w: game %s", apperror.ErrCorruptedBoard, gameID)
	}

	player, ok := game.Players.ByID(playerID)
	if !ok {
		return nil, entity.Player{}, fmt.Errorf("%w: player %s, game %s", apperror.ErrNotInGame, playerID, gameID)
	}

	return game, player, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.Board == nil {
		return nil, fmt.Errorf("%w: game %s has no board", apperror.ErrCorruptedBoard, id)
	}

	if err = game.Board.Validate(); err != nil {
		that.markBroken(ctx, game, err)
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}

	return game, nil
}

// markBroken moves a game whose board fails validation into the error state
// and frees its players, since an ERROR game can never be finished.
func (that *GameManager) markBroken(ctx context.Context, game *entity.Game, cause error) {
	log := that.logger.With("method", "markBroken", "gameID", game.ID)
	log.Error("stored board is invalid", "error", cause)

	if game.Board.Status == entity.StatusError {
		return
	}

	game.Board.Status = entity.StatusError
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		log.Error("failed to store error status", "error", err)
	}

	that.releasePlayers(ctx, game)
}

// discardGame removes a game whose players could not be seated. A player
// saved before the failure points at a missing game, which ensureFree treats
// as free.
func (that *GameManager) discardGame(ctx context.Context, gameID string) {
	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		that.logger.Error("failed to discard game", "gameID", gameID, "error", err)
	}
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// ensureFree fails with ErrPlayerInGame when id is seated in a game that can
// still be played. Missing, unreadable, broken and finished games do not count.
func (that *GameManager) ensureFree(ctx context.Context, id string) error {
	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}

	if player.GameID == "" {
		return nil
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil
	}

	if errors.Is(err, repository.ErrGameUnreadable) {
		that.logger.Warn("player seated in unreadable game", "player", id, "gameID", player.GameID, "error", err)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get game of player %s: %w", id, err)
	}

	if game.Board == nil || game.Board.Status == entity.StatusError || game.IsFinished() {
		return nil
	}

	return fmt.Errorf("%w: player %s, game %s", apperror.ErrPlayerInGame, id, game.ID)
}

func (that *GameManager) releasePlayers(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "releasePlayers", "gameID", game.ID)

	for _, player := range game.Players {
		player.GameID = ""
		if err := that.playerRepo.CreateOrUpdate(ctx, &player); err != nil {
			log.Error("failed to update", "player", player.ID, "error", err)
		}
	}
}
