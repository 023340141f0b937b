package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/goban-backend/internal/apperror"
	"github.com/rocketscienceinc/goban-backend/internal/entity"
	"github.com/rocketscienceinc/goban-backend/internal/repository"
)

const (
	blackID = "black-player"
	whiteID = "white-player"
	gameID  = "game-1"
)

var (
	errRedisDown = errors.New("redis down")
	fixedNow     = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func (that *mockGameRepo) ListActive(ctx context.Context) ([]string, error) {
	args := that.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func newTestManager(t *testing.T, players playerRepo, games gameRepo) *GameManager {
	t.Helper()

	manager := NewGameManager(slog.New(slog.NewTextHandler(io.Discard, nil)), players, games)
	manager.now = func() time.Time { return fixedNow }
	manager.newID = func() string { return gameID }

	return manager
}

func newStoredGame(t *testing.T) *entity.Game {
	t.Helper()

	players, err := entity.NewPlayers(
		entity.Player{ID: blackID, Color: entity.ColorBlack, GameID: gameID},
		entity.Player{ID: whiteID, Color: entity.ColorWhite, GameID: gameID},
	)
	require.NoError(t, err)

	board, err := entity.NewBoard(entity.DefaultBoardSize, blackID)
	require.NoError(t, err)

	return entity.NewGame(gameID, players, board, fixedNow)
}

func TestGameManager_CreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a game with black to move", func(t *testing.T) {
		// Given: two players who are not in any game
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		players.On("GetByID", ctx, blackID).Return(&entity.Player{}, repository.ErrPlayerNotFound).Once()
		players.On("GetByID", ctx, whiteID).Return(&entity.Player{ID: whiteID}, nil).Once()
		games.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(func(p *entity.Player) bool {
			return p.GameID == gameID
		})).Return(nil).Twice()

		// When: a game is created with the default size
		game, err := manager.CreateGame(ctx, blackID, whiteID, 0)

		// Then: the game is stored and both players are seated
		require.NoError(t, err)
		assert.Equal(t, gameID, game.ID)
		assert.Equal(t, entity.DefaultBoardSize, game.Board.Width)
		assert.Equal(t, blackID, game.Board.CurrentPlayer)
		assert.Equal(t, entity.StatusInitialized, game.Board.Status)
		assert.Equal(t, fixedNow, game.CreatedAt)

		black, ok := game.Players.ByColor(entity.ColorBlack)
		require.True(t, ok)
		assert.Equal(t, blackID, black.ID)

		players.AssertExpectations(t)
		games.AssertExpectations(t)
	})

	t.Run("Rejects the same player twice", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		_, err := manager.CreateGame(ctx, blackID, blackID, 9)

		require.ErrorIs(t, err, apperror.ErrInvalidPlayerCount)
		players.AssertExpectations(t)
		games.AssertExpectations(t)
	})

	t.Run("Rejects a player who is still playing", func(t *testing.T) {
		// Given: black is seated in a running game
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		running := newStoredGame(t)
		running.ID = "old-game"
		running.Board.Status = entity.StatusRunning

		players.On("GetByID", ctx, blackID).Return(&entity.Player{ID: blackID, GameID: "old-game"}, nil).Once()
		games.On("GetByID", ctx, "old-game").Return(running, nil).Once()

		// When: a new game is created for black
		_, err := manager.CreateGame(ctx, blackID, whiteID, 9)

		// Then: it is rejected and nothing is stored
		require.ErrorIs(t, err, apperror.ErrPlayerInGame)
		games.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("A finished previous game does not block", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		finished := newStoredGame(t)
		finished.ID = "old-game"
		finished.Board.Status = entity.StatusEnded

		players.On("GetByID", ctx, blackID).Return(&entity.Player{ID: blackID, GameID: "old-game"}, nil).Once()
		players.On("GetByID", ctx, whiteID).Return(&entity.Player{}, repository.ErrPlayerNotFound).Once()
		games.On("GetByID", ctx, "old-game").Return(finished, nil).Once()
		games.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Twice()

		_, err := manager.CreateGame(ctx, blackID, whiteID, 13)

		require.NoError(t, err)
		players.AssertExpectations(t)
	})

	t.Run("A broken previous game does not block", func(t *testing.T) {
		tests := []struct {
			name    string
			game    func(t *testing.T) *entity.Game
			loadErr error
		}{
			{
				name: "Error status",
				game: func(t *testing.T) *entity.Game {
					game := newStoredGame(t)
					game.Board.Status = entity.StatusError
					return game
				},
			},
			{
				name: "No board",
				game: func(t *testing.T) *entity.Game {
					game := newStoredGame(t)
					game.Board = nil
					return game
				},
			},
			{
				name:    "Unreadable record",
				game:    func(*testing.T) *entity.Game { return &entity.Game{} },
				loadErr: fmt.Errorf("%w: unexpected end of JSON input", repository.ErrGameUnreadable),
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Given: black is still recorded in a game that can never be played again
				players := new(mockPlayerRepo)
				games := new(mockGameRepo)
				manager := newTestManager(t, players, games)
				manager.newID = func() string { return "game-2" }

				players.On("GetByID", ctx, blackID).Return(&entity.Player{ID: blackID, GameID: gameID}, nil).Once()
				players.On("GetByID", ctx, "someone-else").Return(&entity.Player{}, repository.ErrPlayerNotFound).Once()
				games.On("GetByID", ctx, gameID).Return(tt.game(t), tt.loadErr).Once()
				games.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Once()
				players.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Twice()

				// When: black starts a new game
				game, err := manager.CreateGame(ctx, blackID, "someone-else", 9)

				// Then: the new game is created
				require.NoError(t, err)
				assert.Equal(t, "game-2", game.ID)
			})
		}
	})

	t.Run("Unseated game is discarded", func(t *testing.T) {
		// Given: storing the second player fails
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		players.On("GetByID", ctx, mock.Anything).Return(&entity.Player{}, repository.ErrPlayerNotFound).Twice()
		games.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.Anything).Return(errRedisDown).Once()
		games.On("DeleteByID", ctx, gameID).Return(nil).Once()

		// When: the game is created
		_, err := manager.CreateGame(ctx, blackID, whiteID, 9)

		// Then: the error is reported and the stored game is removed
		require.ErrorIs(t, err, errRedisDown)
		games.AssertExpectations(t)
	})

	t.Run("Invalid board size", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		players.On("GetByID", ctx, mock.Anything).Return(&entity.Player{}, repository.ErrPlayerNotFound).Twice()

		_, err := manager.CreateGame(ctx, blackID, whiteID, -1)

		require.ErrorIs(t, err, apperror.ErrInvalidBoardSize)
	})

	t.Run("Storage failure", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		players.On("GetByID", ctx, mock.Anything).Return(&entity.Player{}, repository.ErrPlayerNotFound).Twice()
		games.On("CreateOrUpdate", ctx, mock.Anything).Return(errRedisDown).Once()

		_, err := manager.CreateGame(ctx, blackID, whiteID, 9)

		require.ErrorIs(t, err, errRedisDown)
		players.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the board after a valid move", func(t *testing.T) {
		// Given: a fresh game with black to move
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		games.On("GetByID", ctx, gameID).Return(newStoredGame(t), nil).Once()
		games.On("CreateOrUpdate", ctx, mock.MatchedBy(func(g *entity.Game) bool {
			field, err := g.Board.FieldAt(entity.NewVertex(4, 4))
			return err == nil && field.Color == entity.ColorBlack
		})).Return(nil).Once()

		// When: black plays (4,4)
		game, err := manager.MakeMove(ctx, gameID, blackID, entity.NewVertex(4, 4))

		// Then: the move is applied and stored
		require.NoError(t, err)
		assert.Equal(t, whiteID, game.Board.CurrentPlayer)
		assert.Equal(t, entity.StatusRunning, game.Board.Status)
		games.AssertExpectations(t)
	})

	t.Run("Rejected moves are not stored", func(t *testing.T) {
		tests := []struct {
			name     string
			playerID string
			vertex   entity.Vertex
			wantErr  error
		}{
			{name: "Wrong turn", playerID: whiteID, vertex: entity.NewVertex(1, 1), wantErr: apperror.ErrWrongTurn},
			{name: "Out of bounds", playerID: blackID, vertex: entity.NewVertex(10, 10), wantErr: apperror.ErrOutOfBounds},
			{name: "Not in game", playerID: "stranger", vertex: entity.NewVertex(1, 1), wantErr: apperror.ErrNotInGame},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				players := new(mockPlayerRepo)
				games := new(mockGameRepo)
				manager := newTestManager(t, players, games)

				games.On("GetByID", ctx, gameID).Return(newStoredGame(t), nil).Once()

				_, err := manager.MakeMove(ctx, gameID, tt.playerID, tt.vertex)

				require.ErrorIs(t, err, tt.wantErr)
				games.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Finished game", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		finished := newStoredGame(t)
		finished.Board.Status = entity.StatusEnded
		games.On("GetByID", ctx, gameID).Return(finished, nil).Once()

		_, err := manager.MakeMove(ctx, gameID, blackID, entity.NewVertex(1, 1))

		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Unknown game", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		games.On("GetByID", ctx, "nope").Return(&entity.Game{}, repository.ErrGameNotFound).Once()

		_, err := manager.MakeMove(ctx, "nope", blackID, entity.NewVertex(1, 1))

		require.ErrorIs(t, err, repository.ErrGameNotFound)
	})

	t.Run("Corrupted board moves the game to the error state", func(t *testing.T) {
		// Given: a stored board that lost a field
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		broken := newStoredGame(t)
		broken.Board.Fields = broken.Board.Fields[1:]
		games.On("GetByID", ctx, gameID).Return(broken, nil).Once()
		games.On("CreateOrUpdate", ctx, mock.MatchedBy(func(g *entity.Game) bool {
			return g.Board.Status == entity.StatusError
		})).Return(nil).Once()
		players.On("CreateOrUpdate", ctx, mock.MatchedBy(func(p *entity.Player) bool {
			return p.GameID == ""
		})).Return(nil).Twice()

		// When: a move is attempted
		_, err := manager.MakeMove(ctx, gameID, blackID, entity.NewVertex(2, 2))

		// Then: the move fails, the error status is stored and both players are freed
		require.ErrorIs(t, err, apperror.ErrCorruptedBoard)
		games.AssertExpectations(t)
		players.AssertExpectations(t)
	})
}

func TestGameManager_Pass(t *testing.T) {
	ctx := context.Background()

	t.Run("Player to move passes", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		games.On("GetByID", ctx, gameID).Return(newStoredGame(t), nil).Once()
		games.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Once()

		game, err := manager.Pass(ctx, gameID, blackID)

		require.NoError(t, err)
		assert.True(t, game.Board.Pass)
		assert.Equal(t, blackID, game.Board.CurrentPlayer)
	})

	t.Run("Opponent may not pass", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		games.On("GetByID", ctx, gameID).Return(newStoredGame(t), nil).Once()

		_, err := manager.Pass(ctx, gameID, whiteID)

		require.ErrorIs(t, err, apperror.ErrWrongTurn)
		games.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Double pass keeps the game running", func(t *testing.T) {
		players := new(mockPlayerRepo)
		games := new(mockGameRepo)
		manager := newTestManager(t, players, games)

		passed := newStoredGame(t)
		passed.Board.Pass = true
		passed.Board.Status = entity.StatusRunning
		games.On("GetByID", ctx, gameID).Return(passed, nil).Once()
		games.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Once()

		game, err := manager.Pass(ctx, gameID, blackID)

		require.NoError(t, err)
		assert.True(t, game.Board.Pass)
		assert.Equal(t, entity.StatusRunning, game.Board.Status)
	})
}

func TestGameManager_Resign(t *testing.T) {
	ctx := context.Background()

	// Given: a running game with one black stone
	players := new(mockPlayerRepo)
	games := new(mockGameRepo)
	manager := newTestManager(t, players, games)

	stored := newStoredGame(t)
	require.NoError(t, stored.Board.SetColor(entity.NewVertex(5, 5), entity.ColorBlack))
	stored.Board.Status = entity.StatusRunning

	games.On("GetByID", ctx, gameID).Return(stored, nil).Once()
	games.On("CreateOrUpdate", ctx, mock.Anything).Return(nil).Once()
	players.On("CreateOrUpdate", ctx, mock.MatchedBy(func(p *entity.Player) bool {
		return p.GameID == ""
	})).Return(nil).Twice()

	// When: white resigns
	game, err := manager.Resign(ctx, gameID, whiteID)

	// Then: the game ends in black's favor and both players are free again
	require.NoError(t, err)
	assert.True(t, game.IsFinished())
	assert.Equal(t, blackID, game.Winner)
	require.NotNil(t, game.Result)
	assert.Equal(t, 81, game.Result.Black)
	require.NotNil(t, game.FinishedAt)
	assert.Equal(t, fixedNow, *game.FinishedAt)
	players.AssertExpectations(t)

	// And: further moves are rejected
	games.On("GetByID", ctx, gameID).Return(game, nil).Once()
	_, err = manager.MakeMove(ctx, gameID, blackID, entity.NewVertex(1, 1))
	require.ErrorIs(t, err, apperror.ErrGameFinished)
}

func TestGameManager_ActiveGames(t *testing.T) {
	ctx := context.Background()

	t.Run("Lists games", func(t *testing.T) {
		games := new(mockGameRepo)
		manager := newTestManager(t, new(mockPlayerRepo), games)

		games.On("ListActive", ctx).Return([]string{"a", "b"}, nil).Once()

		ids, err := manager.ActiveGames(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
	})

	t.Run("Storage failure", func(t *testing.T) {
		games := new(mockGameRepo)
		manager := newTestManager(t, new(mockPlayerRepo), games)

		games.On("ListActive", ctx).Return(nil, errRedisDown).Once()

		_, err := manager.ActiveGames(ctx)

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestGameManager_ScoreAndExport(t *testing.T) {
	ctx := context.Background()

	players := new(mockPlayerRepo)
	games := new(mockGameRepo)
	manager := newTestManager(t, players, games)

	stored := newStoredGame(t)
	require.NoError(t, stored.Board.SetColor(entity.NewVertex(1, 1), entity.ColorWhite))
	stored.Board.History = []entity.Field{entity.NewField(entity.NewVertex(1, 1), entity.ColorWhite)}
	games.On("GetByID", ctx, gameID).Return(stored, nil)

	t.Run("Score", func(t *testing.T) {
		dominance, err := manager.Score(ctx, gameID)

		require.NoError(t, err)
		assert.Equal(t, entity.Dominance{White: 81, WhitePercentage: 100}, dominance)
	})

	t.Run("ExportSGF", func(t *testing.T) {
		record, err := manager.ExportSGF(ctx, gameID)

		require.NoError(t, err)
		assert.Equal(t, "(;FF[4]GM[1]SZ[9]PB[black-player]PW[white-player]DT[2024-05-06]RU[Chinese];W[aa])", record)
	})
}

// memoryGameRepo stores deep copies so concurrent callers never share a game.
type memoryGameRepo struct {
	mu    sync.Mutex
	games map[string][]byte
}

func (that *memoryGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()
	that.games[game.ID] = data

	return nil
}

func (that *memoryGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	data, ok := that.games[id]
	that.mu.Unlock()

	if !ok {
		return &entity.Game{}, repository.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that *memoryGameRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	delete(that.games, id)

	return nil
}

func (that *memoryGameRepo) ListActive(_ context.Context) ([]string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	ids := make([]string, 0, len(that.games))
	for id := range that.games {
		ids = append(ids, id)
	}

	return ids, nil
}

func TestGameManager_MovesAreSerializedPerGame(t *testing.T) {
	ctx := context.Background()

	// Given: a stored game with black to move
	games := &memoryGameRepo{games: make(map[string][]byte)}
	require.NoError(t, games.CreateOrUpdate(ctx, newStoredGame(t)))
	manager := newTestManager(t, new(mockPlayerRepo), games)

	// When: black submits many moves at once
	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(col int) {
			defer wg.Done()

			_, err := manager.MakeMove(ctx, gameID, blackID, entity.NewVertex(1+col/9, 1+col%9))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}

			assert.ErrorIs(t, err, apperror.ErrWrongTurn)
		}(i)
	}
	wg.Wait()

	// Then: exactly one of them is played
	assert.Equal(t, 1, succeeded)

	game, err := games.GetByID(ctx, gameID)
	require.NoError(t, err)
	assert.Len(t, game.Board.History, 1)
	assert.Equal(t, whiteID, game.Board.CurrentPlayer)
	assert.Zero(t, manager.locker.size())
}
