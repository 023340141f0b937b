package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/goban-backend/internal/apperror"
	"github.com/rocketscienceinc/goban-backend/internal/entity"
	"github.com/rocketscienceinc/goban-backend/internal/repository"
)

const (
	sgfContentType = "application/x-go-sgf"
	maxBodyBytes   = 1 << 12
)

type gameManager interface {
	CreateGame(ctx context.Context, blackID, whiteID string, size int) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	ActiveGames(ctx context.Context) ([]string, error)

	MakeMove(ctx context.Context, gameID, playerID string, v entity.Vertex) (*entity.Game, error)
	Pass(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	Resign(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	Score(ctx context.Context, gameID string) (entity.Dominance, error)
	ExportSGF(ctx context.Context, gameID string) (string, error)
}

type createGameRequest struct {
	BlackID string `json:"black_id"`
	WhiteID string `json:"white_id"`
	Size    int    `json:"size"`
}

type moveRequest struct {
	PlayerID string `json:"player_id"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type gamesResponse struct {
	Games []string `json:"games"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type gameHandler struct {
	logger *slog.Logger
	games  gameManager
}

func newGameHandler(logger *slog.Logger, games gameManager) *gameHandler {
	return &gameHandler{
		logger: logger.With("component", "game_handler"),
		games:  games,
	}
}

func (that *gameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !that.decode(w, r, &req) {
		return
	}

	game, err := that.games.CreateGame(r.Context(), req.BlackID, req.WhiteID, req.Size)
	if err != nil {
		that.writeError(w, "CreateGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *gameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	ids, err := that.games.ActiveGames(r.Context())
	if err != nil {
		that.writeError(w, "ListGames", err)
		return
	}

	if ids == nil {
		ids = []string{}
	}

	that.writeJSON(w, http.StatusOK, gamesResponse{Games: ids})
}

func (that *gameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) MakeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !that.decode(w, r, &req) {
		return
	}

	game, err := that.games.MakeMove(r.Context(), chi.URLParam(r, "id"), req.PlayerID, entity.NewVertex(req.Row, req.Col))
	if err != nil {
		that.writeError(w, "MakeMove", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) Pass(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !that.decode(w, r, &req) {
		return
	}

	game, err := that.games.Pass(r.Context(), chi.URLParam(r, "id"), req.PlayerID)
	if err != nil {
		that.writeError(w, "Pass", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) Resign(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !that.decode(w, r, &req) {
		return
	}

	game, err := that.games.Resign(r.Context(), chi.URLParam(r, "id"), req.PlayerID)
	if err != nil {
		that.writeError(w, "Resign", err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) Score(w http.ResponseWriter, r *http.Request) {
	dominance, err := that.games.Score(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "Score", err)
		return
	}

	that.writeJSON(w, http.StatusOK, dominance)
}

func (that *gameHandler) ExportSGF(w http.ResponseWriter, r *http.Request) {
	record, err := that.games.ExportSGF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "ExportSGF", err)
		return
	}

	w.Header().Set("Content-Type", sgfContentType)
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write([]byte(record)); err != nil {
		that.logger.Error("failed to write response", "method", "ExportSGF", "error", err)
	}
}

func (that *gameHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			that.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}

		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}

	return true
}

func (that *gameHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *gameHandler) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}

	that.logger.Debug("request rejected", "method", method, "error", err)
	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrOutOfBounds),
		errors.Is(err, apperror.ErrVertexNotFound),
		errors.Is(err, apperror.ErrInvalidPlayerCount),
		errors.Is(err, apperror.ErrInvalidPlayerColors),
		errors.Is(err, apperror.ErrInvalidBoardSize):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrWrongTurn),
		errors.Is(err, apperror.ErrNotInGame):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrAlreadyOccupied),
		errors.Is(err, apperror.ErrSuicideMove),
		errors.Is(err, apperror.ErrKoViolation),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrPlayerInGame):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
