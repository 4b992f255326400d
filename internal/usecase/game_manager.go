package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/protocol"
	"github.com/rocketscienceinc/connectfour-backend/internal/registry"
)

// DefaultSettleDelay gives the opponent's client time to animate a relayed
// tile before the turn or the result arrives.
const DefaultSettleDelay = time.Second

type statsRepo interface {
	AddPlayersActive(ctx context.Context, delta int64) error
	IncrGamesStarted(ctx context.Context) error
	IncrTilesPlaced(ctx context.Context) error
}

type connRegistry interface {
	Register(connectionID string, handle registry.Handle)
	Unregister(connectionID string)
	BindToSession(connectionID, sessionID, opponentID string)
	Lookup(connectionID string) (registry.Handle, bool)
	Binding(connectionID string) (string, string, bool)
	Teardown(sessionID string) bool
}

type gameMatcher interface {
	Join(playerID string) (*entity.Game, bool, error)
	LeaveIfWaiting(playerID string) bool
}

// SessionManager routes client events into games. Every event and every
// settle continuation runs under mu, one at a time.
type SessionManager struct {
	logger      *slog.Logger
	registry    connRegistry
	matcher     gameMatcher
	stats       statsRepo
	clock       quartz.Clock
	settleDelay time.Duration

	mu      sync.Mutex
	games   map[string]*entity.Game
	pending map[string]map[uint64]*quartz.Timer
	nextJob uint64
}

func NewSessionManager(
	logger *slog.Logger,
	registry connRegistry,
	matcher gameMatcher,
	stats statsRepo,
	clock quartz.Clock,
	settleDelay time.Duration,
) *SessionManager {
	return &SessionManager{
		logger:      logger.With("component", "session-manager"),
		registry:    registry,
		matcher:     matcher,
		stats:       stats,
		clock:       clock,
		settleDelay: settleDelay,

		games:   make(map[string]*entity.Game),
		pending: make(map[string]map[uint64]*quartz.Timer),
	}
}

// Connect registers a new connection and puts it into the open game.
func (that *SessionManager) Connect(ctx context.Context, connectionID string, handle registry.Handle) error {
	log := that.logger.With("method", "Connect", "connectionID", connectionID)

	if err := that.stats.AddPlayersActive(ctx, 1); err != nil {
		log.Warn("failed to count active player", "error", err)
	}

	paired, err := that.connect(connectionID, handle)
	if err != nil {
		log.Error("matchmaking invariant violated", "error", err)
		return err
	}

	if paired {
		if err = that.stats.IncrGamesStarted(ctx); err != nil {
			log.Warn("failed to count started game", "error", err)
		}
	}

	return nil
}

func (that *SessionManager) connect(connectionID string, handle registry.Handle) (bool, error) {
	log := that.logger.With("method", "connect", "connectionID", connectionID)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.registry.Register(connectionID, handle)

	game, paired, err := that.matcher.Join(connectionID)
	if err != nil {
		that.registry.Unregister(connectionID)
		return false, fmt.Errorf("failed to join game: %w", err)
	}

	if !paired {
		log.Info("player waiting for opponent", "gameID", game.ID)
		return false, nil
	}

	blueID, redID := game.Players()
	that.games[game.ID] = game
	that.registry.BindToSession(blueID, game.ID, redID)
	that.registry.BindToSession(redID, game.ID, blueID)

	that.send(blueID, protocol.Initialize{Color: entity.ColorBlue})
	that.send(redID, protocol.Initialize{Color: entity.ColorRed})

	log.Info("game started", "gameID", game.ID, "blue", blueID, "red", redID)

	return true, nil
}

// HandleMessage decodes and applies one client frame. Unknown message types
// are ignored; the returned error describes a rejected frame.
func (that *SessionManager) HandleMessage(ctx context.Context, connectionID string, data []byte) error {
	log := that.logger.With("method", "HandleMessage", "connectionID", connectionID)

	msg, err := protocol.Decode(data)
	if errors.Is(err, protocol.ErrUnknownMessageType) {
		log.Debug("ignoring message", "error", err)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	switch m := msg.(type) {
	case protocol.PlaceTile:
		return that.PlaceTile(ctx, connectionID, m)
	default:
		log.Debug("ignoring message", "type", fmt.Sprintf("%T", msg))
		return nil
	}
}

// PlaceTile applies a move, relays it to the opponent and schedules the
// turn hand-over or the result after the settle delay.
func (that *SessionManager) PlaceTile(ctx context.Context, connectionID string, move protocol.PlaceTile) error {
	log := that.logger.With("method", "PlaceTile", "connectionID", connectionID)

	sessionID, opponentID, ok := that.registry.Binding(connectionID)
	if !ok {
		return apperror.ErrNotPaired
	}

	if err := that.stats.IncrTilesPlaced(ctx); err != nil {
		log.Warn("failed to count placed tile", "error", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[sessionID]
	if !ok {
		return fmt.Errorf("%w: game %s", apperror.ErrSessionTerminated, sessionID)
	}

	if game.Strict && game.ColorOf(connectionID) != move.Color {
		return fmt.Errorf("%w: %s", apperror.ErrWrongColor, move.Color)
	}

	won, err := game.PlaceTile(move.Index, move.Color)
	if err != nil {
		return fmt.Errorf("failed to place tile in game %s: %w", sessionID, err)
	}

	that.send(opponentID, protocol.TileRelay{TileIndex: move.Index, Color: move.Color})
	that.schedule(sessionID, func() {
		that.settle(sessionID, connectionID, opponentID, won)
	})

	log.Debug("tile placed", "gameID", sessionID, "index", move.Index, "color", move.Color, "won", won)

	return nil
}

// schedule runs fn after the settle delay under mu unless the session is
// torn down first. Callers hold mu.
func (that *SessionManager) schedule(sessionID string, fn func()) {
	that.nextJob++
	job := that.nextJob

	timer := that.clock.AfterFunc(that.settleDelay, func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		jobs, ok := that.pending[sessionID]
		if !ok {
			return
		}

		if _, ok = jobs[job]; !ok {
			return
		}
		delete(jobs, job)

		fn()
	})

	if that.pending[sessionID] == nil {
		that.pending[sessionID] = make(map[uint64]*quartz.Timer)
	}
	that.pending[sessionID][job] = timer
}

func (that *SessionManager) settle(sessionID, moverID, opponentID string, won bool) {
	if _, ok := that.games[sessionID]; !ok {
		return
	}

	if !won {
		that.send(opponentID, protocol.GiveTurn{})
		return
	}

	that.send(moverID, protocol.NewTerminate(true))
	that.send(opponentID, protocol.NewTerminate(false))
	that.teardown(sessionID)

	that.logger.Info("game won", "gameID", sessionID, "winner", moverID)
}

// Disconnect handles a closed connection, ending its game if it had one.
func (that *SessionManager) Disconnect(ctx context.Context, connectionID string) {
	log := that.logger.With("method", "Disconnect", "connectionID", connectionID)

	if err := that.stats.AddPlayersActive(ctx, -1); err != nil {
		log.Warn("failed to count departed player", "error", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	sessionID, opponentID, paired := that.registry.Binding(connectionID)
	if !paired {
		if that.matcher.LeaveIfWaiting(connectionID) {
			log.Info("waiting player left")
		}
		that.registry.Unregister(connectionID)

		return
	}

	that.send(opponentID, protocol.OpponentLeft())
	that.teardown(sessionID)

	log.Info("player left game", "gameID", sessionID)
}

// teardown ends a session. Callers hold mu.
func (that *SessionManager) teardown(sessionID string) {
	for _, timer := range that.pending[sessionID] {
		timer.Stop()
	}
	delete(that.pending, sessionID)

	if game, ok := that.games[sessionID]; ok {
		game.Terminate()
		delete(that.games, sessionID)
	}

	that.registry.Teardown(sessionID)
}

// Shutdown ends every active game without notifying the players.
func (that *SessionManager) Shutdown() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for sessionID := range that.games {
		that.teardown(sessionID)
	}
}

func (that *SessionManager) ActiveGames() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.games)
}

// send delivers msg if the connection is still registered.
func (that *SessionManager) send(connectionID string, msg protocol.ServerMessage) {
	handle, ok := that.registry.Lookup(connectionID)
	if !ok {
		that.logger.Debug("skipping send to closed connection", "connectionID", connectionID, "type", msg.MessageType())
		return
	}

	if err := handle.Send(msg); err != nil {
		that.logger.Warn("failed to send message", "connectionID", connectionID, "type", msg.MessageType(), "error", err)
	}
}
