package protocol

import (
	"encoding/json"
	"log/slog"
	"time"

	"snake-relay-server/domain"
	"snake-relay-server/hub"
)

// snapshotTimeout bounds how long a late joiner waits for a peer snapshot
// before receiving an empty one.
const snapshotTimeout = 5 * time.Second

// Handler routes inbound frames to the room-management handlers, the relay
// path, and the snapshot handshake. All failures are reported back to the
// originating connection as ERROR messages; nothing here is fatal.
type Handler struct {
	directory *hub.Directory
	registry  *hub.Registry
	logger    *slog.Logger
	reconcile *reconciler
}

func NewHandler(directory *hub.Directory, registry *hub.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		directory: directory,
		registry:  registry,
		logger:    logger,
		reconcile: newReconciler(snapshotTimeout),
	}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("handler panic", "panic", rec)
		}
	}()

	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		h.sendError(conn, domain.CodeInvalidMessage, "malformed message frame")
		return
	}

	switch env.Type {
	case domain.TypeCreateRoom:
		h.handleCreateRoom(conn)
	case domain.TypeJoinRoom:
		h.handleJoinRoom(conn, env.Data)
	case domain.TypeStartGame:
		h.handleStartGame(conn, data, env.Data)
	case domain.TypePlayerPositionUpdate, domain.TypeFoodCollected, domain.TypePlayerDied:
		h.handleRelay(conn, env.Type, data, env.Data)
	case domain.TypeGameStateUpdate:
		h.handleGameStateUpdate(conn, env.Data)
	default:
		h.sendError(conn, domain.CodeUnknownMessage, "unknown message type: "+env.Type)
	}
}

// HandleClose runs the disconnect cleanup: leave the room, tell the
// remaining members, and release the player identifier.
func (h *Handler) HandleClose(conn domain.Connection) {
	playerID, ok := h.registry.Resolve(conn)
	if !ok {
		return
	}
	h.registry.Unregister(conn)
	h.reconcile.cancel(playerID)

	room, ok := h.directory.Leave(playerID)
	if !ok {
		return
	}

	if left, err := domain.Encode(domain.TypePlayerLeft, domain.PlayerLeft{PlayerID: playerID}); err == nil {
		room.Broadcast(left, "")
	}
	h.logger.Info("player left", "roomId", room.ID(), "playerId", playerID)
}

func (h *Handler) handleCreateRoom(conn domain.Connection) {
	playerID := h.registry.Register(conn)
	if _, ok := h.directory.RoomFor(playerID); ok {
		h.sendError(conn, domain.CodeRoomError, "already in a room")
		return
	}

	room := h.directory.CreateRoom()
	if !room.AddPlayer(playerID, conn) {
		// a brand-new room can only reject if something is badly wrong
		h.sendError(conn, domain.CodeRoomError, "could not join created room")
		return
	}
	h.directory.Bind(playerID, room.ID())

	h.send(conn, domain.TypeRoomCreated, domain.RoomInfo{RoomID: room.ID(), PlayerID: playerID})
	h.logger.Info("player created room", "roomId", room.ID(), "playerId", playerID)
}

func (h *Handler) handleJoinRoom(conn domain.Connection, data json.RawMessage) {
	var req domain.JoinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		h.sendError(conn, domain.CodeInvalidMessage, "join requires a roomId")
		return
	}

	room, ok := h.directory.Room(req.RoomID)
	if !ok {
		h.sendError(conn, domain.CodeRoomNotFound, "room not found")
		return
	}

	playerID := h.registry.Register(conn)
	if _, ok := h.directory.RoomFor(playerID); ok {
		h.sendError(conn, domain.CodeRoomError, "already in a room")
		return
	}

	hadPeers := room.Size() > 0
	if !room.AddPlayer(playerID, conn) {
		h.sendError(conn, domain.CodeRoomFull, "room is full")
		return
	}
	h.directory.Bind(playerID, room.ID())

	h.send(conn, domain.TypeRoomJoined, domain.RoomInfo{RoomID: room.ID(), PlayerID: playerID})

	if joined, err := domain.Encode(domain.TypePlayerJoined, domain.PlayerJoined{PlayerID: playerID}); err == nil {
		room.Broadcast(joined, playerID)
	}

	// the READY crossing fires exactly when size reaches the minimum
	if room.Status() == hub.StatusReady && room.Size() == room.MinPlayers() {
		if canStart, err := domain.Encode(domain.TypeGameCanStart, domain.GameCanStart{RoomID: room.ID()}); err == nil {
			room.Broadcast(canStart, "")
		}
	}

	if hadPeers {
		h.requestSnapshot(room, playerID, conn)
	}

	h.logger.Info("player joined", "roomId", room.ID(), "playerId", playerID)
}

func (h *Handler) handleStartGame(conn domain.Connection, frame []byte, data json.RawMessage) {
	var req domain.StartGameRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(conn, domain.CodeInvalidMessage, "malformed START_GAME payload")
		return
	}

	playerID, ok := h.registry.Resolve(conn)
	if !ok {
		return
	}
	room, ok := h.directory.RoomFor(playerID)
	if !ok {
		return
	}

	if room.Start() {
		h.logger.Info("game started", "roomId", room.ID(), "playerId", playerID)
	}
	room.Broadcast(frame, playerID)
}

// handleRelay forwards a gameplay frame verbatim to the sender's room,
// excluding the sender. A sender with no room association is dropped
// silently: an in-flight message racing a disconnect is expected.
func (h *Handler) handleRelay(conn domain.Connection, msgType string, frame []byte, data json.RawMessage) {
	if !validRelayPayload(msgType, data) {
		h.sendError(conn, domain.CodeInvalidMessage, "malformed "+msgType+" payload")
		return
	}

	playerID, ok := h.registry.Resolve(conn)
	if !ok {
		return
	}
	room, ok := h.directory.RoomFor(playerID)
	if !ok {
		return
	}
	room.Broadcast(frame, playerID)
}

func validRelayPayload(msgType string, data json.RawMessage) bool {
	var err error
	switch msgType {
	case domain.TypePlayerPositionUpdate:
		var p domain.PlayerPositionUpdate
		err = json.Unmarshal(data, &p)
	case domain.TypeFoodCollected:
		var p domain.FoodCollected
		err = json.Unmarshal(data, &p)
	case domain.TypePlayerDied:
		var p domain.PlayerDied
		err = json.Unmarshal(data, &p)
	}
	return err == nil
}

// handleGameStateUpdate completes the snapshot handshake: the payload is
// forwarded as GAME_STATE to every joiner waiting on this sender. With no
// one waiting the snapshot is dropped.
func (h *Handler) handleGameStateUpdate(conn domain.Connection, data json.RawMessage) {
	var state domain.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		h.sendError(conn, domain.CodeInvalidMessage, "malformed GAME_STATE_UPDATE payload")
		return
	}

	providerID, ok := h.registry.Resolve(conn)
	if !ok {
		return
	}
	room, ok := h.directory.RoomFor(providerID)
	if !ok {
		return
	}

	joiners := h.reconcile.resolve(providerID)
	if len(joiners) == 0 {
		return
	}

	frame, err := domain.Encode(domain.TypeGameState, state)
	if err != nil {
		return
	}
	for _, joinerID := range joiners {
		if joinerConn, ok := room.Member(joinerID); ok {
			_ = joinerConn.Send(frame)
		}
	}
}

// requestSnapshot asks the longest-present member for its game state on
// behalf of a new joiner. The server holds no simulation state of its own,
// so the snapshot is a two-hop relay through an existing peer.
func (h *Handler) requestSnapshot(room *hub.Room, joinerID string, joinerConn domain.Connection) {
	providerID, providerConn, ok := room.Oldest(joinerID)
	if !ok {
		return
	}

	h.reconcile.begin(providerID, joinerID, func() {
		// queried peer went quiet; let the joiner start from an empty board
		if empty, err := domain.Encode(domain.TypeGameState, domain.GameState{Players: []domain.PlayerSnapshot{}}); err == nil {
			_ = joinerConn.Send(empty)
		}
		h.logger.Warn("snapshot request timed out", "playerId", joinerID, "provider", providerID)
	})

	if req, err := domain.Encode(domain.TypeRequestGameState, struct{}{}); err == nil {
		_ = providerConn.Send(req)
	}
}

func (h *Handler) send(conn domain.Connection, msgType string, payload any) {
	frame, err := domain.Encode(msgType, payload)
	if err != nil {
		h.logger.Error("encode failed", "type", msgType, "error", err)
		return
	}
	if err := conn.Send(frame); err != nil {
		h.logger.Warn("send failed", "type", msgType, "error", err)
	}
}

func (h *Handler) sendError(conn domain.Connection, code, message string) {
	h.send(conn, domain.TypeError, domain.ErrorInfo{Code: code, Message: message})
}
