package domain

// Message types accepted from clients.
const (
	TypeCreateRoom           = "CREATE_ROOM"
	TypeJoinRoom             = "JOIN_ROOM"
	TypeStartGame            = "START_GAME"
	TypePlayerPositionUpdate = "PLAYER_POSITION_UPDATE"
	TypeFoodCollected        = "FOOD_COLLECTED"
	TypePlayerDied           = "PLAYER_DIED"
	TypeGameStateUpdate      = "GAME_STATE_UPDATE"
)

// Message types sent to clients.
const (
	TypeRoomCreated      = "ROOM_CREATED"
	TypeRoomJoined       = "ROOM_JOINED"
	TypePlayerJoined     = "PLAYER_JOINED"
	TypeGameCanStart     = "GAME_CAN_START"
	TypeRequestGameState = "REQUEST_GAME_STATE"
	TypeGameState        = "GAME_STATE"
	TypePlayerLeft       = "PLAYER_LEFT"
	TypeError            = "ERROR"
)

// Error codes carried by ERROR messages.
const (
	CodeInvalidMessage = "INVALID_MESSAGE"
	CodeUnknownMessage = "UNKNOWN_MESSAGE"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomFull       = "ROOM_FULL"
	CodeRoomError      = "ROOM_ERROR"
)

// Vector2D is a grid coordinate in client space.
type Vector2D struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
}

type StartGameRequest struct {
	RoomID string `json:"roomId"`
}

// RoomInfo is the payload of both ROOM_CREATED and ROOM_JOINED.
type RoomInfo struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type PlayerJoined struct {
	PlayerID string `json:"playerId"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type GameCanStart struct {
	RoomID string `json:"roomId"`
}

type PlayerPositionUpdate struct {
	PlayerID  string     `json:"playerId"`
	Positions []Vector2D `json:"positions"`
}

type FoodCollected struct {
	CollectedBy     string   `json:"collectedBy"`
	NewFoodPosition Vector2D `json:"newFoodPosition"`
}

type PlayerDied struct {
	PlayerID       string     `json:"playerId"`
	FinalPositions []Vector2D `json:"finalPositions"`
}

// PlayerSnapshot is one player's locally simulated snake inside a
// GAME_STATE_UPDATE / GAME_STATE payload.
type PlayerSnapshot struct {
	ID    string     `json:"id"`
	Snake []Vector2D `json:"snake"`
}

// GameState is a peer-supplied view of an in-progress game. The server
// relays it without interpretation.
type GameState struct {
	Players      []PlayerSnapshot `json:"players"`
	FoodPosition *Vector2D        `json:"foodPosition"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
