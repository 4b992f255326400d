// Package protocol defines the JSON messages exchanged with game clients.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	TypeInitialize = "initialize"
	TypePlaceTile  = "placeTile"
	TypeGiveTurn   = "giveTurn"
	TypeTerminate  = "terminate"
)

var (
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// ServerMessage is implemented by every message the server sends.
type ServerMessage interface {
	MessageType() string
}

// ClientMessage is implemented by every message a client may send.
type ClientMessage interface {
	clientMessage()
}

type Initialize struct {
	Color entity.Color `json:"color"`
}

type TileRelay struct {
	TileIndex int          `json:"tileIndex"`
	Color     entity.Color `json:"color"`
}

type GiveTurn struct{}

// Terminate ends the game for its recipient. Win is nil when the opponent left.
type Terminate struct {
	Win *bool `json:"win"`
}

type PlaceTile struct {
	Index int
	Color entity.Color
}

func (Initialize) MessageType() string { return TypeInitialize }
func (TileRelay) MessageType() string  { return TypePlaceTile }
func (GiveTurn) MessageType() string   { return TypeGiveTurn }
func (Terminate) MessageType() string  { return TypeTerminate }

func (PlaceTile) clientMessage() {}

func NewTerminate(win bool) Terminate {
	return Terminate{Win: &win}
}

func OpponentLeft() Terminate {
	return Terminate{}
}

// Encode renders msg as a single JSON object with its type tag first.
func Encode(msg ServerMessage) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", msg.MessageType(), err)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)

	typeJSON, err := json.Marshal(msg.MessageType())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal type: %w", err)
	}
	buf.Write(typeJSON)

	if fields := bytes.TrimSpace(body[1 : len(body)-1]); len(fields) > 0 {
		buf.WriteByte(',')
		buf.Write(fields)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

type envelope struct {
	Type string `json:"type"`
}

type placeTilePayload struct {
	Index *int    `json:"index"`
	Color *string `json:"color"`
}

// Decode parses a client frame. Unknown types return ErrUnknownMessageType,
// unparseable frames and missing fields return ErrMalformedMessage.
func Decode(data []byte) (ClientMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypePlaceTile:
		return decodePlaceTile(data)
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

func decodePlaceTile(data []byte) (ClientMessage, error) {
	var payload placeTilePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	if payload.Index == nil {
		return nil, fmt.Errorf("%w: placeTile without index", ErrMalformedMessage)
	}

	if payload.Color == nil {
		return nil, fmt.Errorf("%w: placeTile without color", ErrMalformedMessage)
	}

	color := entity.Color(*payload.Color)
	if !color.IsValid() {
		return nil, fmt.Errorf("%w: color %q", ErrMalformedMessage, *payload.Color)
	}

	return PlaceTile{Index: *payload.Index, Color: color}, nil
}
