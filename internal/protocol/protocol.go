// Package protocol defines the records exchanged between the server and the
// table clients.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies a record kind on the wire.
type MessageType string

const (
	MsgLogin            MessageType = "login"
	MsgPositionAssigned MessageType = "position_assigned"
	MsgFlipCard         MessageType = "flip_card"
	MsgRingBell         MessageType = "ring_bell"
	MsgTurnUpdate       MessageType = "turn_update"
	MsgScoreUpdate      MessageType = "score_update"
	MsgLogout           MessageType = "logout"
	MsgGameOver         MessageType = "game_over"
)

// RemovedScore is the score carried by a ScoreUpdate announcing that a seat
// has been vacated.
const RemovedScore = -1

// ErrUndecodable marks a frame that cannot be turned into a Message.
var ErrUndecodable = errors.New("undecodable frame")

var knownTypes = map[MessageType]bool{
	MsgLogin:            true,
	MsgPositionAssigned: true,
	MsgFlipCard:         true,
	MsgRingBell:         true,
	MsgTurnUpdate:       true,
	MsgScoreUpdate:      true,
	MsgLogout:           true,
	MsgGameOver:         true,
}

// CardRef is a card as reported by a client: an advisory kind and the image
// reference the card is decoded from.
type CardRef struct {
	Kind     string `json:"kind,omitempty"`
	ImageRef string `json:"imageRef"`
}

// Message is the wire envelope. Fields not used by a message type are left
// empty; Score is a pointer so that a zero score is still transmitted.
type Message struct {
	Type     MessageType `json:"type"`
	ClientID string      `json:"clientId,omitempty"`
	Seat     string      `json:"seat,omitempty"`
	Card     *CardRef    `json:"card,omitempty"`
	Score    *int        `json:"score,omitempty"`
}

// ScoreValue returns the score carried by the message, or zero.
func (m Message) ScoreValue() int {
	if m.Score == nil {
		return 0
	}
	return *m.Score
}

// Login is the first record a client sends.
func Login(clientID string) Message {
	return Message{Type: MsgLogin, ClientID: clientID}
}

// PositionAssigned tells a client which seat it holds.
func PositionAssigned(seat string) Message {
	return Message{Type: MsgPositionAssigned, Seat: seat}
}

// FlipCard reveals a card for a seat.
func FlipCard(clientID, seat string, card CardRef) Message {
	return Message{Type: MsgFlipCard, ClientID: clientID, Seat: seat, Card: &card}
}

// RingBell claims the revealed cards score.
func RingBell(clientID, seat string) Message {
	return Message{Type: MsgRingBell, ClientID: clientID, Seat: seat}
}

// TurnUpdate names the seat allowed to reveal next.
func TurnUpdate(seat string) Message {
	return Message{Type: MsgTurnUpdate, Seat: seat}
}

// ScoreUpdate carries a seat's score, or RemovedScore when the seat left.
func ScoreUpdate(clientID, seat string, score int) Message {
	return Message{Type: MsgScoreUpdate, ClientID: clientID, Seat: seat, Score: &score}
}

// GameOver names the winner and the winning score.
func GameOver(clientID string, score int) Message {
	return Message{Type: MsgGameOver, ClientID: clientID, Score: &score}
}

// Encode serializes a message into a single JSON record.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	return data, nil
}

// Decode parses one JSON record. Malformed JSON and unknown types are
// reported as ErrUndecodable.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if err := Validate(msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Validate checks that the message carries a known type.
func Validate(msg Message) error {
	if !knownTypes[msg.Type] {
		return fmt.Errorf("%w: unknown message type %q", ErrUndecodable, msg.Type)
	}
	return nil
}
