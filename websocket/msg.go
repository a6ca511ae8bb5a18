package websocket

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// MsgType discriminates protocol messages.
type MsgType string

const (
	MsgTypePing          MsgType = "ping"
	MsgTypePong          MsgType = "pong"
	MsgTypeViewportState MsgType = "viewport_state"
	MsgTypeCovering      MsgType = "covering"
	MsgTypeError         MsgType = "error"
)

// Error codes carried by MsgTypeError responses.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeUnknownType = "unknown_type"
)

// Msg is the protocol envelope. Seq is chosen by the client and echoed back
// on the response, so a renderer can discard coverings from stale frames.
type Msg struct {
	Type MsgType         `json:"type"`
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMsg builds an envelope around a payload.
func NewMsg(msgType MsgType, seq uint64, payload any) (Msg, error) {
	msg := Msg{Type: msgType, Seq: seq}
	if payload == nil {
		return msg, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Msg{}, errors.New("encoding message payload failed").
			WithTag("msg_type", msgType).
			Wrap(err)
	}
	msg.Data = data
	return msg, nil
}

// DataTo decodes the payload into v.
func (m Msg) DataTo(v any) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return errors.New("decoding message payload failed").
			WithTag("msg_type", m.Type).
			Wrap(err)
	}
	return nil
}

// ErrorData is the payload of MsgTypeError.
type ErrorData struct {
	Code string `json:"code"`
}

// Codec sends and receives envelopes over a WebSocket connection.
var Codec = websocket.Codec{
	Marshal: func(v any) ([]byte, byte, error) {
		data, err := json.Marshal(v)
		return data, websocket.TextFrame, err
	},
	Unmarshal: func(data []byte, _ byte, v any) error {
		return json.Unmarshal(data, v)
	},
}
