// Package wire encodes stream frames as JSON text or msgpack binary
// websocket messages. Both encodings use the json struct tags.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pefman/naval-duel/internal/models"
)

type Encoding string

const (
	JSON    Encoding = "json"
	MsgPack Encoding = "msgpack"
)

// ParseEncoding maps a query value to an Encoding; empty means JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(s)) {
	case "", JSON:
		return JSON, nil
	case MsgPack, "mp":
		return MsgPack, nil
	}
	return "", fmt.Errorf("unknown encoding %q", s)
}

// Encode returns the websocket message type and payload for m.
func Encode(enc Encoding, m models.WsMsg) (int, []byte, error) {
	if enc == MsgPack {
		var buf bytes.Buffer
		e := msgpack.NewEncoder(&buf)
		e.SetCustomStructTag("json")
		if err := e.Encode(m); err != nil {
			return 0, nil, err
		}
		return websocket.BinaryMessage, buf.Bytes(), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return 0, nil, err
	}
	return websocket.TextMessage, b, nil
}

// Frame is a received message whose payload has not been decoded yet.
type Frame struct {
	Type   string
	binary bool
	data   []byte
}

type jsonEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type msgpackEnvelope struct {
	Type string             `json:"type"`
	Data msgpack.RawMessage `json:"data"`
}

// Decode reads the envelope of a websocket message. The encoding follows
// the message type.
func Decode(msgType int, payload []byte) (Frame, error) {
	switch msgType {
	case websocket.BinaryMessage:
		var env msgpackEnvelope
		d := msgpack.NewDecoder(bytes.NewReader(payload))
		d.SetCustomStructTag("json")
		if err := d.Decode(&env); err != nil {
			return Frame{}, err
		}
		return Frame{Type: env.Type, binary: true, data: env.Data}, nil
	case websocket.TextMessage:
		var env jsonEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return Frame{}, err
		}
		return Frame{Type: env.Type, data: env.Data}, nil
	}
	return Frame{}, fmt.Errorf("unexpected websocket message type %d", msgType)
}

// Into decodes the frame payload into v.
func (f Frame) Into(v interface{}) error {
	if len(f.data) == 0 {
		return fmt.Errorf("%s frame has no data", f.Type)
	}
	if f.binary {
		d := msgpack.NewDecoder(bytes.NewReader(f.data))
		d.SetCustomStructTag("json")
		return d.Decode(v)
	}
	return json.Unmarshal(f.data, v)
}
