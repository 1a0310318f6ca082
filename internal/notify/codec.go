package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns a notification into a wire frame for byte-oriented transports.
type Codec interface {
	Name() string
	Marshal(n Notification) ([]byte, error)
	// Binary reports whether frames must be sent as binary messages.
	Binary() bool
}

// CodecByName returns the codec registered under name. An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	default:
		return nil, fmt.Errorf("unknown codec %q: must be 'json' or 'msgpack'", name)
	}
}

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Name() string                           { return "json" }
func (jsonCodec) Binary() bool                           { return false }
func (jsonCodec) Marshal(n Notification) ([]byte, error) { return json.Marshal(n) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string                           { return "msgpack" }
func (msgpackCodec) Binary() bool                           { return true }
func (msgpackCodec) Marshal(n Notification) ([]byte, error) { return msgpack.Marshal(n) }

// emitValue is what socket.io transports hand to Emit: JSON notifications go
// out as structured arguments, binary codecs as a byte attachment.
func emitValue(c Codec, n Notification) (any, error) {
	if !c.Binary() {
		return n, nil
	}
	return c.Marshal(n)
}
