package server

import (
	"encoding/json"
	"fmt"

	"mindmap/editor"
	"mindmap/logging"

	"gonum.org/v1/gonum/spatial/r2"
)

// Message is one input event sent by a websocket client. Type selects which
// payload field is read.
//
//	{"type":"pointerDown","pointer":{"pointer":1,"screen":{"X":10,"Y":20}}}
//	{"type":"key","key":{"key":0,"rune":97}}
//	{"type":"command","command":"addChild","args":{"id":1}}
type Message struct {
	Type      string               `json:"type"`
	Pointer   *editor.PointerEvent `json:"pointer,omitempty"`
	Wheel     *editor.WheelEvent   `json:"wheel,omitempty"`
	Key       *editor.KeyEvent     `json:"key,omitempty"`
	Size      *r2.Vec              `json:"size,omitempty"`
	TextFocus *bool                `json:"textFocus,omitempty"`
	Command   string               `json:"command,omitempty"`
	Args      editor.CommandArgs   `json:"args"`
}

// Reply is a message sent to websocket clients.
type Reply struct {
	Type   string        `json:"type"` // scene, result or error
	Scene  *editor.Scene `json:"scene,omitempty"`
	Result int           `json:"result,omitempty"` // Id of a node created by a command
	Error  string        `json:"error,omitempty"`
}

// encodeReply marshals r, returning nil if it cannot be encoded.
func encodeReply(r Reply) []byte {
	data, err := json.Marshal(r)
	if err != nil {
		logging.Error("failed to encode reply", "type", r.Type, "error", err)
		return nil
	}
	return data
}

// apply delivers a message to the editor. It must run on the loop goroutine.
// Commands return the id of a created node.
func apply(ed *editor.Editor, msg Message) (int, error) {
	missing := fmt.Errorf("%s message without payload", msg.Type)

	switch msg.Type {
	case "pointerDown", "pointerMove", "pointerUp", "pointerCancel":
		if msg.Pointer == nil {
			return 0, missing
		}
		switch msg.Type {
		case "pointerDown":
			ed.PointerDown(*msg.Pointer)
		case "pointerMove":
			ed.PointerMove(*msg.Pointer)
		case "pointerUp":
			ed.PointerUp(*msg.Pointer)
		default:
			ed.PointerCancel(*msg.Pointer)
		}
	case "wheel":
		if msg.Wheel == nil {
			return 0, missing
		}
		ed.Wheel(*msg.Wheel)
	case "key":
		if msg.Key == nil {
			return 0, missing
		}
		ed.HandleKey(*msg.Key)
	case "resize":
		if msg.Size == nil {
			return 0, missing
		}
		ed.SetViewSize(*msg.Size)
	case "textFocus":
		if msg.TextFocus == nil {
			return 0, missing
		}
		ed.SetTextFocus(*msg.TextFocus)
	case "command":
		return ed.Dispatch(msg.Command, msg.Args)
	default:
		return 0, fmt.Errorf("unknown message type: %q", msg.Type)
	}
	return 0, nil
}
