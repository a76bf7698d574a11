package server

import (
	"encoding/json"
	"strings"
)

// IntentType 入站意图类别。Disconnect 来自传输层事件，其余来自客户端消息
type IntentType int

const (
	IntentCreateRoom IntentType = iota
	IntentJoinRoom
	IntentReady
	IntentMove
	IntentDisconnect
)

// Intent 客户端意图，由协调器在单一调度线程中解释并驱动房间状态
type Intent struct {
	Conn       ConnID
	Type       IntentType
	RoomCode   string
	PlayerName string
	Direction  Direction
}

// intentMessage 入站 WebSocket 文本帧的 JSON 结构
// 示例：{"type":"paddle_move","roomCode":"A3F9","direction":"up"}
type intentMessage struct {
	Type       string `json:"type"`
	RoomCode   string `json:"roomCode,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Direction  string `json:"direction,omitempty"`
}

// ParseIntent 将一帧载荷解析为 Intent。畸形或未知消息返回 false，
// 调用方直接丢弃——任何异常输入都不允许影响 Tick 循环。
func ParseIntent(conn ConnID, payload []byte) (Intent, bool) {
	var im intentMessage
	if err := json.Unmarshal(payload, &im); err != nil {
		return Intent{}, false
	}

	in := Intent{Conn: conn, RoomCode: strings.ToUpper(im.RoomCode), PlayerName: im.PlayerName}
	switch im.Type {
	case "create_room":
		in.Type = IntentCreateRoom
	case "join_room":
		in.Type = IntentJoinRoom
	case "player_ready":
		in.Type = IntentReady
	case "paddle_move":
		in.Type = IntentMove
		switch im.Direction {
		case "up":
			in.Direction = DirUp
		case "down":
			in.Direction = DirDown
		case "stop":
			in.Direction = DirStop
		default:
			return Intent{}, false
		}
	default:
		return Intent{}, false
	}
	return in, true
}
