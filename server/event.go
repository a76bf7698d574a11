package server

// Emitter 出站事件接收方。核心只生产事件，投递由传输适配层实现；
// 实现必须是即发即弃：接收方慢或已断开都不得阻塞调用方（Tick 循环）。
type Emitter interface {
	Emit(to ConnID, event any)
}

// 出站事件类型名（WebSocket 文本帧 JSON 的 type 字段）
const (
	EventRoomCreated          = "room_created"
	EventRoomJoined           = "room_joined"
	EventPlayerJoined         = "player_joined"
	EventPlayerReadyStatus    = "player_ready_status"
	EventGameStart            = "game_start"
	EventGameState            = "game_state"
	EventGoalScored           = "goal_scored"
	EventGameOver             = "game_over"
	EventOpponentDisconnected = "opponent_disconnected"
	EventError                = "error"
)

// RoomCreatedEvent 回给创建者：房间码与分配的槽位
type RoomCreatedEvent struct {
	Type         string `json:"type"`
	RoomCode     string `json:"roomCode"`
	PlayerNumber int    `json:"playerNumber"`
}

// RoomJoinedEvent 回给加入者
type RoomJoinedEvent struct {
	Type         string `json:"type"`
	RoomCode     string `json:"roomCode"`
	PlayerNumber int    `json:"playerNumber"`
}

// RosterEntry player_joined 载荷中的精简席位信息
type RosterEntry struct {
	Name         string `json:"name"`
	PlayerNumber int    `json:"playerNumber"`
}

// PlayerJoinedEvent 广播给房间全员：当前名单
type PlayerJoinedEvent struct {
	Type    string        `json:"type"`
	Players []RosterEntry `json:"players"`
}

// PlayerReadyStatusEvent 广播给房间全员：含准备状态的完整名单
type PlayerReadyStatusEvent struct {
	Type    string       `json:"type"`
	Players []Membership `json:"players"`
}

// GameStartEvent 双方就绪后广播一次
type GameStartEvent struct {
	Type      string     `json:"type"`
	GameState *GameState `json:"gameState"`
}

// GameStateEvent 每 Tick 的权威状态快照
type GameStateEvent struct {
	Type      string     `json:"type"`
	GameState *GameState `json:"gameState"`
}

// GoalScoredEvent 进球帧附带进球方与最新比分
type GoalScoredEvent struct {
	Type         string `json:"type"`
	PlayerScored int    `json:"playerScored"`
	Score        Score  `json:"score"`
}

// GameOverEvent 胜负已分
type GameOverEvent struct {
	Type       string `json:"type"`
	Winner     int    `json:"winner"`
	WinnerName string `json:"winnerName"`
}

// OpponentDisconnectedEvent 对手断线，房间随即销毁
type OpponentDisconnectedEvent struct {
	Type string `json:"type"`
}

// ErrorEvent 可恢复错误，只回给肇事连接
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
