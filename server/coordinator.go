package server

import (
	"context"
	"errors"
	"time"
)

// Coordinator 会话协调器：在单一 goroutine 上串行处理意图与 Tick，
// 保证同一房间的状态永远只有一个写者。意图经带缓冲通道汇入，
// 网络读协程永远不会直接触碰房间状态。
type Coordinator struct {
	registry *Registry
	emitter  Emitter
	metrics  *Metrics

	intents  chan Intent
	interval time.Duration
	done     chan struct{}
}

// NewCoordinator 创建协调器。interval 为 Tick 周期，传 0 使用默认 TickInterval
func NewCoordinator(reg *Registry, em Emitter, m *Metrics, interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = TickInterval
	}
	return &Coordinator{
		registry: reg,
		emitter:  em,
		metrics:  m,
		intents:  make(chan Intent, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Dispatch 非阻塞入队一条客户端意图。队列拥塞时丢弃，保证 Tick 准时
func (c *Coordinator) Dispatch(in Intent) {
	select {
	case c.intents <- in:
		c.metrics.IncIntentAccepted()
	default:
		c.metrics.IncIntentDropped()
	}
}

// Disconnect 入队断线事件。为保证房间一定被清理，这里采用阻塞式写入
// （通道有容量，正常情况下不会等待）；循环已退出时放行，避免停机后
// 迟到的读泵永久阻塞
func (c *Coordinator) Disconnect(id ConnID) {
	select {
	case c.intents <- Intent{Conn: id, Type: IntentDisconnect}:
	case <-c.done:
	}
}

// Run 协调主循环：意图 → Tick 交替推进，直至 ctx 取消。只能调用一次。
// HandleIntent 与 TickAll 仅在本循环的 goroutine 上执行。
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-c.intents:
			c.HandleIntent(in)
		case <-ticker.C:
			start := time.Now()
			c.TickAll()
			c.metrics.AddTick(time.Since(start).Nanoseconds())
		}
	}
}

// HandleIntent 将一条意图翻译为一次注册表调用，并对外发出相应事件。
// 引用已消失房间/席位的意图按良性乱序静默忽略；任何输入都不得使循环崩溃。
func (c *Coordinator) HandleIntent(in Intent) {
	switch in.Type {
	case IntentCreateRoom:
		c.handleCreate(in)
	case IntentJoinRoom:
		c.handleJoin(in)
	case IntentReady:
		c.handleReady(in)
	case IntentMove:
		c.registry.ApplyMovement(in.RoomCode, in.Conn, in.Direction)
	case IntentDisconnect:
		c.handleDisconnect(in)
	}
}

func (c *Coordinator) handleCreate(in Intent) {
	name := in.PlayerName
	if name == "" {
		name = "Player 1"
	}
	r, err := c.registry.CreateRoom(in.Conn, name)
	if err != nil {
		c.emitter.Emit(in.Conn, ErrorEvent{Type: EventError, Message: "Could not create room"})
		return
	}
	c.metrics.IncRoomCreated()
	c.emitter.Emit(in.Conn, RoomCreatedEvent{Type: EventRoomCreated, RoomCode: r.Code, PlayerNumber: 1})
	Log.Infof("room %s created by %s", r.Code, in.Conn)
}

func (c *Coordinator) handleJoin(in Intent) {
	name := in.PlayerName
	if name == "" {
		name = "Player 2"
	}
	r, slot, err := c.registry.JoinRoom(in.RoomCode, in.Conn, name)
	if err != nil {
		msg := "Room not found"
		if errors.Is(err, ErrRoomFull) {
			msg = "Room is full"
		}
		c.emitter.Emit(in.Conn, ErrorEvent{Type: EventError, Message: msg})
		return
	}
	c.emitter.Emit(in.Conn, RoomJoinedEvent{Type: EventRoomJoined, RoomCode: r.Code, PlayerNumber: slot})

	roster := make([]RosterEntry, 0, len(r.Players))
	for _, m := range r.Roster() {
		roster = append(roster, RosterEntry{Name: m.Name, PlayerNumber: m.PlayerNumber})
	}
	c.emitRoom(r, PlayerJoinedEvent{Type: EventPlayerJoined, Players: roster})
	Log.Infof("conn %s joined room %s as player %d", in.Conn, r.Code, slot)
}

func (c *Coordinator) handleReady(in Intent) {
	r, bothReady := c.registry.SetReady(in.RoomCode, in.Conn)
	if r == nil {
		return
	}
	c.emitRoom(r, PlayerReadyStatusEvent{Type: EventPlayerReadyStatus, Players: r.Roster()})

	if !bothReady {
		return
	}
	// IsPlaying 的写入走注册表锁（StartGame），与管理接口的概览读取互斥
	if started, ok := c.registry.StartGame(in.RoomCode); ok {
		c.emitRoom(started, GameStartEvent{Type: EventGameStart, GameState: started.State})
		Log.Infof("game started in room %s", started.Code)
	}
}

// handleDisconnect 扫描全部房间找到断线连接的席位：通知剩余成员后整间销毁。
// 每间至多两个席位，线性扫描足够廉价，无需反向索引。
func (c *Coordinator) handleDisconnect(in Intent) {
	for _, r := range c.registry.Rooms() {
		if r.Member(in.Conn) == nil {
			continue
		}
		for id := range r.Players {
			if id != in.Conn {
				c.emitter.Emit(id, OpponentDisconnectedEvent{Type: EventOpponentDisconnected})
			}
		}
		c.registry.RemoveRoom(r.Code)
		c.metrics.IncRoomRemoved()
		Log.Infof("room %s removed: conn %s disconnected", r.Code, in.Conn)
	}
}

// TickAll 推进所有进行中的房间各一帧并广播结果。
// 状态写入在注册表锁内进行，与管理接口的概览读取互斥；
// 事件发射即发即弃，慢接收方不会拖慢其他房间。
func (c *Coordinator) TickAll() {
	c.registry.ForEachRoom(func(r *Room) {
		if !r.State.IsPlaying {
			return
		}
		goal, winner := Tick(r.State)

		c.emitRoom(r, GameStateEvent{Type: EventGameState, GameState: r.State})

		if goal != 0 {
			c.metrics.IncGoal()
			c.emitRoom(r, GoalScoredEvent{Type: EventGoalScored, PlayerScored: goal, Score: r.State.Score})
		}
		if winner != 0 {
			c.metrics.IncGameFinished()
			c.emitRoom(r, GameOverEvent{Type: EventGameOver, Winner: winner, WinnerName: r.NameOf(winner)})
			// 清掉准备标记允许重赛；比分保留，房间驻留直至断线
			for _, m := range r.Players {
				m.Ready = false
			}
			Log.Infof("game over in room %s: player %d wins", r.Code, winner)
		}
	})
}

// emitRoom 向房间全体成员各发一份事件
func (c *Coordinator) emitRoom(r *Room, event any) {
	for id := range r.Players {
		c.emitter.Emit(id, event)
	}
}
