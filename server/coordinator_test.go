package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pongarena/server"
)

// fakeEmitter 捕获协调器发出的全部事件，按序记录
type fakeEmitter struct {
	events []emitted
}

type emitted struct {
	to    server.ConnID
	event any
}

func (f *fakeEmitter) Emit(to server.ConnID, event any) {
	f.events = append(f.events, emitted{to: to, event: event})
}

func (f *fakeEmitter) reset() { f.events = nil }

// ofType 过滤出指定类型的事件记录
func ofType[T any](f *fakeEmitter) []emitted {
	var out []emitted
	for _, e := range f.events {
		if _, ok := e.event.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

func newTestCoordinator() (*server.Coordinator, *server.Registry, *fakeEmitter) {
	reg := server.NewRegistry()
	em := &fakeEmitter{}
	c := server.NewCoordinator(reg, em, &server.Metrics{}, 0)
	return c, reg, em
}

// createRoom 通过意图创建房间并返回事件中带回的房间码
func createRoom(t *testing.T, c *server.Coordinator, em *fakeEmitter, conn server.ConnID, name string) string {
	t.Helper()
	c.HandleIntent(server.Intent{Conn: conn, Type: server.IntentCreateRoom, PlayerName: name})
	created := ofType[server.RoomCreatedEvent](em)
	require.Len(t, created, 1)
	ev := created[0].event.(server.RoomCreatedEvent)
	require.Equal(t, conn, created[0].to)
	require.Equal(t, 1, ev.PlayerNumber)
	return ev.RoomCode
}

// startedGame 走完 创建→加入→双就绪 的完整流程，返回房间码
func startedGame(t *testing.T, c *server.Coordinator, em *fakeEmitter) string {
	t.Helper()
	code := createRoom(t, c, em, "conn-a", "Alice")
	c.HandleIntent(server.Intent{Conn: "conn-b", Type: server.IntentJoinRoom, RoomCode: code, PlayerName: "Bob"})
	c.HandleIntent(server.Intent{Conn: "conn-a", Type: server.IntentReady, RoomCode: code})
	c.HandleIntent(server.Intent{Conn: "conn-b", Type: server.IntentReady, RoomCode: code})
	em.reset()
	return code
}

// TestCreateJoinReadyFlow 完整开局流程：事件逐步发出，game_start 恰好一次
func TestCreateJoinReadyFlow(t *testing.T) {
	c, reg, em := newTestCoordinator()

	code := createRoom(t, c, em, "conn-a", "Alice")

	c.HandleIntent(server.Intent{Conn: "conn-b", Type: server.IntentJoinRoom, RoomCode: code, PlayerName: "Bob"})

	joined := ofType[server.RoomJoinedEvent](em)
	require.Len(t, joined, 1)
	assert.Equal(t, server.ConnID("conn-b"), joined[0].to)
	assert.Equal(t, 2, joined[0].event.(server.RoomJoinedEvent).PlayerNumber)

	// player_joined 广播给房间全员，名单按槽位排序
	rosterEvents := ofType[server.PlayerJoinedEvent](em)
	require.Len(t, rosterEvents, 2)
	roster := rosterEvents[0].event.(server.PlayerJoinedEvent).Players
	require.Len(t, roster, 2)
	assert.Equal(t, server.RosterEntry{Name: "Alice", PlayerNumber: 1}, roster[0])
	assert.Equal(t, server.RosterEntry{Name: "Bob", PlayerNumber: 2}, roster[1])

	// 第一个就绪：只有状态广播，不开局
	c.HandleIntent(server.Intent{Conn: "conn-a", Type: server.IntentReady, RoomCode: code})
	assert.Len(t, ofType[server.PlayerReadyStatusEvent](em), 2)
	assert.Empty(t, ofType[server.GameStartEvent](em))

	// 第二个就绪：开局，game_start 每名成员恰好收到一次
	c.HandleIntent(server.Intent{Conn: "conn-b", Type: server.IntentReady, RoomCode: code})
	starts := ofType[server.GameStartEvent](em)
	require.Len(t, starts, 2)
	assert.True(t, starts[0].event.(server.GameStartEvent).GameState.IsPlaying)

	r, ok := reg.Lookup(code)
	require.True(t, ok)
	assert.True(t, r.State.IsPlaying)

	// 重复就绪不会再次触发开局
	c.HandleIntent(server.Intent{Conn: "conn-a", Type: server.IntentReady, RoomCode: code})
	assert.Len(t, ofType[server.GameStartEvent](em), 2)
}

// TestJoinFailures 加入失败只给肇事连接回通用错误消息
func TestJoinFailures(t *testing.T) {
	c, _, em := newTestCoordinator()
	code := createRoom(t, c, em, "conn-a", "Alice")

	c.HandleIntent(server.Intent{Conn: "conn-x", Type: server.IntentJoinRoom, RoomCode: "NOPE", PlayerName: "Xavier"})
	errs := ofType[server.ErrorEvent](em)
	require.Len(t, errs, 1)
	assert.Equal(t, server.ConnID("conn-x"), errs[0].to)
	assert.Equal(t, "Room not found", errs[0].event.(server.ErrorEvent).Message)

	c.HandleIntent(server.Intent{Conn: "conn-b", Type: server.IntentJoinRoom, RoomCode: code, PlayerName: "Bob"})
	em.reset()
	c.HandleIntent(server.Intent{Conn: "conn-c", Type: server.IntentJoinRoom, RoomCode: code, PlayerName: "Carol"})
	errs = ofType[server.ErrorEvent](em)
	require.Len(t, errs, 1)
	assert.Equal(t, "Room is full", errs[0].event.(server.ErrorEvent).Message)
}

// TestTickBroadcast 每 Tick 向对局中房间全员广播权威状态，移动意图在下一帧生效
func TestTickBroadcast(t *testing.T) {
	c, _, em := newTestCoordinator()
	code := startedGame(t, c, em)

	c.HandleIntent(server.Intent{Conn: "conn-a", Type: server.IntentMove, RoomCode: code, Direction: server.DirUp})
	c.TickAll()

	states := ofType[server.GameStateEvent](em)
	require.Len(t, states, 2)
	got := states[0].event.(server.GameStateEvent).GameState
	assert.Equal(t, server.BoardHeight/2-server.PaddleSpeed, got.Player1.Y)

	recipients := map[server.ConnID]bool{states[0].to: true, states[1].to: true}
	assert.True(t, recipients["conn-a"] && recipients["conn-b"])
}

// TestTickSkipsIdleRooms 未开局房间不广播也不推进
func TestTickSkipsIdleRooms(t *testing.T) {
	c, _, em := newTestCoordinator()
	createRoom(t, c, em, "conn-a", "Alice")
	em.reset()

	c.TickAll()
	assert.Empty(t, em.events)
}

// TestGoalAndGameOver 进球与胜负事件；胜负后清就绪、留比分、房间驻留
func TestGoalAndGameOver(t *testing.T) {
	c, reg, em := newTestCoordinator()
	code := startedGame(t, c, em)
	r, ok := reg.Lookup(code)
	require.True(t, ok)

	// 摆一记空门：球即将越过右边线
	r.State.Ball.X = server.BoardWidth - server.BallSize + 3
	r.State.Ball.Y = 300
	r.State.Ball.VelocityX = 5
	r.State.Ball.VelocityY = 0
	c.TickAll()

	goals := ofType[server.GoalScoredEvent](em)
	require.Len(t, goals, 2)
	ev := goals[0].event.(server.GoalScoredEvent)
	assert.Equal(t, 1, ev.PlayerScored)
	assert.Equal(t, server.Score{Player1: 1, Player2: 0}, ev.Score)
	assert.Empty(t, ofType[server.GameOverEvent](em))

	// 直接垫到赛点再进一球
	em.reset()
	r.State.Score.Player1 = server.WinningScore - 1
	r.State.Ball.X = server.BoardWidth - server.BallSize + 3
	r.State.Ball.Y = 300
	r.State.Ball.VelocityX = 5
	r.State.Ball.VelocityY = 0
	c.TickAll()

	overs := ofType[server.GameOverEvent](em)
	require.Len(t, overs, 2)
	over := overs[0].event.(server.GameOverEvent)
	assert.Equal(t, 1, over.Winner)
	assert.Equal(t, "Alice", over.WinnerName)
	// 胜负帧同样带有进球事件
	assert.Len(t, ofType[server.GoalScoredEvent](em), 2)

	assert.False(t, r.State.IsPlaying)
	assert.Equal(t, server.WinningScore, r.State.Score.Player1, "rematch inherits the score")
	for _, m := range r.Players {
		assert.False(t, m.Ready, "ready flags reset for rematch")
	}
	_, stillThere := reg.Lookup(code)
	assert.True(t, stillThere, "room stays registered until a disconnect")
}

// TestDisconnect 断线：幸存者收到通知，房间随即不可解析
func TestDisconnect(t *testing.T) {
	c, reg, em := newTestCoordinator()
	code := startedGame(t, c, em)

	c.HandleIntent(server.Intent{Conn: "conn-a", Type: server.IntentDisconnect})

	notices := ofType[server.OpponentDisconnectedEvent](em)
	require.Len(t, notices, 1)
	assert.Equal(t, server.ConnID("conn-b"), notices[0].to)

	_, ok := reg.Lookup(code)
	assert.False(t, ok)

	// 残留的在途意图按良性乱序静默忽略
	em.reset()
	c.HandleIntent(server.Intent{Conn: "conn-b", Type: server.IntentReady, RoomCode: code})
	c.HandleIntent(server.Intent{Conn: "conn-b", Type: server.IntentMove, RoomCode: code, Direction: server.DirUp})
	assert.Empty(t, em.events)
}

// TestDisconnectUnknownConn 与任何房间无关的断线是无操作
func TestDisconnectUnknownConn(t *testing.T) {
	c, reg, em := newTestCoordinator()
	code := startedGame(t, c, em)

	c.HandleIntent(server.Intent{Conn: "stranger", Type: server.IntentDisconnect})

	assert.Empty(t, em.events)
	_, ok := reg.Lookup(code)
	assert.True(t, ok)
}

// TestDisconnectAfterShutdown 循环停止后 Disconnect 必须放行而非永久阻塞，
// 即使入队量超过意图通道容量
func TestDisconnectAfterShutdown(t *testing.T) {
	c, _, _ := newTestCoordinator()

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(runDone)
	}()
	cancel()
	<-runDone

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			c.Disconnect("late-conn")
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnect blocked after coordinator shutdown")
	}
}

// TestParseIntent 入站帧解析：合法意图通过，畸形与未知类型丢弃
func TestParseIntent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    server.Intent
		ok      bool
	}{
		{
			name:    "create room",
			payload: `{"type":"create_room","playerName":"Alice"}`,
			want:    server.Intent{Conn: "c1", Type: server.IntentCreateRoom, PlayerName: "Alice"},
			ok:      true,
		},
		{
			name:    "join room uppercases the code",
			payload: `{"type":"join_room","roomCode":"ab3f","playerName":"Bob"}`,
			want:    server.Intent{Conn: "c1", Type: server.IntentJoinRoom, RoomCode: "AB3F", PlayerName: "Bob"},
			ok:      true,
		},
		{
			name:    "paddle move up",
			payload: `{"type":"paddle_move","roomCode":"AB3F","direction":"up"}`,
			want:    server.Intent{Conn: "c1", Type: server.IntentMove, RoomCode: "AB3F", Direction: server.DirUp},
			ok:      true,
		},
		{
			name:    "paddle move stop",
			payload: `{"type":"paddle_move","roomCode":"AB3F","direction":"stop"}`,
			want:    server.Intent{Conn: "c1", Type: server.IntentMove, RoomCode: "AB3F", Direction: server.DirStop},
			ok:      true,
		},
		{
			name:    "unknown direction rejected",
			payload: `{"type":"paddle_move","roomCode":"AB3F","direction":"left"}`,
			ok:      false,
		},
		{
			name:    "unknown type rejected",
			payload: `{"type":"spectate"}`,
			ok:      false,
		},
		{
			name:    "malformed json rejected",
			payload: `{"type":`,
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, ok := server.ParseIntent("c1", []byte(tt.payload))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, in)
			}
		})
	}
}
