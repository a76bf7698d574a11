package server

import "sync/atomic"

// Metrics 进程级运行指标（用于 /metrics 监控与排障）
type Metrics struct {
	RoomsCreated    int64 // 已创建的房间数
	RoomsRemoved    int64 // 已销毁的房间数
	IntentsAccepted int64 // 被接受入队的意图数
	IntentsDropped  int64 // 因队列满被丢弃的意图数
	TickCount       int64 // Tick 总轮数（对全部房间的一次推进算一轮）
	TotalTickNs     int64 // Tick 累计耗时（纳秒）
	GoalsScored     int64 // 进球总数
	GamesFinished   int64 // 分出胜负的对局数
}

func (m *Metrics) IncRoomCreated() { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *Metrics) IncRoomRemoved() { atomic.AddInt64(&m.RoomsRemoved, 1) }
func (m *Metrics) IncIntentAccepted() { atomic.AddInt64(&m.IntentsAccepted, 1) }
func (m *Metrics) IncIntentDropped() { atomic.AddInt64(&m.IntentsDropped, 1) }
func (m *Metrics) IncGoal() { atomic.AddInt64(&m.GoalsScored, 1) }
func (m *Metrics) IncGameFinished() { atomic.AddInt64(&m.GamesFinished, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"rooms_created":    atomic.LoadInt64(&m.RoomsCreated),
		"rooms_removed":    atomic.LoadInt64(&m.RoomsRemoved),
		"intents_accepted": atomic.LoadInt64(&m.IntentsAccepted),
		"intents_dropped":  atomic.LoadInt64(&m.IntentsDropped),
		"tick_count":       tick,
		"avg_tick_ms":      avgMs,
		"goals_scored":     atomic.LoadInt64(&m.GoalsScored),
		"games_finished":   atomic.LoadInt64(&m.GamesFinished),
	}
}
