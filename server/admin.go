package server

import (
	"encoding/json"
	"net/http"
)

// HandleAdminConfig 只读导出当前编译期游戏常量
// GET /admin/config
func HandleAdminConfig() http.HandlerFunc {
	cfg := map[string]any{
		"boardWidth":     BoardWidth,
		"boardHeight":    BoardHeight,
		"paddleWidth":    PaddleWidth,
		"paddleHeight":   PaddleHeight,
		"paddleOffset":   PaddleOffset,
		"paddleSpeed":    PaddleSpeed,
		"ballSize":       BallSize,
		"ballVelocityX":  InitialBallVelocityX,
		"ballVelocityY":  InitialBallVelocityY,
		"winningScore":   WinningScore,
		"ticksPerSecond": TicksPerSecond,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			// 规则常量不可热更新：服务端与客户端预测必须一致
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg)
	}
}

// HandleAdminRooms 列出当前全部房间的概览（排障用，含泄漏房间可见性）
// GET /admin/rooms
func HandleAdminRooms(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		// 只读持锁拷贝：HTTP 协程不触碰房间内部状态，避免与 Tick 写入竞争
		out := reg.RoomSummaries()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"count": len(out), "rooms": out})
	}
}

// HandleMetrics 输出进程级运行指标
// GET /metrics
func HandleMetrics(m *Metrics, reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"active_rooms": reg.Count(),
			"metrics":      m.Snapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}
