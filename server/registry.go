package server

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// 可恢复错误分类。对外只以通用 error 事件附带人类可读消息的形式暴露
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrNotApplicable = errors.New("request not applicable")
)

// Direction 球拍移动意图（服务端权威解释）
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirStop
)

const (
	roomCodeLength   = 4
	roomCodeCharset  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	roomCodeAttempts = 16
)

// Registry 持有房间码到房间的映射，负责房间的创建、加入与销毁。
// 通过构造函数注入，不使用进程级单例；map 以读写锁保护，
// 供 admin/metrics 处理器在协调循环之外并发读取。
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand
}

// NewRegistry 创建空的房间注册表
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

// CreateRoom 生成房间码并创建房间，创建者占 1 号槽位。
// 房间码与现存房间冲突时重新生成；重试耗尽返回 ErrNotApplicable（实际几乎不会发生）。
func (g *Registry) CreateRoom(creator ConnID, name string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < roomCodeAttempts; i++ {
		code := g.generateCode()
		if _, exists := g.rooms[code]; exists {
			continue
		}
		r := newRoom(code, creator, name)
		g.rooms[code] = r
		return r, nil
	}
	return nil, ErrNotApplicable
}

// JoinRoom 将加入者放入 2 号槽位。房间不存在返回 ErrRoomNotFound，
// 已满返回 ErrRoomFull——绝不覆盖已有席位。
func (g *Registry) JoinRoom(code string, joiner ConnID, name string) (*Room, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[code]
	if !ok {
		return nil, 0, ErrRoomNotFound
	}
	if r.Full() {
		return nil, 0, ErrRoomFull
	}
	r.Players[joiner] = &Membership{PlayerNumber: 2, Name: name}
	return r, 2, nil
}

// SetReady 标记席位已准备，返回房间与双方是否都已就绪。
// 房间或席位不存在时静默无操作（与断线竞态属良性乱序）。
func (g *Registry) SetReady(code string, id ConnID) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[code]
	if !ok {
		return nil, false
	}
	m := r.Member(id)
	if m == nil {
		return nil, false
	}
	m.Ready = true
	return r, r.BothReady()
}

// ApplyMovement 把移动意图写入对应球拍：up/down 设定方向速度并解除冻结，
// stop 仅置冻结位、保留速度。房间缺失、未开局或无席位时静默忽略。
func (g *Registry) ApplyMovement(code string, id ConnID, dir Direction) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[code]
	if !ok || !r.State.IsPlaying {
		return
	}
	m := r.Member(id)
	if m == nil {
		return
	}

	p := &r.State.Player1
	if m.PlayerNumber == 2 {
		p = &r.State.Player2
	}
	switch dir {
	case DirUp:
		p.VelocityY = -PaddleSpeed
		p.Stopped = false
	case DirDown:
		p.VelocityY = PaddleSpeed
		p.Stopped = false
	case DirStop:
		p.Stopped = true
	}
}

// RemoveRoom 无条件移除房间，幂等
func (g *Registry) RemoveRoom(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, code)
}

// Lookup 按房间码查询
func (g *Registry) Lookup(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[code]
	return r, ok
}

// Rooms 返回当前全部房间的切片快照（快照的是映射，不拷贝房间本身）。
// 仅限协调循环使用：房间内部状态只有协调 goroutine 在锁外读取才安全
func (g *Registry) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}

// ForEachRoom 持写锁遍历全部房间。Tick 对状态的写入走这里，
// 与 RoomSummaries 的读取共用注册表锁，管理接口才能安全并发读
func (g *Registry) ForEachRoom(fn func(*Room)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.rooms {
		fn(r)
	}
}

// StartGame 双方就绪且未开局时置 IsPlaying，返回是否由本次调用开局。
// 状态写入持注册表锁，且幂等：重复就绪不会二次开局
func (g *Registry) StartGame(code string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[code]
	if !ok || r.State.IsPlaying || !r.BothReady() {
		return nil, false
	}
	r.State.IsPlaying = true
	return r, true
}

// RoomSummary 房间概览的只读拷贝，供管理接口在协调循环之外读取
type RoomSummary struct {
	Code      string `json:"code"`
	Players   int    `json:"players"`
	IsPlaying bool   `json:"isPlaying"`
	Score     Score  `json:"score"`
}

// RoomSummaries 持锁拷贝标量字段。管理接口不得直接触碰 Room 内部状态，
// 否则与 Tick 的写入构成数据竞争
func (g *Registry) RoomSummaries() []RoomSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]RoomSummary, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, RoomSummary{
			Code:      r.Code,
			Players:   len(r.Players),
			IsPlaying: r.State.IsPlaying,
			Score:     r.State.Score,
		})
	}
	return out
}

// Count 当前房间数量
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// generateCode 生成 4 位房间码（0-9A-Z），调用方负责查重。须在持锁状态下调用
func (g *Registry) generateCode() string {
	buf := make([]byte, roomCodeLength)
	for i := range buf {
		buf[i] = roomCodeCharset[g.rng.Intn(len(roomCodeCharset))]
	}
	return string(buf)
}
