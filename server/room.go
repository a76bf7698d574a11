package server

import "sort"

// ConnID 客户端连接的唯一标识（升级连接时分配）
type ConnID string

// Membership 房间内的一个席位：槽位号、昵称与准备状态
type Membership struct {
	PlayerNumber int    `json:"playerNumber"`
	Name         string `json:"name"`
	Ready        bool   `json:"ready"`
}

// Room 对局房间：房间码、房主、至多两个席位，以及独占的模拟状态。
// 所有 Room 实例由 Registry 持有，其他组件按需用房间码查询，不跨 Tick 保留引用。
type Room struct {
	Code    string
	Host    ConnID
	Players map[ConnID]*Membership
	State   *GameState
}

// newRoom 创建房间并把创建者放入 1 号槽位
func newRoom(code string, host ConnID, hostName string) *Room {
	return &Room{
		Code: code,
		Host: host,
		Players: map[ConnID]*Membership{
			host: {PlayerNumber: 1, Name: hostName},
		},
		State: NewGameState(code),
	}
}

// Member 返回指定连接的席位，不存在则为 nil
func (r *Room) Member(id ConnID) *Membership {
	return r.Players[id]
}

// Full 是否已有两个席位
func (r *Room) Full() bool {
	return len(r.Players) >= 2
}

// BothReady 两个席位都存在且都已准备
func (r *Room) BothReady() bool {
	if len(r.Players) != 2 {
		return false
	}
	for _, m := range r.Players {
		if !m.Ready {
			return false
		}
	}
	return true
}

// Roster 按槽位号排序的席位快照，用于对外广播
func (r *Room) Roster() []Membership {
	out := make([]Membership, 0, len(r.Players))
	for _, m := range r.Players {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerNumber < out[j].PlayerNumber })
	return out
}

// NameOf 返回指定槽位玩家的昵称，槽位空缺时为空串
func (r *Room) NameOf(playerNumber int) string {
	for _, m := range r.Players {
		if m.PlayerNumber == playerNumber {
			return m.Name
		}
	}
	return ""
}
