package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	id   ConnID
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		id:   ConnID(uuid.NewString()),
		ws:   ws,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃旧消息（防止阻塞 Tick）
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS。
// send 通道从不关闭（关闭会与并发 Enqueue 竞争），退出由 done 驱动
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for {
		select {
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump 读取客户端帧，解析为意图后投递给协调器。
// 读泵退出即视为断线：先通知协调器清理房间，再从连接表摘除自身。
func (c *ClientConn) readPump(h *Hub) {
	defer c.ws.Close()
	defer func() {
		close(c.done)
		h.coordinator.Disconnect(c.id)
		h.remove(c.id)
	}()
	c.ws.SetReadLimit(1 << 20) // 1MB
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		in, ok := ParseIntent(c.id, payload)
		if !ok {
			continue // 畸形或未知消息：静默丢弃
		}
		h.coordinator.Dispatch(in)
	}
}

// Hub WebSocket 传输适配层：维护连接表并实现 Emitter。
// 核心与投递解耦：Emit 只做序列化与入队，永不阻塞
type Hub struct {
	mu          sync.RWMutex
	conns       map[ConnID]*ClientConn
	coordinator *Coordinator
}

func NewHub() *Hub {
	return &Hub{conns: make(map[ConnID]*ClientConn)}
}

// Bind 关联协调器（构造顺序上 Hub 先于 Coordinator 存在）
func (h *Hub) Bind(c *Coordinator) {
	h.coordinator = c
}

// Emit 实现 Emitter：连接已消失时直接丢弃
func (h *Hub) Emit(to ConnID, event any) {
	b, err := json.Marshal(event)
	if err != nil {
		Log.Warnf("marshal event failed: %v", err)
		return
	}
	h.mu.RLock()
	c, ok := h.conns[to]
	h.mu.RUnlock()
	if ok {
		c.Enqueue(b)
	}
}

func (h *Hub) add(c *ClientConn) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) remove(id ConnID) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// ServeWS WebSocket 接入：升级连接、分配连接 ID、启动读写泵
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	c := newClientConn(ws)
	h.add(c)
	Log.Infof("conn %s connected from %s", c.id, r.RemoteAddr)

	go c.writePump()
	go c.readPump(h)
}
