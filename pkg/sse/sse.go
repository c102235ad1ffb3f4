// Package sse 按主题分组的 Server-Sent Events 推送
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Client 一个订阅连接
type Client struct {
	id    string
	topic string
	ch    chan string
	done  chan struct{}
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	topics   map[string]map[string]*Client
	interval time.Duration
	retryMs  int
	seq      atomic.Uint64
}

// NewHub interval 为心跳间隔
func NewHub(interval time.Duration) *Hub {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Hub{
		clients:  make(map[string]*Client),
		topics:   make(map[string]map[string]*Client),
		interval: interval,
		retryMs:  5000,
	}
}

func (h *Hub) Subscribe(topic string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &Client{id: uuid.NewString(), topic: topic, ch: make(chan string, 64), done: make(chan struct{})}
	h.clients[c.id] = c
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]*Client)
	}
	h.topics[topic][c.id] = c
	return c
}

func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	close(c.done)
	delete(h.clients, c.id)
	delete(h.topics[c.topic], c.id)
	if len(h.topics[c.topic]) == 0 {
		delete(h.topics, c.topic)
	}
}

// Subscribers 主题当前的连接数
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Publish 向主题推送一条事件，缓冲区满的连接直接丢弃该事件，返回送达的连接数
func (h *Hub) Publish(topic, event string, v any) (int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	msg := fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq.Add(1), event, b)

	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.topics[topic] {
		select {
		case c.ch <- msg:
			n++
		default:
		}
	}
	return n, nil
}

// Close 断开所有连接
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.done)
		delete(h.clients, id)
	}
	h.topics = make(map[string]map[string]*Client)
}

// Serve 阻塞直到客户端断开或 Hub 关闭
func (h *Hub) Serve(c *gin.Context, topic string) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	client := h.Subscribe(topic)
	defer h.Unsubscribe(client)

	_, _ = c.Writer.WriteString("retry: " + strconv.Itoa(h.retryMs) + "\n\n")
	flusher.Flush()

	ping := time.NewTicker(h.interval)
	defer ping.Stop()
	for {
		select {
		case <-client.done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_, _ = c.Writer.WriteString("event: ping\ndata: {}\n\n")
			flusher.Flush()
		case msg := <-client.ch:
			_, _ = c.Writer.WriteString(msg)
			flusher.Flush()
		}
	}
}

// Pending 尚未写出的事件数
func (c *Client) Pending() int { return len(c.ch) }
