// Package session 管理课程详情页的实时会话
//
// 每个 WebSocket 连接持有一个 coursepage.View，由会话自己的 goroutine 独占驱动：
// 客户端的切换消息与目录变更通知在同一个 select 循环中串行处理，
// 每次状态变化后向客户端推送新的渲染结果。连接断开时视图随之丢弃。
package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"coursepage/internal/catalog"
	"coursepage/internal/coursepage"
	"coursepage/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// 消息类型
const (
	TypeConnected = "connected" // 服务端 → 客户端，data 为会话ID
	TypeRender    = "render"    // 服务端 → 客户端，data 为 RenderPayload
	TypeError     = "error"     // 服务端 → 客户端，data 为错误描述
	TypePong      = "pong"      // 服务端 → 客户端

	TypeToggle   = "toggle"   // 客户端 → 服务端，data 为章节下标或 {"index": n}
	TypeNavigate = "navigate" // 客户端 → 服务端，data 为新的课程ID
	TypePing     = "ping"     // 客户端 → 服务端
)

const writeWait = 10 * time.Second

// Message WebSocket消息结构
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// RenderPayload render 消息的数据
type RenderPayload struct {
	Model coursepage.ViewModel `json:"model"`
	HTML  string               `json:"html"`
}

// Session 一个实时课程页会话
type Session struct {
	id       string
	conn     *websocket.Conn
	view     *coursepage.View
	catalog  *catalog.Catalog
	renderer *coursepage.Renderer
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *logger.Logger
}

// Manager 会话管理器
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	catalog  *catalog.Catalog
	renderer *coursepage.Renderer
	opts     coursepage.Options
	logger   *logger.Logger
}

// NewManager 创建会话管理器
func NewManager(cat *catalog.Catalog, renderer *coursepage.Renderer, opts coursepage.Options) *Manager {
	if renderer == nil {
		renderer = coursepage.NewRenderer()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		catalog:  cat,
		renderer: renderer,
		opts:     opts,
		logger:   logger.NewLogger(logger.INFO),
	}
}

// SetLogger 设置日志记录器实例
func (m *Manager) SetLogger(loggerInstance *logger.Logger) {
	m.logger = loggerInstance
}

// CreateSession 为连接挂载一个新的课程页视图，open 为初始展开的章节
func (m *Manager) CreateSession(conn *websocket.Conn, courseID string, open []int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	session := &Session{
		id:       uuid.NewString(),
		conn:     conn,
		view:     coursepage.NewView(m.catalog, courseID, m.opts, open...),
		catalog:  m.catalog,
		renderer: m.renderer,
		ctx:      ctx,
		cancel:   cancel,
		logger:   m.logger,
	}

	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()
	return session
}

// Serve 创建会话并阻塞运行，连接结束后从管理器移除
func (m *Manager) Serve(conn *websocket.Conn, courseID string, open []int) {
	session := m.CreateSession(conn, courseID, open)
	defer m.RemoveSession(session.id)

	m.logger.Debug("课程页会话已建立，会话ID: %s，课程: %s", session.id, courseID)
	session.Run()
	m.logger.Debug("课程页会话已结束，会话ID: %s", session.id)
}

// RemoveSession 从管理器中移除会话
func (m *Manager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// GetActiveSessionCount 获取活跃会话数量
func (m *Manager) GetActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll 关闭所有会话，服务退出时调用
func (m *Manager) CloseAll() {
	m.mu.RLock()
	active := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		active = append(active, s)
	}
	m.mu.RUnlock()

	for _, s := range active {
		s.Close()
	}
}

// ID 会话ID
func (s *Session) ID() string {
	return s.id
}

// Done 返回会话结束信号
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Run 驱动会话直到连接断开或会话被关闭
func (s *Session) Run() {
	defer s.Close()

	// 先订阅再渲染，首屏渲染期间的目录变化不会丢失
	updates, unsubscribe := s.catalog.Subscribe()
	defer unsubscribe()

	if err := s.send(Message{Type: TypeConnected, Data: s.id}); err != nil {
		s.logger.Error("发送连接确认消息失败: %v", err)
		return
	}
	if err := s.render(); err != nil {
		return
	}

	// 清除 HTTP 服务器在劫持前设置的读超时
	s.conn.SetReadDeadline(time.Time{})
	incoming := make(chan Message)
	go s.readLoop(incoming)

	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if !s.view.Stale() {
				continue
			}
			s.logger.Debug("目录已更新，重新渲染会话 %s", s.id)
			if err := s.render(); err != nil {
				return
			}
		case msg, ok := <-incoming:
			if !ok {
				return
			}
			if err := s.handle(msg); err != nil {
				return
			}
		}
	}
}

// readLoop 读取客户端消息，连接出错时关闭 incoming
func (s *Session) readLoop(incoming chan<- Message) {
	defer close(incoming)
	for {
		var msg Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			// 正常关闭连接时不作为错误打印，减少噪声
			s.logger.Debug("WebSocket连接结束或读取中断: %v", err)
			return
		}
		select {
		case incoming <- msg:
		case <-s.ctx.Done():
			return
		}
	}
}

// handle 处理单条客户端消息，返回错误表示连接已不可写
func (s *Session) handle(msg Message) error {
	switch msg.Type {
	case TypeToggle:
		index, ok := chapterIndex(msg.Data)
		if !ok {
			return s.send(Message{Type: TypeError, Data: fmt.Sprintf("无效的章节序号: %v", msg.Data)})
		}
		s.view.Toggle(index)
		return s.render()
	case TypeNavigate:
		id, ok := msg.Data.(string)
		if !ok || id == "" {
			return s.send(Message{Type: TypeError, Data: "课程ID不能为空"})
		}
		s.view.SetCourseID(id)
		return s.render()
	case TypePing:
		return s.send(Message{Type: TypePong})
	default:
		s.logger.Debug("忽略未知消息类型: %s", msg.Type)
		return nil
	}
}

// render 推送当前视图的渲染结果
func (s *Session) render() error {
	vm := s.view.Model()
	html, err := s.renderer.RenderFragment(vm)
	if err != nil {
		s.logger.Error("渲染课程页失败: %v", err)
		return s.send(Message{Type: TypeError, Data: "渲染课程页失败"})
	}
	if err := s.send(Message{Type: TypeRender, Data: RenderPayload{Model: vm, HTML: html}}); err != nil {
		s.logger.Warn("发送渲染结果失败: %v", err)
		return err
	}
	return nil
}

func (s *Session) send(msg Message) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// Close 关闭会话，丢弃视图
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

// chapterIndex 解析章节下标：数字、数字字符串或 {"index": n}
func chapterIndex(data interface{}) (int, bool) {
	switch v := data.(type) {
	case float64:
		if v < 0 || v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	case map[string]interface{}:
		return chapterIndex(v["index"])
	default:
		return 0, false
	}
}
