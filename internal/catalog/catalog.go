// Package catalog 提供课程目录：有序的课程集合及其来源、热重载与派生指标
//
// Catalog 是只读引用的持有者：Replace 整体替换课程切片，读方拿到的是快照，
// 永远不会修改其中的 Course。每次替换都会通知订阅者，订阅者据此重新解析。
//
// 使用示例:
//
//	cat := catalog.New()
//	src := catalog.NewDirSource("./courses")
//	courses, _ := src.Load(ctx)
//	cat.Replace(courses)
//	updates, cancel := cat.Subscribe()
//	defer cancel()
package catalog

import (
	"errors"
	"sync"
)

var (
	// ErrCourseNotFound 目录中不存在指定ID的课程
	ErrCourseNotFound = errors.New("course not found")
	// ErrInvalidCourse 课程记录缺少必要字段或字段取值非法
	ErrInvalidCourse = errors.New("invalid course")
)

// Catalog 线程安全的有序课程目录
type Catalog struct {
	mu      sync.RWMutex
	courses []*Course
	loaded  bool
	version uint64

	subMu  sync.Mutex
	subs   map[uint64]chan struct{}
	nextID uint64
}

// New 创建一个尚未加载的空目录
func New() *Catalog {
	return &Catalog{
		subs: make(map[uint64]chan struct{}),
	}
}

// Replace 用新的课程序列替换目录内容并通知所有订阅者
func (c *Catalog) Replace(courses []*Course) {
	snapshot := make([]*Course, len(courses))
	copy(snapshot, courses)

	c.mu.Lock()
	c.courses = snapshot
	c.loaded = true
	c.version++
	c.mu.Unlock()

	c.notify()
}

// Courses 返回当前课程序列的快照
// 切片可以安全持有，目录替换不会影响已返回的快照
func (c *Catalog) Courses() []*Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.courses
}

// Get 返回目录顺序中第一个ID匹配的课程
func (c *Catalog) Get(id string) (*Course, bool) {
	for _, course := range c.Courses() {
		if course != nil && course.ID == id {
			return course, true
		}
	}
	return nil, false
}

// Loaded 目录是否至少完成过一次加载
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Version 每次 Replace 递增
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Len 当前课程数量
func (c *Catalog) Len() int {
	return len(c.Courses())
}

// Subscribe 订阅目录变更
// 返回的通道容量为 1，连续多次变更会合并为一次通知；
// 调用 cancel 取消订阅并关闭通道
func (c *Catalog) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// notify 非阻塞地唤醒所有订阅者
func (c *Catalog) notify() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
