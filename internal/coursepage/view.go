// Package coursepage 实现课程详情页：按ID解析课程、评分展示、章节/课时树及章节展开状态
//
// View 对应一次挂载的页面实例，不是并发安全的，由持有它的单个 goroutine 驱动：
// 目录变化或课程ID变化时重新解析，用户点击章节标题时切换展开状态。
package coursepage

import "coursepage/internal/catalog"

// View 一个已挂载的课程详情页实例
type View struct {
	resolver *Resolver
	toggles  *ToggleState
	opts     Options
}

// NewView 挂载页面：切换状态初始为全部收起，open 中的章节除外
func NewView(cat *catalog.Catalog, id string, opts Options, open ...int) *View {
	return &View{
		resolver: NewResolver(cat, id),
		toggles:  NewToggleState(open...),
		opts:     opts,
	}
}

// CourseID 当前课程ID
func (v *View) CourseID() string {
	return v.resolver.ID()
}

// SetCourseID 路由参数变化时调用，触发重新解析，展开状态保留
func (v *View) SetCourseID(id string) {
	v.resolver.SetID(id)
}

// Course 当前解析到的课程，nil 表示加载中
func (v *View) Course() *catalog.Course {
	return v.resolver.Course()
}

// Toggle 切换章节展开状态并返回新状态
func (v *View) Toggle(index int) bool {
	return v.toggles.Toggle(index)
}

// IsOpen 章节是否展开
func (v *View) IsOpen(index int) bool {
	return v.toggles.IsOpen(index)
}

// Stale 目录自上次渲染后是否变化
func (v *View) Stale() bool {
	return v.resolver.Stale()
}

// Model 生成当前展示数据
func (v *View) Model() ViewModel {
	return Build(v.resolver.ID(), v.resolver.Course(), v.toggles, v.opts)
}
