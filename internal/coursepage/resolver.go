package coursepage

import "coursepage/internal/catalog"

// Resolve 返回目录顺序中第一个ID匹配的课程，不存在时返回 nil
func Resolve(id string, courses []*catalog.Course) *catalog.Course {
	for _, course := range courses {
		if course != nil && course.ID == id {
			return course
		}
	}
	return nil
}

// Resolver 持有课程ID并在其依赖变化时重新解析
// 依赖为课程ID与目录版本：任一变化都会使缓存结果失效，保证目录异步加载后页面随之更新
type Resolver struct {
	catalog *catalog.Catalog
	id      string

	valid   bool
	version uint64
	course  *catalog.Course
}

// NewResolver 创建解析器
func NewResolver(cat *catalog.Catalog, id string) *Resolver {
	return &Resolver{catalog: cat, id: id}
}

// ID 当前课程ID
func (r *Resolver) ID() string {
	return r.id
}

// SetID 更新课程ID，ID变化时使缓存失效
func (r *Resolver) SetID(id string) {
	if id != r.id {
		r.id = id
		r.valid = false
	}
}

// Course 返回当前解析结果，nil 表示加载中或不存在（两者不作区分）
func (r *Resolver) Course() *catalog.Course {
	if r.catalog == nil {
		return nil
	}
	version := r.catalog.Version()
	if !r.valid || version != r.version {
		r.course = Resolve(r.id, r.catalog.Courses())
		r.version = version
		r.valid = true
	}
	return r.course
}

// Stale 目录自上次解析后是否发生过变化
func (r *Resolver) Stale() bool {
	return r.catalog != nil && (!r.valid || r.catalog.Version() != r.version)
}
