package coursepage

import (
	"fmt"
	"strings"

	"coursepage/internal/assets"
	"coursepage/internal/catalog"
	"coursepage/internal/humanize"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LoadingPlaceholder 课程未解析（加载中或不存在）时展示的文本
const LoadingPlaceholder = "Loading course details..."

// DefaultDescriptionLimit 课程描述截断长度
const DefaultDescriptionLimit = 300

// Options 页面展示选项
type Options struct {
	DescriptionLimit int    // 描述截断长度（字符）
	Educator         string // 课程未指定讲师时的默认名称
}

// ViewModel 课程详情页的完整展示数据
// Loading 为 true 时只有 CourseID 与 Placeholder 有效
type ViewModel struct {
	CourseID    string `json:"courseId"`
	Loading     bool   `json:"loading"`
	Placeholder string `json:"placeholder,omitempty"`

	Title          string        `json:"title,omitempty"`
	Description    string        `json:"description,omitempty"`
	Educator       string        `json:"educator,omitempty"`
	Stats          *Stats        `json:"stats,omitempty"`
	LectureCount   int           `json:"lectureCount,omitempty"`
	CourseDuration string        `json:"courseDuration,omitempty"`
	Chapters       []ChapterView `json:"chapters,omitempty"`
	ArrowIcon      string        `json:"arrowIcon,omitempty"`
	PlayIcon       string        `json:"playIcon,omitempty"`
}

// ChapterView 单个章节的展示数据
// 收起的章节同样包含全部课时，只通过 Open 控制可见性
type ChapterView struct {
	Index        int           `json:"index"`
	Title        string        `json:"title"`
	LectureCount int           `json:"lectureCount"`
	Duration     string        `json:"duration"`
	Summary      string        `json:"summary"`
	Open         bool          `json:"open"`
	ToggleOpen   string        `json:"toggleOpen"` // 切换该章节后的展开列表，用于无脚本时的链接
	Lectures     []LectureView `json:"lectures"`
}

// LectureView 单个课时的展示数据
type LectureView struct {
	Title    string `json:"title"`
	Preview  bool   `json:"preview"`
	Duration string `json:"duration"`
}

// Truncate 截取前 limit 个字符（按 rune 计）
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// descriptionContext 描述在页面中所处的元素，按其内容模型解析片段
var descriptionContext = &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}

// CloseFragment 重新解析截断后的 HTML：丢弃不完整的结尾标签并补齐未闭合的元素，
// 使片段不会影响页面中后续的兄弟元素。内容本身不做过滤
func CloseFragment(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), descriptionContext)
	if err != nil {
		return html.EscapeString(fragment)
	}
	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return html.EscapeString(fragment)
		}
	}
	return b.String()
}

// ChapterSummary 章节摘要，例如 "2 lecture - 45 minutes"
func ChapterSummary(chapter catalog.Chapter) string {
	return fmt.Sprintf("%d lecture - %s", len(chapter.Lectures), catalog.CalculateChapterTime(chapter))
}

// Build 根据解析结果与切换状态生成展示数据
// course 为 nil 时生成加载占位
func Build(id string, course *catalog.Course, toggles *ToggleState, opts Options) ViewModel {
	if course == nil {
		return ViewModel{CourseID: id, Loading: true, Placeholder: LoadingPlaceholder}
	}

	limit := opts.DescriptionLimit
	if limit <= 0 {
		limit = DefaultDescriptionLimit
	}
	educator := course.Educator
	if educator == "" {
		educator = opts.Educator
	}
	stats := BuildStats(course)

	vm := ViewModel{
		CourseID:       course.ID,
		Title:          course.Title,
		Description:    CloseFragment(Truncate(course.Description, limit)),
		Educator:       educator,
		Stats:          &stats,
		LectureCount:   catalog.CalculateNoOfLecture(course),
		CourseDuration: catalog.CalculateCourseDuration(course),
		Chapters:       make([]ChapterView, 0, len(course.Chapters)),
		ArrowIcon:      assets.URL(assets.DownArrowIcon),
		PlayIcon:       assets.URL(assets.PlayIcon),
	}

	open := toggles.OpenIndexes()
	for i, chapter := range course.Chapters {
		cv := ChapterView{
			Index:        i,
			Title:        chapter.Title,
			LectureCount: len(chapter.Lectures),
			Duration:     catalog.CalculateChapterTime(chapter),
			Summary:      ChapterSummary(chapter),
			Open:         toggles.IsOpen(i),
			ToggleOpen:   FormatOpen(flip(open, i)),
			Lectures:     make([]LectureView, 0, len(chapter.Lectures)),
		}
		for _, lecture := range chapter.Lectures {
			cv.Lectures = append(cv.Lectures, LectureView{
				Title:    lecture.Title,
				Preview:  lecture.PreviewFree,
				Duration: humanize.Minutes(lecture.Duration),
			})
		}
		vm.Chapters = append(vm.Chapters, cv)
	}
	return vm
}

// flip 返回切换 index 后的有序展开列表，不修改入参
func flip(open []int, index int) []int {
	result := make([]int, 0, len(open)+1)
	found := false
	for _, i := range open {
		if i == index {
			found = true
			continue
		}
		if !found && i > index {
			result = append(result, index)
			found = true
		}
		result = append(result, i)
	}
	if !found {
		result = append(result, index)
	}
	return result
}
