package coursepage

import (
	"sort"
	"strconv"
	"strings"
)

// ToggleState 记录每个章节（按下标）是否展开，未记录的章节视为收起
// 随视图创建而为空，随视图销毁而丢弃
type ToggleState struct {
	open map[int]bool
}

// NewToggleState 创建切换状态，indexes 中的章节初始为展开
func NewToggleState(indexes ...int) *ToggleState {
	t := &ToggleState{open: make(map[int]bool, len(indexes))}
	for _, i := range indexes {
		t.open[i] = true
	}
	return t
}

// Toggle 切换指定章节并返回切换后的状态，不影响其他章节
func (t *ToggleState) Toggle(index int) bool {
	if t.open == nil {
		t.open = make(map[int]bool)
	}
	t.open[index] = !t.open[index]
	return t.open[index]
}

// IsOpen 指定章节是否展开
func (t *ToggleState) IsOpen(index int) bool {
	return t != nil && t.open[index]
}

// OpenIndexes 按升序返回所有展开的章节下标
func (t *ToggleState) OpenIndexes() []int {
	if t == nil {
		return nil
	}
	indexes := make([]int, 0, len(t.open))
	for i, open := range t.open {
		if open {
			indexes = append(indexes, i)
		}
	}
	sort.Ints(indexes)
	return indexes
}

// ParseOpen 解析形如 "0,2" 的展开章节列表，忽略非法项与负数
func ParseOpen(raw string) []int {
	var indexes []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			continue
		}
		indexes = append(indexes, n)
	}
	return indexes
}

// FormatOpen 将展开章节列表格式化为 "0,2"
func FormatOpen(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, n := range indexes {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
