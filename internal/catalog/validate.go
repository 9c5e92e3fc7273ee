package catalog

import (
	"fmt"
	"strings"
)

// Problem 描述一条课程数据完整性问题
type Problem struct {
	CourseID string `json:"courseId"`
	Message  string `json:"message"`
}

func (p Problem) String() string {
	if p.CourseID == "" {
		return p.Message
	}
	return fmt.Sprintf("课程 %s %s", p.CourseID, p.Message)
}

// ValidateCourse 检查单门课程，返回发现的问题
// 缺少ID的课程无法被解析到，属于致命问题；其余问题不影响展示
func ValidateCourse(course *Course) []Problem {
	if course == nil {
		return []Problem{{Message: "课程记录为空"}}
	}

	var problems []Problem
	add := func(format string, args ...interface{}) {
		problems = append(problems, Problem{CourseID: course.ID, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(course.ID) == "" {
		add("缺少ID（标题: %q）", course.Title)
	}
	if strings.TrimSpace(course.Title) == "" {
		add("缺少标题")
	}
	for i, chapter := range course.Chapters {
		if strings.TrimSpace(chapter.Title) == "" {
			add("的第 %d 章缺少标题", i+1)
		}
		for j, lecture := range chapter.Lectures {
			if strings.TrimSpace(lecture.Title) == "" {
				add("的第 %d 章第 %d 课缺少标题", i+1, j+1)
			}
			if lecture.Duration < 0 {
				add("的第 %d 章第 %d 课时长为负数: %d", i+1, j+1, lecture.Duration)
			}
		}
	}
	for i, r := range course.Ratings {
		if r.Rating < 0 || r.Rating > 5 {
			add("的第 %d 条评分超出 0-5 范围: %v", i+1, r.Rating)
		}
	}
	return problems
}

// Validate 检查整个课程序列，包括重复ID
// 重复ID不会导致错误：解析时按目录顺序取第一个
func Validate(courses []*Course) []Problem {
	var problems []Problem
	seen := make(map[string]int, len(courses))
	for i, course := range courses {
		problems = append(problems, ValidateCourse(course)...)
		if course == nil || course.ID == "" {
			continue
		}
		if first, dup := seen[course.ID]; dup {
			problems = append(problems, Problem{
				CourseID: course.ID,
				Message:  fmt.Sprintf("ID重复（第 %d 与第 %d 门），仅第一门可被访问", first+1, i+1),
			})
			continue
		}
		seen[course.ID] = i
	}
	return problems
}

// checkRequired 返回课程是否具备被加载的最低条件
func checkRequired(course *Course) error {
	if course == nil {
		return fmt.Errorf("%w: empty record", ErrInvalidCourse)
	}
	if strings.TrimSpace(course.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidCourse)
	}
	return nil
}
