package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	courses := []*Course{
		sampleCourse(),
		{ID: "c1", Title: "duplicate"},
		{Title: "no id"},
		{ID: "bad", Title: "Bad", Chapters: []Chapter{
			{Lectures: []Lecture{{Title: "", Duration: -5}}},
		}, Ratings: []Rating{{Rating: 7}}},
		nil,
	}

	problems := Validate(courses)

	var text []string
	for _, p := range problems {
		text = append(text, p.String())
	}
	joined := strings.Join(text, "\n")

	for _, want := range []string{"ID重复", "缺少ID", "第 1 章缺少标题", "第 1 章第 1 课缺少标题", "时长为负数", "超出 0-5", "课程记录为空"} {
		if !strings.Contains(joined, want) {
			t.Errorf("problems missing %q:\n%s", want, joined)
		}
	}
}

func TestValidate_CleanCourse(t *testing.T) {
	if problems := Validate([]*Course{sampleCourse()}); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestCheckRequired(t *testing.T) {
	if err := checkRequired(&Course{}); !errors.Is(err, ErrInvalidCourse) {
		t.Errorf("checkRequired(missing id) = %v, want ErrInvalidCourse", err)
	}
	if err := checkRequired(nil); !errors.Is(err, ErrInvalidCourse) {
		t.Errorf("checkRequired(nil) = %v, want ErrInvalidCourse", err)
	}
	if err := checkRequired(&Course{ID: "x"}); err != nil {
		t.Errorf("checkRequired(valid) = %v", err)
	}
}
