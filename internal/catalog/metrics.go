package catalog

import (
	"math"

	"coursepage/internal/humanize"
)

// CalculateRating 计算课程评分：所有评分的平均值向下取整，无评分时为 0
func CalculateRating(course *Course) float64 {
	if course == nil || len(course.Ratings) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range course.Ratings {
		total += r.Rating
	}
	return math.Floor(total / float64(len(course.Ratings)))
}

// CalculateNoOfLecture 统计课程的课时总数
func CalculateNoOfLecture(course *Course) int {
	if course == nil {
		return 0
	}
	total := 0
	for _, chapter := range course.Chapters {
		total += len(chapter.Lectures)
	}
	return total
}

// ChapterMinutes 章节内所有课时时长之和（分钟）
func ChapterMinutes(chapter Chapter) int {
	total := 0
	for _, lecture := range chapter.Lectures {
		total += lecture.Duration
	}
	return total
}

// CourseMinutes 课程内所有课时时长之和（分钟）
func CourseMinutes(course *Course) int {
	if course == nil {
		return 0
	}
	total := 0
	for _, chapter := range course.Chapters {
		total += ChapterMinutes(chapter)
	}
	return total
}

// CalculateChapterTime 章节总时长的可读文本
func CalculateChapterTime(chapter Chapter) string {
	return humanize.Minutes(ChapterMinutes(chapter))
}

// CalculateCourseDuration 课程总时长的可读文本
func CalculateCourseDuration(course *Course) string {
	return humanize.Minutes(CourseMinutes(course))
}
