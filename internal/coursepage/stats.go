package coursepage

import (
	"math"
	"strconv"

	"coursepage/internal/assets"
	"coursepage/internal/catalog"
)

// StarCount 评分星星总数
const StarCount = 5

// Star 单颗星的展示状态
type Star struct {
	Filled bool   `json:"filled"`
	Icon   string `json:"icon"`
}

// Stats 评分与报名人数的展示数据
type Stats struct {
	Rating       float64 `json:"rating"`
	RatingText   string  `json:"ratingText"`
	Stars        []Star  `json:"stars"`
	RatingCount  int     `json:"ratingCount"`
	RatingLabel  string  `json:"ratingLabel"`
	StudentCount int     `json:"studentCount"`
	StudentLabel string  `json:"studentLabel"`
}

// FilledStars 第 i 颗星（从 0 开始）在 i < floor(rating) 时点亮，结果限定在 [0, 5]
func FilledStars(rating float64) int {
	if math.IsNaN(rating) {
		return 0
	}
	n := math.Floor(rating)
	if n < 0 {
		return 0
	}
	if n > StarCount {
		return StarCount
	}
	return int(n)
}

// Stars 生成五颗星的展示状态
func Stars(rating float64) []Star {
	filled := FilledStars(rating)
	stars := make([]Star, StarCount)
	for i := range stars {
		if i < filled {
			stars[i] = Star{Filled: true, Icon: assets.URL(assets.Star)}
		} else {
			stars[i] = Star{Filled: false, Icon: assets.URL(assets.StarBlank)}
		}
	}
	return stars
}

// Pluralize 数量大于 1 时使用复数形式，0 与 1 均使用单数
func Pluralize(count int, singular, plural string) string {
	if count > 1 {
		return plural
	}
	return singular
}

// BuildStats 计算课程的评分展示数据
func BuildStats(course *catalog.Course) Stats {
	rating := catalog.CalculateRating(course)
	ratings := len(course.Ratings)
	students := len(course.EnrolledStudents)
	return Stats{
		Rating:       rating,
		RatingText:   strconv.FormatFloat(rating, 'f', -1, 64),
		Stars:        Stars(rating),
		RatingCount:  ratings,
		RatingLabel:  Pluralize(ratings, "rating", "ratings"),
		StudentCount: students,
		StudentLabel: Pluralize(students, "student", "students"),
	}
}
