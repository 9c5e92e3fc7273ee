package catalog

// Course 课程模型
// yaml 标签用于课程目录下的 index.yaml，mapstructure 标签对应课程文档（catalog.json、数据库 JSONB）的字段名
type Course struct {
	ID                string    `json:"id" yaml:"id" mapstructure:"_id"`
	Title             string    `json:"title" yaml:"title" mapstructure:"courseTitle"`
	Description       string    `json:"description" yaml:"description" mapstructure:"courseDescription"`
	DescriptionFile   string    `json:"-" yaml:"descriptionFile" mapstructure:"-"`
	DescriptionFormat string    `json:"-" yaml:"descriptionFormat" mapstructure:"descriptionFormat"`
	Thumbnail         string    `json:"thumbnail,omitempty" yaml:"thumbnail" mapstructure:"courseThumbnail"`
	Educator          string    `json:"educator,omitempty" yaml:"educator" mapstructure:"educator"`
	Chapters          []Chapter `json:"chapters" yaml:"chapters" mapstructure:"courseContent"`
	Ratings           []Rating  `json:"ratings" yaml:"ratings" mapstructure:"courseRatings"`
	EnrolledStudents  []string  `json:"enrolledStudents" yaml:"enrolledStudents" mapstructure:"enrolledStudents"`
}

// Chapter 章节，在课程内以下标标识
type Chapter struct {
	ID       string    `json:"id,omitempty" yaml:"id" mapstructure:"chapterId"`
	Title    string    `json:"title" yaml:"title" mapstructure:"chapterTitle"`
	Lectures []Lecture `json:"lectures" yaml:"lectures" mapstructure:"chapterContent"`
}

// Lecture 课时，Duration 单位为分钟
type Lecture struct {
	ID          string `json:"id,omitempty" yaml:"id" mapstructure:"lectureId"`
	Title       string `json:"title" yaml:"title" mapstructure:"lectureTitle"`
	Duration    int    `json:"duration" yaml:"duration" mapstructure:"lectureDuration"`
	URL         string `json:"url,omitempty" yaml:"url" mapstructure:"lectureUrl"`
	PreviewFree bool   `json:"previewFree" yaml:"previewFree" mapstructure:"isPreviewFree"`
}

// Rating 单条评分
type Rating struct {
	UserID string  `json:"userId" yaml:"userId" mapstructure:"userId"`
	Rating float64 `json:"rating" yaml:"rating" mapstructure:"rating"`
}

// 描述格式
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)
