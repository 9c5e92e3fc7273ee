package catalog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"coursepage/internal/logger"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Source 课程数据来源
type Source interface {
	// Load 读取完整的有序课程序列
	Load(ctx context.Context) ([]*Course, error)
	// Fingerprint 返回来源内容的摘要，内容不变时摘要不变
	Fingerprint(ctx context.Context) (string, error)
}

// 课程目录中的约定文件名
const (
	courseIndexFile   = "index.yaml"
	documentsDumpFile = "catalog.json"
)

// FSSource 从文件系统读取课程（磁盘目录或嵌入式FS）
//
// 目录结构:
//
//	<base>/catalog.json          可选，课程文档数组，排在最前
//	<base>/<course>/index.yaml   每门课程一个目录，目录名作为默认ID
//	<base>/<course>/*.md         可选，由 descriptionFile 引用的描述文件
type FSSource struct {
	fsys   fs.FS
	base   string
	md     goldmark.Markdown
	logger *logger.Logger
}

// NewDirSource 基于磁盘目录创建课程来源（开发模式）
func NewDirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir), ".")
}

// NewFSSource 基于任意文件系统创建课程来源，通常为 embed.FS（发布模式）
// basePath: 课程在FS中的根路径，例如 "courses"
func NewFSSource(fsys fs.FS, basePath string) *FSSource {
	return &FSSource{
		fsys:   fsys,
		base:   basePath,
		md:     goldmark.New(),
		logger: logger.NewLogger(logger.INFO),
	}
}

// SetLogger 设置日志记录器实例
func (s *FSSource) SetLogger(loggerInstance *logger.Logger) {
	s.logger = loggerInstance
}

// Load 加载所有课程
// 单门课程解析失败只记录错误并跳过，根目录不可读时返回错误
func (s *FSSource) Load(ctx context.Context) ([]*Course, error) {
	s.logger.Debug("Loading courses from FS: %s", s.base)

	entries, err := fs.ReadDir(s.fsys, s.base)
	if err != nil {
		return nil, fmt.Errorf("failed to read courses directory %s: %w", s.base, err)
	}

	var courses []*Course

	if docs, err := s.loadDocuments(); err != nil {
		s.logger.Error("Failed to load %s: %v", documentsDumpFile, err)
	} else {
		courses = append(courses, docs...)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		courseDir := path.Join(s.base, entry.Name())
		course, err := s.loadCourse(entry.Name(), courseDir)
		if err != nil {
			s.logger.Error("Failed to load course %s: %v", entry.Name(), err)
			continue
		}
		courses = append(courses, course)
	}

	s.logger.Info("Successfully loaded %d courses", len(courses))
	return courses, nil
}

// loadDocuments 读取根目录下的 catalog.json，不存在时返回空
func (s *FSSource) loadDocuments() ([]*Course, error) {
	data, err := fs.ReadFile(s.fsys, path.Join(s.base, documentsDumpFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	docs, err := ParseDocuments(data)
	if err != nil {
		return nil, err
	}

	courses := make([]*Course, 0, len(docs))
	for i, doc := range docs {
		course, err := DecodeDocument(doc)
		if err != nil {
			s.logger.Error("Skipping document %d in %s: %v", i, documentsDumpFile, err)
			continue
		}
		if err := checkRequired(course); err != nil {
			s.logger.Error("Skipping document %d in %s: %v", i, documentsDumpFile, err)
			continue
		}
		if err := renderDescription(s.md, course); err != nil {
			s.logger.Warn("Failed to render description for course %s: %v", course.ID, err)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// loadCourse 读取单门课程的 index.yaml 及其描述文件
func (s *FSSource) loadCourse(dirName, courseDir string) (*Course, error) {
	configPath := path.Join(courseDir, courseIndexFile)

	data, err := fs.ReadFile(s.fsys, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read course config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("course config file is empty: %s", configPath)
	}

	var course Course
	if err := yaml.Unmarshal(data, &course); err != nil {
		return nil, fmt.Errorf("failed to parse course config: %w", err)
	}

	if course.ID == "" {
		course.ID = dirName
	}
	if course.Title == "" {
		course.Title = course.ID // 未设置标题时使用ID
	}

	if course.DescriptionFile != "" {
		descPath := path.Join(courseDir, course.DescriptionFile)
		content, err := fs.ReadFile(s.fsys, descPath)
		if err != nil {
			s.logger.Warn("Failed to load description file %s for course %s: %v", course.DescriptionFile, course.ID, err)
		} else {
			course.Description = string(content)
			if course.DescriptionFormat == "" && strings.HasSuffix(course.DescriptionFile, ".md") {
				course.DescriptionFormat = FormatMarkdown
			}
		}
	}

	if err := renderDescription(s.md, &course); err != nil {
		return nil, err
	}

	s.logger.Debug("Loaded course %s with %d chapters", course.ID, len(course.Chapters))
	return &course, nil
}

// renderDescription 将 Markdown 描述转换为 HTML，其余格式原样保留
func renderDescription(md goldmark.Markdown, course *Course) error {
	if !strings.EqualFold(course.DescriptionFormat, FormatMarkdown) {
		return nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(course.Description), &buf); err != nil {
		return fmt.Errorf("failed to convert markdown description: %w", err)
	}
	course.Description = strings.TrimSpace(buf.String())
	course.DescriptionFormat = FormatHTML
	return nil
}

// Fingerprint 根据文件路径、大小与修改时间计算摘要
func (s *FSSource) Fingerprint(ctx context.Context) (string, error) {
	h := sha256.New()
	err := fs.WalkDir(s.fsys, s.base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		fmt.Fprintf(h, "%s|%d|%d\n", p, info.Size(), info.ModTime().UnixNano())
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint courses directory: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
