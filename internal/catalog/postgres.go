package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"coursepage/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/yuin/goldmark"
)

// Querier 课程查询所需的最小接口，*pgxpool.Pool 与 *pgx.Conn 均满足
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectCoursesSQL = `SELECT id, data FROM courses ORDER BY position, id`

// PostgresSource 从 courses 表读取课程
// 每行的 data 列为课程文档（JSONB），字段名与 catalog.json 相同
type PostgresSource struct {
	db     Querier
	md     goldmark.Markdown
	logger *logger.Logger
}

// NewPostgresSource 创建数据库课程来源
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{
		db:     db,
		md:     goldmark.New(),
		logger: logger.NewLogger(logger.INFO),
	}
}

// SetLogger 设置日志记录器实例
func (s *PostgresSource) SetLogger(loggerInstance *logger.Logger) {
	s.logger = loggerInstance
}

// Load 按 position 顺序读取全部课程，无法解码的行记录错误后跳过
func (s *PostgresSource) Load(ctx context.Context) ([]*Course, error) {
	rows, err := s.db.Query(ctx, selectCoursesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}

		course, err := s.decodeRow(id, data)
		if err != nil {
			s.logger.Error("Failed to load course %s from database: %v", id, err)
			continue
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course rows: %w", err)
	}

	s.logger.Info("Successfully loaded %d courses from database", len(courses))
	return courses, nil
}

func (s *PostgresSource) decodeRow(id string, data []byte) (*Course, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid course document: %w", err)
	}
	course, err := DecodeDocument(doc)
	if err != nil {
		return nil, err
	}
	// 行主键优先于文档内的 _id
	if id != "" {
		course.ID = id
	}
	if err := checkRequired(course); err != nil {
		return nil, err
	}
	if err := renderDescription(s.md, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Fingerprint 按读取顺序对每行的 id 与 data 计算摘要
// 数据或 position 的任何修改都会改变摘要，不依赖 updated_at 的维护
func (s *PostgresSource) Fingerprint(ctx context.Context) (string, error) {
	rows, err := s.db.Query(ctx, selectCoursesSQL)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint courses table: %w", err)
	}
	defer rows.Close()

	h := sha256.New()
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return "", fmt.Errorf("failed to scan course row: %w", err)
		}
		fmt.Fprintf(h, "%s|%d|", id, len(data))
		h.Write(data)
		h.Write([]byte{'\n'})
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to iterate course rows: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
