package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"coursepage/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRows 以内存数据模拟 pgx.Rows，每行为 (id, data)
type fakeRows struct {
	rows [][2]string
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != 2 {
		return fmt.Errorf("expected 2 destinations, got %d", len(dest))
	}
	*dest[0].(*string) = row[0]
	*dest[1].(*[]byte) = []byte(row[1])
	return nil
}

type fakeQuerier struct {
	rows     [][2]string
	queryErr error
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	return &fakeRows{rows: q.rows}, nil
}

func TestPostgresSource_Load(t *testing.T) {
	q := &fakeQuerier{rows: [][2]string{
		{"pg-1", `{"courseTitle":"Databases","descriptionFormat":"markdown","courseDescription":"*fast*","courseContent":[{"chapterTitle":"SQL","chapterContent":[{"lectureTitle":"SELECT","lectureDuration":25}]}]}`},
		{"pg-2", `not json`},
		{"", `{"_id":"doc-id","courseTitle":"From document"}`},
		{"", `{"courseTitle":"No id anywhere"}`},
	}}
	src := NewPostgresSource(q)
	src.SetLogger(logger.NewLogger(logger.ERROR))

	courses, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("Load() returned %d courses, want 2", len(courses))
	}
	if courses[0].ID != "pg-1" || courses[0].Chapters[0].Lectures[0].Duration != 25 {
		t.Errorf("first course = %+v", courses[0])
	}
	if courses[0].Description != "<p><em>fast</em></p>" {
		t.Errorf("markdown description = %q", courses[0].Description)
	}
	if courses[1].ID != "doc-id" {
		t.Errorf("document id should be used when the row id is empty, got %q", courses[1].ID)
	}
}

func TestPostgresSource_QueryError(t *testing.T) {
	src := NewPostgresSource(&fakeQuerier{queryErr: errors.New("connection refused")})
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Load() should fail when the query fails")
	}
}

func TestPostgresSource_Fingerprint(t *testing.T) {
	q := &fakeQuerier{rows: [][2]string{
		{"pg-1", `{"courseTitle":"Databases"}`},
		{"pg-2", `{"courseTitle":"Indexes"}`},
	}}
	src := NewPostgresSource(q)

	fingerprint := func() string {
		t.Helper()
		fp, err := src.Fingerprint(context.Background())
		if err != nil {
			t.Fatalf("Fingerprint() error: %v", err)
		}
		return fp
	}

	fp1 := fingerprint()
	if fp1 == "" || fingerprint() != fp1 {
		t.Fatal("fingerprint should be stable for unchanged rows")
	}

	// 仅修改 data 列
	q.rows[1][1] = `{"courseTitle":"Indexes, revised"}`
	fp2 := fingerprint()
	if fp2 == fp1 {
		t.Error("fingerprint should change when a row's data is updated")
	}

	// 修改 position 导致读取顺序变化
	q.rows[0], q.rows[1] = q.rows[1], q.rows[0]
	if fingerprint() == fp2 {
		t.Error("fingerprint should change when rows are reordered")
	}

	q.queryErr = errors.New("connection refused")
	if _, err := src.Fingerprint(context.Background()); err == nil {
		t.Error("Fingerprint() should fail when the query fails")
	}
}
