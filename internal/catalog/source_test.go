package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"coursepage/internal/logger"
)

const documentsJSON = `[
  {
    "_id": "605bd2b9f1c5a21f3c5e6b1a",
    "courseTitle": "Introduction to JavaScript",
    "courseDescription": "<h2>Learn the Basics</h2><p>Variables and functions.</p>",
    "educator": "Sudheer",
    "courseContent": [
      {
        "chapterId": "chapter1",
        "chapterTitle": "Getting Started",
        "chapterContent": [
          {"lectureId": "l1", "lectureTitle": "What is JavaScript?", "lectureDuration": 16, "isPreviewFree": true},
          {"lectureId": "l2", "lectureTitle": "Setting Up", "lectureDuration": "19", "isPreviewFree": false}
        ]
      }
    ],
    "courseRatings": [{"userId": "u1", "rating": 5}],
    "enrolledStudents": ["u1", "u2"]
  },
  {"courseTitle": "No id, skipped"}
]`

func newTestFS() fstest.MapFS {
	return fstest.MapFS{
		"courses/catalog.json": {Data: []byte(documentsJSON)},
		"courses/go-basics/index.yaml": {Data: []byte(`
title: Go Basics
descriptionFile: description.md
chapters:
  - title: Setup
    lectures:
      - title: Install Go
        duration: 12
        previewFree: true
ratings:
  - userId: u9
    rating: 4
enrolledStudents: [u9]
`)},
		"courses/go-basics/description.md": {Data: []byte("# Go\n\nLearn **Go**.")},
		"courses/broken/index.yaml":        {Data: []byte("title: [unterminated")},
		"courses/empty/index.yaml":         {Data: []byte("  \n")},
		"courses/untitled/index.yaml":      {Data: []byte("description: plain <b>html</b>\n")},
	}
}

func TestFSSource_Load(t *testing.T) {
	src := NewFSSource(newTestFS(), "courses")
	src.SetLogger(logger.NewLogger(logger.ERROR))

	courses, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	want := []string{"605bd2b9f1c5a21f3c5e6b1a", "go-basics", "untitled"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("loaded ids = %v, want %v", ids, want)
	}

	doc := courses[0]
	if doc.Title != "Introduction to JavaScript" || doc.Educator != "Sudheer" {
		t.Errorf("document course = %+v", doc)
	}
	if len(doc.Chapters) != 1 || len(doc.Chapters[0].Lectures) != 2 {
		t.Fatalf("document chapters = %+v", doc.Chapters)
	}
	if l := doc.Chapters[0].Lectures[1]; l.Duration != 19 || l.PreviewFree {
		t.Errorf("weakly typed lecture = %+v", l)
	}
	if len(doc.Ratings) != 1 || doc.Ratings[0].Rating != 5 || len(doc.EnrolledStudents) != 2 {
		t.Errorf("document ratings/students = %+v / %v", doc.Ratings, doc.EnrolledStudents)
	}

	goBasics := courses[1]
	if !strings.Contains(goBasics.Description, "<strong>Go</strong>") {
		t.Errorf("markdown description not rendered: %q", goBasics.Description)
	}
	if goBasics.Chapters[0].Lectures[0].Duration != 12 || !goBasics.Chapters[0].Lectures[0].PreviewFree {
		t.Errorf("yaml lecture = %+v", goBasics.Chapters[0].Lectures[0])
	}

	untitled := courses[2]
	if untitled.Title != "untitled" {
		t.Errorf("title should default to id, got %q", untitled.Title)
	}
	if untitled.Description != "plain <b>html</b>" {
		t.Errorf("html description should be kept as-is, got %q", untitled.Description)
	}
}

func TestFSSource_FromDisk(t *testing.T) {
	tmpDir := t.TempDir()
	courseDir := filepath.Join(tmpDir, "disk-course")
	if err := os.MkdirAll(courseDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(courseDir, "index.yaml"), []byte("id: d1\ntitle: Disk\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	src := NewDirSource(tmpDir)
	src.SetLogger(logger.NewLogger(logger.ERROR))

	courses, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != "d1" {
		t.Errorf("Load() = %+v", courses)
	}
}

func TestFSSource_MissingDirectory(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "missing"))
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Load() should fail when the directory does not exist")
	}
	if _, err := src.Fingerprint(context.Background()); err == nil {
		t.Error("Fingerprint() should fail when the directory does not exist")
	}
}

func TestFSSource_Fingerprint(t *testing.T) {
	fsys := newTestFS()
	src := NewFSSource(fsys, "courses")

	fp1, err := src.Fingerprint(context.Background())
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	fp2, _ := src.Fingerprint(context.Background())
	if fp1 != fp2 {
		t.Error("fingerprint should be stable for unchanged content")
	}

	fsys["courses/new-course/index.yaml"] = &fstest.MapFile{Data: []byte("title: New")}
	fp3, _ := src.Fingerprint(context.Background())
	if fp3 == fp1 {
		t.Error("fingerprint should change when a course is added")
	}
}

func TestFSSource_SkipsUndecodableDocuments(t *testing.T) {
	fsys := fstest.MapFS{
		"courses/catalog.json": {Data: []byte(`[
  {"_id": "good", "courseTitle": "Good", "courseContent": []},
  {"_id": "bad", "courseTitle": "Bad", "courseContent": "oops"},
  {"_id": "after", "courseTitle": "After"}
]`)},
	}
	src := NewFSSource(fsys, "courses")
	src.SetLogger(logger.NewLogger(logger.ERROR))

	courses, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	if strings.Join(ids, ",") != "good,after" {
		t.Errorf("loaded ids = %v, want [good after]", ids)
	}
}

func TestFSSource_InvalidDocumentArray(t *testing.T) {
	fsys := newTestFS()
	fsys["courses/catalog.json"] = &fstest.MapFile{Data: []byte(`{"not": "an array"}`)}
	src := NewFSSource(fsys, "courses")
	src.SetLogger(logger.NewLogger(logger.ERROR))

	courses, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(courses) != 2 || courses[0].ID != "go-basics" {
		t.Errorf("directory courses should still load, got %d", len(courses))
	}
}

func TestFSSource_UntitledDocumentKeptAndReported(t *testing.T) {
	fsys := fstest.MapFS{
		"courses/catalog.json": {Data: []byte(`[{"_id": "t1"}, {"courseTitle": "no id"}]`)},
	}
	src := NewFSSource(fsys, "courses")
	src.SetLogger(logger.NewLogger(logger.ERROR))

	courses, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != "t1" || courses[0].Title != "" {
		t.Fatalf("Load() = %+v, want only the untitled t1", courses)
	}
	problems := Validate(courses)
	if len(problems) != 1 || !strings.Contains(problems[0].Message, "缺少标题") {
		t.Errorf("Validate() = %v", problems)
	}
}
