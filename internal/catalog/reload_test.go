package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"coursepage/internal/logger"
)

type stubSource struct {
	courses []*Course
	fp      string
	loadErr error
	loads   int
}

func (s *stubSource) Load(ctx context.Context) ([]*Course, error) {
	s.loads++
	return s.courses, s.loadErr
}

func (s *stubSource) Fingerprint(ctx context.Context) (string, error) {
	return s.fp, nil
}

func TestReloader_Refresh(t *testing.T) {
	src := &stubSource{courses: []*Course{{ID: "a", Title: "A"}}, fp: "v1"}
	cat := New()
	r := NewReloader(src, cat, time.Second, logger.NewLogger(logger.ERROR))
	ctx := context.Background()

	changed, err := r.Refresh(ctx)
	if err != nil || !changed {
		t.Fatalf("first Refresh() = %v, %v; want true, nil", changed, err)
	}
	if cat.Len() != 1 {
		t.Fatalf("catalog len = %d, want 1", cat.Len())
	}

	changed, _ = r.Refresh(ctx)
	if changed || src.loads != 1 {
		t.Errorf("unchanged fingerprint should not reload (changed=%v loads=%d)", changed, src.loads)
	}

	src.fp = "v2"
	src.courses = []*Course{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	changed, _ = r.Refresh(ctx)
	if !changed || cat.Len() != 2 {
		t.Errorf("changed fingerprint should reload (changed=%v len=%d)", changed, cat.Len())
	}
}

func TestReloader_LoadErrorKeepsCatalog(t *testing.T) {
	src := &stubSource{courses: []*Course{{ID: "a"}}, fp: "v1"}
	cat := New()
	r := NewReloader(src, cat, time.Second, logger.NewLogger(logger.ERROR))
	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	src.fp = "v2"
	src.loadErr = errors.New("disk gone")
	if _, err := r.Refresh(context.Background()); err == nil {
		t.Error("Refresh() should report the load error")
	}
	if _, ok := cat.Get("a"); !ok {
		t.Error("failed reload should keep the previous catalog")
	}
}

func TestReloader_RunNotifiesSubscribers(t *testing.T) {
	src := &stubSource{courses: []*Course{{ID: "a"}}, fp: "v1"}
	cat := New()
	r := NewReloader(src, cat, 10*time.Millisecond, logger.NewLogger(logger.ERROR))
	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	updates, cancelSub := cat.Subscribe()
	defer cancelSub()

	src.fp = "v2"
	src.courses = []*Course{{ID: "b"}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not refresh the catalog")
	}
	cancel()
	<-done

	if _, ok := cat.Get("b"); !ok {
		t.Error("catalog should contain the reloaded course")
	}
}
