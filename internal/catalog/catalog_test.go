package catalog

import (
	"testing"
	"time"
)

func TestCatalog_GetReturnsFirstMatch(t *testing.T) {
	first := &Course{ID: "c1", Title: "first"}
	second := &Course{ID: "c1", Title: "second"}
	other := &Course{ID: "c2", Title: "other"}

	cat := New()
	if _, ok := cat.Get("c1"); ok {
		t.Fatal("Get() on an unloaded catalog should find nothing")
	}

	cat.Replace([]*Course{other, first, second})

	got, ok := cat.Get("c1")
	if !ok {
		t.Fatal("Get(c1) not found")
	}
	if got != first {
		t.Errorf("Get(c1) = %q, want the first occurrence", got.Title)
	}
	if _, ok := cat.Get("missing"); ok {
		t.Error("Get(missing) should not be found")
	}
}

func TestCatalog_ReplaceKeepsSnapshotsStable(t *testing.T) {
	cat := New()
	cat.Replace([]*Course{{ID: "a"}})
	snapshot := cat.Courses()

	cat.Replace([]*Course{{ID: "b"}, {ID: "c"}})

	if len(snapshot) != 1 || snapshot[0].ID != "a" {
		t.Errorf("earlier snapshot changed: %v", snapshot)
	}
	if cat.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cat.Len())
	}
	if cat.Version() != 2 {
		t.Errorf("Version() = %d, want 2", cat.Version())
	}
	if !cat.Loaded() {
		t.Error("Loaded() = false after Replace")
	}
}

func TestCatalog_Subscribe(t *testing.T) {
	cat := New()
	updates, cancel := cat.Subscribe()

	cat.Replace(nil)
	cat.Replace(nil) // 合并为一次通知

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
	select {
	case <-updates:
		t.Fatal("notifications should coalesce")
	default:
	}

	cancel()
	cancel()
	if _, open := <-updates; open {
		t.Error("channel should be closed after cancel")
	}

	// 取消后再替换不应阻塞或 panic
	cat.Replace(nil)
}
