package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mic/tools"
)

var _ tools.RecordStore = (*RecordStore)(nil)

func newTestRecords(t *testing.T) *RecordStore {
	t.Helper()
	store, err := NewRecordStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRecordStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func values(docs []json.RawMessage) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = string(d)
	}
	return out
}

func TestRecordStorePutListOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestRecords(t)

	for _, key := range []string{"c", "a", "b"} {
		if err := store.Put(ctx, "meetings", key, json.RawMessage(`{"id":"`+key+`"}`)); err != nil {
			t.Fatalf("Put(%s) error = %v", key, err)
		}
	}
	if err := store.Put(ctx, "meetings", "a", json.RawMessage(`{"id":"a","v":2}`)); err != nil {
		t.Fatal(err)
	}
	_ = store.Put(ctx, "expenses", "x", json.RawMessage(`{}`))

	docs, err := store.List(ctx, "meetings")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{`{"id":"c"}`, `{"id":"a","v":2}`, `{"id":"b"}`}
	if diff := cmp.Diff(want, values(docs)); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	got, err := store.Get(ctx, "meetings", "a")
	if err != nil || string(got) != `{"id":"a","v":2}` {
		t.Errorf("Get() = %s, %v", got, err)
	}

	collections, _ := store.Collections(ctx)
	if diff := cmp.Diff([]string{"expenses", "meetings"}, collections); diff != "" {
		t.Errorf("Collections() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestRecords(t)
	_ = store.Put(ctx, "meetings", "m1", json.RawMessage(`{}`))

	if err := store.Delete(ctx, "meetings", "m1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "meetings", "m1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("second Delete() error = %v, want ErrRecordNotFound", err)
	}
	if _, err := store.Get(ctx, "meetings", "m1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
	docs, _ := store.List(ctx, "meetings")
	if len(docs) != 0 {
		t.Errorf("List() = %v, want empty", values(docs))
	}
}

func TestRecordStoreRejectsInvalidJSON(t *testing.T) {
	store := newTestRecords(t)
	if err := store.Put(context.Background(), "meetings", "k", json.RawMessage(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestRecordStoreBacksMeetingTool(t *testing.T) {
	ctx := context.Background()
	store := newTestRecords(t)
	registry := tools.NewRegistry(tools.RecordTools(store))

	res := registry.Invoke(ctx, tools.ScheduleMeetingName, tools.Args{
		Keyword: map[string]any{"date": "2025-03-04", "time": "10:00", "title": "Standup"},
	})
	if res.Err != nil {
		t.Fatalf("schedule error = %v", res.Err)
	}

	list := registry.Invoke(ctx, tools.ScheduleMeetingName, tools.Args{Keyword: map[string]any{"action": "list"}})
	if list.Err != nil {
		t.Fatalf("list error = %v", list.Err)
	}
	if !contains(list.Output, "Standup") {
		t.Errorf("list output = %q", list.Output)
	}

	cancel := registry.Invoke(ctx, tools.ScheduleMeetingName, tools.Args{
		Keyword: map[string]any{"action": "cancel", "id": "no-such-id"},
	})
	if cancel.Err == nil || !errors.Is(cancel.Err, ErrRecordNotFound) {
		t.Errorf("cancel unknown id error = %v, want ErrRecordNotFound", cancel.Err)
	}
}
