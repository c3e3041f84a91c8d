package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// memStore is an in-memory RecordStore preserving insertion order.
type memStore struct {
	keys map[string][]string
	docs map[string]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{keys: map[string][]string{}, docs: map[string]json.RawMessage{}}
}

func (s *memStore) Put(_ context.Context, collection, key string, value json.RawMessage) error {
	id := collection + "/" + key
	if _, ok := s.docs[id]; !ok {
		s.keys[collection] = append(s.keys[collection], key)
	}
	s.docs[id] = value
	return nil
}

func (s *memStore) List(_ context.Context, collection string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	for _, key := range s.keys[collection] {
		if doc, ok := s.docs[collection+"/"+key]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *memStore) Delete(_ context.Context, collection, key string) error {
	delete(s.docs, collection+"/"+key)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
}

func TestMeetingScheduler(t *testing.T) {
	store := newMemStore()
	s := MeetingScheduler{Store: store, Now: fixedNow}
	ctx := context.Background()

	res := s.Execute(ctx, Args{Keyword: map[string]any{
		"date":      "2025-03-04",
		"time":      "10:00",
		"title":     "Design review",
		"attendees": "Ada, Grace",
	}})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	want := `Scheduled "Design review" on 2025-03-04 at 10:00 with Ada, Grace.`
	if res.Output != want {
		t.Errorf("Output = %q, want %q", res.Output, want)
	}

	list := s.Execute(ctx, query("list"))
	if !strings.Contains(list.Output, "Design review: 2025-03-04 at 10:00") {
		t.Errorf("list = %q", list.Output)
	}

	if res := s.Execute(ctx, Args{Keyword: map[string]any{"date": "2025-03-04"}}); res.Err == nil {
		t.Error("expected error when time is missing")
	}
}

func TestFinanceTracker(t *testing.T) {
	store := newMemStore()
	f := FinanceTracker{Store: store, Now: fixedNow}
	ctx := context.Background()

	for _, kw := range []map[string]any{
		{"amount": 12.5, "category": "Food"},
		{"amount": 7, "category": "food", "description": "coffee"},
		{"amount": "30", "category": "travel"},
	} {
		if res := f.Execute(ctx, Args{Positional: []string{"add"}, Keyword: kw}); res.Err != nil {
			t.Fatalf("add %v: %v", kw, res.Err)
		}
	}

	res := f.Execute(ctx, query("summary"))
	want := "food: 19.50\ntravel: 30.00\ntotal: 49.50"
	if res.Output != want {
		t.Errorf("summary = %q, want %q", res.Output, want)
	}

	if res := f.Execute(ctx, Args{Keyword: map[string]any{"category": "food"}}); res.Err == nil {
		t.Error("expected error when amount is missing")
	}
	if res := f.Execute(ctx, Args{Keyword: map[string]any{"amount": "lots"}}); res.Err == nil {
		t.Error("expected error for non-numeric amount")
	}
}
