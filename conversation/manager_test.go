package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"mic/model"
)

type fakeCatalog struct {
	supported map[string]bool
	loadErr   error
	loaded    []string
}

func (c *fakeCatalog) Supports(id string) bool { return c.supported[id] }

func (c *fakeCatalog) EnsureLoaded(_ context.Context, id string) error {
	if c.loadErr != nil {
		return c.loadErr
	}
	c.loaded = append(c.loaded, id)
	return nil
}

func newCatalog(ids ...string) *fakeCatalog {
	c := &fakeCatalog{supported: map[string]bool{}}
	for _, id := range ids {
		c.supported[id] = true
	}
	return c
}

func TestTaskCompletion(t *testing.T) {
	task := NewTask("schedule_meeting", []string{"date"}, []string{"time"})

	if task.IsComplete() {
		t.Fatal("new task with a required slot should be incomplete")
	}
	if slot, ok := task.NextMissingSlot(); !ok || slot != "date" {
		t.Errorf("NextMissingSlot() = %q, %v", slot, ok)
	}

	if err := task.FillSlot("date", "2025-03-04"); err != nil {
		t.Fatalf("FillSlot(date) error = %v", err)
	}
	if !task.IsComplete() {
		t.Error("task should be complete once date is filled, even without time")
	}

	err := task.FillSlot("bogus", 1)
	if !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("FillSlot(bogus) error = %v, want ErrInvalidSlot", err)
	}
	if _, ok := task.FilledSlots["bogus"]; ok {
		t.Error("undeclared slot was recorded")
	}
}

func TestTaskIsCompleteNeverCached(t *testing.T) {
	task := NewTask("plan_travel", []string{"destination", "date"}, nil)
	_ = task.FillSlot("destination", "Lisbon")
	_ = task.FillSlot("date", "May")
	if !task.IsComplete() {
		t.Fatal("expected complete")
	}

	delete(task.FilledSlots, "date")
	if task.IsComplete() {
		t.Error("IsComplete() returned a stale answer")
	}
	if slot, _ := task.NextMissingSlot(); slot != "date" {
		t.Errorf("NextMissingSlot() = %q, want date", slot)
	}
}

func TestTaskFillSlotOverwrites(t *testing.T) {
	task := NewTask("plan_travel", []string{"destination"}, []string{"budget"})
	_ = task.FillSlot("budget", 500)
	_ = task.FillSlot("budget", 800)
	if task.FilledSlots["budget"] != 800 {
		t.Errorf("budget = %v, want 800", task.FilledSlots["budget"])
	}
}

func TestTaskCopiesSlotLists(t *testing.T) {
	required := []string{"date"}
	task := NewTask("t", required, nil)
	required[0] = "changed"
	if task.RequiredSlots[0] != "date" {
		t.Error("task shares the caller's slice")
	}
}

func TestManagerStateMachine(t *testing.T) {
	m := NewManager(nil)
	if m.State() != StateNoTask {
		t.Errorf("initial state = %s", m.State())
	}

	task := m.StartTask("schedule_meeting", []string{"date", "time"}, nil)
	if m.State() != StateActiveIncomplete {
		t.Errorf("after StartTask state = %s", m.State())
	}
	_ = task.FillSlot("date", "Friday")
	_ = task.FillSlot("time", "10:00")
	if m.State() != StateActiveComplete {
		t.Errorf("after filling state = %s", m.State())
	}

	m.EndTask()
	if m.State() != StateNoTask || m.CurrentTask() != nil {
		t.Errorf("after EndTask state = %s", m.State())
	}
	m.EndTask()
	if m.State() != StateNoTask {
		t.Error("EndTask without a task should be a no-op")
	}

	m.StartTask("noop", nil, []string{"note"})
	if m.State() != StateActiveComplete {
		t.Errorf("task without required slots should start complete, got %s", m.State())
	}
}

func TestManagerStartTaskReplacesActiveTask(t *testing.T) {
	m := NewManager(nil)
	first := m.StartTask("schedule_meeting", []string{"date"}, nil)
	_ = first.FillSlot("date", "Monday")

	second := m.StartTask("plan_travel", []string{"destination"}, nil)

	if m.CurrentTask() != second {
		t.Fatal("latest task should win")
	}
	if len(second.FilledSlots) != 0 {
		t.Error("new task inherited slots from the replaced one")
	}
	if m.State() != StateActiveIncomplete {
		t.Errorf("state = %s", m.State())
	}
}

func TestManagerHistory(t *testing.T) {
	m := NewManager(nil)
	if _, ok := m.LastUserMessage(); ok {
		t.Error("empty history should have no user message")
	}

	_ = m.AddMessage(model.RoleUser, "first")
	_ = m.AddMessage(model.RoleAssistant, "reply")
	_ = m.AddMessage(model.RoleUser, "second")
	_ = m.AddMessage(model.RoleAssistant, "another reply")

	if got, ok := m.LastUserMessage(); !ok || got != "second" {
		t.Errorf("LastUserMessage() = %q, %v", got, ok)
	}
	if err := m.AddMessage(model.RoleSystem, "sneaky"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("AddMessage(system) error = %v", err)
	}

	h := m.History()
	h[0].Content = "mutated"
	if m.History()[0].Content != "first" {
		t.Error("History() exposes internal storage")
	}
	if len(m.History()) != 4 {
		t.Errorf("len(History()) = %d, want 4", len(m.History()))
	}
}

func TestManagerSetActiveModel(t *testing.T) {
	catalog := newCatalog("llama3.1:latest", "qwen2.5:0.5b")
	m := NewManager(catalog)
	ctx := context.Background()

	if err := m.SetActiveModel(ctx, "llama3.1:latest"); err != nil {
		t.Fatalf("SetActiveModel() error = %v", err)
	}
	if m.ActiveModel() != "llama3.1:latest" {
		t.Errorf("ActiveModel() = %q", m.ActiveModel())
	}

	if err := m.SetActiveModel(ctx, "distilgpt2"); !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("unknown model error = %v, want ErrUnsupportedModel", err)
	}

	loadErr := errors.New("not enough memory")
	catalog.loadErr = loadErr
	if err := m.SetActiveModel(ctx, "qwen2.5:0.5b"); !errors.Is(err, loadErr) {
		t.Errorf("load failure error = %v, want %v", err, loadErr)
	}
	if m.ActiveModel() != "llama3.1:latest" {
		t.Errorf("failed load changed the active model to %q", m.ActiveModel())
	}
	if diff := cmp.Diff([]string{"llama3.1:latest"}, catalog.loaded); diff != "" {
		t.Errorf("loaded mismatch (-want +got):\n%s", diff)
	}

	if err := NewManager(nil).SetActiveModel(ctx, "llama3.1:latest"); !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("manager without catalog error = %v", err)
	}
}

func TestManagerContext(t *testing.T) {
	m := NewManager(nil)
	m.SetContext(map[string]any{"city": "Oslo", "units": "metric"})
	m.MergeContext(map[string]any{"units": "imperial", "lang": "en"})

	want := map[string]any{"city": "Oslo", "units": "imperial", "lang": "en"}
	if diff := cmp.Diff(want, m.Context()); diff != "" {
		t.Errorf("Context() mismatch (-want +got):\n%s", diff)
	}

	ctx := m.Context()
	ctx["city"] = "Bergen"
	if m.Context()["city"] != "Oslo" {
		t.Error("Context() exposes internal storage")
	}

	src := map[string]any{"k": 1}
	m.SetContext(src)
	src["k"] = 2
	if m.Context()["k"] != 1 {
		t.Error("SetContext() keeps the caller's map")
	}
}

func TestManagerClearContextIdempotent(t *testing.T) {
	m := NewManager(nil)
	m.SetContext(map[string]any{"a": 1})

	m.ClearContext()
	once := m.Context()
	m.ClearContext()
	twice := m.Context()

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second ClearContext changed state:\n%s", diff)
	}
	if len(twice) != 0 {
		t.Errorf("Context() = %v, want empty", twice)
	}

	m.MergeContext(map[string]any{"b": 2})
	if m.Context()["b"] != 2 {
		t.Error("context unusable after clear")
	}
}

func TestManagerSnapshotRestore(t *testing.T) {
	catalog := newCatalog("llama3.1:latest")
	m := NewManager(catalog)
	_ = m.SetActiveModel(context.Background(), "llama3.1:latest")
	_ = m.AddMessage(model.RoleUser, "plan travel: Lisbon")
	m.MergeContext(map[string]any{"home": "Porto"})
	_ = m.StartTask("plan_travel", []string{"destination", "date"}, nil).FillSlot("destination", "Lisbon")

	snap := m.Snapshot()
	_ = m.CurrentTask().FillSlot("date", "May")

	restored := NewManager(catalog)
	restored.Restore(snap)

	if diff := cmp.Diff(snap, restored.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if restored.State() != StateActiveIncomplete {
		t.Errorf("restored state = %s; snapshot must not see later fills", restored.State())
	}

	stale := NewManager(newCatalog())
	stale.Restore(snap)
	if stale.ActiveModel() != "" {
		t.Errorf("unsupported model restored: %q", stale.ActiveModel())
	}
}
