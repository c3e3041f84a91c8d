// Package conversation tracks dialogue state: history, free-form context,
// the active model and at most one slot-filling task.
package conversation

import (
	"fmt"
	"maps"
	"slices"
)

// Task is a slot-filling record for one multi-turn goal.
type Task struct {
	Name          string         `json:"name"`
	RequiredSlots []string       `json:"required_slots"`
	OptionalSlots []string       `json:"optional_slots,omitempty"`
	FilledSlots   map[string]any `json:"filled_slots"`
}

func NewTask(name string, required, optional []string) *Task {
	return &Task{
		Name:          name,
		RequiredSlots: slices.Clone(required),
		OptionalSlots: slices.Clone(optional),
		FilledSlots:   map[string]any{},
	}
}

// Declares reports whether slot is a required or optional slot of t.
func (t *Task) Declares(slot string) bool {
	return slices.Contains(t.RequiredSlots, slot) || slices.Contains(t.OptionalSlots, slot)
}

// FillSlot records value for a declared slot, overwriting any earlier value.
func (t *Task) FillSlot(slot string, value any) error {
	if !t.Declares(slot) {
		return fmt.Errorf("%w: %q is not a slot of %s", ErrInvalidSlot, slot, t.Name)
	}
	if t.FilledSlots == nil {
		t.FilledSlots = map[string]any{}
	}
	t.FilledSlots[slot] = value
	return nil
}

// NextMissingSlot returns the first unfilled required slot in declaration
// order.
func (t *Task) NextMissingSlot() (string, bool) {
	for _, slot := range t.RequiredSlots {
		if _, ok := t.FilledSlots[slot]; !ok {
			return slot, true
		}
	}
	return "", false
}

// IsComplete reports whether every required slot is filled. It is computed
// on each call.
func (t *Task) IsComplete() bool {
	_, missing := t.NextMissingSlot()
	return !missing
}

// Slots returns a copy of the filled slots.
func (t *Task) Slots() map[string]any {
	return maps.Clone(t.FilledSlots)
}

func (t *Task) clone() *Task {
	if t == nil {
		return nil
	}
	c := NewTask(t.Name, t.RequiredSlots, t.OptionalSlots)
	maps.Copy(c.FilledSlots, t.FilledSlots)
	return c
}
