package conversation

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"mic/config"
	"mic/model"
)

// State is the position of the task state machine.
type State string

const (
	StateNoTask           State = "NO_TASK"
	StateActiveIncomplete State = "TASK_ACTIVE_INCOMPLETE"
	StateActiveComplete   State = "TASK_ACTIVE_COMPLETE"
)

// ModelCatalog is the model registry the manager validates selections
// against. EnsureLoaded makes the model resident before it is used.
type ModelCatalog interface {
	Supports(id string) bool
	EnsureLoaded(ctx context.Context, id string) error
}

// Manager owns the state of one conversation. It is not safe for concurrent
// use; turns of a conversation must be serialized by the caller.
type Manager struct {
	history     []model.Message
	context     map[string]any
	task        *Task
	activeModel string
	models      ModelCatalog
	now         func() time.Time
}

func NewManager(models ModelCatalog) *Manager {
	return &Manager{
		context: map[string]any{},
		models:  models,
		now:     time.Now,
	}
}

// AddMessage appends a user or assistant message to the history.
func (m *Manager) AddMessage(role, content string) error {
	if role != model.RoleUser && role != model.RoleAssistant {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	m.history = append(m.history, model.Message{Role: role, Content: content, Timestamp: m.now()})
	return nil
}

// History returns a copy of the history.
func (m *Manager) History() []model.Message {
	return slices.Clone(m.history)
}

// LastUserMessage returns the most recent user message.
func (m *Manager) LastUserMessage() (string, bool) {
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Role == model.RoleUser {
			return m.history[i].Content, true
		}
	}
	return "", false
}

// StartTask begins a new task. An active task is replaced without warning;
// the latest task wins.
func (m *Manager) StartTask(name string, required, optional []string) *Task {
	if m.task != nil {
		config.DebugLog.Debugf("[Conversation] task %s replaced by %s", m.task.Name, name)
	}
	m.task = NewTask(name, required, optional)
	return m.task
}

// CurrentTask returns the active task, or nil.
func (m *Manager) CurrentTask() *Task {
	return m.task
}

// EndTask clears the active task, if any.
func (m *Manager) EndTask() {
	m.task = nil
}

func (m *Manager) State() State {
	switch {
	case m.task == nil:
		return StateNoTask
	case m.task.IsComplete():
		return StateActiveComplete
	default:
		return StateActiveIncomplete
	}
}

// SetActiveModel selects id after asking the catalog to load it. On any
// failure the previous selection is kept.
func (m *Manager) SetActiveModel(ctx context.Context, id string) error {
	if m.models == nil || !m.models.Supports(id) {
		return fmt.Errorf("%w: %s", ErrUnsupportedModel, id)
	}
	if err := m.models.EnsureLoaded(ctx, id); err != nil {
		return fmt.Errorf("failed to load model %s: %w", id, err)
	}
	m.activeModel = id
	return nil
}

func (m *Manager) ActiveModel() string {
	return m.activeModel
}

// SetContext replaces the context with a copy of values.
func (m *Manager) SetContext(values map[string]any) {
	m.context = maps.Clone(values)
	if m.context == nil {
		m.context = map[string]any{}
	}
}

// MergeContext copies values into the context, overwriting existing keys.
func (m *Manager) MergeContext(values map[string]any) {
	maps.Copy(m.context, values)
}

func (m *Manager) ClearContext() {
	clear(m.context)
}

// Context returns a copy of the context.
func (m *Manager) Context() map[string]any {
	return maps.Clone(m.context)
}

// Snapshot is the persisted form of a conversation.
type Snapshot struct {
	History     []model.Message `json:"history"`
	Context     map[string]any  `json:"context,omitempty"`
	Task        *Task           `json:"task,omitempty"`
	ActiveModel string          `json:"active_model,omitempty"`
}

func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		History:     m.History(),
		Context:     m.Context(),
		Task:        m.task.clone(),
		ActiveModel: m.activeModel,
	}
}

// Restore replaces the manager's state with s. A model the catalog no
// longer supports is dropped rather than restored.
func (m *Manager) Restore(s Snapshot) {
	m.history = slices.Clone(s.History)
	m.SetContext(s.Context)
	m.task = s.Task.clone()
	m.activeModel = ""
	if s.ActiveModel != "" && m.models != nil && m.models.Supports(s.ActiveModel) {
		m.activeModel = s.ActiveModel
	}
}
