package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ScheduleMeetingName = "schedule_meeting"
	TrackFinanceName    = "track_finance"

	meetingsCollection = "meetings"
	expensesCollection = "expenses"
)

// RecordStore is the persistence the record-backed tools need. Values are
// JSON documents grouped by collection; List returns them in insertion order.
type RecordStore interface {
	Put(ctx context.Context, collection, key string, value json.RawMessage) error
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	Delete(ctx context.Context, collection, key string) error
}

// RecordTools returns the tools backed by store.
func RecordTools(store RecordStore) map[string]Tool {
	return map[string]Tool{
		ScheduleMeetingName: MeetingScheduler{Store: store, Now: time.Now},
		TrackFinanceName:    FinanceTracker{Store: store, Now: time.Now},
	}
}

type Meeting struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Attendees []string  `json:"attendees,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MeetingScheduler records meetings. With action=list (or a bare "list"
// query) it lists them; action=cancel id=<id> removes one.
type MeetingScheduler struct {
	Store RecordStore
	Now   func() time.Time
}

func (MeetingScheduler) Description() string {
	return "Schedules a meeting. Arguments: date=, time=, title=, attendees= (comma separated). Use 'list' to show meetings."
}

func (s MeetingScheduler) Execute(ctx context.Context, args Args) Result {
	switch action(args) {
	case "list":
		return s.list(ctx)
	case "cancel":
		id, ok := args.String("id")
		if !ok {
			return Fail(ScheduleMeetingName, fmt.Errorf("cancel needs id="))
		}
		if err := s.Store.Delete(ctx, meetingsCollection, id); err != nil {
			return Fail(ScheduleMeetingName, err)
		}
		return OK(fmt.Sprintf("Meeting %s cancelled.", id))
	}

	date, _ := args.String("date")
	clock, _ := args.String("time")
	if date == "" || clock == "" {
		return Fail(ScheduleMeetingName, fmt.Errorf("date and time are required"))
	}
	title, ok := args.String("title")
	if !ok || title == "" {
		title = "Meeting"
	}

	m := Meeting{
		ID:        uuid.NewString(),
		Title:     title,
		Date:      date,
		Time:      clock,
		Attendees: splitList(args, "attendees"),
		CreatedAt: s.Now(),
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return Fail(ScheduleMeetingName, err)
	}
	if err := s.Store.Put(ctx, meetingsCollection, m.ID, raw); err != nil {
		return Fail(ScheduleMeetingName, fmt.Errorf("failed to save meeting: %w", err))
	}

	out := fmt.Sprintf("Scheduled %q on %s at %s", m.Title, m.Date, m.Time)
	if len(m.Attendees) > 0 {
		out += " with " + strings.Join(m.Attendees, ", ")
	}
	return OK(out + ".")
}

func (s MeetingScheduler) list(ctx context.Context) Result {
	docs, err := s.Store.List(ctx, meetingsCollection)
	if err != nil {
		return Fail(ScheduleMeetingName, err)
	}
	if len(docs) == 0 {
		return OK("No meetings scheduled.")
	}

	var sb strings.Builder
	for _, doc := range docs {
		var m Meeting
		if err := json.Unmarshal(doc, &m); err != nil {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s at %s (%s)\n", m.Title, m.Date, m.Time, m.ID)
	}
	return OK(strings.TrimRight(sb.String(), "\n"))
}

type Expense struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FinanceTracker records expenses and reports totals per category.
type FinanceTracker struct {
	Store RecordStore
	Now   func() time.Time
}

func (FinanceTracker) Description() string {
	return "Tracks expenses. 'add amount=<n> category=<name> description=<text>' records one; 'summary' totals by category."
}

func (f FinanceTracker) Execute(ctx context.Context, args Args) Result {
	switch action(args) {
	case "summary", "list", "report":
		return f.summary(ctx)
	}

	amount, ok, err := args.Float("amount")
	if err != nil {
		return Fail(TrackFinanceName, err)
	}
	if !ok {
		return Fail(TrackFinanceName, fmt.Errorf("amount is required"))
	}
	category, ok := args.String("category")
	if !ok || category == "" {
		category = "uncategorized"
	}
	desc, _ := args.String("description")

	e := Expense{
		ID:          uuid.NewString(),
		Amount:      amount,
		Category:    strings.ToLower(category),
		Description: desc,
		CreatedAt:   f.Now(),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return Fail(TrackFinanceName, err)
	}
	if err := f.Store.Put(ctx, expensesCollection, e.ID, raw); err != nil {
		return Fail(TrackFinanceName, fmt.Errorf("failed to save expense: %w", err))
	}
	return OK(fmt.Sprintf("Recorded %.2f under %s.", e.Amount, e.Category))
}

func (f FinanceTracker) summary(ctx context.Context) Result {
	docs, err := f.Store.List(ctx, expensesCollection)
	if err != nil {
		return Fail(TrackFinanceName, err)
	}
	if len(docs) == 0 {
		return OK("No expenses recorded.")
	}

	totals := map[string]float64{}
	var grand float64
	for _, doc := range docs {
		var e Expense
		if err := json.Unmarshal(doc, &e); err != nil {
			continue
		}
		totals[e.Category] += e.Amount
		grand += e.Amount
	}

	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, c)
	}
	slices.Sort(categories)

	var sb strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&sb, "%s: %.2f\n", c, totals[c])
	}
	fmt.Fprintf(&sb, "total: %.2f", grand)
	return OK(sb.String())
}

// action reads the action keyword, or a single positional or query word.
func action(args Args) string {
	if a, ok := args.String("action"); ok {
		return strings.ToLower(a)
	}
	if len(args.Positional) > 0 {
		return strings.ToLower(args.Positional[0])
	}
	if q := args.Query(); q != "" && !strings.Contains(q, " ") {
		return strings.ToLower(q)
	}
	return ""
}

func splitList(args Args, key string) []string {
	raw, ok := args.String(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
