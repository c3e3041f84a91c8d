package hrm

import "errors"

var (
	ErrEmptyInput = errors.New("empty input")
	ErrNoPlanner  = errors.New("no planner configured")
)
