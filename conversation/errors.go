package conversation

import "errors"

var (
	ErrInvalidSlot      = errors.New("invalid slot")
	ErrUnsupportedModel = errors.New("unsupported model")
	ErrInvalidRole      = errors.New("invalid role")
)
