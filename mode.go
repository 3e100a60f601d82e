package routequery

import (
	"fmt"
	"strings"
)

// Mode selects how a commit lands in the document's history.
type Mode string

const (
	// ModePush creates a new navigable history entry.
	ModePush Mode = "push"
	// ModeReplace mutates the current entry in place.
	ModeReplace Mode = "replace"
)

// ParseMode converts a textual mode. An empty string yields ModeReplace.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "replace":
		return ModeReplace, nil
	case "push":
		return ModePush, nil
	default:
		return "", fmt.Errorf("routequery: unknown mode %q", value)
	}
}

func (m Mode) orDefault() Mode {
	if m == "" {
		return ModeReplace
	}
	return m
}
