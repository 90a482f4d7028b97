package settings

import (
	"fmt"
	"strconv"

	"github.com/spf13/cast"
)

// Priority ranks configuration sources. A write to a key takes effect only
// when its priority is greater than or equal to the priority already held
// for that key; equal priority overwrites.
type Priority int

// Named priority tiers, lowest to highest. Arbitrary integer priorities
// outside this set are also valid.
const (
	PriorityDefault   Priority = 0
	PriorityCommand   Priority = 10
	PriorityProject   Priority = 20
	PriorityComponent Priority = 30
	PriorityCmdline   Priority = 40
)

var priorityNames = map[string]Priority{
	"default":   PriorityDefault,
	"command":   PriorityCommand,
	"project":   PriorityProject,
	"component": PriorityComponent,
	"cmdline":   PriorityCmdline,
}

// ParsePriority resolves a symbolic tier name to its Priority.
func ParsePriority(name string) (Priority, error) {
	p, ok := priorityNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPriority, name)
	}
	return p, nil
}

// ResolvePriority resolves a symbolic tier name or a numeric priority.
// Numeric input passes through unchanged, so external collaborators can
// hand over either form.
func ResolvePriority(v any) (Priority, error) {
	switch t := v.(type) {
	case Priority:
		return t, nil
	case string:
		return ParsePriority(t)
	case bool, nil:
		return 0, fmt.Errorf("%w: %v (%T)", ErrUnknownPriority, v, v)
	default:
		n, err := cast.ToIntE(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %v (%T)", ErrUnknownPriority, v, v)
		}
		return Priority(n), nil
	}
}

// String returns the tier name for known priorities and the numeric form
// otherwise.
func (p Priority) String() string {
	switch p {
	case PriorityDefault:
		return "default"
	case PriorityCommand:
		return "command"
	case PriorityProject:
		return "project"
	case PriorityComponent:
		return "component"
	case PriorityCmdline:
		return "cmdline"
	default:
		return strconv.Itoa(int(p))
	}
}
