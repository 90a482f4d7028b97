package settings

import "fmt"

// Attribute is a configuration cell: a value together with the priority of
// the source that wrote it. The cell only changes through Set, and only
// when the incoming priority is at least the stored one.
type Attribute struct {
	value    any
	priority Priority
}

// NewAttribute creates an Attribute. When the value is a nested *Settings
// tree the attribute priority is the maximum of the given priority and the
// highest priority already inside the tree.
func NewAttribute(value any, priority Priority) *Attribute {
	if nested, ok := value.(*Settings); ok {
		if mp := nested.MaxPriority(); mp > priority {
			priority = mp
		}
	}
	return &Attribute{value: value, priority: priority}
}

// Set replaces both value and priority when priority is greater than or
// equal to the stored priority. Lower-priority writes are ignored.
func (a *Attribute) Set(value any, priority Priority) {
	if priority < a.priority {
		return
	}
	a.value = value
	a.priority = priority
}

// Value returns the stored value.
func (a *Attribute) Value() any {
	return a.value
}

// Priority returns the priority of the source that last wrote the value.
func (a *Attribute) Priority() Priority {
	return a.priority
}

// String implements the Stringer interface, for diagnostics.
func (a *Attribute) String() string {
	return fmt.Sprintf("Attribute(value=%v, priority=%d)", a.value, int(a.priority))
}
