package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAttribute_Set_GreaterPriority tests that a higher-priority write
// replaces both value and priority
func TestAttribute_Set_GreaterPriority(t *testing.T) {
	attr := NewAttribute("value", 10)

	attr.Set("value2", 20)

	assert.Equal(t, "value2", attr.Value())
	assert.Equal(t, Priority(20), attr.Priority())
}

// TestAttribute_Set_EqualPriority tests that an equal-priority write
// overwrites
func TestAttribute_Set_EqualPriority(t *testing.T) {
	attr := NewAttribute("value", 10)

	attr.Set("value2", 10)

	assert.Equal(t, "value2", attr.Value())
	assert.Equal(t, Priority(10), attr.Priority())
}

// TestAttribute_Set_LesserPriority_IsNoOp tests that a lower-priority write
// changes neither field
func TestAttribute_Set_LesserPriority_IsNoOp(t *testing.T) {
	attr := NewAttribute("value", 10)

	attr.Set("value2", 0)

	assert.Equal(t, "value", attr.Value())
	assert.Equal(t, Priority(10), attr.Priority())
}

// TestNewAttribute_NestedStore_TakesMaxPriority tests that an attribute
// holding a settings tree adopts the tree's highest entry priority when it
// exceeds the write priority
func TestNewAttribute_NestedStore_TakesMaxPriority(t *testing.T) {
	inner, err := New(nil, PriorityDefault)
	require.NoError(t, err)
	require.NoError(t, inner.Set("key", "val", PriorityComponent))

	attr := NewAttribute(inner, 10)

	assert.Equal(t, PriorityComponent, attr.Priority())
}

// TestAttribute_String_ContainsBothFields tests the diagnostic form
func TestAttribute_String_ContainsBothFields(t *testing.T) {
	attr := NewAttribute("value", 10)

	str := attr.String()

	assert.Contains(t, str, "value", "String should contain the value")
	assert.Contains(t, str, "10", "String should contain the priority")
}
