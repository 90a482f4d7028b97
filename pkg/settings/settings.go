// Package settings implements a priority-resolving configuration store:
// an ordered mapping from string keys to values where every value carries
// the priority of the source that wrote it. Writes only take effect when
// their priority is greater than or equal to the priority currently held
// for the key, which makes merging layered configuration sources
// (defaults, project overrides, command-line overrides) deterministic and
// independent of call order.
//
// Stores nest: a plain map accepted as a value is auto-promoted into a
// nested *Settings tree, and typed accessors degrade such trees back to
// plain maps on read. Stores can be frozen, deep-copied, and composed
// through the <KEY>_BASE layering protocol of GetWithBase.
package settings

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"unicode"
)

// Settings is the priority-aware configuration store. All methods are safe
// for concurrent use; every operation is a single critical section, so a
// Set is never partially visible.
type Settings struct {
	mu      sync.RWMutex
	entries map[string]*Attribute
	order   []string
	frozen  bool
}

// attrEntry is a point-in-time view of one store entry, used to walk a
// source store without holding its lock during the merge.
type attrEntry struct {
	key      string
	value    any
	priority Priority
}

// New creates a store. A nil values creates an empty store; otherwise
// values is applied through Update at the given priority.
func New(values any, priority Priority) (*Settings, error) {
	s := &Settings{entries: make(map[string]*Attribute)}
	if values == nil {
		return s, nil
	}
	if err := s.Update(values, priority); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores value under key at the given priority. When the key already
// exists the write is applied in place on the existing Attribute, so the
// attribute identity is preserved and the write is a no-op if priority is
// below the attribute's current priority.
//
// Plain mappings are auto-promoted into a nested *Settings with every key
// at the same priority. When the current value is already a nested store,
// an incoming JSON object string is parsed and promoted the same way; an
// incoming *Settings replaces the value wholesale (merging layers is
// Update's job, not Set's).
func (s *Settings) Set(key string, value any, priority Priority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, value, priority)
}

func (s *Settings) setLocked(key string, value any, priority Priority) error {
	if s.frozen {
		return fmt.Errorf("%w: cannot set %q", ErrImmutableSettings, key)
	}
	attr, exists := s.entries[key]
	if !exists {
		promoted, err := promoteValue(value, priority, false)
		if err != nil {
			return err
		}
		s.entries[key] = NewAttribute(promoted, priority)
		s.order = append(s.order, key)
		return nil
	}
	if priority < attr.Priority() {
		return nil
	}
	_, container := attr.Value().(*Settings)
	promoted, err := promoteValue(value, priority, container)
	if err != nil {
		return err
	}
	attr.Set(promoted, priority)
	return nil
}

// promoteValue wraps plain mappings into a fresh *Settings so that nested
// trees are always stored as containers once accepted. When the write
// targets an existing container, JSON object strings promote as well.
func promoteValue(value any, priority Priority, containerTarget bool) (any, error) {
	switch value.(type) {
	case nil, *Settings:
		return value, nil
	}
	if m, ok := toStringAnyMap(value); ok {
		return New(m, priority)
	}
	if containerTarget {
		if raw, ok := value.(string); ok {
			obj, err := decodeJSONObject(raw)
			if err != nil {
				return nil, err
			}
			return New(obj, priority)
		}
	}
	return value, nil
}

// Put stores value under key at PriorityProject, the conventional tier for
// direct programmatic overrides.
func (s *Settings) Put(key string, value any) error {
	return s.Set(key, value, PriorityProject)
}

// Get returns the stored value without coercion, or the optional default
// (nil if none) when the key is absent. A stored nil reads like an absent
// key.
func (s *Settings) Get(key string, def ...any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if attr, ok := s.entries[key]; ok {
		if v := attr.Value(); v != nil {
			return v
		}
	}
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

// SetDefault stores def at PriorityDefault when key is absent and returns
// the now-current value. An existing value is returned unchanged; its
// priority is never lowered.
func (s *Settings) SetDefault(key string, def any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attr, ok := s.entries[key]; ok {
		return attr.Value(), nil
	}
	if err := s.setLocked(key, def, PriorityDefault); err != nil {
		return nil, err
	}
	return s.entries[key].Value(), nil
}

// Update merges values into the store. Three source shapes are accepted:
//
//   - *Settings: every entry is applied at its own stored priority and the
//     priority argument is ignored.
//   - a mapping with string keys: every entry is applied at priority, in
//     sorted key order.
//   - a JSON object string: parsed, then treated as a mapping.
//
// Anything else fails with ErrInvalidUpdateSource. Entries are applied one
// Set at a time; on error, entries already applied are kept (partial
// application). Keys absent from the source are never removed.
func (s *Settings) Update(values any, priority Priority) error {
	switch src := values.(type) {
	case nil:
		return nil
	case *Settings:
		entries := src.snapshot()
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, e := range entries {
			if err := s.setLocked(e.key, e.value, e.priority); err != nil {
				return err
			}
		}
		return nil
	case string:
		obj, err := decodeJSONObject(src)
		if err != nil {
			return err
		}
		return s.updateMap(obj, priority)
	default:
		if m, ok := toStringAnyMap(values); ok {
			return s.updateMap(m, priority)
		}
		return fmt.Errorf("%w: %T", ErrInvalidUpdateSource, values)
	}
}

func (s *Settings) updateMap(values map[string]any, priority Priority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range sortedKeys(values) {
		if err := s.setLocked(key, values[key], priority); err != nil {
			return err
		}
	}
	return nil
}

// SetModule applies a collaborator-supplied flat namespace (for example a
// module's exported bindings) at the given priority. Only entries whose
// names follow the ALL-UPPERCASE settings convention are consumed; every
// other name is skipped.
func (s *Settings) SetModule(vars map[string]any, priority Priority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range sortedKeys(vars) {
		if !isSettingName(key) {
			continue
		}
		if err := s.setLocked(key, vars[key], priority); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes key from the store.
func (s *Settings) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return fmt.Errorf("%w: cannot delete %q", ErrImmutableSettings, key)
	}
	if _, ok := s.entries[key]; !ok {
		return fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	delete(s.entries, key)
	s.removeFromOrder(key)
	return nil
}

// Pop removes key and returns its value. Without a default, a missing key
// fails with ErrMissingKey. A frozen store fails before anything else, so
// Pop never mutates (and never returns the default) once frozen.
func (s *Settings) Pop(key string, def ...any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return nil, fmt.Errorf("%w: cannot pop %q", ErrImmutableSettings, key)
	}
	attr, ok := s.entries[key]
	if !ok {
		if len(def) > 0 {
			return def[0], nil
		}
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	delete(s.entries, key)
	s.removeFromOrder(key)
	return attr.Value(), nil
}

// GetPriority returns the priority stored for key, or false when absent.
func (s *Settings) GetPriority(key string) (Priority, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if attr, ok := s.entries[key]; ok {
		return attr.Priority(), true
	}
	return 0, false
}

// MaxPriority returns the highest priority among all entries, or
// PriorityDefault for an empty store.
func (s *Settings) MaxPriority() Priority {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return PriorityDefault
	}
	found := false
	var top Priority
	for _, attr := range s.entries {
		if !found || attr.Priority() > top {
			top = attr.Priority()
			found = true
		}
	}
	return top
}

// GetWithBase composes the <key>_BASE layer with the <key> layer: a fresh
// store is updated with the base entries and then with the override
// entries, each entry keeping its own stored priority. A conflict between
// the two layers is therefore decided by comparing the entries' own
// priorities, not by layer position. Absent layers are skipped; when both
// are absent the result is empty. A layer that is present but not a
// nested *Settings fails with ErrInvalidUpdateSource.
func (s *Settings) GetWithBase(key string) (*Settings, error) {
	composed := &Settings{entries: make(map[string]*Attribute)}
	for _, layer := range []string{key + "_BASE", key} {
		value := s.Get(layer)
		if value == nil {
			continue
		}
		nested, ok := value.(*Settings)
		if !ok {
			return nil, fmt.Errorf("%w: setting %q is not a settings container (%T)", ErrInvalidUpdateSource, layer, value)
		}
		if err := composed.Update(nested, PriorityDefault); err != nil {
			return nil, err
		}
	}
	return composed, nil
}

// Freeze makes the store immutable for the rest of its lifetime. Reads
// keep working; there is no way to unfreeze. Idempotent.
func (s *Settings) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether the store has been frozen.
func (s *Settings) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Copy returns an independent store: every mutable compound value (slice,
// map, nested store) is copied recursively, so later mutation of either
// side, or of compound values read from either side, never leaks across.
// Scalars and opaque references are shared.
func (s *Settings) Copy() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := &Settings{
		entries: make(map[string]*Attribute, len(s.entries)),
		order:   append([]string(nil), s.order...),
		frozen:  s.frozen,
	}
	for key, attr := range s.entries {
		out.entries[key] = &Attribute{value: deepCopyValue(attr.Value()), priority: attr.Priority()}
	}
	return out
}

// FrozenCopy returns a frozen Copy; the source is left as-is.
func (s *Settings) FrozenCopy() *Settings {
	out := s.Copy()
	out.frozen = true
	return out
}

// CopyToDict converts the whole tree, nested stores included, into plain
// nested maps, discarding all priority metadata.
func (s *Settings) CopyToDict() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.entries))
	for key, attr := range s.entries {
		if nested, ok := attr.Value().(*Settings); ok {
			out[key] = nested.CopyToDict()
			continue
		}
		out[key] = deepCopyValue(attr.Value())
	}
	return out
}

// Has reports whether key is present.
func (s *Settings) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Keys returns all keys in insertion order.
func (s *Settings) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of entries.
func (s *Settings) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// String implements the Stringer interface, for diagnostics.
func (s *Settings) String() string {
	return fmt.Sprintf("Settings(%v)", s.CopyToDict())
}

func (s *Settings) snapshot() []attrEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]attrEntry, 0, len(s.order))
	for _, key := range s.order {
		attr := s.entries[key]
		out = append(out, attrEntry{key: key, value: attr.Value(), priority: attr.Priority()})
	}
	return out
}

func (s *Settings) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// deepCopyValue clones the mutable compound shapes a value slot can hold:
// nested stores, slices and maps (recursively). Scalars and opaque
// references such as component constructors are shared.
func deepCopyValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *Settings:
		return t.Copy()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopyValue(e)
		}
		return out
	default:
		return reflectCopy(v)
	}
}

// reflectCopy clones slice and map kinds not covered by the common cases
// in deepCopyValue, for example [][]string or map[string]int. Every other
// kind is returned as-is.
func reflectCopy(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			copied := deepCopyValue(rv.Index(i).Interface())
			if copied != nil {
				out.Index(i).Set(reflect.ValueOf(copied))
			}
		}
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			copied := deepCopyValue(iter.Value().Interface())
			if copied == nil {
				out.SetMapIndex(iter.Key(), reflect.Zero(rv.Type().Elem()))
				continue
			}
			out.SetMapIndex(iter.Key(), reflect.ValueOf(copied))
		}
		return out.Interface()
	default:
		return v
	}
}

// toStringAnyMap snapshots any mapping with string keys into a
// map[string]any. Non-map values, and maps with non-string keys, report
// false.
func toStringAnyMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = e
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// decodeJSONObject parses a JSON object string; the original input is
// carried in the error for diagnostics.
func decodeJSONObject(raw string) (map[string]any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v in %q", ErrInvalidDict, err, raw)
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: JSON value is not an object in %q", ErrInvalidDict, raw)
	}
	return obj, nil
}

// isSettingName reports whether name follows the ALL-UPPERCASE settings
// naming convention: at least one letter and no lowercase letters.
func isSettingName(name string) bool {
	hasLetter := false
	for _, r := range name {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
