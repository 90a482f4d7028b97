package settings

// defaultSettings is the built-in default-configuration source: the
// lowest-priority layer every NewWithDefaults store starts from. Names
// follow the ALL-UPPERCASE settings convention; nested maps are
// auto-promoted into settings trees on load. The <KEY>/<KEY>_BASE pairs
// compose through GetWithBase.
var defaultSettings = map[string]any{
	"CONCURRENT_WORKERS":    8,
	"QUEUE_BACKLOG_LIMIT":   1024,
	"RETRY_ENABLED":         true,
	"RETRY_TIMES":           2,
	"RETRY_BACKOFF_FACTOR":  2.0,
	"STAGE_TIMEOUT_SECONDS": 180,
	"LOG_LEVEL":             "info",
	"EXPORT_ENCODING":       "utf-8",

	// Ordered stage handlers: the value is the handler's position in the
	// pipeline. Projects extend STAGE_HANDLERS; the _BASE layer carries
	// the built-ins.
	"STAGE_HANDLERS": map[string]any{},
	"STAGE_HANDLERS_BASE": map[string]any{
		"decode":    100,
		"transform": 500,
		"export":    900,
	},

	"EXPORTERS": map[string]any{},
	"EXPORTERS_BASE": map[string]any{
		"jsonlines": 0,
		"csv":       10,
	},
}

// Defaults returns a copy of the built-in default-configuration source.
func Defaults() map[string]any {
	out := make(map[string]any, len(defaultSettings))
	for k, v := range defaultSettings {
		out[k] = deepCopyValue(v)
	}
	return out
}

// NewWithDefaults creates a store pre-seeded with the built-in defaults at
// PriorityDefault, then overlaid with values (any Update source shape) at
// the given priority.
func NewWithDefaults(values any, priority Priority) (*Settings, error) {
	s, err := New(nil, PriorityDefault)
	if err != nil {
		return nil, err
	}
	if err := s.SetModule(defaultSettings, PriorityDefault); err != nil {
		return nil, err
	}
	if values != nil {
		if err := s.Update(values, priority); err != nil {
			return nil, err
		}
	}
	return s, nil
}
