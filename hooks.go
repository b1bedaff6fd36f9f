package pcache

// Hooks lightweight callbacks for engine events.
// Implementations MUST be cheap and non-blocking.
// The engine calls them on hot paths.
type Hooks interface {
	// An entry was served from the backend.
	Hit(key string)

	// No entry existed; compute is about to run.
	Miss(key string)

	// A freshly computed (or Put) value was persisted.
	Store(key string)

	// A single entry was flushed.
	Flush(key string)

	// Every entry under prefix was flushed.
	FlushAll(prefix string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)      {}
func (NopHooks) Miss(string)     {}
func (NopHooks) Store(string)    {}
func (NopHooks) Flush(string)    {}
func (NopHooks) FlushAll(string) {}
