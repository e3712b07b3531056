package registry

import "sync"

// ShadowDetector flags a tool name being registered from more than one
// source — the signature of a malicious MCP server (or a compromised
// plugin) trying to shadow a legitimate tool and hijack its calls.
// Grounded in camel/mcp_security.py:ToolShadowingDetector.
type ShadowDetector struct {
	mu          sync.Mutex
	sourceOf    map[string]string
	conflicts   []Conflict
}

// Conflict records one detected shadowing attempt.
type Conflict struct {
	Tool            string
	OriginalSource  string
	ConflictingSource string
}

func NewShadowDetector() *ShadowDetector {
	return &ShadowDetector{sourceOf: make(map[string]string)}
}

// Register records that name is being registered from source. It returns
// false if the tool was already registered from a *different* source —
// the caller should refuse the registration rather than silently
// overwrite it. Re-registering the same name from the same source (a
// reload) is not a conflict.
func (d *ShadowDetector) Register(name, source string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.sourceOf[name]
	if ok && existing != source {
		d.conflicts = append(d.conflicts, Conflict{
			Tool:              name,
			OriginalSource:    existing,
			ConflictingSource: source,
		})
		return false
	}
	d.sourceOf[name] = source
	return true
}

// Conflicts returns every shadowing attempt detected so far.
func (d *ShadowDetector) Conflicts() []Conflict {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Conflict(nil), d.conflicts...)
}
