// Package capability implements the capability algebra and capability
// tracker at the core of the CaMeL runtime: every value flowing through an
// execution carries a CapabilitySet describing where it came from and what
// may be done with it, and taint only ever accumulates, never disappears.
package capability

import "fmt"

// Kind enumerates the capability types a value can carry.
type Kind string

const (
	Read      Kind = "read"
	Write     Kind = "write"
	Execute   Kind = "execute"
	Network   Kind = "network"
	Trusted   Kind = "trusted"
	Untrusted Kind = "untrusted"
)

// Capability is a single (kind, source) fact about a value, with optional
// free-form metadata that does not participate in equality or hashing —
// two capabilities are the same capability if their kind and source match,
// regardless of what metadata either carries.
type Capability struct {
	Kind     Kind
	Source   string
	Metadata map[string]string
}

// key is the hashable identity of a Capability, used for set membership.
type key struct {
	kind   Kind
	source string
}

func (c Capability) key() key { return key{c.Kind, c.Source} }

func (c Capability) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.Source)
}

// New builds a Capability with no metadata.
func New(kind Kind, source string) Capability {
	return Capability{Kind: kind, Source: source}
}
