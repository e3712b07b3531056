package capability

import "github.com/google/uuid"

// derivedSource is stamped on a capability that a Set gained purely by
// deriving from untrusted inputs, as opposed to one asserted at origin.
const derivedSource = "derived"

// Set is a value-typed collection of capabilities attached to a single
// piece of data. DataID is assigned once, at construction, and never
// recomputed — it identifies the value across copies and derivations for
// audit purposes, it is not part of set equality.
type Set struct {
	capabilities map[key]Capability
	DataID       string
}

// NewSet returns an empty capability set with a fresh data identifier.
func NewSet() *Set {
	return &Set{
		capabilities: make(map[key]Capability),
		DataID:       uuid.NewString(),
	}
}

// Add inserts a capability into the set, replacing any existing capability
// with the same kind and source (metadata of the newest caller wins).
func (s *Set) Add(c Capability) {
	s.capabilities[c.key()] = c
}

// Has reports whether the set contains a capability of the given kind. If
// source is non-empty, the source must also match.
func (s *Set) Has(kind Kind, source string) bool {
	if source != "" {
		_, ok := s.capabilities[key{kind, source}]
		return ok
	}
	for k := range s.capabilities {
		if k.kind == kind {
			return true
		}
	}
	return false
}

// IsTrusted reports whether the set carries a TRUSTED capability.
func (s *Set) IsTrusted() bool { return s.Has(Trusted, "") }

// IsUntrusted reports whether the set carries an UNTRUSTED capability.
func (s *Set) IsUntrusted() bool { return s.Has(Untrusted, "") }

// Sources returns the distinct source strings recorded across all
// capabilities in the set, in no particular order.
func (s *Set) Sources() []string {
	seen := make(map[string]struct{}, len(s.capabilities))
	out := make([]string, 0, len(s.capabilities))
	for k := range s.capabilities {
		if _, ok := seen[k.source]; ok {
			continue
		}
		seen[k.source] = struct{}{}
		out = append(out, k.source)
	}
	return out
}

// All returns every capability currently in the set.
func (s *Set) All() []Capability {
	out := make([]Capability, 0, len(s.capabilities))
	for _, c := range s.capabilities {
		out = append(out, c)
	}
	return out
}

// Merge unions another set's capabilities into this one in place (I3: set
// semantics — duplicates collapse, nothing is ever removed).
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for k, c := range other.capabilities {
		s.capabilities[k] = c
	}
}

// DeriveFrom builds the capability set for a value computed from sources.
// It unions every source's capabilities (I1: taint monotonicity — the
// result carries at least everything its inputs carried) and, if any
// source is untrusted, stamps the result UNTRUSTED from "derived" rather
// than inferring TRUSTED (I2: trust is only ever asserted at origin, never
// inferred from the shape of a computation).
func DeriveFrom(sources ...*Set) *Set {
	result := NewSet()
	anyUntrusted := false
	for _, src := range sources {
		if src == nil {
			continue
		}
		result.Merge(src)
		if src.IsUntrusted() {
			anyUntrusted = true
		}
	}
	if anyUntrusted {
		result.Add(New(Untrusted, derivedSource))
	}
	return result
}
