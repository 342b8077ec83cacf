// Package step holds the entity repository behind an ISO-10303-21 exchange
// file: an append-only, 1-based list of typed entities connected by
// references, plus the writer and reader for the clear-text encoding.
package step

import "strconv"

// Entity is a single DATA-section record. Entities are immutable once added
// to a Repository.
type Entity interface {
	// Keyword is the entity type name, e.g. "CARTESIAN_POINT".
	Keyword() string
	// Attributes returns the record parameters in schema order.
	Attributes() []Value
}

// Reference is the untyped view of a Ref, used when walking the
// reference graph.
type Reference interface {
	ID() int
	Owner() *Repository
}

// Ref is a typed handle to an entity held by the Repository that created
// it. The zero Ref resolves to nothing.
type Ref[T Entity] struct {
	id   int
	repo *Repository
}

// ID returns the 1-based record number, or 0 for the zero Ref.
func (r Ref[T]) ID() int { return r.id }

// Owner returns the repository that issued the reference.
func (r Ref[T]) Owner() *Repository { return r.repo }

// IsZero reports whether r was never issued by a repository.
func (r Ref[T]) IsZero() bool { return r.repo == nil }

// String renders the reference as it appears in the exchange file.
func (r Ref[T]) String() string { return "#" + strconv.Itoa(r.id) }

// Resolve returns the entity r points to in repo. It fails for references
// issued by another repository, ids out of range and kind mismatches.
func (r Ref[T]) Resolve(repo *Repository) (T, bool) {
	var zero T
	if repo == nil || r.repo != repo {
		return zero, false
	}
	e, ok := repo.Get(r.id)
	if !ok {
		return zero, false
	}
	t, ok := e.(T)
	return t, ok
}

// Untyped erases the entity kind, for heterogeneous aggregates.
func (r Ref[T]) Untyped() Ref[Entity] {
	return Ref[Entity]{id: r.id, repo: r.repo}
}

func (r Ref[T]) encode(e *encoder) { e.writeRef(r) }

// Repository is an append-only store of entities. Identifiers are assigned
// at insertion, start at 1 and are never reused; insertion order is
// serialization order. A Repository is not safe for concurrent use.
type Repository struct {
	entities []Entity
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Add appends e to r and returns a reference to it.
func Add[T Entity](r *Repository, e T) Ref[T] {
	r.entities = append(r.entities, e)
	return Ref[T]{id: len(r.entities), repo: r}
}

// Get returns the entity with the given 1-based id.
func (r *Repository) Get(id int) (Entity, bool) {
	if id < 1 || id > len(r.entities) {
		return nil, false
	}
	return r.entities[id-1], true
}

// Len returns the number of entities.
func (r *Repository) Len() int {
	return len(r.entities)
}

// Each calls fn for every entity in insertion order.
func (r *Repository) Each(fn func(id int, e Entity)) {
	for i, e := range r.entities {
		fn(i+1, e)
	}
}

// Count returns the number of entities whose keyword (or, for complex
// instances, any partial keyword) equals keyword.
func (r *Repository) Count(keyword string) int {
	n := 0
	for _, e := range r.entities {
		if hasKeyword(e, keyword) {
			n++
		}
	}
	return n
}

func hasKeyword(e Entity, keyword string) bool {
	if c, ok := e.(*Complex); ok {
		for _, p := range c.Parts {
			if p.Keyword == keyword {
				return true
			}
		}
		return false
	}
	return e.Keyword() == keyword
}

// References returns every reference held in e's attributes, in order.
func References(e Entity) []Reference {
	var refs []Reference
	var walk func(v Value)
	walk = func(v Value) {
		switch t := v.(type) {
		case Reference:
			refs = append(refs, t)
		case List:
			for _, item := range t {
				walk(item)
			}
		case Typed:
			walk(t.Value)
		}
	}
	if c, ok := e.(*Complex); ok {
		for _, p := range c.Parts {
			for _, v := range p.Attributes {
				walk(v)
			}
		}
		return refs
	}
	for _, v := range e.Attributes() {
		walk(v)
	}
	return refs
}
