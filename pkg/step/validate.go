package step

import "fmt"

// Severity indicates whether a finding makes the repository unusable or
// is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // breaks the file
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes one finding about the reference graph.
type ValidationError struct {
	ID       int // record with the problem (0 if repository-level)
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] #%d: %s", e.Severity, e.ID, e.Message)
}

// Validate checks the reference graph of repo:
//   - every reference was issued by repo and resolves;
//   - every reference points to an earlier record;
//   - every record is reachable from one of roots (warning otherwise).
//
// An empty result means the repository serializes to a self-consistent file.
func Validate(repo *Repository, roots ...Reference) []ValidationError {
	var errs []ValidationError

	repo.Each(func(id int, e Entity) {
		for _, ref := range References(e) {
			switch {
			case ref.Owner() != repo:
				errs = append(errs, ValidationError{
					ID:       id,
					Message:  fmt.Sprintf("reference #%d was issued by another repository", ref.ID()),
					Severity: SeverityError,
				})
			case ref.ID() < 1 || ref.ID() > repo.Len():
				errs = append(errs, ValidationError{
					ID:       id,
					Message:  fmt.Sprintf("reference #%d does not exist", ref.ID()),
					Severity: SeverityError,
				})
			case ref.ID() >= id:
				errs = append(errs, ValidationError{
					ID:       id,
					Message:  fmt.Sprintf("reference #%d does not point to an earlier record", ref.ID()),
					Severity: SeverityError,
				})
			}
		}
	})

	edges := func(id int) []int {
		e, ok := repo.Get(id)
		if !ok {
			return nil
		}
		var out []int
		for _, ref := range References(e) {
			if ref.Owner() == repo {
				out = append(out, ref.ID())
			}
		}
		return out
	}

	var start []int
	for _, r := range roots {
		if r.Owner() != repo {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root #%d was issued by another repository", r.ID()),
				Severity: SeverityError,
			})
			continue
		}
		if _, ok := repo.Get(r.ID()); !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root #%d does not exist", r.ID()),
				Severity: SeverityError,
			})
			continue
		}
		start = append(start, r.ID())
	}

	errs = append(errs, orphans(repo.Len(), start, edges, func(id int) string {
		e, _ := repo.Get(id)
		return e.Keyword()
	})...)
	return errs
}

// Check runs the same reference checks on a parsed document, with every
// record that no other record references taken as a root. Orphans cannot
// occur under that definition, so only reference errors are reported.
func (d *Document) Check() []ValidationError {
	var errs []ValidationError
	for _, r := range d.Records {
		for _, ref := range r.Refs {
			if _, ok := d.byID[ref]; !ok {
				errs = append(errs, ValidationError{
					ID:       r.ID,
					Message:  fmt.Sprintf("reference #%d does not exist", ref),
					Severity: SeverityError,
				})
				continue
			}
			if ref >= r.ID {
				errs = append(errs, ValidationError{
					ID:       r.ID,
					Message:  fmt.Sprintf("reference #%d does not point to an earlier record", ref),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// Roots returns the ids of records no other record references.
func (d *Document) Roots() []int {
	referenced := make(map[int]bool)
	for _, r := range d.Records {
		for _, ref := range r.Refs {
			referenced[ref] = true
		}
	}
	var roots []int
	for _, r := range d.Records {
		if !referenced[r.ID] {
			roots = append(roots, r.ID)
		}
	}
	return roots
}

// orphans runs a breadth-first walk over ids 1..n from start and reports
// every id it never reaches.
func orphans(n int, start []int, edges func(int) []int, keyword func(int) string) []ValidationError {
	if n == 0 {
		return nil
	}
	reachable := make([]bool, n+1)
	queue := make([]int, 0, len(start))
	for _, id := range start {
		if !reachable[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range edges(current) {
			if next >= 1 && next <= n && !reachable[next] {
				reachable[next] = true
				queue = append(queue, next)
			}
		}
	}

	var errs []ValidationError
	for id := 1; id <= n; id++ {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				ID:       id,
				Message:  fmt.Sprintf("%s is not reachable from any root (orphan)", keyword(id)),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
