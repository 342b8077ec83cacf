package step

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the FILE_NAME time stamp format.
const TimestampLayout = "2006-01-02T15:04:05"

// DefaultImplementationLevel is the conformance level written to
// FILE_DESCRIPTION.
const DefaultImplementationLevel = "2;1"

// Header carries the HEADER section fields.
type Header struct {
	Description         []string
	ImplementationLevel string
	FileName            string
	Timestamp           time.Time
	Author              []string
	Organization        []string
	Preprocessor        string
	OriginatingSystem   string
	Authorization       string
	Schemas             []string
}

// DanglingReferenceError reports a reference that cannot be written
// because it does not resolve in the repository being encoded.
type DanglingReferenceError struct {
	From int // record holding the reference
	To   int // referenced id
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("step: record #%d references #%d, which does not resolve in this repository", e.From, e.To)
}

// encoder accumulates one record at a time and remembers the first
// encoding failure.
type encoder struct {
	strings.Builder
	repo    *Repository
	current int
	err     error
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) writeReal(v float64) {
	s, err := FormatReal(v)
	if err != nil {
		e.fail(fmt.Errorf("record #%d: %w", e.current, err))
		s = "0."
	}
	e.WriteString(s)
}

func (e *encoder) writeRef(r Reference) {
	if r.Owner() != e.repo {
		e.fail(&DanglingReferenceError{From: e.current, To: r.ID()})
	} else if _, ok := e.repo.Get(r.ID()); !ok {
		e.fail(&DanglingReferenceError{From: e.current, To: r.ID()})
	}
	e.WriteByte('#')
	e.WriteString(strconv.Itoa(r.ID()))
}

func (e *encoder) writeEntity(ent Entity) {
	if c, ok := ent.(*Complex); ok {
		e.WriteString("( ")
		for _, p := range c.Parts {
			e.writeRecord(p.Keyword, p.Attributes)
			e.WriteByte(' ')
		}
		e.WriteByte(')')
		return
	}
	e.writeRecord(ent.Keyword(), ent.Attributes())
}

func (e *encoder) writeRecord(keyword string, attrs []Value) {
	e.WriteString(keyword)
	e.WriteByte('(')
	for i, v := range attrs {
		if i > 0 {
			e.WriteByte(',')
		}
		v.encode(e)
	}
	e.WriteByte(')')
}

// EncodeEntity renders a single entity body (without "#n=" and ";").
// References are checked against repo.
func EncodeEntity(repo *Repository, id int, ent Entity) (string, error) {
	e := &encoder{repo: repo, current: id}
	e.writeEntity(ent)
	return e.String(), e.err
}

func stringList(items []string) List {
	l := make(List, len(items))
	for i, s := range items {
		l[i] = String(s)
	}
	return l
}

func (h Header) records() []string {
	level := h.ImplementationLevel
	if level == "" {
		level = DefaultImplementationLevel
	}
	render := func(keyword string, attrs ...Value) string {
		e := &encoder{}
		e.writeRecord(keyword, attrs)
		return e.String()
	}
	return []string{
		render("FILE_DESCRIPTION", stringList(h.Description), String(level)),
		render("FILE_NAME",
			String(h.FileName),
			String(h.Timestamp.Format(TimestampLayout)),
			stringList(h.Author),
			stringList(h.Organization),
			String(h.Preprocessor),
			String(h.OriginatingSystem),
			String(h.Authorization),
		),
		render("FILE_SCHEMA", stringList(h.Schemas)),
	}
}

// Encode writes the complete exchange file for repo to w. Nothing is
// written if any record fails to encode.
func Encode(w io.Writer, repo *Repository, h Header) error {
	s, err := Format(repo, h)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// Format renders the complete exchange file for repo: header, one
// "#n=...;" line per entity in insertion order, footer.
func Format(repo *Repository, h Header) (string, error) {
	var b strings.Builder
	b.WriteString("ISO-10303-21;\nHEADER;\n")
	for _, rec := range h.records() {
		b.WriteString(rec)
		b.WriteString(";\n")
	}
	b.WriteString("ENDSEC;\nDATA;\n")

	var firstErr error
	repo.Each(func(id int, ent Entity) {
		body, err := EncodeEntity(repo, id, ent)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(id))
		b.WriteByte('=')
		b.WriteString(body)
		b.WriteString(";\n")
	})
	if firstErr != nil {
		return "", firstErr
	}

	b.WriteString("ENDSEC;\nEND-ISO-10303-21;\n")
	return b.String(), nil
}
