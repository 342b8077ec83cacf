// Package exchange assembles complete ISO 10303-21 exchange files. It
// surrounds a solid built by package brep with the unit, context,
// representation and product records an AP214 reader expects, checks the
// record graph, and formats the file.
package exchange

import (
	"errors"
	"fmt"
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chazu/stepforge/pkg/brep"
	"github.com/chazu/stepforge/pkg/config"
	"github.com/chazu/stepforge/pkg/graph"
	"github.com/chazu/stepforge/pkg/primitive"
	"github.com/chazu/stepforge/pkg/step"
)

// Document is one finished exchange file.
type Document struct {
	Name     string
	Text     string
	Entities int
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the source of the header time stamp.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// Converter turns solids into exchange files. It holds no per-conversion
// state and is safe for concurrent use.
type Converter struct {
	cfg    config.Config
	logger *zap.Logger
	now    func() time.Time
}

// New returns a Converter writing files described by cfg.
func New(cfg config.Config, opts ...Option) *Converter {
	c := &Converter{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertCube converts one cube operation.
func (c *Converter) ConvertCube(op primitive.CubeOperation) (Document, error) {
	name := op.Name
	if name == "" {
		name = "cube"
	}
	box, err := op.Box()
	if err != nil {
		return Document{}, fmt.Errorf("exchange: %s: %w", name, err)
	}
	return c.ConvertBox(name, box)
}

// ConvertBox converts a normalized box.
func (c *Converter) ConvertBox(name string, box primitive.Box) (Document, error) {
	return c.ConvertCorners(name, box.Corners())
}

// ConvertCorners converts a cuboid given by its eight corners in
// primitive.Box order.
func (c *Converter) ConvertCorners(name string, corners [8]v3.Vec) (Document, error) {
	return c.convert(name, func(repo *step.Repository) (*brep.Solid, error) {
		return brep.BuildCuboid(repo, name, corners)
	})
}

// ConvertPolyhedron converts any closed convex polyhedron.
func (c *Converter) ConvertPolyhedron(name string, p brep.Polyhedron) (Document, error) {
	return c.convert(name, func(repo *step.Repository) (*brep.Solid, error) {
		return brep.BuildSolid(repo, name, p)
	})
}

// ConvertDesign flattens g and converts every placed primitive into its
// own document, in traversal order. Nothing is returned if any primitive
// fails.
func (c *Converter) ConvertDesign(g *graph.DesignGraph) ([]Document, error) {
	placed, err := graph.Flatten(g)
	if err != nil {
		return nil, fmt.Errorf("exchange: %w", err)
	}
	docs := make([]Document, 0, len(placed))
	for _, p := range placed {
		doc, err := c.ConvertCorners(p.Name, p.Corners())
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// convert runs one conversion: solid, surrounding records, validation,
// formatting. Any failure returns no document.
func (c *Converter) convert(name string, build func(*step.Repository) (*brep.Solid, error)) (Document, error) {
	log := c.logger.With(
		zap.String("conversion_id", uuid.NewString()),
		zap.String("name", name),
	)

	repo := step.NewRepository()
	solid, err := build(repo)
	if err != nil {
		log.Debug("solid rejected", zap.Error(err))
		return Document{}, fmt.Errorf("exchange: %s: %w", name, err)
	}
	log.Debug("solid built",
		zap.Int("vertices", len(solid.Vertices)),
		zap.Int("edges", len(solid.Edges)),
		zap.Int("faces", len(solid.Faces)),
	)

	roots := c.assemble(repo, name, solid.Ref)
	log.Debug("product structure assembled", zap.Int("entities", repo.Len()))

	if err := c.check(log, repo, roots...); err != nil {
		return Document{}, fmt.Errorf("exchange: %s: %w", name, err)
	}

	text, err := step.Format(repo, c.header(name))
	if err != nil {
		return Document{}, fmt.Errorf("exchange: %s: %w", name, err)
	}
	log.Info("converted",
		zap.Int("entities", repo.Len()),
		zap.Int("bytes", len(text)),
	)
	return Document{Name: name, Text: text, Entities: repo.Len()}, nil
}

// check validates the record graph. Warnings are logged; errors are
// combined into one.
func (c *Converter) check(log *zap.Logger, repo *step.Repository, roots ...step.Reference) error {
	var err error
	for _, f := range step.Validate(repo, roots...) {
		if f.Severity == step.SeverityWarning {
			log.Warn("record graph", zap.String("finding", f.Error()))
			continue
		}
		err = multierr.Append(err, f)
	}
	if err != nil {
		return &InvalidRecordGraphError{Findings: multierr.Errors(err)}
	}
	return nil
}

// InvalidRecordGraphError reports a finished repository that fails
// reference validation.
type InvalidRecordGraphError struct {
	Findings []error
}

func (e *InvalidRecordGraphError) Error() string {
	return fmt.Sprintf("invalid record graph: %v", errors.Join(e.Findings...))
}

// Unwrap exposes the individual findings to errors.As.
func (e *InvalidRecordGraphError) Unwrap() []error { return e.Findings }

func (c *Converter) header(name string) step.Header {
	desc := c.cfg.Metadata.Description
	if len(desc) == 0 {
		desc = []string{name}
	}
	return step.Header{
		Description:       desc,
		FileName:          name,
		Timestamp:         c.now().UTC(),
		Author:            []string{c.cfg.Metadata.Author},
		Organization:      []string{c.cfg.Metadata.Organization},
		Preprocessor:      c.cfg.Metadata.Preprocessor,
		OriginatingSystem: c.cfg.Metadata.OriginatingSystem,
		Authorization:     c.cfg.Metadata.Authorization,
		Schemas:           []string{c.cfg.Schema.Name},
	}
}
