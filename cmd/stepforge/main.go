// stepforge builds cuboid solids and writes them as ISO 10303-21 exchange
// files. Parts come from command line flags, a YAML file of cube
// operations, or a Lisp design script.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/deadsy/sdfx/sdf"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chazu/stepforge/pkg/config"
	"github.com/chazu/stepforge/pkg/engine"
	"github.com/chazu/stepforge/pkg/exchange"
	"github.com/chazu/stepforge/pkg/graph"
	"github.com/chazu/stepforge/pkg/kernel"
	"github.com/chazu/stepforge/pkg/kernel/sdfx"
	"github.com/chazu/stepforge/pkg/logging"
	"github.com/chazu/stepforge/pkg/primitive"
	"github.com/chazu/stepforge/pkg/step"
	"github.com/chazu/stepforge/pkg/tessellate"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	name       string
	size       string
	center     string
	rotate     string
	output     string
	script     string
	input      string
	verify     string
	stl        string
	stlCells   int
	timestamp  string
	logLevel   string
	logFormat  string
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("stepforge", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts        options
		showVersion bool
	)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.name, "name", "cube", "part name")
	fs.StringVar(&opts.size, "size", "", "edge length, or x,y,z edge lengths")
	fs.StringVar(&opts.center, "center", "", "center as x,y,z")
	fs.StringVar(&opts.rotate, "rotate", "", "rotation in degrees as x,y,z")
	fs.StringVar(&opts.output, "o", "", "output file, or directory when several parts are written (default stdout)")
	fs.StringVar(&opts.script, "script", "", "Lisp design script")
	fs.StringVar(&opts.input, "input", "", "YAML file of cube operations")
	fs.StringVar(&opts.verify, "verify", "", "check an existing exchange file and exit")
	fs.StringVar(&opts.stl, "stl", "", "also write a binary STL preview to this path")
	fs.IntVar(&opts.stlCells, "stl-cells", sdfx.DefaultMeshCells, "marching cubes resolution of the STL preview")
	fs.StringVar(&opts.timestamp, "timestamp", "", "fixed header time stamp (RFC 3339)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	fs.StringVar(&opts.logFormat, "log-format", "", "log format: console or json (overrides config)")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if showVersion {
		_, _ = fmt.Fprintf(stdout, "stepforge %s\n", version)
		return nil
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	modes := lo.Filter([]string{opts.script, opts.input, opts.verify}, func(s string, _ int) bool { return s != "" })
	if len(modes) > 1 {
		return errors.New("-script, -input and -verify are mutually exclusive")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	logger, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if opts.verify != "" {
		return verify(opts.verify, stdout)
	}

	convOpts := []exchange.Option{exchange.WithLogger(logger)}
	if opts.timestamp != "" {
		ts, err := time.Parse(time.RFC3339, opts.timestamp)
		if err != nil {
			return fmt.Errorf("-timestamp: %w", err)
		}
		convOpts = append(convOpts, exchange.WithClock(func() time.Time { return ts }))
	}
	conv := exchange.New(cfg, convOpts...)

	var (
		docs   []exchange.Document
		placed []graph.Placed
	)
	switch {
	case opts.script != "":
		docs, placed, err = fromScript(conv, logger, opts.script)
	case opts.input != "":
		docs, placed, err = fromInput(conv, opts.input)
	default:
		docs, placed, err = fromFlags(conv, opts)
	}
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return errors.New("nothing to export")
	}

	if err := writeDocuments(docs, opts.output, stdout); err != nil {
		return err
	}
	if opts.stl != "" {
		if err := writeSTL(opts.stl, sdfx.NewWithCells(opts.stlCells), placed); err != nil {
			return err
		}
		logger.Info("preview written", zap.String("path", opts.stl), zap.Int("parts", len(placed)))
	}
	return nil
}

// newLogger logs to the configured output path, or to stderr when none
// is set.
func newLogger(cfg logging.Config, stderr io.Writer) (*zap.Logger, error) {
	if cfg.OutputPath == "" {
		return logging.NewWriter(cfg, stderr), nil
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("logging: %s: %w", cfg.OutputPath, err)
	}
	return logger, nil
}

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

func fromFlags(conv *exchange.Converter, opts options) ([]exchange.Document, []graph.Placed, error) {
	op := primitive.CubeOperation{Name: opts.name}
	var err error
	if opts.size != "" {
		var size []float64
		if size, err = parseFloats("-size", opts.size, 1, 3); err != nil {
			return nil, nil, err
		}
		if len(size) == 1 {
			size = []float64{size[0], size[0], size[0]}
		}
		op.Size = primitive.Size(size)
	}
	if opts.center != "" {
		if op.Center, err = parseFloats("-center", opts.center, 3, 3); err != nil {
			return nil, nil, err
		}
	}
	if opts.rotate != "" {
		if op.Rotation, err = parseFloats("-rotate", opts.rotate, 3, 3); err != nil {
			return nil, nil, err
		}
	}
	return fromOperations(conv, []primitive.CubeOperation{op})
}

func fromInput(conv *exchange.Converter, path string) ([]exchange.Document, []graph.Placed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	ops, err := primitive.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return fromOperations(conv, ops)
}

func fromOperations(conv *exchange.Converter, ops []primitive.CubeOperation) ([]exchange.Document, []graph.Placed, error) {
	var (
		docs   []exchange.Document
		placed []graph.Placed
	)
	for _, op := range ops {
		box, err := op.Box()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op.Name, err)
		}
		doc, err := conv.ConvertBox(op.Name, box)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, doc)
		placed = append(placed, graph.Placed{
			Name:  op.Name,
			Size:  graph.Vec3{X: box.Size.X, Y: box.Size.Y, Z: box.Size.Z},
			Frame: sdf.Translate3d(box.Center).Mul(primitive.Rotation(box.Rotation)),
		})
	}
	return docs, placed, nil
}

func fromScript(conv *exchange.Converter, logger *zap.Logger, path string) ([]exchange.Document, []graph.Placed, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := engine.NewEngine().Check(string(src))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, w := range res.Warnings {
		logger.Warn("design", zap.String("script", path), zap.String("warning", w.Message))
	}
	if len(res.Errors) > 0 {
		var errs error
		for _, e := range res.Errors {
			errs = multierr.Append(errs, e)
		}
		return nil, nil, fmt.Errorf("%s: %w", path, errs)
	}

	placed, err := graph.Flatten(res.Graph)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	docs, err := conv.ConvertDesign(res.Graph)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, placed, nil
}

// parseFloats parses a comma separated list of between atLeast and atMost numbers.
func parseFloats(flagName, s string, atLeast, atMost int) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) < atLeast || len(fields) > atMost {
		if atLeast == atMost {
			return nil, fmt.Errorf("%s: want %d comma separated numbers, got %q", flagName, atLeast, s)
		}
		return nil, fmt.Errorf("%s: want %d to %d comma separated numbers, got %q", flagName, atLeast, atMost, s)
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", flagName, err)
		}
		out[i] = v
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

// writeDocuments writes a single document to path (stdout when empty).
// Several documents need path to name a directory; each is written to
// <name>.step inside it.
func writeDocuments(docs []exchange.Document, path string, stdout io.Writer) error {
	if len(docs) == 1 && !isDir(path) {
		if path == "" {
			_, err := io.WriteString(stdout, docs[0].Text)
			return err
		}
		return os.WriteFile(path, []byte(docs[0].Text), 0o644)
	}
	if path == "" {
		return fmt.Errorf("%d parts need -o to name an output directory", len(docs))
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	for _, d := range docs {
		if err := os.WriteFile(filepath.Join(path, d.Name+".step"), []byte(d.Text), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func writeSTL(path string, k kernel.Kernel, placed []graph.Placed) error {
	meshes := make([]*kernel.Mesh, 0, len(placed))
	for _, p := range placed {
		m, err := tessellate.Placed(k, p)
		if err != nil {
			return fmt.Errorf("stl: %w", err)
		}
		meshes = append(meshes, m)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := kernel.WriteSTL(f, "stepforge preview", meshes...); err != nil {
		_ = f.Close()
		return fmt.Errorf("stl: %w", err)
	}
	return f.Close()
}

// verify parses an exchange file, checks its references and prints a
// keyword summary.
func verify(path string, stdout io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := step.Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	counts := doc.KeywordCounts()
	for _, k := range doc.Keywords() {
		_, _ = fmt.Fprintf(stdout, "%-40s %d\n", k, counts[k])
	}

	findings := doc.Check()
	nErr := lo.CountBy(findings, func(f step.ValidationError) bool { return f.Severity == step.SeverityError })
	_, _ = fmt.Fprintf(stdout, "%s: %d records, %d errors\n", path, len(doc.Records), nErr)
	if nErr > 0 {
		var errs error
		for _, f := range findings {
			if f.Severity == step.SeverityError {
				errs = multierr.Append(errs, f)
			}
		}
		return fmt.Errorf("%s: %w", path, errs)
	}
	return nil
}
