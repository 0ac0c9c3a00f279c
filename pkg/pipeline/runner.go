package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowscope/pkg/cache"
	"github.com/matzehuels/flowscope/pkg/config"
	"github.com/matzehuels/flowscope/pkg/errors"
	"github.com/matzehuels/flowscope/pkg/graphio"
	"github.com/matzehuels/flowscope/pkg/layout"
	"github.com/matzehuels/flowscope/pkg/observability"
	"github.com/matzehuels/flowscope/pkg/render"
	"github.com/matzehuels/flowscope/pkg/vizstate"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result holds the products of one pipeline run.
type Result struct {
	Document *graphio.Document
	State    *vizstate.State

	// DocHash is the content hash of the ingested document.
	DocHash string

	// Artifacts maps format to rendered bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records per-stage timing and graph size.
type Stats struct {
	IngestTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration

	State vizstate.Stats
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// Execute runs the complete ingest → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Ingest
	ingestStart := time.Now()
	doc, s, docHash, err := r.Ingest(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.State = s
	result.DocHash = docHash
	result.Stats.IngestTime = time.Since(ingestStart)
	result.Stats.State = s.Stats()

	opts.Logger.Info("ingested document",
		"nodes", result.Stats.State.Nodes,
		"edges", result.Stats.State.Edges,
		"containers", result.Stats.State.Containers,
		"duration", result.Stats.IngestTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layoutHash, layoutHit, err := r.LayoutWithCacheInfo(ctx, s, docHash, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"engine", r.engine(opts),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, s, layoutHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Ingest loads and validates the document, builds the visibility state, and
// applies the requested collapses. Returns the document, the state, and the
// document's content hash.
func (r *Runner) Ingest(ctx context.Context, opts Options) (*graphio.Document, *vizstate.State, string, error) {
	r.applyLogger(&opts)
	observability.Pipeline().OnIngestStart(ctx, opts.Input)
	start := time.Now()

	doc, s, hash, err := r.ingest(opts)
	nodes := 0
	if doc != nil {
		nodes = len(doc.Nodes)
	}
	observability.Pipeline().OnIngestComplete(ctx, opts.Input, nodes, time.Since(start), err)
	return doc, s, hash, err
}

func (r *Runner) ingest(opts Options) (*graphio.Document, *vizstate.State, string, error) {
	raw, err := os.ReadFile(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, "", errors.New(errors.ErrCodeFileNotFound, "no such file: %s", opts.Input)
		}
		return nil, nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.Input)
	}
	docHash := cache.Hash(raw)

	doc, err := graphio.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, "", err
	}

	s, err := graphio.BuildState(doc, graphio.BuildOptions{
		ChoiceID: opts.Hierarchy,
		Labels:   opts.labelMode(),
		Config:   opts.Config,
	})
	if err != nil {
		return nil, nil, "", err
	}

	for _, id := range opts.collapseTargets(containerIDs(s)) {
		s.CollapseContainer(id)
	}
	return doc, s, docHash, nil
}

// LayoutWithCacheInfo computes (or restores) geometry for the state's
// visible projection. Returns the layout content hash used to key rendered
// artifacts, and whether the geometry came from cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, s *vizstate.State, docHash string, opts Options) (string, bool, error) {
	r.applyLogger(&opts)
	cfg := r.config(opts)
	engine := r.engine(opts)
	cfg.Layout.Engine = engine

	cacheKey := r.Keyer.LayoutKey(docHash, cache.LayoutKeyOpts{
		Engine:    engine,
		Hierarchy: opts.Hierarchy,
		Collapsed: s.CollapsedContainers(),
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var geo geometry
			if err := json.Unmarshal(data, &geo); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				geo.apply(s)
				return cache.Hash(data), true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	observability.Pipeline().OnLayoutStart(ctx, engine, s.Stats().VisibleNodes)
	start := time.Now()
	err := layout.Compute(ctx, s, cfg)
	observability.Pipeline().OnLayoutComplete(ctx, engine, time.Since(start), err)
	if err != nil {
		return "", false, err
	}

	data, err := json.Marshal(captureGeometry(s))
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeInternal, err, "encode geometry")
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return cache.Hash(data), false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, s *vizstate.State, docHash string, opts Options) error {
	_, _, err := r.LayoutWithCacheInfo(ctx, s, docHash, opts)
	return err
}

// RenderWithCacheInfo produces the requested artifacts, serving them from
// cache when every format is present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *vizstate.State, layoutHash string, opts Options) (map[string][]byte, bool, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	cfg := r.config(opts)

	artifactOpts := func(format string) cache.ArtifactKeyOpts {
		return cache.ArtifactKeyOpts{Format: format, Detailed: opts.Detailed, Legend: opts.Legend}
	}

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, artifactOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				artifacts = nil
				break
			}
			artifacts[format] = data
		}
		if artifacts != nil {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := r.renderFormats(ctx, s, cfg, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range artifacts {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, artifactOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s *vizstate.State, layoutHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, layoutHash, opts)
	return artifacts, err
}

func (r *Runner) renderFormats(ctx context.Context, s *vizstate.State, cfg config.Config, opts Options) (map[string][]byte, error) {
	renderOpts := render.Options{Detailed: opts.Detailed, Legend: opts.Legend}
	var dot string
	needDOT := false
	for _, f := range opts.Formats {
		if f != FormatJSON {
			needDOT = true
		}
	}
	if needDOT {
		dot = render.ToDOT(s, cfg, renderOpts)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = graphio.Export(s)
		case FormatSVG:
			data, err = render.RenderSVG(ctx, dot)
		case FormatPDF:
			data, err = render.RenderPDF(ctx, dot)
		case FormatPNG:
			data, err = render.RenderPNG(ctx, dot, opts.Scale)
		}
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) config(opts Options) config.Config {
	if opts.Config != nil {
		return *opts.Config
	}
	return config.Default()
}

func (r *Runner) engine(opts Options) string {
	if opts.Engine != "" {
		return opts.Engine
	}
	return r.config(opts).Layout.Engine
}

func containerIDs(s *vizstate.State) []string {
	containers := s.Containers()
	ids := make([]string, 0, len(containers))
	for _, c := range containers {
		ids = append(ids, c.ID)
	}
	return ids
}
