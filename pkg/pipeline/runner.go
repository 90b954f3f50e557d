package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinreport/pkg/cache"
	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/history"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/observability"
	"github.com/matzehuels/kinreport/pkg/render/sink"
	"github.com/matzehuels/kinreport/pkg/stats"
)

// Fetcher looks a DNI up in the registry. *registry.Client implements it.
type Fetcher interface {
	LookupWithCacheInfo(ctx context.Context, dni string, refresh bool) (kin.Lookup, bool, error)
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its collaborators; it doesn't store
// results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Fetcher Fetcher
	Cache   cache.Cache
	Keyer   cache.Keyer
	// History receives one record per Execute. Nil disables it.
	History     history.Store
	ArtifactTTL time.Duration
	Logger      *log.Logger
}

// NewRunner creates a runner. A nil cache disables artifact caching, a nil
// keyer uses DefaultKeyer.
func NewRunner(f Fetcher, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Fetcher:     f,
		Cache:       c,
		Keyer:       keyer,
		ArtifactTTL: cache.ArtifactTTL,
		Logger:      logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline. Failures
// are recorded in history like successes.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result, err := r.execute(ctx, opts)
	r.record(ctx, opts, result, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) execute(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		Options:     opts,
		ContentType: ContentType(opts.Format),
		Filename:    opts.Filename(),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	l, hit, err := r.Fetch(ctx, opts.DNI, opts.Refresh)
	if err != nil {
		return result, err
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.Relatives = len(l.Relatives)
	result.CacheInfo.LookupHit = hit

	opts.Logger.Info("fetched lookup",
		"dni", opts.DNI,
		"relatives", len(l.Relatives),
		"cached", hit,
		"duration", result.Stats.FetchTime)

	key := r.Keyer.ArtifactKey(opts.DNI, opts.ArtifactKeyOpts(contentHash(l)))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			result.Artifact = data
			result.CacheInfo.ArtifactHit = true
			opts.Logger.Info("artifact from cache", "kind", opts.Kind, "format", opts.Format, "bytes", len(data))
			return result, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	l.EnsureIDs()
	var fonts *sink.Fonts
	if opts.Kind != KindNodelink {
		if fonts, err = sink.LoadFonts(); err != nil {
			return result, errors.Wrap(errors.ErrCodeInternal, err, "load fonts")
		}
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Kind, len(l.Relatives)+1)
	layout, err := GenerateLayout(l, opts, fonts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	observability.Pipeline().OnLayoutComplete(ctx, opts.Kind, result.Stats.LayoutTime, err)
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeRenderFailed, err, "layout %s", opts.Kind)
	}
	result.Pages = len(layout.Document.Pages)

	opts.Logger.Info("computed layout",
		"kind", opts.Kind,
		"pages", result.Pages,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Kind, opts.Format)
	data, err := RenderFromLayout(ctx, layout, opts, fonts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Kind, opts.Format, len(data), result.Stats.RenderTime, err)
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s/%s", opts.Kind, opts.Format)
	}
	if opts.Format != FormatPDF {
		result.Pages = 0
	}
	result.Artifact = data

	opts.Logger.Info("rendered artifact",
		"format", opts.Format,
		"bytes", len(data),
		"duration", result.Stats.RenderTime)

	if err := r.Cache.Set(ctx, key, data, r.ArtifactTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	} else {
		opts.Logger.Warn("artifact not cached", "err", err)
	}
	return result, nil
}

// Fetch runs the fetch stage alone.
func (r *Runner) Fetch(ctx context.Context, dni string, refresh bool) (kin.Lookup, bool, error) {
	if r.Fetcher == nil {
		return kin.Lookup{}, false, errors.New(errors.ErrCodeInternal, "runner has no registry client")
	}
	start := time.Now()
	observability.Pipeline().OnFetchStart(ctx, dni)
	l, hit, err := r.Fetcher.LookupWithCacheInfo(ctx, dni, refresh)
	observability.Pipeline().OnFetchComplete(ctx, dni, len(l.Relatives), time.Since(start), err)
	return l, hit, err
}

// Inspect fetches dni and groups it without drawing anything.
func (r *Runner) Inspect(ctx context.Context, dni string, refresh bool, now time.Time) (Inspection, error) {
	if err := errors.ValidateDNI(dni); err != nil {
		return Inspection{}, err
	}
	l, _, err := r.Fetch(ctx, dni, refresh)
	if err != nil {
		return Inspection{}, err
	}
	so := stats.DefaultOptions()
	if !now.IsZero() {
		so.Now = now
	}
	return Inspect(l, so), nil
}

// Close releases the cache and the history store.
func (r *Runner) Close(ctx context.Context) error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.History != nil {
		if err := r.History.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Runner) record(ctx context.Context, opts Options, res *Result, err error) {
	if r.History == nil {
		return
	}
	rec := history.Record{
		DNI:       opts.DNI,
		Kind:      opts.Kind,
		Format:    opts.Format,
		ErrorCode: string(errors.GetCode(err)),
		CreatedAt: opts.Now.UTC(),
	}
	if err != nil && rec.ErrorCode == "" {
		rec.ErrorCode = string(errors.ErrCodeInternal)
	}
	if res != nil {
		rec.Relatives = res.Stats.Relatives
		rec.Pages = res.Pages
		rec.Bytes = len(res.Artifact)
		rec.CacheHit = res.CacheInfo.ArtifactHit
		rec.Duration = history.Duration(res.Stats.Total())
	}
	if _, herr := r.History.Add(ctx, rec); herr != nil {
		opts.Logger.Warn("history not recorded", "err", herr)
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// contentHash identifies the lookup data an artifact was drawn from.
func contentHash(l kin.Lookup) string {
	data, err := json.Marshal(l)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
