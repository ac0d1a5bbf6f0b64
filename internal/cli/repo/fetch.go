package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

// FetchOutcome is the final state of one source pipeline. At most one
// of Addon and Err is set; both nil means the source finished without
// contributing a catalog entry.
type FetchOutcome struct {
	Source string
	Addon  *Descriptor
	Err    error
}

// Empty reports whether the pipeline produced neither an entry nor an
// error.
func (o FetchOutcome) Empty() bool {
	return o.Addon == nil && o.Err == nil
}

// BuildOptions wires the collaborators for one repository build.
type BuildOptions struct {
	DataDir  string
	Cloner   GitCloner
	Textures TexturePacker
}

// BuildResult summarizes one repository build.
type BuildResult struct {
	Outcomes    []FetchOutcome
	Included    int
	Failed      int
	Skipped     int
	CatalogPath string
}

// FetchAll runs one pipeline per source concurrently and returns their
// outcomes in submission order. Sources resolving to the same add-on
// identifier write to the same entry directory unsynchronized, so a
// source list must not name one add-on twice.
func FetchAll(ctx context.Context, sources []Source, opts BuildOptions) []FetchOutcome {
	outcomes := make([]FetchOutcome, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(slot *FetchOutcome, src Source) {
			defer wg.Done()
			*slot = runPipeline(ctx, src, opts)
		}(&outcomes[i], src)
	}
	wg.Wait()
	return outcomes
}

// runPipeline carries one source through resolution and packaging. Any
// failure, panics included, lands in the outcome instead of aborting
// the run.
func runPipeline(ctx context.Context, src Source, opts BuildOptions) (outcome FetchOutcome) {
	outcome.Source = src.Name()
	defer func() {
		if r := recover(); r != nil {
			outcome.Addon = nil
			outcome.Err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	resolver := &Resolver{Cloner: opts.Cloner}
	resolved, err := resolver.Resolve(ctx, src)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if resolved.cleanup != nil {
		defer resolved.cleanup()
	}

	packager := &Packager{DataDir: opts.DataDir, Textures: opts.Textures}
	var desc *Descriptor
	if resolved.dir != "" {
		desc, err = packager.PublishDir(ctx, resolved.dir)
	} else {
		desc, err = packager.PublishArchive(resolved.archive)
	}
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Addon = desc
	return outcome
}

// Build fetches every source and then writes the catalog from the
// successful descriptors in submission order. Per-source failures never
// abort the run; a catalog or checksum failure does.
func Build(ctx context.Context, sources []Source, opts BuildOptions) (*BuildResult, error) {
	if opts.DataDir == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, err
	}

	res := &BuildResult{Outcomes: FetchAll(ctx, sources, opts)}
	var included []*Descriptor
	for _, outcome := range res.Outcomes {
		switch {
		case outcome.Err != nil:
			res.Failed++
		case outcome.Empty():
			res.Skipped++
		default:
			included = append(included, outcome.Addon)
		}
	}
	res.Included = len(included)

	catalogPath, err := writeCatalog(opts.DataDir, included)
	if err != nil {
		return res, err
	}
	res.CatalogPath = catalogPath
	return res, nil
}
