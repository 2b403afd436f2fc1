// Package merger drives a single merge run: it finds fragments, loads and
// resolves them, merges, records provenance and saves the result.
package merger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"arxmerge/arxml"
	"arxmerge/config"
	"arxmerge/fragment"
	"arxmerge/merge"
	"arxmerge/provenance"
	"arxmerge/state"
)

// Result is everything produced by merge pipeline.
type Result struct {
	Set        *fragment.Set
	Tree       *arxml.Tree
	Provenance *provenance.Map
	// Annotated is number of provenance entries added to merged model.
	Annotated int
}

// URIs returns fragment URIs in load order.
func (r *Result) URIs() []string {
	uris := make([]string, 0, r.Set.Len())
	for _, f := range r.Set.Fragments() {
		uris = append(uris, f.URI)
	}
	return uris
}

// Merge runs the pipeline on already enumerated sources. Nothing is written
// to disk.
func Merge(ctx context.Context, sources []fragment.Source, cfg *config.Config, log *zap.Logger) (*Result, error) {
	workers := cfg.Loading.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	set, err := fragment.Load(ctx, sources, cfg.Loading.LoadOptions(), workers, log.Named("load"))
	if err != nil {
		return nil, fmt.Errorf("unable to load fragments: %w", err)
	}
	if set.Len() == 0 {
		return nil, errors.New("no fragments loaded")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set.ReportAmbiguous = cfg.Resolving.Ambiguous == config.AmbiguityPolicyReport
	if err := set.ResolveAll(log.Named("resolve")); err != nil {
		if cfg.Resolving.Unresolved.Fatal() {
			return nil, fmt.Errorf("unable to resolve references: %w", err)
		}
		for _, e := range multierr.Errors(err) {
			log.Warn("Reference problem, continuing", zap.Error(e))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine := merge.NewSplitable(log.Named("merge"),
		merge.WithAssignedUUIDs(cfg.Merging.AssignUUIDs),
		merge.WithDanglingReferences(!cfg.Resolving.Unresolved.Fatal()))
	tree, err := merge.TopLevel(set, engine, log)
	if err != nil {
		return nil, err
	}

	m, err := provenance.Build(engine, set, merge.ShortNamePaths{}, log.Named("provenance"))
	if err != nil {
		return nil, fmt.Errorf("unable to build provenance map: %w", err)
	}

	res := &Result{Set: set, Tree: tree, Provenance: m}
	if cfg.Annotation.Enable {
		a := &provenance.Annotator{
			GID:         cfg.Annotation.GID,
			Deduplicate: cfg.Annotation.Deduplicate,
			Log:         log.Named("annotate"),
		}
		if res.Annotated, err = a.Annotate(tree, m); err != nil {
			return nil, fmt.Errorf("unable to annotate merged model: %w", err)
		}
	}
	return res, nil
}

// Save decides on destination of the merged model and writes it.
func Save(res *Result, dst string, overwrite bool, cfg *config.OutputConfig, log *zap.Logger) (string, error) {
	name, err := outputName(cfg.NameTemplate, templateValues(res.Tree, res.URIs()))
	if err != nil {
		log.Warn("Unable to prepare output file name, using default", zap.String("name", name), zap.Error(err))
	}
	out, err := outputPath(dst, name)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(out); err == nil {
		if !overwrite {
			return "", &arxml.SaveError{Destination: out, Err: errors.New("file already exists")}
		}
		log.Warn("Overwriting existing file", zap.String("file", out))
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", &arxml.SaveError{Destination: out, Err: err}
	}
	return out, arxml.Save(res.Tree, out, cfg.Indent)
}

// Run is merge command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("merger")

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("no input source has been specified")
	}

	env.Output = cmd.String("out")
	env.Overwrite = env.Cfg.Output.Overwrite || cmd.Bool("overwrite")

	// zip does not define file name encoding, old archives may need code page
	// to be forced
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.Strings("sources", args), zap.String("destination", env.Output))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	sources, err := Sources(ctx, args, env.Cfg.Loading.LoadOptions(), env.Cfg.Loading.Archives, env.CodePage, log)
	if err != nil {
		return err
	}
	log.Debug("Fragments found", zap.Int("count", len(sources)))
	if env.Rpt != nil {
		for _, arg := range args {
			if err := env.Rpt.StoreCopy("sources/"+filepath.Base(arg), arg); err != nil {
				log.Warn("Unable to put source into debug report", zap.String("source", arg), zap.Error(err))
			}
		}
	}

	res, err := Merge(ctx, sources, env.Cfg, log)
	if err != nil {
		return err
	}
	storeDebug(env.Rpt, res, log)

	out, err := Save(res, env.Output, env.Overwrite, &env.Cfg.Output, log)
	if err != nil {
		return err
	}
	env.Rpt.Store("result.arxml", out)

	log.Info("Merged model saved",
		zap.String("file", out),
		zap.Int("fragments", res.Set.Len()),
		zap.Int("elements", res.Provenance.Len()),
		zap.Int("shared", len(res.Provenance.MultiSource())),
		zap.Int("annotations", res.Annotated))
	return nil
}

// storeDebug puts provenance and merged model dumps into debug report.
func storeDebug(rpt *config.Report, res *Result, log *zap.Logger) {
	if rpt == nil {
		return
	}
	rpt.StoreText("provenance.txt", res.Provenance)
	rpt.StoreText("merged-tree.txt", res.Tree)
	data, err := provenance.Index(res.Provenance)
	if err != nil {
		log.Warn("Unable to prepare provenance index", zap.Error(err))
		return
	}
	rpt.StoreData("provenance.sqlite", data)
}

// Inspect is provenance command action: it merges sources in memory and
// writes provenance dump instead of merged model.
func Inspect(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	sources, err := Sources(ctx, cmd.Args().Slice(), env.Cfg.Loading.LoadOptions(), env.Cfg.Loading.Archives, nil, log)
	if err != nil {
		return err
	}
	// nothing is saved, there is no point in touching merged model
	cfg := *env.Cfg
	cfg.Annotation.Enable = false

	res, err := Merge(ctx, sources, &cfg, log)
	if err != nil {
		return err
	}
	storeDebug(env.Rpt, res, log)

	return writeDump(cmd.String("out"), res.Provenance.String())
}

// writeDump writes text to named file or to stdout when name is empty.
func writeDump(fname, text string) (err error) {
	var out io.Writer = os.Stdout
	if len(fname) > 0 {
		f, e := os.Create(fname)
		if e != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, e)
		}
		defer func() {
			if e := f.Close(); e != nil {
				err = multierr.Append(err, fmt.Errorf("unable to close %s: %w", fname, e))
			}
		}()
		out = f
	}
	if _, err = io.WriteString(out, text); err != nil {
		return fmt.Errorf("unable to write provenance: %w", err)
	}
	return nil
}
