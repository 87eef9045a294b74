package build

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vango-dev/toolbox/internal/config"
	"github.com/vango-dev/toolbox/internal/errors"
	"github.com/vango-dev/toolbox/pkg/assets"
)

// ManifestFileName is used when the configuration names no manifest.
const ManifestFileName = "manifest.json"

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Path is where the manifest was written.
	Path string

	// Manifest maps sources to the files to serve.
	Manifest map[string]string

	// Minified counts sources with a minified build.
	Minified int

	// Missing lists sources without a minified build.
	Missing []string

	// Stale lists minified builds older than their source.
	Stale []string
}

// Options configures the builder.
type Options struct {
	// Output overrides the manifest path.
	Output string

	// DryRun skips writing the manifest.
	DryRun bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder writes asset manifests.
type Builder struct {
	config  *config.Config
	options Options
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	return &Builder{config: cfg, options: options}
}

// OutputPath returns where Build writes the manifest.
func (b *Builder) OutputPath() string {
	if b.options.Output != "" {
		return b.options.Output
	}
	if p := b.config.ManifestPath(); p != "" {
		return p
	}
	return filepath.Join(b.config.AssetsPath(), ManifestFileName)
}

// Build scans the asset directory and writes the manifest.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		Path:     b.OutputPath(),
		Manifest: make(map[string]string),
	}

	root := b.config.AssetsPath()
	b.progress("Scanning " + root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		minified, ok := assets.MinifiedName(rel)
		if !ok {
			// not a source: unknown type or already minified
			return nil
		}

		minInfo, err := os.Stat(filepath.Join(root, filepath.FromSlash(minified)))
		if err != nil {
			result.Manifest[rel] = rel
			result.Missing = append(result.Missing, rel)
			return nil
		}

		result.Manifest[rel] = minified
		result.Minified++
		if srcInfo, err := d.Info(); err == nil && minInfo.ModTime().Before(srcInfo.ModTime()) {
			result.Stale = append(result.Stale, minified)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New("T104").WithDetail("scanning " + root).Wrap(err)
	}
	sort.Strings(result.Missing)
	sort.Strings(result.Stale)

	if !b.options.DryRun {
		b.progress("Writing " + result.Path)
		if err := b.writeManifest(result.Path, result.Manifest); err != nil {
			return nil, errors.New("T104").WithLocation(result.Path, 0, 0).Wrap(err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// writeManifest writes the asset manifest.
func (b *Builder) writeManifest(path string, manifest map[string]string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// Clean removes the manifest.
func (b *Builder) Clean() error {
	err := os.Remove(b.OutputPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
