package main

import (
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vango-dev/toolbox/internal/build"
	"github.com/vango-dev/toolbox/internal/errors"
	"github.com/vango-dev/toolbox/pkg/storage"
)

func publishCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the assets to the configured bucket",
		Long: `Upload every script and style source, and its minified build, to
the bucket in storage.s3. Pages resolved against the bucket then find the
minified files.

Examples:
  toolbox publish
  toolbox publish --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.Storage.S3 == nil {
				return errors.New("T102").
					WithDetail("storage.s3 is not configured").
					WithSuggestion("Add a storage.s3 section with the bucket to publish to")
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			result, err := build.New(cfg, build.Options{DryRun: true}).Build(cmd.Context())
			if err != nil {
				return err
			}
			names := publishList(result.Manifest)

			out := cmd.OutOrStdout()
			s3cfg := cfg.Storage.S3
			if dryRun {
				for _, name := range names {
					fmt.Fprintf(out, "s3://%s/%s%s\n", s3cfg.Bucket, s3cfg.Prefix, name)
				}
				return nil
			}

			fsys := os.DirFS(cfg.AssetsPath())
			client, err := newS3Client(cmd.Context(), s3cfg)
			if err != nil {
				return err
			}
			pub := storage.NewPublisher(client, s3cfg.Bucket, s3cfg.Prefix).WithLogger(logger)
			n, err := pub.Publish(cmd.Context(), fsys, names)
			if err != nil {
				return errors.New("T130").
					WithDetail(fmt.Sprintf("published %d of %d files", n, len(names))).
					Wrap(err)
			}
			fmt.Fprintf(out, "Published %d files (%s) to s3://%s/%s\n",
				n, humanize.Bytes(totalSize(fsys, names)), s3cfg.Bucket, s3cfg.Prefix)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the object URLs without uploading")

	return cmd
}

// publishList returns every source and built file of manifest, sorted and
// without duplicates.
func publishList(manifest map[string]string) []string {
	seen := make(map[string]bool, 2*len(manifest))
	var names []string
	for src, built := range manifest {
		for _, n := range []string{src, built} {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// totalSize sums the sizes of names in fsys, skipping files that cannot be
// read.
func totalSize(fsys fs.FS, names []string) uint64 {
	var total uint64
	for _, name := range names {
		if info, err := fs.Stat(fsys, name); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}
