package main

import (
	"github.com/nao1215/sitemaps/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [sitemap-url...]",
		Short: "Traverse the given sitemap URLs",
		Long: `Fetch downloads each given sitemap and, when it is a sitemap index, every
sitemap below it, collecting the page entries in document order.

Redirects are followed (up to 10 hops) and .gz sitemaps are decompressed.
A malformed entry is skipped without failing the run.

Examples:
  # Traverse a sitemap
  sitemaps fetch https://example.com/sitemap.xml

  # Keep only blog posts, at most 100 of them
  sitemaps fetch -n 100 --include "/blog/*" https://example.com/sitemap_index.xml

  # Traverse every sitemap listed in a file, four at a time
  sitemaps fetch -b sitemaps.txt -C 4

  # Output JSON report
  sitemaps fetch --json https://example.com/sitemap.xml`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(cmd, args, pipeline.ModeDirect)
		},
	}

	addRunFlags(cmd)

	return cmd
}
