package main

import (
	"github.com/nao1215/sitemaps/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [host...]",
		Short: "Find and traverse the sitemap of each host",
		Long: `Discover locates the sitemap of each host and traverses it.

The first Sitemap directive of the host's robots.txt is used. Without one,
the conventional paths are tried in order:
  /sitemap.xml, /sitemap_index.xml, /sitemap.xml.gz, /sitemap_index.xml.gz

Every run is recorded in the history database unless --no-db is given; use
'sitemaps history' to list runs and compare them.

Examples:
  # Discover the sitemap of a host
  sitemaps discover example.com

  # Discover several hosts and write a Markdown report
  sitemaps discover -m -o report.md example.com example.org

  # Use a configuration file with per-site headers
  sitemaps discover -c staging.yaml staging.example.com

Configuration file (.sitemaps) example:
  sites:
    staging.example.com:
      headers:
        Authorization: "Bearer token"
      maxEntries: 500`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(cmd, args, pipeline.ModeDiscover)
		},
	}

	addRunFlags(cmd)

	return cmd
}
