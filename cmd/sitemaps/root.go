package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitemaps.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemaps",
		Short: "Discover, fetch and track XML sitemaps",
		Long: `sitemaps finds the XML sitemap of a website, follows sitemap indexes down to
their page entries, and records every run so that changes can be compared.

Sitemaps are located through the Sitemap directive of robots.txt, falling back
to the conventional paths /sitemap.xml, /sitemap_index.xml and their .gz forms.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs to stderr as JSON")

	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
