package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smallnest/researchgraph/log"
	"github.com/smallnest/researchgraph/webscraper"
)

func newScraperCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scraper",
		Short: "Run the webscraper MCP server",
		Long: `Runs the MCP server behind the web-search backend. It serves on stdio by
default, so it can be spawned through web_search.command, or over streamable
HTTP with --http for web_search.endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, _ := cmd.Flags().GetString("log-level")
			if lvl == "" {
				lvl = "warn"
			}
			level, err := log.ParseLevel(lvl)
			if err != nil {
				return err
			}
			// stdout carries the protocol; logs go to stderr.
			logger := log.NewWithOutput(cmd.ErrOrStderr(), level)

			summary, _ := cmd.Flags().GetInt("summary-length")
			server := webscraper.NewMCPServer(webscraper.NewScraper(
				webscraper.WithLogger(logger),
				webscraper.WithSummaryLength(summary),
			))

			addr, _ := cmd.Flags().GetString("http")
			if addr == "" {
				return webscraper.RunStdio(cmd.Context(), server)
			}
			logger.Info("webscraper listening on %s", addr)
			if err := webscraper.RunHTTP(cmd.Context(), server, addr); err != nil {
				return fmt.Errorf("webscraper: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("http", "", "Serve streamable HTTP on this address instead of stdio")
	cmd.Flags().Int("summary-length", webscraper.DefaultSummaryLength, "Characters of page text in the content field")
	return cmd
}
