package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smallnest/researchgraph/report"
	"github.com/smallnest/researchgraph/research"
)

type loopResult struct {
	Loop      int    `json:"loop"`
	Query     string `json:"query"`
	Text      string `json:"text"`
	Exhausted bool   `json:"exhausted"`
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY [QUERY...]",
		Short: "Run research loops in one session",
		Long: `Runs one research loop per query, in order, within a single session.

Queries beyond the session's loop budget are not searched; they report that
the maximum number of loops was exceeded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	addResearchFlags(cmd)
	cmd.Flags().String("html", "", "Write an HTML report to this file")
	cmd.Flags().String("markdown", "", "Write a Markdown report to this file")
	cmd.Flags().String("graph", "", "Write the knowledge graph as JSON to this file")
	cmd.Flags().Bool("sources", false, "Print the list of all sources at the end")
	cmd.Flags().Bool("stats", false, "Print search counters at the end")
	return cmd
}

func addResearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("search-api", "", "Search backend: tavily, perplexity or web-search")
	cmd.Flags().Int("max-loops", 0, "Maximum number of search loops per session")
	cmd.Flags().Bool("raw", false, "Include truncated raw page content")
}

func runSearch(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.session()
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	jsonOut, _ := cmd.Flags().GetBool("json")

	var results []loopResult
	for _, query := range args {
		text, err := sess.Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		r := loopResult{
			Loop:      sess.Controller.LoopCount(),
			Query:     query,
			Text:      text,
			Exhausted: text == research.ExhaustedMessage,
		}
		results = append(results, r)
		if jsonOut {
			continue
		}

		if r.Exhausted {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%s: %s", query, text)))
			continue
		}
		fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Loop %d/%d: %s", r.Loop, sess.Controller.MaxLoops(), query)))
		if text == "" {
			fmt.Fprintln(out, dimStyle.Render("no results"))
		} else {
			fmt.Fprintln(out, text)
		}
		fmt.Fprintln(out)
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"session": sess.ID,
			"loops":   results,
			"graph":   sess.Graph.Snapshot(),
		}); err != nil {
			return err
		}
	} else if showSources, _ := cmd.Flags().GetBool("sources"); showSources {
		fmt.Fprintln(out, headingStyle.Render("Sources"))
		fmt.Fprintln(out, sess.Controller.SourceList())
	}

	if err := writeReports(cmd, args, sess); err != nil {
		return err
	}
	if stats, _ := cmd.Flags().GetBool("stats"); stats && !jsonOut {
		return e.printStats(out)
	}
	return nil
}

func writeReports(cmd *cobra.Command, args []string, sess *research.Session) error {
	htmlPath, _ := cmd.Flags().GetString("html")
	mdPath, _ := cmd.Flags().GetString("markdown")
	graphPath, _ := cmd.Flags().GetString("graph")

	if htmlPath != "" || mdPath != "" {
		rep, err := report.FromController(args[0], "", sess.Controller)
		if err != nil {
			return err
		}
		if htmlPath != "" {
			if err := os.WriteFile(htmlPath, []byte(rep.HTML()), 0o644); err != nil {
				return fmt.Errorf("write html report: %w", err)
			}
		}
		if mdPath != "" {
			if err := os.WriteFile(mdPath, []byte(rep.Markdown()), 0o644); err != nil {
				return fmt.Errorf("write markdown report: %w", err)
			}
		}
	}
	if graphPath != "" {
		if err := writeGraph(graphPath, sess.Graph); err != nil {
			return fmt.Errorf("write graph: %w", err)
		}
	}
	return nil
}
