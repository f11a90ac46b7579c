package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type topicResult struct {
	Topic   string `json:"topic"`
	Session string `json:"session"`
	Text    string `json:"text"`
	Sources string `json:"sources"`
}

func newTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics TOPIC [TOPIC...]",
		Short: "Research several topics in parallel, one session each",
		Long: `Researches each topic in its own session. Sessions share nothing, so they
run concurrently; --parallel bounds how many run at once. Each topic is
searched once and then with each --follow-up suffix while its budget lasts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTopics,
	}

	addResearchFlags(cmd)
	cmd.Flags().Int("parallel", 4, "Maximum number of sessions running at once")
	cmd.Flags().StringSlice("follow-up", nil, "Extra query suffixes searched per topic")
	return cmd
}

func runTopics(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	parallel, _ := cmd.Flags().GetInt("parallel")
	followUps, _ := cmd.Flags().GetStringSlice("follow-up")

	results := make([]topicResult, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, topic := range args {
		g.Go(func() error {
			sess, err := e.session()
			if err != nil {
				return err
			}
			defer sess.Close()

			text, err := sess.Search(ctx, topic)
			if err != nil {
				return fmt.Errorf("topic %q: %w", topic, err)
			}
			for _, suffix := range followUps {
				if sess.Controller.Remaining() == 0 {
					break
				}
				if _, err := sess.Search(ctx, topic+" "+suffix); err != nil {
					return fmt.Errorf("topic %q: %w", topic, err)
				}
			}

			results[i] = topicResult{
				Topic:   topic,
				Session: sess.ID,
				Text:    text,
				Sources: sess.Controller.SourceList(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		fmt.Fprintln(out, headingStyle.Render(r.Topic))
		fmt.Fprintln(out, dimStyle.Render("session "+r.Session))
		if r.Sources == "" {
			fmt.Fprintln(out, dimStyle.Render("no results"))
		} else {
			fmt.Fprintln(out, r.Sources)
		}
		fmt.Fprintln(out)
	}
	return nil
}
