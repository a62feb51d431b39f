package main

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"podcast-catalog/internal/domains/podcast/model"
	podcastRepo "podcast-catalog/internal/domains/podcast/repository"
)

func newPodcastsCommand(ctx *commandContext) *cobra.Command {
	podcastsCmd := &cobra.Command{
		Use:   "podcasts",
		Short: "Inspect the podcast catalog",
	}
	podcastsCmd.AddCommand(newPodcastsListCommand(ctx))
	return podcastsCmd
}

func newPodcastsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List podcasts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			podcasts, err := podcastRepo.NewPostgresRepository(db.Pool).List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), podcasts)
			}
			return writePodcastTable(cmd.OutOrStdout(), podcasts, time.Now())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func writePodcastTable(w io.Writer, podcasts []model.Podcast, now time.Time) error {
	if len(podcasts) == 0 {
		_, err := io.WriteString(w, "No podcasts found\n")
		return err
	}

	rows := make([][]string, 0, len(podcasts))
	for _, p := range podcasts {
		rows = append(rows, []string{
			p.ID.String(),
			p.Title,
			p.Author,
			strconv.Itoa(len(p.Episodes)),
			p.OwnerID.String(),
			humanize.RelTime(p.CreatedAt, now, "ago", "from now"),
		})
	}

	out := renderTable(
		[]string{"ID", "Title", "Author", "Episodes", "Owner", "Created"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
	_, err := io.WriteString(w, out+"\n")
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
