package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/baserah/letters/pkg/db"
	"github.com/baserah/letters/pkg/letters"
)

const defaultArchivePath = "letters.db"

func archiveCmd(a *app) *cobra.Command {
	var dbPath string

	archive := &cobra.Command{
		Use:   "archive",
		Short: "Snapshot archive commands",
		Long: `Snapshot archive commands.

Available commands:
  save   - Record a letter store in the SQLite archive
  list   - List archived snapshots
  show   - Print a snapshot's letters, or the archived meanings of one letter`,
	}
	archive.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite archive path (default from config, else "+defaultArchivePath+")")

	resolve := func() string {
		switch {
		case dbPath != "":
			return dbPath
		case a.cfg.Archive.DBPath != "":
			return a.cfg.Archive.DBPath
		default:
			return defaultArchivePath
		}
	}

	archive.AddCommand(archiveSaveCmd(resolve))
	archive.AddCommand(archiveListCmd(resolve))
	archive.AddCommand(archiveShowCmd(resolve))
	return archive
}

func archiveSaveCmd(dbPath func() string) *cobra.Command {
	var in, label string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Record a letter store in the SQLite archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := letters.LoadStore(in)
			if err != nil {
				return err
			}
			if label == "" {
				label = in
			}
			id, err := archiveStore(dbPath(), label, s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived snapshot %d (%d letters, version %s)\n", id, len(s.Letters), s.Metadata.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "unified_letters_database_complete.json", "Letter store to archive")
	cmd.Flags().StringVar(&label, "label", "", "Snapshot label (default the input path)")
	return cmd
}

func archiveListCmd(dbPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := db.Open(dbPath())
			if err != nil {
				return err
			}
			defer conn.Close()

			snaps, err := db.ListSnapshots(conn)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tVERSION\tLETTERS\tCREATED\tLABEL")
			for _, s := range snaps {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", s.ID, s.Version, s.LettersCount, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Label)
			}
			return tw.Flush()
		},
	}
}

func archiveShowCmd(dbPath func() string) *cobra.Command {
	var id int64
	var letter string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a snapshot's letters, or the archived meanings of one letter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := db.Open(dbPath())
			if err != nil {
				return err
			}
			defer conn.Close()

			if id == 0 {
				latest, err := db.GetLatestSnapshot(conn)
				if err != nil {
					return err
				}
				id = latest.ID
			}
			out := cmd.OutOrStdout()
			if letter == "" {
				ls, err := db.GetSnapshotLetters(conn, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Snapshot %d: %d letters\n", id, len(ls))
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "LETTER\tNAME\tUPDATED BY\tLAST UPDATED")
				for _, l := range ls {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Letter, l.Name, l.UpdatedBy, l.LastUpdated)
				}
				return tw.Flush()
			}

			ms, err := db.GetSnapshotMeanings(conn, id, letter)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Snapshot %d, letter %s: %d meanings\n", id, letter, len(ms))
			for _, m := range ms {
				fmt.Fprintf(out, "%d. %s (strength %.2f)", m.Position+1, m.Meaning, m.Strength)
				if m.Opposite != "" {
					fmt.Fprintf(out, " / %s", m.Opposite)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Snapshot id (default latest)")
	cmd.Flags().StringVar(&letter, "letter", "", "Letter to show (default all letters of the snapshot)")
	return cmd
}
