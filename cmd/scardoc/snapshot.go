package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"scardoc/internal/storage"
)

var (
	snapshotFormat     string
	snapshotShowOutput string
	snapshotShowFormat string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored documents",
	Long: `Snapshots are documents saved in .scardoc/snapshots.db by the --snapshot
flags of generate, dump and merge. Identical documents are stored once.
Snapshot IDs may be abbreviated to any unique prefix.`,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Write a snapshot's document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a snapshot",
	Args:    cobra.ExactArgs(1),
	RunE:    runSnapshotRm,
}

func init() {
	snapshotListCmd.Flags().StringVar(&snapshotFormat, "format", "human", "Output format (json, human)")
	snapshotShowCmd.Flags().StringVarP(&snapshotShowOutput, "output", "o", stdoutPath, "Output file, - for stdout")
	snapshotShowCmd.Flags().StringVar(&snapshotShowFormat, "format", "", "Document format (json, yaml, toml)")
	snapshotCmd.AddCommand(snapshotListCmd, snapshotShowCmd, snapshotRmCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	snaps, err := store.List()
	if err != nil {
		return err
	}

	switch snapshotFormat {
	case "json":
		if snaps == nil {
			snaps = []storage.Snapshot{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	case "human":
		writeSnapshotsHuman(cmd.OutOrStdout(), snaps)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", snapshotFormat)
	}
}

func writeSnapshotsHuman(w io.Writer, snaps []storage.Snapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots stored.")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s  %-20s  %9s  %5s  %7s  %s\n", "ID", "CREATED", "FUNCTIONS", "ENUMS", "GLOBALS", "LABEL")
	for _, s := range snaps {
		fmt.Fprintf(&b, "%-8s  %-20s  %9d  %5d  %7d  %s\n",
			shortID(s.ID), s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.Functions, s.Enums, s.Globals, s.Label)
	}
	_, _ = io.WriteString(w, b.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	snap, doc, err := store.Get(args[0])
	if err != nil {
		return err
	}
	state.logger.Debug("Loaded snapshot", "id", snap.ID, "label", snap.Label)

	_, err = writeDocument(cmd.OutOrStdout(), doc, snapshotShowOutput, snapshotShowFormat)
	return err
}

func runSnapshotRm(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	snap, err := store.Delete(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", snap.ID)
	return nil
}
