package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"scardoc/internal/annotation"
	"scardoc/internal/watcher"
)

var (
	generateOutput   string
	generateFormat   string
	generateSnapshot string
	generateStrict   bool
	generateWatch    bool
	generateDebounce time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate <dir>",
	Short: "Generate a document from annotated SCAR sources",
	Long: `Parse every source file under <dir> and write the documented functions as
one canonical document.

Doc blocks are runs of "--? " comment lines directly above a function
declaration. A file that cannot be read or parsed is reported and skipped;
the command then exits non-zero after writing the document.

With --watch the document is rewritten whenever a source file changes,
until interrupted.

Examples:
  scardoc generate scar/
  scardoc generate scar/ -o api.yaml
  scardoc generate scar/ -o - --format toml
  scardoc generate scar/ --snapshot nightly
  scardoc generate scar/ --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file, - for stdout (default: output.path)")
	generateCmd.Flags().StringVar(&generateFormat, "format", "", "Document format (json, yaml, toml)")
	generateCmd.Flags().StringVar(&generateSnapshot, "snapshot", "", "Also store the document as a snapshot with this label")
	generateCmd.Flags().BoolVar(&generateStrict, "strict", false, "Abort a file on @args directives with empty entries or a stray ']'")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when sources change")
	generateCmd.Flags().DurationVar(&generateDebounce, "debounce", 500*time.Millisecond, "Quiet period before regenerating in --watch mode")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if generateWatch && generateOutput == stdoutPath {
		return fmt.Errorf("--watch cannot write to stdout")
	}
	err := generateOnce(cmd, dir)
	if !generateWatch {
		return err
	}
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return watchSources(cmd, dir)
}

// generateOnce runs one full parse of dir and writes the result.
func generateOnce(cmd *cobra.Command, dir string) error {
	start := time.Now()
	cfg := state.cfg

	files, err := annotation.CollectUnits(dir, annotation.SourceOptions{
		Extensions: cfg.Source.Extensions,
		Exclude:    cfg.Source.Exclude,
	})
	if err != nil {
		return err
	}
	state.logger.Info("Generating scardoc", "dir", dir, "files", len(files))

	parser := annotation.NewParser(annotation.Options{
		MarkerPrefix: cfg.Source.MarkerPrefix,
		StrictArgs:   cfg.Parser.StrictArgs || generateStrict,
	}, state.logger)
	result := parser.Generate(dir, files)

	written, err := writeDocument(cmd.OutOrStdout(), result.Document, generateOutput, generateFormat)
	if err != nil {
		return err
	}
	if err := storeSnapshot(cmd.ErrOrStderr(), generateSnapshot, result.Document); err != nil {
		return err
	}

	state.logger.Info("Saved scardoc",
		"path", written,
		"units", result.Units,
		"functions", result.Document.FunctionCount(),
		"discarded", len(result.Diagnostics),
		"duration", time.Since(start).Milliseconds(),
	)

	if n := len(result.Failures); n > 0 {
		for _, f := range result.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", f.Unit, f.Err)
		}
		return fmt.Errorf("%d of %d files failed", n, len(files))
	}
	return nil
}

func watchSources(cmd *cobra.Command, dir string) error {
	ctx, cancel := newContext()
	defer cancel()

	var mu sync.Mutex
	regenerate := func(events []watcher.Event) {
		mu.Lock()
		defer mu.Unlock()
		state.logger.Info("Sources changed", "events", len(events), "first", events[0].Path)
		if err := generateOnce(cmd, dir); err != nil {
			printError(cmd.ErrOrStderr(), err)
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Regenerated after %d change(s)\n", len(events))
	}

	w, err := watcher.New(watcher.Config{
		Debounce:   generateDebounce,
		Extensions: state.cfg.Source.Extensions,
		Exclude:    state.cfg.Source.Exclude,
	}, state.logger, regenerate)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl-C to stop)\n", dir)
	return w.Run(ctx)
}
