package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"scardoc/internal/errors"
	"scardoc/internal/output"
	"scardoc/internal/paths"
	"scardoc/internal/scardoc"
	"scardoc/internal/storage"
)

// stdoutPath selects standard output for -o.
const stdoutPath = "-"

// newContext returns a context cancelled on interrupt.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func configFailure(err error) error {
	return errors.NewDocError(errors.ConfigInvalid, "invalid configuration", err)
}

// openStore opens the snapshot database configured for the session. The
// returned func closes it.
func openStore() (*storage.Store, func(), error) {
	dbPath := paths.Resolve(state.root, state.cfg.Storage.Path)
	db, err := storage.Open(dbPath, state.logger)
	if err != nil {
		return nil, nil, errors.NewDocError(errors.StoreFailure, "failed to open snapshot database", err)
	}
	store, err := storage.NewStore(db, state.cfg.Storage.CacheSize, state.logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, errors.NewDocError(errors.StoreFailure, "failed to create snapshot store", err)
	}
	return store, func() { _ = db.Close() }, nil
}

// documentOptions picks the encoding for path. An explicit --format wins,
// then a recognised extension, then the configured default.
func documentOptions(path, format string) (output.Options, error) {
	opts := output.Options{Indent: state.cfg.Output.Indent}
	switch {
	case format != "":
		f, err := output.ParseFormat(format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	case path != stdoutPath && hasDocumentExt(path):
		opts.Format = output.FormatFromPath(path)
	default:
		f, err := output.ParseFormat(state.cfg.Output.Format)
		if err != nil {
			return opts, configFailure(err)
		}
		opts.Format = f
	}
	return opts, nil
}

// hasDocumentExt reports whether path names a known document extension,
// looking through a trailing .zst.
func hasDocumentExt(path string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(path, output.CompressedExt))) {
	case ".json", ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// writeDocument writes doc to path, or to stdout for "-". An empty path
// uses the configured output path under the project root.
func writeDocument(stdout io.Writer, doc *scardoc.Document, path, format string) (string, error) {
	if path == "" {
		path = paths.Resolve(state.root, state.cfg.Output.Path)
	}
	opts, err := documentOptions(path, format)
	if err != nil {
		return "", err
	}
	if path == stdoutPath {
		return path, output.Encode(stdout, doc, opts)
	}
	if err := output.WriteFile(path, doc, opts); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// storeSnapshot saves doc under label when label is set and reports the
// snapshot ID on w.
func storeSnapshot(w io.Writer, label string, doc *scardoc.Document) error {
	if label == "" {
		return nil
	}
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	snap, created, err := store.Put(label, doc)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(w, "Stored snapshot %s (%s)\n", snap.ID, label)
	} else {
		fmt.Fprintf(w, "Snapshot %s already holds this document\n", snap.ID)
	}
	return nil
}
