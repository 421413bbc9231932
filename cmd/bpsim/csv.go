package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/bpsim/timing/pipeline"
)

var snapshotHeader = []string{
	"run_id", "cycle", "if", "id", "ex", "mem", "wb",
	"flush", "correct", "mispredicted", "accuracy",
}

// snapshotWriter is a hook that stores per-cycle snapshots in a CSV file.
// Rows are buffered and flushed when the buffer fills, on Close, and at
// exit.
type snapshotWriter struct {
	path       string
	file       *os.File
	writer     *csv.Writer
	rows       [][]string
	bufferSize int
	closed     bool
}

// newSnapshotWriter creates the CSV file. An existing file is overwritten.
func newSnapshotWriter(path string) (*snapshotWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}

	w := &snapshotWriter{
		path:       path,
		file:       file,
		writer:     csv.NewWriter(file),
		bufferSize: 1000,
	}
	w.rows = append(w.rows, snapshotHeader)

	atexit.Register(func() {
		if err := w.Close(); err != nil {
			logger.Print(err)
		}
	})

	return w, nil
}

// Func records the snapshot of a cycle hook.
func (w *snapshotWriter) Func(ctx sim.HookCtx) {
	if ctx.Pos != pipeline.HookPosCycle || w.closed {
		return
	}

	s, ok := pipeline.SnapshotOf(ctx)
	if !ok {
		return
	}

	row := []string{s.RunID, fmt.Sprintf("%d", s.Cycle)}
	for _, slot := range s.Stages {
		row = append(row, slot.String())
	}
	row = append(row,
		fmt.Sprintf("%t", s.Flush),
		fmt.Sprintf("%d", s.Stats.Correct),
		fmt.Sprintf("%d", s.Stats.Mispredictions),
		fmt.Sprintf("%.4f", s.Stats.Accuracy()),
	)

	w.rows = append(w.rows, row)
	if len(w.rows) >= w.bufferSize {
		if err := w.Flush(); err != nil {
			logger.Print(err)
		}
	}
}

// Flush writes the buffered rows to the file.
func (w *snapshotWriter) Flush() error {
	if err := w.writer.WriteAll(w.rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.path, err)
	}
	w.rows = nil
	return nil
}

// Close flushes and closes the file. Later calls do nothing.
func (w *snapshotWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}
