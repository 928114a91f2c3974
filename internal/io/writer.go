package io

import (
	"bytes"
	"io"
	"sync"
)

// IndentWriter prefixes every line written through it and flushes the
// underlying writer after each complete line when it supports flushing.
// A trailing partial line is held until Flush.
type IndentWriter struct {
	mu      sync.Mutex
	w       io.Writer
	prefix  []byte
	pending []byte
	flusher interface{ Flush() error }
}

// NewIndentWriter creates an IndentWriter writing to w
func NewIndentWriter(w io.Writer, prefix string) *IndentWriter {
	iw := &IndentWriter{w: w, prefix: []byte(prefix)}
	if f, ok := w.(interface{ Flush() error }); ok {
		iw.flusher = f
	}
	return iw
}

// Write buffers p and emits every complete line with the prefix
func (iw *IndentWriter) Write(p []byte) (int, error) {
	iw.mu.Lock()
	defer iw.mu.Unlock()

	iw.pending = append(iw.pending, p...)
	for {
		i := bytes.IndexByte(iw.pending, '\n')
		if i < 0 {
			break
		}
		if err := iw.emit(iw.pending[:i+1]); err != nil {
			return len(p), err
		}
		iw.pending = iw.pending[i+1:]
	}
	return len(p), nil
}

// Flush emits a trailing partial line, terminating it with a newline
func (iw *IndentWriter) Flush() error {
	iw.mu.Lock()
	defer iw.mu.Unlock()

	if len(iw.pending) == 0 {
		return nil
	}
	line := append(iw.pending, '\n')
	iw.pending = nil
	return iw.emit(line)
}

func (iw *IndentWriter) emit(line []byte) error {
	if _, err := iw.w.Write(iw.prefix); err != nil {
		return err
	}
	if _, err := iw.w.Write(line); err != nil {
		return err
	}
	if iw.flusher != nil {
		return iw.flusher.Flush()
	}
	return nil
}

// WriteIndented writes text through a fresh IndentWriter and flushes it
func WriteIndented(w io.Writer, prefix, text string) error {
	if text == "" {
		return nil
	}
	iw := NewIndentWriter(w, prefix)
	if _, err := iw.Write([]byte(text)); err != nil {
		return err
	}
	return iw.Flush()
}
