package logger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	sinkBufferSize    = 32 * 1024
	sinkFlushInterval = 5 * time.Second
	logFileMode       = 0o600
)

var errSinkClosed = errors.New("log file is closed")

// fileSink is a buffered log file shared by all handlers writing to it.
// Lines reach the OS on Flush, on Close and every flush interval.
type fileSink struct {
	path string

	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer

	stop context.CancelFunc
	wg   sync.WaitGroup
}

// openFileSink opens path for appending. flushEvery <= 0 disables the
// background flush.
func openFileSink(path string, flushEvery time.Duration) (*fileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	s := &fileSink{path: path, file: f, buf: bufio.NewWriterSize(f, sinkBufferSize)}

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	if flushEvery > 0 {
		s.wg.Go(func() {
			ticker := time.NewTicker(flushEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_ = s.Flush()
				}
			}
		})
	}
	return s, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil {
		return 0, errSinkClosed
	}
	return s.buf.Write(p)
}

func (s *fileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil {
		return nil
	}
	return s.buf.Flush()
}

// Close flushes, syncs and closes the file. Later calls return nil.
func (s *fileSink) Close() error {
	s.stop()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}

	err := errors.Join(s.buf.Flush(), s.file.Sync(), s.file.Close())
	s.file, s.buf = nil, nil
	return err
}

func (s *fileSink) Path() string { return s.path }
