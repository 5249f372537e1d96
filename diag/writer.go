package diag

import (
	"sync"
	"time"
)

const (
	flushBatch    = 32
	flushInterval = 2 * time.Second
)

// Writer is an io.Writer meant for zerolog.MultiLevelWriter: it buffers log
// lines and ships them to the collector in batches, so logging stays cheap
// even with the collector enabled. Lines flush when the batch fills or on
// the flush ticker, whichever comes first.
type Writer struct {
	c *Client

	mu    sync.Mutex
	lines []string

	done chan struct{}
	once sync.Once
}

func NewWriter(c *Client) *Writer {
	w := &Writer{c: c, done: make(chan struct{})}
	go w.tick()
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.lines = append(w.lines, string(p))
	var batch []string
	if len(w.lines) >= flushBatch {
		batch = w.lines
		w.lines = nil
	}
	w.mu.Unlock()
	if batch != nil {
		go w.c.AppendLogs(batch)
	}
	return len(p), nil
}

// Flush ships whatever is buffered, synchronously.
func (w *Writer) Flush() {
	w.mu.Lock()
	batch := w.lines
	w.lines = nil
	w.mu.Unlock()
	w.c.AppendLogs(batch)
}

// Close stops the ticker and flushes the tail.
func (w *Writer) Close() {
	w.once.Do(func() { close(w.done) })
	w.Flush()
}

func (w *Writer) tick() {
	t := time.NewTicker(flushInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			w.Flush()
		case <-w.done:
			return
		}
	}
}
