package diag

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/tiles"
)

type capturedReq struct {
	path string
	body []byte
}

type captureServer struct {
	mu       sync.Mutex
	reqs     []capturedReq
	failures int
	srv      *httptest.Server
}

func newCaptureServer(t *testing.T, failures int) *captureServer {
	t.Helper()
	cs := &captureServer{failures: failures}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cs.mu.Lock()
		cs.reqs = append(cs.reqs, capturedReq{path: r.URL.Path, body: body})
		fail := len(cs.reqs) <= cs.failures
		cs.mu.Unlock()
		if fail {
			http.Error(w, "busy", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *captureServer) requests() []capturedReq {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]capturedReq{}, cs.reqs...)
}

func (cs *captureServer) waitFor(t *testing.T, n int) []capturedReq {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if reqs := cs.requests(); len(reqs) >= n {
			return reqs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("collector never saw %d requests", n)
	return nil
}

func testSnapshot(t *testing.T) *game.Snapshot {
	t.Helper()
	is := is.New(t)
	domino := tiles.NewTile(0, "Domino", [][]bool{
		{true, true},
		{false, false},
	})
	rules, err := game.NewGameRules([]*tiles.Tile{domino}, 3, 2, [2]string{"red", "blue"})
	is.NoErr(err)
	return game.NewGame(rules).ToSnapshot()
}

func TestClientPostsAllEndpoints(t *testing.T) {
	is := is.New(t)
	cs := newCaptureServer(t, 0)
	c := NewClient(cs.srv.URL, "sess-1")

	c.ClearSession()
	c.AppendLogs([]string{"line one", "line two"})
	c.ReplaceLatestSnapshot(testSnapshot(t))

	reqs := cs.requests()
	is.Equal(len(reqs), 3)
	is.Equal(reqs[0].path, PathClearSession)
	is.Equal(reqs[1].path, PathAppendLogs)
	is.Equal(reqs[2].path, PathReplaceLatestSnapshot)

	var logs LogsPayload
	is.NoErr(json.Unmarshal(reqs[1].body, &logs))
	is.Equal(logs.Session, "sess-1")
	is.Equal(logs.Lines, []string{"line one", "line two"})

	var snap SnapshotPayload
	is.NoErr(json.Unmarshal(reqs[2].body, &snap))
	is.Equal(snap.Snapshot.BoardDim, 3)
	is.Equal(snap.Snapshot.HousePool, 2)
}

func TestClientRetriesUntilSuccess(t *testing.T) {
	is := is.New(t)
	cs := newCaptureServer(t, 2)
	c := NewClient(cs.srv.URL, "sess-2")
	c.ClearSession()
	is.Equal(len(cs.requests()), 3)
}

func TestClientGivesUpSilently(t *testing.T) {
	is := is.New(t)
	cs := newCaptureServer(t, 1000)
	c := NewClient(cs.srv.URL, "sess-3")
	c.AppendLogs([]string{"x"})
	is.Equal(len(cs.requests()), 3)
}

func TestClientSwallowsUnreachableCollector(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "sess-4")
	c.ClearSession()
	c.AppendLogs([]string{"x"})
	c.ReplaceLatestSnapshot(testSnapshot(t))
}

func TestClientSkipsEmptyBatches(t *testing.T) {
	is := is.New(t)
	cs := newCaptureServer(t, 0)
	c := NewClient(cs.srv.URL, "sess-5")
	c.AppendLogs(nil)
	c.ReplaceLatestSnapshot(nil)
	is.Equal(len(cs.requests()), 0)
}

func TestWriterFlushesBatchesAndTail(t *testing.T) {
	is := is.New(t)
	cs := newCaptureServer(t, 0)
	c := NewClient(cs.srv.URL, "sess-6")
	w := NewWriter(c)
	defer w.Close()

	for i := 0; i < flushBatch; i++ {
		_, err := w.Write([]byte("batched line\n"))
		is.NoErr(err)
	}
	reqs := cs.waitFor(t, 1)
	var logs LogsPayload
	is.NoErr(json.Unmarshal(reqs[0].body, &logs))
	is.Equal(len(logs.Lines), flushBatch)

	// A short tail only goes out on Flush.
	_, err := w.Write([]byte("tail\n"))
	is.NoErr(err)
	w.Flush()
	reqs = cs.waitFor(t, 2)
	is.NoErr(json.Unmarshal(reqs[1].body, &logs))
	is.Equal(len(logs.Lines), 1)
}

func TestWriterAsZerologTarget(t *testing.T) {
	is := is.New(t)
	cs := newCaptureServer(t, 0)
	c := NewClient(cs.srv.URL, "sess-7")
	w := NewWriter(c)
	defer w.Close()

	logger := zerolog.New(w).With().Timestamp().Logger()
	logger.Info().Str("cmd", "place").Msg("move committed")
	w.Flush()

	reqs := cs.waitFor(t, 1)
	var logs LogsPayload
	is.NoErr(json.Unmarshal(reqs[0].body, &logs))
	is.Equal(len(logs.Lines), 1)
	is.True(strings.Contains(logs.Lines[0], "move committed"))
}

func TestWriterCloseIsIdempotent(t *testing.T) {
	cs := newCaptureServer(t, 0)
	w := NewWriter(NewClient(cs.srv.URL, "sess-8"))
	_, _ = w.Write([]byte("x\n"))
	w.Close()
	w.Close()
}
