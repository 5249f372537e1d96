// Package diag ships structured log lines and game snapshots to a local
// collector process over HTTP. Everything here is fire-and-forget: failures
// are retried a few times, logged at debug level and swallowed, and the
// engine packages never import this one.
package diag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/dbltnk/uros-sub000/game"
)

// Collector endpoints, shared with cmd/collector.
const (
	PathClearSession          = "/clear-session"
	PathAppendLogs            = "/append-logs"
	PathReplaceLatestSnapshot = "/replace-latest-snapshot"
)

// dlog writes straight to stderr. The global logger may be teed back into
// this package's Writer; logging through it here would feed the collector's
// failure messages into the collector pipeline forever.
var dlog = zerolog.New(os.Stderr).With().Timestamp().Str("module", "diag").Logger()

type SessionPayload struct {
	Session string `json:"session"`
}

type LogsPayload struct {
	Session string   `json:"session"`
	Lines   []string `json:"lines"`
}

type SnapshotPayload struct {
	Session  string         `json:"session"`
	Snapshot *game.Snapshot `json:"snapshot"`
}

type Client struct {
	baseURL string
	session string
	httpc   *http.Client
}

// NewClient points at a collector base URL. The session string tags
// everything this process sends.
func NewClient(baseURL, session string) *Client {
	return &Client{
		baseURL: baseURL,
		session: session,
		httpc:   &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) Session() string {
	return c.session
}

// ClearSession wipes any previous data stored under this session.
func (c *Client) ClearSession() {
	c.post(PathClearSession, SessionPayload{Session: c.session})
}

// AppendLogs ships a batch of structured log lines.
func (c *Client) AppendLogs(lines []string) {
	if len(lines) == 0 {
		return
	}
	c.post(PathAppendLogs, LogsPayload{Session: c.session, Lines: lines})
}

// ReplaceLatestSnapshot overwrites the collector's latest game snapshot for
// this session.
func (c *Client) ReplaceLatestSnapshot(snap *game.Snapshot) {
	if snap == nil {
		return
	}
	c.post(PathReplaceLatestSnapshot, SnapshotPayload{Session: c.session, Snapshot: snap})
}

func (c *Client) post(path string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		dlog.Debug().Err(err).Str("path", path).Msg("marshal failed")
		return
	}
	err = retry.Do(
		func() error {
			resp, err := c.httpc.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				return fmt.Errorf("collector returned %s", resp.Status)
			}
			return nil
		},
		retry.Attempts(3),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			dlog.Debug().Err(err).Uint("n", n).Str("path", path).
				Msg("collector unreachable, trying again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		dlog.Debug().Err(err).Str("path", path).Msg("giving up on collector")
	}
}
