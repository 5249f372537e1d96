package bot

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/move"
)

// requestSlack pads the NATS request timeout past the bot's own thinking
// budget so a slow-but-working service is not cut off mid-answer.
const requestSlack = 10 * time.Second

type Client struct {
	nc      *nats.Conn
	channel string
}

func NewClient(natsURL, channel string) (*Client, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}
	return &Client{nc: nc, channel: channel}, nil
}

func (c *Client) Close() {
	c.nc.Close()
}

func MakeRequest(g *game.Game, code Code, opts Options) ([]byte, error) {
	req := MoveRequest{
		State:     g.ToSnapshot(),
		Code:      code,
		BudgetMs:  opts.BudgetMs,
		Randomize: opts.Randomize,
		Threshold: opts.Threshold,
		Seed:      opts.Seed,
	}
	return json.Marshal(req)
}

// RequestMove sends a position to the bot service and gets a move back. A
// nil move with a nil error means the position has no legal moves.
func (c *Client) RequestMove(g *game.Game, code Code, opts Options) (*move.Move, error) {
	data, err := MakeRequest(g, code, opts)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(opts.BudgetMs)*time.Millisecond + requestSlack
	res, err := c.nc.Request(c.channel, data, timeout)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		log.Error().Msgf("%v for request", err)
		return nil, err
	}
	log.Debug().Msgf("res: %v", string(res.Data))

	var resp MoveResponse
	if err := json.Unmarshal(res.Data, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New("bot returned: " + resp.Error)
	}
	return wireToMove(resp.Move)
}
