package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/dbltnk/uros-sub000/config"
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/move"
)

// Bot answers move requests over NATS. It is stateless between requests;
// every request carries the full game snapshot.
type Bot struct {
	cfg *config.Config
}

func NewBot(cfg *config.Config) *Bot {
	return &Bot{cfg: cfg}
}

// MoveRequest is the JSON payload of one move query. A zero budget and an
// empty code fall back to the service's configured defaults.
type MoveRequest struct {
	State     *game.Snapshot `json:"state"`
	Code      Code           `json:"code,omitempty"`
	BudgetMs  int            `json:"budget_ms,omitempty"`
	Randomize bool           `json:"randomize,omitempty"`
	Threshold float64        `json:"threshold,omitempty"`
	Seed      uint64         `json:"seed,omitempty"`
}

// WireMove is a move in JSON form. Board coordinates only apply to tile
// placements.
type WireMove struct {
	Action   string `json:"action"`
	TileID   int    `json:"tile_id"`
	TileRow  int    `json:"tile_row"`
	TileCol  int    `json:"tile_col"`
	BoardRow int    `json:"board_row,omitempty"`
	BoardCol int    `json:"board_col,omitempty"`
	Player   int    `json:"player"`
}

// MoveResponse carries either a move, or nothing (no legal moves), or an
// error message.
type MoveResponse struct {
	Move  *WireMove `json:"move,omitempty"`
	Error string    `json:"error,omitempty"`
}

const (
	wireActionTile  = "tile"
	wireActionHouse = "house"
)

func moveToWire(m *move.Move) *WireMove {
	if m == nil {
		return nil
	}
	w := &WireMove{
		TileID:  m.TileID(),
		TileRow: m.TileRow(),
		TileCol: m.TileCol(),
		Player:  m.Player(),
	}
	switch m.Action() {
	case move.MoveTypePlaceTile:
		w.Action = wireActionTile
		w.BoardRow = m.BoardRow()
		w.BoardCol = m.BoardCol()
	case move.MoveTypePlaceHouse:
		w.Action = wireActionHouse
	}
	return w
}

func wireToMove(w *WireMove) (*move.Move, error) {
	if w == nil {
		return nil, nil
	}
	switch w.Action {
	case wireActionTile:
		return move.NewPlaceTileMove(w.TileID, w.TileRow, w.TileCol, w.BoardRow, w.BoardCol, w.Player), nil
	case wireActionHouse:
		return move.NewPlaceHouseMove(w.TileID, w.TileRow, w.TileCol, w.Player), nil
	}
	return nil, fmt.Errorf("unknown wire move action %q", w.Action)
}

func errorResponse(message string, err error) *MoveResponse {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &MoveResponse{Error: msg}
}

func (bot *Bot) handle(ctx context.Context, data []byte) *MoveResponse {
	var req MoveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("could not parse request", err)
	}
	g, err := game.FromSnapshot(req.State)
	if err != nil {
		return errorResponse("could not rebuild game", err)
	}

	code := req.Code
	if code == "" {
		code = Code(bot.cfg.BotCode())
	}
	opts := Options{
		BudgetMs:  req.BudgetMs,
		Randomize: req.Randomize,
		Threshold: req.Threshold,
		Seed:      req.Seed,
	}
	if opts.BudgetMs <= 0 {
		opts.BudgetMs = bot.cfg.BotBudgetMs()
	}
	strategy, err := NewStrategy(code, opts)
	if err != nil {
		return errorResponse("could not create strategy", err)
	}

	m, err := strategy.ChooseMove(ctx, g)
	if err != nil {
		return errorResponse("strategy failed", err)
	}
	if m == nil {
		log.Info().Str("code", string(code)).Msg("no legal moves")
	} else {
		log.Info().Msgf("Generated move: %s", m.ShortDescription())
	}
	return &MoveResponse{Move: moveToWire(m)}
}

// Main subscribes to the move channel and answers requests until the process
// dies.
func Main(channel string, bot *Bot) {
	nc, err := nats.Connect(bot.cfg.NatsURL())
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to NATS")
	}
	nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		resp := bot.handle(context.Background(), m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			// Should never happen, ideally, but we need to do something sensible here.
			m.Respond([]byte(err.Error()))
		} else {
			m.Respond(data)
		}
	})
	nc.Flush()

	if err := nc.LastError(); err != nil {
		log.Fatal().Err(err).Msg("subscription failed")
	}

	log.Info().Msgf("Listening on [%s]", channel)

	runtime.Goexit()
	fmt.Println("exiting")
}
