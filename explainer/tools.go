package explainer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Ingenimax/agent-sdk-go/pkg/interfaces"
	"github.com/rs/zerolog/log"

	"github.com/dbltnk/uros-sub000/equity"
	"github.com/dbltnk/uros-sub000/game"
	"github.com/dbltnk/uros-sub000/move"
	"github.com/dbltnk/uros-sub000/movegen"
)

// MoveMetadata represents metadata about a single legal move
type MoveMetadata struct {
	Move                string `json:"move"`
	Action              string `json:"action"` // "tile" or "house"
	TileName            string `json:"tile_name"`
	VillageSizeAfter    int    `json:"village_size_after"`
	VillageIslandsAfter int    `json:"village_islands_after"`
	HousesLeftAfter     int    `json:"houses_left_after"`
	EndsGame            bool   `json:"ends_game"`
}

// PlayerMetadata represents one player's standing on the board
type PlayerMetadata struct {
	Color          string `json:"color"`
	HousesInHand   int    `json:"houses_in_hand"`
	LargestVillage int    `json:"largest_village"`
	VillageIslands int    `json:"village_islands"`
	Villages       int    `json:"villages"`
}

// BoardMetadata represents the overall position
type BoardMetadata struct {
	Turn          int               `json:"turn"`
	OnTurn        int               `json:"on_turn"`
	OccupiedCells int               `json:"occupied_cells"`
	ReedbedTiles  int               `json:"reedbed_tiles"`
	Players       [2]PlayerMetadata `json:"players"`
}

// GetMoveMetadataTool analyzes metadata for a candidate move
type GetMoveMetadataTool struct {
	analyzer *Analyzer
}

func NewGetMoveMetadataTool(analyzer *Analyzer) *GetMoveMetadataTool {
	return &GetMoveMetadataTool{analyzer: analyzer}
}

func (t *GetMoveMetadataTool) Name() string {
	return "get_move_metadata"
}

func (t *GetMoveMetadataTool) Description() string {
	return "Get metadata about a candidate move including the tile involved, the mover's largest village after it, houses left in hand, and whether it ends the game"
}

func (t *GetMoveMetadataTool) Parameters() map[string]interfaces.ParameterSpec {
	return map[string]interfaces.ParameterSpec{
		"move_string": {
			Type:        "string",
			Description: "The move to analyze, as listed in the simulation results (e.g., 'house t2(0,1)' or 'tile t0(0,0)@3,4')",
			Required:    true,
		},
	}
}

func (t *GetMoveMetadataTool) Run(ctx context.Context, args string) (string, error) {
	return t.Execute(ctx, args)
}

func (t *GetMoveMetadataTool) Execute(ctx context.Context, args string) (string, error) {
	var params struct {
		MoveString string `json:"move_string"`
	}
	if err := json.Unmarshal([]byte(args), &params); err != nil {
		return "", fmt.Errorf("failed to parse parameters: %w", err)
	}

	metadata, err := t.analyzer.GetMoveMetadata(params.MoveString)
	if err != nil {
		return "", err
	}

	result, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// GetBoardMetadataTool summarizes the current position
type GetBoardMetadataTool struct {
	analyzer *Analyzer
}

func NewGetBoardMetadataTool(analyzer *Analyzer) *GetBoardMetadataTool {
	return &GetBoardMetadataTool{analyzer: analyzer}
}

func (t *GetBoardMetadataTool) Name() string {
	return "get_board_metadata"
}

func (t *GetBoardMetadataTool) Description() string {
	return "Get a summary of the current position: occupied cells, reedbed tiles remaining, and each player's houses in hand, village count, and largest village with its island span"
}

func (t *GetBoardMetadataTool) Parameters() map[string]interfaces.ParameterSpec {
	return map[string]interfaces.ParameterSpec{}
}

func (t *GetBoardMetadataTool) Run(ctx context.Context, args string) (string, error) {
	return t.Execute(ctx, args)
}

func (t *GetBoardMetadataTool) Execute(ctx context.Context, args string) (string, error) {
	metadata, err := t.analyzer.GetBoardMetadata()
	if err != nil {
		return "", err
	}

	result, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// EvaluateMoveTool scores a candidate move with the static evaluator
type EvaluateMoveTool struct {
	analyzer *Analyzer
}

func NewEvaluateMoveTool(analyzer *Analyzer) *EvaluateMoveTool {
	return &EvaluateMoveTool{analyzer: analyzer}
}

func (t *EvaluateMoveTool) Name() string {
	return "evaluate_move"
}

func (t *EvaluateMoveTool) Description() string {
	return "Evaluate a candidate move with the static evaluator. Returns a numerical score for the mover where higher is better; the score blends village lead, island diversity, houses in reserve, and room to expand."
}

func (t *EvaluateMoveTool) Parameters() map[string]interfaces.ParameterSpec {
	return map[string]interfaces.ParameterSpec{
		"move_string": {
			Type:        "string",
			Description: "The move to evaluate, as listed in the simulation results (e.g., 'house t2(0,1)')",
			Required:    true,
		},
	}
}

func (t *EvaluateMoveTool) Run(ctx context.Context, args string) (string, error) {
	return t.Execute(ctx, args)
}

func (t *EvaluateMoveTool) Execute(ctx context.Context, args string) (string, error) {
	var params struct {
		MoveString string `json:"move_string"`
	}
	if err := json.Unmarshal([]byte(args), &params); err != nil {
		return "", fmt.Errorf("failed to parse parameters: %w", err)
	}

	value, err := t.analyzer.EvaluateMove(params.MoveString)
	if err != nil {
		return "", err
	}

	return strconv.FormatFloat(value, 'f', 3, 64), nil
}

// Analyzer provides the actual analysis logic
type Analyzer struct {
	gameState   string
	simResults  string
	simDetails  string
	winningPlay string
	game        *game.Game
	gen         *movegen.Generator
	evaluator   *equity.StaticEvaluator
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		gen:       movegen.NewGenerator(),
		evaluator: equity.NewStaticEvaluator(),
	}
}

// SetGame sets the position the tools analyze
func (a *Analyzer) SetGame(g *game.Game) {
	a.game = g
}

// SetGameContext sets the current game context for analysis
func (a *Analyzer) SetGameContext(gameState, simResults, simDetails, winningPlay string) {
	a.gameState = gameState
	a.simResults = simResults
	a.simDetails = simDetails
	a.winningPlay = winningPlay
}

// findMove matches a move string against the legal moves in the current
// position. The listings shown to the model use ShortDescription, so that
// is the format we accept.
func (a *Analyzer) findMove(moveString string) (*move.Move, error) {
	if a.game == nil {
		return nil, fmt.Errorf("game not set")
	}
	want := strings.TrimSpace(moveString)
	for _, m := range a.gen.GenAll(a.game) {
		if m.ShortDescription() == want {
			return m, nil
		}
	}
	return nil, fmt.Errorf("move %s is not legal in this position", moveString)
}

// GetMoveMetadata analyzes a move and returns metadata
func (a *Analyzer) GetMoveMetadata(moveString string) (*MoveMetadata, error) {
	m, err := a.findMove(moveString)
	if err != nil {
		return nil, err
	}

	action := "tile"
	if m.Action() == move.MoveTypePlaceHouse {
		action = "house"
	}
	tileName := ""
	if t, _ := a.game.TileByID(m.TileID()); t != nil {
		tileName = t.Name()
	}

	gc := a.game.Copy()
	if !gc.MakeMove(m) {
		return nil, fmt.Errorf("move %s was rejected by the rules", moveString)
	}
	size, islands := gc.LargestVillage(m.Player())

	md := &MoveMetadata{
		Move:                m.ShortDescription(),
		Action:              action,
		TileName:            tileName,
		VillageSizeAfter:    size,
		VillageIslandsAfter: islands,
		HousesLeftAfter:     gc.HousesFor(m.Player()),
		EndsGame:            gc.IsGameOver(),
	}
	log.Info().Interface("metadata", md).Msg("analyzed move metadata")
	return md, nil
}

// GetBoardMetadata summarizes the current position
func (a *Analyzer) GetBoardMetadata() (*BoardMetadata, error) {
	if a.game == nil {
		return nil, fmt.Errorf("game not set")
	}

	villages := a.game.CalculateVillages()
	md := &BoardMetadata{
		Turn:          a.game.Turn(),
		OnTurn:        a.game.PlayerOnTurn(),
		OccupiedCells: a.game.Board().OccupiedCount(),
		ReedbedTiles:  len(a.game.Reedbed()),
	}
	for p := 0; p < 2; p++ {
		size, islands := a.game.LargestVillage(p)
		md.Players[p] = PlayerMetadata{
			Color:          a.game.ColorFor(p),
			HousesInHand:   a.game.HousesFor(p),
			LargestVillage: size,
			VillageIslands: islands,
			Villages:       len(villages[p]),
		}
	}
	log.Info().Interface("metadata", md).Msg("analyzed board metadata")
	return md, nil
}

// EvaluateMove scores a move with the static evaluator
func (a *Analyzer) EvaluateMove(moveString string) (float64, error) {
	log.Info().Str("move", moveString).Msg("evaluating move")
	m, err := a.findMove(moveString)
	if err != nil {
		return 0, err
	}

	gc := a.game.Copy()
	if !gc.MakeMove(m) {
		return 0, fmt.Errorf("move %s was rejected by the rules", moveString)
	}

	value := a.evaluator.Evaluate(gc, m.Player())
	log.Info().Str("move", moveString).Float64("value", value).Msg("evaluated move")
	return value, nil
}

// BuildPrompt constructs the full prompt with the game situation
func (a *Analyzer) BuildPrompt() string {
	situation := situationTemplate
	situation = strings.ReplaceAll(situation, "{game_state}", a.gameState)
	situation = strings.ReplaceAll(situation, "{sim_results}", a.simResults)
	situation = strings.ReplaceAll(situation, "{sim_details}", a.simDetails)
	situation = strings.ReplaceAll(situation, "{best_play}", a.winningPlay)

	prompt := mainPromptTemplate
	prompt = strings.ReplaceAll(prompt, "{situation}", situation)
	prompt = strings.ReplaceAll(prompt, "{best_play}", a.winningPlay)

	return prompt
}
