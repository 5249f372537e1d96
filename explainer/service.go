package explainer

import (
	"context"
	"fmt"
	"os"

	"github.com/Ingenimax/agent-sdk-go/pkg/interfaces"
	"github.com/Ingenimax/agent-sdk-go/pkg/llm/deepseek"
	"github.com/Ingenimax/agent-sdk-go/pkg/llm/gemini"
	"github.com/Ingenimax/agent-sdk-go/pkg/llm/openai"
	"github.com/Ingenimax/agent-sdk-go/pkg/logging"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	uros "github.com/dbltnk/uros-sub000/config"
	"github.com/dbltnk/uros-sub000/game"
)

const mainPromptTemplate = `You are a commentator for the island-building board game Uros. Two players take turns placing reed-island tiles onto a lake board and building houses on them; when the game ends, the player with the largest connected village wins, with the number of islands it spans breaking ties.

A move search has finished and recommends a move. The situation follows.

{situation}

Explain, in two or three short paragraphs aimed at an intermediate player, why "{best_play}" is the recommended move. Use the tools to check any move or board fact you are unsure about, and name the strongest alternative from the results and why it falls short. Do not invent moves that are not in the listings.`

const situationTemplate = `### Position
{game_state}

### Search results
{sim_results}

### Playout details for the leading candidates
{sim_details}

### Recommended move
{best_play}`

// Config holds configuration for the explainer service
type Config struct {
	Provider string // "gemini", "openai", or "deepseek"
	APIKey   string
	Model    string
}

// Service provides the main explainer service
type Service struct {
	config   *Config
	analyzer *Analyzer
	tools    []interfaces.Tool
}

// NewService creates a new explainer service
func NewService(urosConfig *uros.Config) *Service {
	analyzer := NewAnalyzer()

	return &Service{
		config:   DefaultConfig(urosConfig),
		analyzer: analyzer,
		tools: []interfaces.Tool{
			NewGetMoveMetadataTool(analyzer),
			NewGetBoardMetadataTool(analyzer),
			NewEvaluateMoveTool(analyzer),
		},
	}
}

// SetGame points the analysis tools at the position being explained.
func (s *Service) SetGame(g *game.Game) {
	s.analyzer.SetGame(g)
}

// Enabled reports whether a provider and key are configured.
func (s *Service) Enabled() bool {
	return s.config.Provider != "" && s.config.APIKey != ""
}

// ExplainResult contains the explanation from the AI
type ExplainResult struct {
	Explanation  string
	InputTokens  int
	OutputTokens int
}

// Explain generates an explanation for the given game situation
func (s *Service) Explain(ctx context.Context, gameState, simResults, simDetails, winningPlay string) (*ExplainResult, error) {
	// Set the game context for the analyzer
	s.analyzer.SetGameContext(gameState, simResults, simDetails, winningPlay)

	prompt := s.analyzer.BuildPrompt()
	log.Debug().Msg("Full Prompt:\n" + prompt)

	if os.Getenv("UROS_NO_LLM") == "1" {
		return &ExplainResult{Explanation: prompt}, nil
	}

	// Create the LLM client based on provider
	var client interfaces.LLM
	var err error

	switch s.config.Provider {
	case "gemini":
		client, err = s.createGeminiClient(ctx)
		if err != nil {
			return nil, err
		}
	case "openai":
		client, err = s.createOpenAIClient(ctx)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Using OpenAI client")
	case "deepseek":
		client, err = s.createDeepSeekClient(ctx)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Using DeepSeek client")
	default:
		return nil, fmt.Errorf("unsupported provider: %s", s.config.Provider)
	}

	response, err := client.GenerateWithTools(ctx, prompt, s.tools,
		interfaces.WithMaxIterations(7))
	if err != nil {
		return nil, fmt.Errorf("failed to generate explanation: %w", err)
	}

	return &ExplainResult{
		Explanation:  response,
		InputTokens:  0, // TODO: Extract from response metadata
		OutputTokens: 0, // TODO: Extract from response metadata
	}, nil
}

func (s *Service) createGeminiClient(ctx context.Context) (interfaces.LLM, error) {
	authOption := gemini.WithAPIKey(s.config.APIKey)
	backendOption := gemini.WithBackend(genai.BackendGeminiAPI)

	model := s.config.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	log.Info().Str("model", model).Msg("Using Gemini model")
	return gemini.NewClient(ctx, authOption, backendOption, gemini.WithModel(model))
}

func (s *Service) createOpenAIClient(ctx context.Context) (interfaces.LLM, error) {
	model := s.config.Model
	logger := logging.New()

	if model == "" {
		model = "gpt-4.1"
	}
	modelOption := openai.WithModel(model)
	log.Info().Str("model", model).Msg("Using OpenAI model")
	return openai.NewClient(
		s.config.APIKey,
		modelOption,
		openai.WithLogger(logger),
	), nil
}

func (s *Service) createDeepSeekClient(ctx context.Context) (interfaces.LLM, error) {
	model := s.config.Model
	logger := logging.New()

	if model == "" {
		model = "deepseek-chat"
	}
	modelOption := deepseek.WithModel(model)
	log.Info().Str("model", model).Msg("Using DeepSeek model")
	return deepseek.NewClient(
		s.config.APIKey,
		modelOption,
		deepseek.WithLogger(logger),
	), nil
}

// DefaultConfig returns a default configuration from the app config
func DefaultConfig(urosConfig *uros.Config) *Config {
	return &Config{
		Provider: urosConfig.ExplainerProvider(),
		APIKey:   urosConfig.ExplainerAPIKey(),
		Model:    urosConfig.ExplainerModel(),
	}
}
