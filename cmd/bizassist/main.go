// Bizassist is a multilingual sales assistant for small merchants. It answers
// typed or spoken questions about recent sales in English, Hindi, Kannada and
// Odia, replying in the merchant's language.
//
// Usage:
//
//	bizassist [flags]
//	bizassist --config /path/to/bizassist.yaml
//
// @title       bizassist API
// @version     1.0
// @description Multilingual sales assistant for small merchants. Answers typed or spoken questions about recent sales in English, Hindi, Kannada and Odia.
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	_ "github.com/nadzzz/bizassist/docs"
	"github.com/nadzzz/bizassist/internal/business"
	"github.com/nadzzz/bizassist/internal/config"
	"github.com/nadzzz/bizassist/internal/conversation"
	"github.com/nadzzz/bizassist/internal/dispatch"
	"github.com/nadzzz/bizassist/internal/health"
	"github.com/nadzzz/bizassist/internal/insight"
	"github.com/nadzzz/bizassist/internal/interpreter"
	localinterp "github.com/nadzzz/bizassist/internal/interpreter/local"
	openaiinterp "github.com/nadzzz/bizassist/internal/interpreter/openai"
	"github.com/nadzzz/bizassist/internal/language"
	"github.com/nadzzz/bizassist/internal/speech"
	"github.com/nadzzz/bizassist/internal/translate"
	"github.com/nadzzz/bizassist/internal/transport"
	grpctransport "github.com/nadzzz/bizassist/internal/transport/grpc"
	httptransport "github.com/nadzzz/bizassist/internal/transport/http"
	"github.com/nadzzz/bizassist/internal/tts"
	"github.com/nadzzz/bizassist/internal/tts/gtts"
	"github.com/nadzzz/bizassist/internal/tts/piper"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/bizassist.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bizassist %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("bizassist starting", "version", version)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("bizassist stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bizassist stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Business data is loaded once; a missing file leaves the API up but not ready.
	record, err := business.Load(cfg.Data.Path)
	if err != nil {
		slog.Error("business data not loaded", "path", cfg.Data.Path, "error", err)
		record = business.NewRecord(nil)
	} else {
		slog.Info("business data loaded", "path", cfg.Data.Path, "days", record.Len())
	}

	interp, err := newInterpreter(cfg.Interpreter)
	if err != nil {
		return err
	}
	defer interp.Close()

	synth := newSynthesizer(cfg.TTS)
	if synth != nil {
		defer synth.Close()
	}

	var primary language.Primary
	if cfg.Language.Detector == "statistical" {
		primary = language.NewStatistical()
	}

	var backend translate.Translator
	if cfg.Translation.Enabled {
		backend = translate.NewLibreTranslateClient(cfg.Translation.BaseURL, cfg.Translation.APIKey)
		slog.Info("translation enabled", "base_url", cfg.Translation.BaseURL)
	}

	store := conversation.NewStore(cfg.Conversation.MaxMessages, cfg.Conversation.TTL)
	dispatcher := dispatch.New(
		language.NewDetector(primary),
		translate.NewService(backend, cfg.Translation.Timeout),
		record,
		insight.NewEngine(interp, insight.Options{
			Temperature: cfg.Interpreter.Temperature,
			MaxTokens:   cfg.Interpreter.MaxTokens,
			Timeout:     cfg.Interpreter.CompletionTimeout,
		}),
		speech.NewBridge(interp, synth, speech.Options{
			TranscriptionTimeout: cfg.Interpreter.TranscriptionTimeout,
			SynthesisTimeout:     cfg.TTS.Timeout,
		}),
		store,
	)

	ready := record.Loaded()
	transports := []transport.Transport{
		httptransport.New(cfg.Transports.HTTP, dispatcher, store, ready),
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, ready))
	}

	healthServer := health.New(cfg.Server.HealthPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.ListenAndServe(gctx) })
	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(gctx); err != nil {
				return fmt.Errorf("%s transport: %w", t.Name(), err)
			}
			return nil
		})
	}

	healthServer.SetReady(ready)
	slog.Info("bizassist ready",
		"data_loaded", ready,
		"transports", len(transports),
		"http_port", cfg.Transports.HTTP.Port,
		"health_port", cfg.Server.HealthPort)

	return g.Wait()
}

func newInterpreter(cfg config.InterpreterConfig) (interpreter.Interpreter, error) {
	switch cfg.Backend {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			slog.Warn("no API key configured for the openai backend; set GROQ_API_KEY")
		}
		slog.Info("using OpenAI-compatible interpreter",
			"base_url", cfg.OpenAI.BaseURL,
			"transcription_model", cfg.OpenAI.TranscriptionModel,
			"completion_model", cfg.OpenAI.CompletionModel)
		return openaiinterp.New(cfg.OpenAI), nil
	case "local":
		slog.Info("using local interpreter",
			"whisper", cfg.Local.WhisperEndpoint,
			"llm", cfg.Local.LLMEndpoint)
		return localinterp.New(cfg.Local), nil
	default:
		return nil, fmt.Errorf("unknown interpreter backend %q", cfg.Backend)
	}
}

func newSynthesizer(cfg config.TTSConfig) tts.Synthesizer {
	if !cfg.Enabled {
		slog.Info("speech synthesis disabled")
		return nil
	}
	switch cfg.Backend {
	case "piper":
		slog.Info("using piper synthesizer", "endpoint", cfg.Piper.Endpoint)
		return piper.New(cfg.Piper)
	default:
		slog.Info("using gtts synthesizer", "endpoint", cfg.GTTS.Endpoint)
		return gtts.New(cfg.GTTS)
	}
}
