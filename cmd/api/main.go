package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bobarin/podcastify/internal/api"
	"github.com/bobarin/podcastify/internal/audio"
	"github.com/bobarin/podcastify/internal/config"
	"github.com/bobarin/podcastify/internal/pipeline"
	"github.com/bobarin/podcastify/internal/script"
	"github.com/bobarin/podcastify/internal/services"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Info().Msg("Starting podcastify API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown LOG_LEVEL, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := cfg.EnsureAudioDir(); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare audio dir")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Language service for script writing
	var llm script.TextGenerator
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gemini, err := services.NewGeminiService(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.LLMModel, component(log, "gemini"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize gemini")
		}
		llm = gemini
	default:
		llm = services.NewOpenAIService(cfg.OpenAIKey, cfg.OpenAIURL, cfg.LLMModel, component(log, "openai"))
	}
	log.Info().Str("provider", cfg.LLMProvider).Str("model", cfg.LLMModel).Msg("language service configured")

	// MP3 decoding for speech, effects and the intro
	var decoder audio.Decoder = audio.NewMP3Decoder()
	if cfg.AudioDecoder == config.DecoderFFmpeg {
		ff := services.NewFFmpegService(cfg.FFmpegPath, component(log, "ffmpeg"))
		if !ff.Available() {
			log.Fatal().Str("binary", cfg.FFmpegPath).Msg("AUDIO_DECODER=ffmpeg but binary not found")
		}
		decoder = ff
	}

	speech := services.NewElevenLabsService(cfg.ElevenLabsKey, services.ElevenLabsOptions{
		BaseURL: cfg.ElevenLabsURL,
		ModelID: cfg.TTSModel,
	}, component(log, "elevenlabs"))

	synth := pipeline.NewSynthesizer(speech, decoder, pipeline.Voices{
		Speaker1: cfg.Speaker1VoiceID,
		Speaker2: cfg.Speaker2VoiceID,
	}, cfg.SynthConcurrency, component(log, "synthesizer"))

	assembler := audio.NewAssembler(cfg.AudioDir, cfg.IntroFile, decoder, component(log, "assembler"))
	// Load the intro up front so a missing asset shows in startup logs.
	assembler.Intro()

	handler := api.NewHandler(
		script.NewGenerator(llm, component(log, "script")),
		pipeline.New(synth, assembler, component(log, "pipeline")),
		services.NewArticleService(services.ArticleOptions{
			AllowPrivateHosts: cfg.ArticleAllowPrivateHosts,
		}, component(log, "article")),
		cfg.AudioDir,
	)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		Log:                component(log, "http"),
	})

	if cfg.BackendAPIKey != "" {
		log.Info().Msg("API key authentication enabled")
	} else {
		log.Warn().Msg("no BACKEND_API_KEY set, API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("audio_dir", cfg.AudioDir).Msg("API server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
