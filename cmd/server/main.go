package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pharmacy-rag/internal/config"
	"pharmacy-rag/internal/embedding"
	"pharmacy-rag/internal/handler"
	"pharmacy-rag/internal/llmservice"
	"pharmacy-rag/internal/models"
	"pharmacy-rag/internal/parser"
	"pharmacy-rag/internal/rag"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// silently ignore if .env doesn't exist
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	embedder, err := embedding.NewFromConfig(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	completer, err := llmservice.NewFromConfig(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat client")
	}

	loader := parser.NewDirectoryLoader(cfg.RAG.DocsDir, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	svc := rag.NewService(loader, embedder, completer, cfg.RAG)

	log.Info().Str("docs_dir", cfg.RAG.DocsDir).Msg("Loading documents for the knowledge index")
	if err := svc.Rebuild(context.Background()); err != nil {
		// The service keeps running degraded: requests get the fixed
		// unavailability response until a reindex succeeds.
		log.Error().Err(err).Msg("Initial indexing failed, knowledge system is unavailable")
	} else {
		log.Info().Bool("ready", svc.Ready()).Int("chunks", svc.Size()).Msg("Document loading finished")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Pharmacy Chatbot",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.Server.AllowOrigin},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": models.MsgOnline})
	})

	handler.NewChatHandler(svc).Register(app)
	handler.NewWebhookHandler(svc).Register(app)
	handler.NewAdminHandler(svc).Register(app)

	log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
