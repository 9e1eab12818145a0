package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cockfight/pkg/bot"
	"cockfight/pkg/cache"
	"cockfight/pkg/config"
	"cockfight/pkg/fighter"
	"cockfight/pkg/gemini"
	"cockfight/pkg/generation"
	"cockfight/pkg/media"
	"cockfight/pkg/nvidia"
	"cockfight/pkg/presentation"
	"cockfight/pkg/session"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
)

func main() {
	// Load config.yml
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load .env for secrets
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	token := os.Getenv("DISCORD_TOKEN")
	geminiKey := os.Getenv("GEMINI_API_KEY")

	// Check each required environment variable individually for better error messages
	if token == "" {
		log.Fatal("Missing required environment variable: DISCORD_TOKEN")
	}
	if geminiKey == "" {
		log.Fatal("Missing required environment variable: GEMINI_API_KEY")
	}

	ctx := context.Background()

	// Load the roster; reference photos are shrunk before they reach the image model
	processor := media.NewImageProcessor(media.CompressionOptions{
		Quality:   85,
		MaxWidth:  cfg.Assets.MaxReferencePx,
		MaxHeight: cfg.Assets.MaxReferencePx,
		Threshold: int64(cfg.Assets.CompressThresholdKB) * 1024,
	})
	roster, err := fighter.LoadRoster(cfg.Assets.Roster)
	if err != nil {
		log.Fatalf("Failed to load roster: %v", err)
	}
	fighters, err := fighter.Load(fighter.NewDirStore(cfg.Assets.Dir, roster, processor))
	if err != nil {
		log.Fatalf("Failed to load fighters: %v", err)
	}
	log.Printf("Loaded %d fighters from %s", len(fighters), cfg.Assets.Dir)

	// Initialize Gemini Client - images always, text unless NVIDIA is selected
	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      geminiKey,
		TextModel:   cfg.Models.Text,
		ImageModel:  cfg.Models.Image,
		AspectRatio: cfg.Models.AspectRatio,
	})
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	var textClient generation.TextCapability = geminiClient
	if cfg.TextProvider == "nvidia" {
		nvidiaKeys := os.Getenv("NVIDIA_API_KEY")
		if nvidiaKeys == "" {
			log.Fatal("Missing required environment variable: NVIDIA_API_KEY")
		}
		models := make([]nvidia.ModelConfig, 0, len(cfg.Models.NVIDIA))
		for _, id := range cfg.Models.NVIDIA {
			models = append(models, nvidia.ModelConfig{ID: id, MaxToken: cfg.ModelSettings.MaxTokens})
		}
		textClient = nvidia.NewClient(nvidia.Config{
			APIKeys:     nvidiaKeys,
			Models:      models,
			Temperature: cfg.ModelSettings.Temperature,
			TopP:        cfg.ModelSettings.TopP,
		})
		log.Printf("Text generation via NVIDIA (%d models)", len(models))
	} else {
		log.Printf("Text generation via Gemini (%s)", cfg.Models.Text)
	}

	gateway := generation.NewGateway(textClient, geminiClient,
		cfg.Generation.Text.Policy(), cfg.Generation.Image.Policy())

	// Portrait cache: Redis when configured and reachable, process memory otherwise
	portraits, closeCache := cache.Open(os.Getenv("REDIS_URL"), cfg.Cache.Prefix)
	defer closeCache()

	presenter := presentation.New(gateway, portraits, processor, media.DefaultCollageOptions()).
		WithPortraitTTL(cfg.PortraitTTL())
	store := session.NewStore(fighters, gateway, nil)

	// Create Discord Session
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}

	handler := bot.NewHandler(&bot.DiscordSession{Session: dg}, store, presenter, bot.Options{
		RoundHeaderDelay: config.Seconds(cfg.Delays.RoundHeader),
		BetweenSpeakers:  config.Seconds(cfg.Delays.BetweenSpeakers),
		BetweenFighters:  config.Seconds(cfg.Delays.BetweenFighters),
		CaptionLimit:     cfg.CaptionLimit,
	})

	// Register Handlers
	dg.AddHandler(handler.Ready)
	dg.AddHandler(handler.InteractionCreate)

	// Open Connection
	if err := dg.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}
	defer dg.Close()

	// Register slash commands (empty string = global, or specify guild ID for faster testing)
	guildID := os.Getenv("DISCORD_GUILD_ID")
	registeredCommands, err := bot.RegisterSlashCommands(dg, guildID)
	if err != nil {
		log.Fatalf("Error registering slash commands: %v", err)
	}

	log.Println("Dana CockFight is now running. Press CTRL-C to exit.")

	// Wait for signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	handler.Close()
	if err := bot.UnregisterSlashCommands(dg, guildID, registeredCommands); err != nil {
		log.Printf("Error unregistering slash commands: %v", err)
	}
}
