package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Devojha408/requirements-gap-analyzer/internal/api"
	"github.com/Devojha408/requirements-gap-analyzer/internal/config"
	"github.com/Devojha408/requirements-gap-analyzer/internal/langflow"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.APIKey == "" {
		log.Warn().Msg("LANGFLOW_API_KEY not set; requests without an x-api-key header will be rejected")
	}
	if cfg.FlowID == "" {
		log.Warn().Msg("LANGFLOW_FLOW_ID not set; analysis requests will fail")
	}
	if cfg.FileComponent == "" {
		log.Warn().Msg("LANGFLOW_FILE_COMPONENT not set; uploaded files cannot be attached to runs")
	}

	client := langflow.NewClient(cfg.BaseURL)
	handler := api.NewHandler(client, cfg)

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(), api.CORS())
	handler.RegisterRoutes(router)

	log.Info().
		Str("addr", ":"+cfg.Port).
		Str("langflow", cfg.BaseURL).
		Str("flow_id", cfg.FlowID).
		Msg("requirements gap analyzer listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
