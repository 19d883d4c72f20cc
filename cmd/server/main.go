package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/krkavinraj/Bhindi-mem/internal/embed"
	"github.com/krkavinraj/Bhindi-mem/internal/executor"
	"github.com/krkavinraj/Bhindi-mem/internal/extract"
	"github.com/krkavinraj/Bhindi-mem/internal/graph"
	"github.com/krkavinraj/Bhindi-mem/internal/respond"
	"github.com/krkavinraj/Bhindi-mem/internal/retriever"
	"github.com/krkavinraj/Bhindi-mem/pkg/config"
	"github.com/krkavinraj/Bhindi-mem/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting knowledge graph server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to the graph backend. A failed connection degrades to the
	// in-memory fallback instead of exiting.
	ctx := context.Background()
	store := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	defer store.Close(ctx)

	// Embeddings are optional; without a key retrieval is keyword-only
	var embedder retriever.Embedder
	if embedClient, err := embed.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbeddingModel); err != nil {
		log.Warn("Embeddings unavailable, retrieval will be keyword-only", zap.Error(err))
	} else {
		embedder = embedClient
	}

	// Initialize dependencies
	parser := extract.NewParser(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAIMaxTokens, cfg.OpenAITemperature)
	exec := executor.New(store)
	retr := retriever.New(store, embedder, cfg.MaxResults)
	responder := respond.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAIMaxTokens)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// One conversational turn: extract, execute, retrieve, respond
		api.POST("/chat", func(c *gin.Context) {
			ctx := c.Request.Context()

			var req struct {
				Message string   `json:"message" binding:"required"`
				History []string `json:"history"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			turnID := uuid.NewString()
			log.Info("Processing chat turn",
				zap.String("turn_id", turnID),
				zap.Int("history_len", len(req.History)),
			)

			priorContext := retriever.ConversationContext(req.History, 3)
			extraction := parser.Parse(ctx, req.Message, priorContext)
			result := exec.Execute(ctx, extraction)
			bundle := retr.RetrieveContext(ctx, req.Message)
			reply := responder.Generate(ctx, req.Message, result, bundle, &extraction)

			c.JSON(http.StatusOK, gin.H{
				"turn_id":     turnID,
				"response":    reply,
				"intent":      result.Intent,
				"success":     result.Success,
				"result":      result,
				"context":     bundle,
				"suggestions": respond.Suggestions(bundle),
			})
		})

		// Graph visualization data
		api.GET("/graph", func(c *gin.Context) {
			ctx := c.Request.Context()

			limit := cfg.MaxNodesDisplay
			if raw := c.Query("limit"); raw != "" {
				if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
					limit = parsed
				}
			}

			data, err := store.VisualizationData(ctx, limit)
			if err != nil {
				log.Error("Failed to fetch visualization data", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch graph"})
				return
			}

			c.JSON(http.StatusOK, data)
		})

		// Graph statistics and a friendly summary
		api.GET("/stats", func(c *gin.Context) {
			ctx := c.Request.Context()

			stats, err := store.Statistics(ctx)
			if err != nil {
				log.Error("Failed to fetch statistics", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"statistics": stats,
				"summary":    responder.GraphSummary(ctx, stats),
			})
		})

		// Single node with its relationships
		api.GET("/nodes/:name", func(c *gin.Context) {
			ctx := c.Request.Context()
			name := c.Param("name")

			node, err := store.GetNodeWithRelationships(ctx, name)
			if err != nil {
				if err == graph.ErrNotFound {
					c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
					return
				}
				log.Error("Failed to fetch node", zap.String("name", name), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch node"})
				return
			}

			c.JSON(http.StatusOK, node)
		})

		// Breadth-first related-entity expansion
		api.GET("/nodes/:name/related", func(c *gin.Context) {
			ctx := c.Request.Context()
			name := c.Param("name")

			depth := 2
			if raw := c.Query("depth"); raw != "" {
				if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
					depth = parsed
				}
			}

			c.JSON(http.StatusOK, gin.H{
				"entity":  name,
				"related": retr.FindRelatedEntities(ctx, name, depth),
			})
		})

		// Name substring search
		api.GET("/search", func(c *gin.Context) {
			ctx := c.Request.Context()

			query := c.Query("q")
			if query == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
				return
			}

			nodes, err := store.SearchNodesByName(ctx, query)
			if err != nil {
				log.Error("Search failed", zap.String("query", query), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"results": nodes})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
