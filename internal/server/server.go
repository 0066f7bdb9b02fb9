package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/capabilitycompass/compass/internal/catalog"
	"github.com/capabilitycompass/compass/internal/config"
	"github.com/capabilitycompass/compass/internal/driver"
	"github.com/capabilitycompass/compass/internal/intent"
	"github.com/capabilitycompass/compass/internal/llm"
	"github.com/capabilitycompass/compass/internal/subtree"
)

type Server struct {
	Config  *config.Config
	Driver  driver.Graph
	Catalog *catalog.Service
	Subtree *subtree.Service
	Intent  *intent.Service

	upgrader websocket.Upgrader
}

// New wires the services over an already connected driver.
func New(cfg *config.Config, d driver.Graph) *Server {
	intentSvc := intent.NewService(d)
	intentSvc.ExtraInstructions = cfg.Intent.Answer

	return &Server{
		Config:  cfg,
		Driver:  d,
		Catalog: catalog.NewService(d),
		Subtree: subtree.NewService(d),
		Intent:  intentSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// NewServer bootstraps everything from config and environment.
func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	d, err := driver.NewNeo4jDriver(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		log.Fatalf("Failed to connect to Neo4j: %v", err)
	}

	if err := d.BuildIndices(context.Background()); err != nil {
		log.Printf("Warning: failed to build indices: %v", err)
	}

	s := New(cfg, d)

	if cfg.LLM.Provider != "" {
		llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
		if err != nil {
			log.Printf("Warning: LLM disabled: %v", err)
		} else {
			s.Intent.LLM = llmClient
			s.Intent.Reranker = llm.NewSimpleLLMReranker(llmClient)
		}
	}

	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/subtree/:entityType/id/:entityId", s.GetSubtree)
		api.GET("/subtree/:entityType/name", s.GetSubtreeByName)
		api.GET("/subtree/:entityType/all", s.GetAllEntities)
		api.GET("/properties/node-properties/:label", s.GetNodeProperties)
		api.POST("/intent/query", s.IntentQuery)
		api.GET("/intent/catalog", s.IntentCatalog)
		api.POST("/intent/resolve", s.IntentResolve)
		api.GET("/viewer/ws", s.ViewerSocket)
	}

	return r
}

func (s *Server) subtreeParams(c *gin.Context) (int, subtree.Direction, bool) {
	depth := s.Config.Viewer.DefaultDepth
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "depth must be a non-negative integer"})
			return 0, "", false
		}
		depth = parsed
	}

	dir, err := subtree.ParseDirection(c.DefaultQuery("direction", s.Config.Viewer.DefaultDirection))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, "", false
	}

	return depth, dir, true
}

func (s *Server) GetSubtree(c *gin.Context) {
	entityType := c.Param("entityType")
	if _, err := catalog.LabelFor(entityType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := strconv.ParseInt(c.Param("entityId"), 10, 64); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity id must be an integer"})
		return
	}

	depth, dir, ok := s.subtreeParams(c)
	if !ok {
		return
	}

	resp, err := s.Subtree.Subtree(c.Request.Context(), entityType, c.Param("entityId"), depth, dir, nil)
	if err != nil {
		log.Printf("Failed to expand subtree: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to expand subtree"})
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity or subtree not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetSubtreeByName(c *gin.Context) {
	entityType := c.Param("entityType")
	if _, err := catalog.LabelFor(entityType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter is required"})
		return
	}

	depth, dir, ok := s.subtreeParams(c)
	if !ok {
		return
	}

	resp, err := s.Subtree.SubtreeByName(c.Request.Context(), entityType, name, depth, dir, nil)
	if err != nil {
		log.Printf("Failed to expand subtree: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to expand subtree"})
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity or subtree not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetAllEntities(c *gin.Context) {
	entityType := c.Param("entityType")
	if _, err := catalog.LabelFor(entityType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entities, err := s.Catalog.AllEntities(c.Request.Context(), entityType)
	if err != nil {
		log.Printf("Failed to list entities: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entities"})
		return
	}

	c.JSON(http.StatusOK, entities)
}

func (s *Server) GetNodeProperties(c *gin.Context) {
	label := c.Param("label")
	if !catalog.ValidLabel(label) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown node label"})
		return
	}

	props, err := s.Catalog.NodeProperties(c.Request.Context(), label, c.Query("uid"), c.Query("name"))
	switch {
	case errors.Is(err, catalog.ErrMissingSelector):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either 'uid' or 'name' query parameter must be provided"})
		return
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No instance found with given identifier"})
		return
	case err != nil:
		log.Printf("Failed to fetch node properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch node properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"node": label, "properties": props})
}

func (s *Server) IntentQuery(c *gin.Context) {
	var req intent.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resp, err := s.Intent.Query(c.Request.Context(), req)
	if err != nil {
		log.Printf("Failed to process intent query: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process query"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) IntentCatalog(c *gin.Context) {
	names, err := s.Intent.Catalog(c.Request.Context())
	if err != nil {
		log.Printf("Failed to fetch catalog: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch catalog"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(names), "entities": names})
}

type ResolveRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) IntentResolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	matches, err := s.Intent.Resolve(c.Request.Context(), req.Name, 5)
	if err != nil {
		log.Printf("Failed to resolve name: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve name"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"input": req.Name, "matches": matches})
}
