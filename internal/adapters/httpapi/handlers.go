package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
)

func (s *Server) ingestHardware(c *gin.Context) {
	var reading domain.HardwareReading
	if err := c.ShouldBindJSON(&reading); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	node, err := s.engine.IngestHardware(reading)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "node": node})
}

// ingestPrediction accepts either a single prediction object or an array.
// The generator posts full blocks; older callers post one node at a time.
func (s *Server) ingestPrediction(c *gin.Context) {
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var block []domain.Prediction
	if err := json.Unmarshal(raw, &block); err != nil {
		var single domain.Prediction
		if err := json.Unmarshal(raw, &single); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expected a prediction object or array"})
			return
		}
		block = []domain.Prediction{single}
	}

	directives, err := s.engine.IngestPrediction(block)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "alerts": len(directives)})
}

func (s *Server) hardwareOutput(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Nodes())
}

func (s *Server) predictions(c *gin.Context) {
	max := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		max = n
	}
	history := s.engine.Predictions(max)
	if history == nil {
		history = [][]domain.Prediction{}
	}
	c.JSON(http.StatusOK, history)
}

// liveLatest returns the most recent prediction per node, flattened from
// the block history.
func (s *Server) liveLatest(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.LatestPredictions())
}

type deployRequest struct {
	What   *string `json:"what"`
	Action *string `json:"action"`
}

func (s *Server) deploy(c *gin.Context) {
	var req deployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.What == nil || req.Action == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "what and action are required"})
		return
	}

	deploy, nodes, err := s.engine.Deploy(*req.What, *req.Action)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "deploy": deploy, "nodes": nodes})
}

type stageRequest struct {
	Nodes []string `json:"nodes"`
	Stage *int     `json:"stage"`
}

func (r *stageRequest) validate() error {
	if r.Stage == nil {
		return fmt.Errorf("stage is required")
	}
	if len(r.Nodes) == 0 {
		return fmt.Errorf("nodes is required")
	}
	return nil
}

func (s *Server) setManualStage(c *gin.Context) {
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nodes, err := s.engine.ManualStage(req.Nodes, *req.Stage)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "nodes": nodes})
}

func (s *Server) manualStage(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ManualOverrides())
}

func (s *Server) setStageState(c *gin.Context) {
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nodes, err := s.engine.ApplyStageState(req.Nodes, *req.Stage)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "nodes": nodes})
}

func (s *Server) stageState(c *gin.Context) {
	stages := make(map[string]int)
	for id, n := range s.engine.Nodes() {
		stages[id] = n.Stage
	}
	c.JSON(http.StatusOK, gin.H{
		"deploy": s.engine.DeployState(),
		"stages": stages,
		"manual": s.engine.ManualOverrides(),
	})
}

type smsRequest struct {
	Message *string `json:"message"`
}

func (s *Server) smsAlert(c *gin.Context) {
	var req smsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Message == nil || *req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	sent := s.engine.DirectAlert(c.Request.Context(), *req.Message)
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

func (s *Server) debug(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Debug())
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "running",
		"real_node":   s.engine.RealNodeID(),
		"subscribers": s.hub.Len(),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "subscribers": s.hub.Len()})
}
