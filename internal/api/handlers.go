package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/internal/search"
	"github.com/rawblock/cryptomunge/internal/sequence"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// Handler binds the shared registry, run manager, and sequence cache to
// every HTTP route, a thin shell over the core search/pipeline packages
// patterned on APIHandler.
type Handler struct {
	reg  *registry.Registry
	runs *RunManager
	seqs *sequenceCache
}

// NewHandler returns a Handler wired to its dependencies.
func NewHandler(reg *registry.Registry, runs *RunManager) *Handler {
	return &Handler{reg: reg, runs: runs, seqs: newSequenceCache()}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "operational",
		"engine":     "cryptomunge transform-sequence workbench",
		"transforms": h.reg.Len(),
	})
}

// ── Search driver dispatch ──────────────────────────────────────────

type mungeRequest struct {
	Pool            []int  `json:"pool"` // candidate transform ids; empty means the full registry
	MinLength       int    `json:"minLength"`
	MaxLength       int    `json:"maxLength"`
	GlobalRounds    int    `json:"globalRounds"`
	StepRounds      int    `json:"stepRounds"`
	RemoveInverse   bool   `json:"removeInverse"`
	UseCutList      bool   `json:"useCutList"`
	DataType        string `json:"dataType"`
	CheckpointEverySec int `json:"checkpointEverySec"`
}

func (h *Handler) handleStartMunge(c *gin.Context) {
	var req mungeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.MinLength < 1 || req.MaxLength < req.MinLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minLength must be >= 1 and maxLength >= minLength"})
		return
	}

	pool := h.resolvePool(req.Pool)
	if len(pool) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty candidate pool"})
		return
	}

	opts := search.MungeOptions{
		Pool:            pool,
		MinLength:       req.MinLength,
		MaxLength:       req.MaxLength,
		GlobalRounds:    clampRounds(req.GlobalRounds),
		StepRounds:      clampRounds(req.StepRounds),
		RemoveInverse:   req.RemoveInverse,
		UseCutList:      req.UseCutList,
		DataType:        dataTypeFromString(req.DataType),
		CheckpointEvery: checkpointDuration(req.CheckpointEverySec),
	}

	id := h.runs.StartMunge(c.Request.Context(), opts)
	c.JSON(http.StatusAccepted, gin.H{"runId": id, "driver": "munge"})
}

type btrRequest struct {
	BaseIDs            []int `json:"baseIds"`
	CheckpointEverySec int   `json:"checkpointEverySec"`
}

func (h *Handler) handleStartBTR(c *gin.Context) {
	var req btrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	ids, err := h.idsFromInts(req.BaseIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "baseIds must not be empty"})
		return
	}

	opts := search.BTROptions{BaseIDs: ids, CheckpointEvery: checkpointDuration(req.CheckpointEverySec)}
	id := h.runs.StartBTR(c.Request.Context(), opts)
	c.JSON(http.StatusAccepted, gin.H{"runId": id, "driver": "btr"})
}

type bestFitRequest struct {
	BaseIDs            []int `json:"baseIds"`
	StepRounds         int   `json:"stepRounds"`
	GlobalRounds       int   `json:"globalRounds"`
	CheckpointEverySec int   `json:"checkpointEverySec"`
}

func (h *Handler) handleStartBestFit(c *gin.Context) {
	var req bestFitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	ids, err := h.idsFromInts(req.BaseIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "baseIds must not be empty"})
		return
	}

	opts := search.BestFitOptions{
		BaseIDs:         ids,
		StepRounds:      clampRounds(req.StepRounds),
		GlobalRounds:    clampRounds(req.GlobalRounds),
		CheckpointEvery: checkpointDuration(req.CheckpointEverySec),
	}
	id := h.runs.StartBestFit(c.Request.Context(), opts)
	c.JSON(http.StatusAccepted, gin.H{"runId": id, "driver": "bestfit"})
}

func (h *Handler) handleGetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	status, ok := h.runs.Status(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) handleCancelRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	if !h.runs.Cancel(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelling"})
}

// ── Contenders ───────────────────────────────────────────────────────

type contenderView struct {
	Sequence       string                  `json:"sequence"`
	AggregateScore float64                 `json:"aggregateScore"`
	Metrics        []models.AnalysisResult `json:"metrics"`
	PassCount      int                     `json:"passCount"`
	PassTotal      int                     `json:"passTotal"`
}

func (h *Handler) handleGetContenders(c *gin.Context) {
	runParam := c.Query("run")
	id, err := uuid.Parse(runParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid run query parameter"})
		return
	}
	n, _ := strconv.Atoi(c.DefaultQuery("n", "10"))
	if n <= 0 {
		n = 10
	}

	top, ok := h.runs.TopContenders(id, n)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	views := make([]contenderView, 0, len(top))
	for _, ct := range top {
		text, err := sequence.Serialize(h.reg, ct.Sequence, sequence.Default)
		if err != nil {
			text = ""
		}
		passed, total := passCount(ct.Metrics)
		views = append(views, contenderView{
			Sequence:       text,
			AggregateScore: ct.AggregateScore,
			Metrics:        ct.Metrics,
			PassCount:      passed,
			PassTotal:      total,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func passCount(results []models.AnalysisResult) (int, int) {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return passed, len(results)
}

// ── Sequence persistence ────────────────────────────────────────────

type parseSequenceRequest struct {
	Text                string `json:"text"`
	CurrentGlobalRounds int    `json:"currentGlobalRounds"`
}

func (h *Handler) handleParseSequence(c *gin.Context) {
	var req parseSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	gr := req.CurrentGlobalRounds
	if gr <= 0 {
		gr = 1
	}
	seq, err := sequence.Parse(h.reg, req.Text, gr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := h.seqs.put(seq)
	c.JSON(http.StatusOK, gin.H{"id": id, "sequence": seq})
}

func (h *Handler) handleSerializeSequence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sequence id"})
		return
	}
	seq, ok := h.seqs.get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "sequence not found"})
		return
	}
	opt := sequence.Options{
		ID:                  c.DefaultQuery("id", "true") == "true",
		TR:                  c.DefaultQuery("tr", "true") == "true",
		RightSideAttributes: c.DefaultQuery("rightSideAttributes", "true") == "true",
	}
	text, err := sequence.Serialize(h.reg, seq, opt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// ── helpers ──────────────────────────────────────────────────────────

func (h *Handler) resolvePool(raw []int) []byte {
	if len(raw) == 0 {
		out := make([]byte, 0, h.reg.Len())
		for _, t := range h.reg.Iterate() {
			out = append(out, t.ID)
		}
		return out
	}
	ids, err := h.idsFromInts(raw)
	if err != nil {
		return nil
	}
	return ids
}

func (h *Handler) idsFromInts(raw []int) ([]byte, error) {
	out := make([]byte, 0, len(raw))
	for _, v := range raw {
		if v < 1 || v > 255 {
			return nil, models.ErrArgumentOutOfRange
		}
		id := byte(v)
		if _, err := h.reg.Get(id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func clampRounds(n int) int {
	if n < 1 {
		return 1
	}
	if n > 9 {
		return 9
	}
	return n
}

// checkpointDuration converts a caller-supplied interval in seconds to a
// time.Duration, defaulting to a 30-second periodic checkpoint when the
// caller doesn't specify one.
func checkpointDuration(sec int) time.Duration {
	if sec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(sec) * time.Second
}
