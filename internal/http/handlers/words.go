package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"synonym_arena/internal/game"

	"github.com/gin-gonic/gin"
)

const (
	defaultBatchSize = 10
	maxBatchSize     = 50
)

// GetWords returns a random batch of words, skipping ids the client has
// already seen.
func (h *Handler) GetWords(c *gin.Context) {
	batchSize, exclude, ok := batchQuery(c)
	if !ok {
		return
	}

	words, err := h.Words.Sample(c.Request.Context(), batchSize, exclude)
	if err != nil {
		h.sampleFailed(c, "words", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"words": words,
		"count": len(words),
	})
}

// GetChainWords returns a random batch of chain prompts with their links.
func (h *Handler) GetChainWords(c *gin.Context) {
	batchSize, exclude, ok := batchQuery(c)
	if !ok {
		return
	}

	chains, err := h.Chains.Sample(c.Request.Context(), batchSize, exclude)
	if err != nil {
		h.sampleFailed(c, "chain words", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chain_words": chains,
		"count":       len(chains),
	})
}

// batchQuery reads batch_size and exclude_ids, answering 400 itself when
// either is invalid.
func batchQuery(c *gin.Context) (int, []int64, bool) {
	batchSize := defaultBatchSize
	if v := c.Query("batch_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "batch_size must be a number"})
			return 0, nil, false
		}
		batchSize = n
	}
	if batchSize < 1 || batchSize > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch_size must be between 1 and 50"})
		return 0, nil, false
	}

	exclude, err := parseExcludeIDs(c.Query("exclude_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exclude_ids format, use comma-separated numbers or a JSON array"})
		return 0, nil, false
	}
	return batchSize, exclude, true
}

func (h *Handler) sampleFailed(c *gin.Context, what string, err error) {
	if errors.Is(err, game.ErrNotEnoughWords) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.log.Error("sample failed", "content", what, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load " + what})
}

// parseExcludeIDs accepts "1,2,3" or "[1,2,3]". Non-numeric items in the
// comma form are skipped.
func parseExcludeIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var ids []int64
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, err
		}
		return ids, nil
	}

	var ids []int64
	for part := range strings.SplitSeq(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
