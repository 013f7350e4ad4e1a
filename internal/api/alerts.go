package api

import (
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rawblock/cryptomunge/internal/search"
)

// BroadcastSequenceAlert sends a JSON contender-found event over the
// websocket hub: build a tagged payload, marshal, hub.Broadcast, log a
// one-line summary.
func BroadcastSequenceAlert(wsHub *Hub, runID uuid.UUID, driver string, alert search.SequenceAlert) {
	payload := gin.H{
		"type":   "contender_found",
		"runId":  runID,
		"driver": driver,
		"alert":  alert,
	}
	alertBytes, err := json.Marshal(payload)
	if err != nil {
		return
	}
	wsHub.Broadcast(alertBytes)
	log.Printf("[ALERT] run %s (%s): new contender, score=%.4f, transforms=%v",
		runID, driver, alert.Score, alert.TransformIDs)
}

// BroadcastLevelComplete sends a level-complete event, the Munge-specific
// counterpart of BroadcastSequenceAlert, fired once CutList.UpdateTop10
// runs for a level.
func BroadcastLevelComplete(wsHub *Hub, runID uuid.UUID, level int) {
	if wsHub == nil {
		return
	}
	payload := gin.H{
		"type":  "level_complete",
		"runId": runID,
		"level": level,
	}
	alertBytes, err := json.Marshal(payload)
	if err != nil {
		return
	}
	wsHub.Broadcast(alertBytes)
}
