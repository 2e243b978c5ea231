package handler

import (
	"net/http"

	"github.com/vinayskanse/blocky/internal/service"
)

// BlocklistHandler serves the current active blocklist snapshot.
type BlocklistHandler struct {
	blocklist *service.BlocklistService
}

// NewBlocklistHandler creates a new BlocklistHandler.
func NewBlocklistHandler(blocklist *service.BlocklistService) *BlocklistHandler {
	return &BlocklistHandler{blocklist: blocklist}
}

// Get returns the domains currently subject to blocking and when the set
// last changed.
func (h *BlocklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.blocklist.Current(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}
