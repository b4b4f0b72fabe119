package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/streamhub/pipeliner/pkg/logging"
	"github.com/streamhub/pipeliner/pkg/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The editor connects cross-origin in development
		return true
	},
}

// validateRequest is one message on the live-validation channel. The editor
// sends the working definition on every change.
type validateRequest struct {
	PipelineID string `json:"pipeline_id,omitempty"`
	Content    string `json:"content"`
}

// validateResponse carries the validation outcome back, or an error when the
// document itself could not be processed.
type validateResponse struct {
	Valid  bool     `json:"is_valid"`
	Errors []string `json:"errors"`
	Error  string   `json:"error,omitempty"`
}

// handleValidateSocket upgrades the connection and answers each received
// pipeline definition with its validation result.
func (s *Server) handleValidateSocket(w http.ResponseWriter, r *http.Request) {
	accountID, _ := middleware.GetAccountID(r)
	org := orgID(r)

	sessionLog := s.logger.WithFields(logging.F("account", accountID), logging.F("org", org))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sessionLog.Error("WebSocket upgrade failed", logging.F("error", err))
		return
	}
	defer conn.Close()

	sessionLog.Info("Live validation session started")
	defer sessionLog.Info("Live validation session closed")

	for {
		var req validateRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sessionLog.Warn("Live validation read error", logging.F("error", err))
			}
			return
		}

		resp := validateResponse{Errors: []string{}}
		result, err := s.pipelineRegistry.Validate(org, req.PipelineID, req.Content)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Valid = result.Valid
			resp.Errors = result.Errors
		}

		if err := conn.WriteJSON(resp); err != nil {
			sessionLog.Warn("Live validation write error", logging.F("error", err))
			return
		}
	}
}
