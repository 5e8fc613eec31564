package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/infrachat/internal/orchestrator"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type      string `json:"type"`       // "message" or "status"
	SessionID string `json:"session_id"` // empty for new sessions
	UserID    string `json:"user_id,omitempty"`
	Content   string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type      string                 `json:"type"` // "response", "status" or "error"
	SessionID string                 `json:"session_id"`
	Content   string                 `json:"content"`
	Reply     *orchestrator.Response `json:"reply,omitempty"`
	Status    *requirements.Status   `json:"status,omitempty"`
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.log.WithError(err).Warn("dashboard: websocket upgrade")
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.log.WithError(err).Warn("dashboard: websocket read")
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.sendError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "message":
			d.handleChatMessage(conn, r, req)
		case "status":
			d.handleStatusMessage(conn, r, req)
		default:
			d.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

// handleChatMessage answers one utterance. The session id is echoed back so
// a client that started without one can continue the conversation.
func (d *Dashboard) handleChatMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.Content == "" {
		d.sendError(conn, req.SessionID, "content is required")
		return
	}

	reply := d.orchestrator.ProcessQuery(r.Context(), req.Content, req.SessionID, req.UserID)
	d.sendResponse(conn, chatResponse{
		Type:      "response",
		SessionID: reply.SessionID,
		Content:   reply.ResponseText,
		Reply:     &reply,
	})
}

func (d *Dashboard) handleStatusMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.SessionID == "" {
		d.sendError(conn, "", "session_id is required")
		return
	}

	status, err := d.collector.Status(r.Context(), req.SessionID)
	if err != nil {
		d.sendError(conn, req.SessionID, "status failed: "+err.Error())
		return
	}

	d.sendResponse(conn, chatResponse{
		Type:      "status",
		SessionID: req.SessionID,
		Status:    status,
	})
}

func (d *Dashboard) sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		d.log.WithError(err).Warn("dashboard: websocket write")
	}
}

func (d *Dashboard) sendError(conn *websocket.Conn, sessionID, message string) {
	resp := chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		d.log.WithError(err).Warn("dashboard: websocket write error")
	}
}
