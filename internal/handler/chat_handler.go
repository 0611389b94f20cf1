package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"docqa-go/internal/model"
	"docqa-go/internal/service"
	"docqa-go/pkg/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatHandler answers queries over a websocket.
type ChatHandler struct {
	queryService service.QueryService
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(queryService service.QueryService) *ChatHandler {
	return &ChatHandler{queryService: queryService}
}

type answerMessage struct {
	Type string `json:"type"`
	*model.RAGResponse
}

type completionMessage struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// Handle treats every text frame as a query. Each answer, or error, is
// followed by a completion frame.
func (h *ChatHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Chat: websocket upgrade failed", err)
		return
	}
	defer conn.Close()

	log.Infof("Chat: connection from %s", c.ClientIP())
	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("Chat: read failed: %v", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp, err := h.queryService.Answer(c.Request.Context(), string(message))
		if err != nil {
			if statusFor(err) >= http.StatusInternalServerError {
				log.Errorf("Chat: answer failed: %v", err)
			}
			_ = conn.WriteJSON(gin.H{"error": err.Error()})
		} else if err := conn.WriteJSON(answerMessage{Type: "answer", RAGResponse: resp}); err != nil {
			log.Warnf("Chat: write failed: %v", err)
			return
		}

		done := completionMessage{Type: "completion", Status: "finished", Timestamp: time.Now().UnixMilli()}
		if err := conn.WriteJSON(done); err != nil {
			log.Warnf("Chat: write failed: %v", err)
			return
		}
	}
}
