package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"chatbot/middleware"
	"chatbot/pkg/logger"
	"chatbot/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

const wsReadTimeout = 60 * time.Second

type wsStartPayload struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	Model    string `json:"model"`
}

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ChatWS streams one chat per connection; run it after QueryTokenAuth.
// Client protocol (JSON messages):
//
//	-> {type: "start", question: string, model?: string}
//	<- {type: "chat-start", data: {chatId, threadId, question}}
//	<- {type: "chunk", data: {content}}
//	<- {type: "complete", data: {chatId, fullAnswer}}
//	<- {type: "error", data: {error}}
//	-> {type: "stop"} cancels generation
func ChatWS(chats *services.ChatManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.L().Warn("ws upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()
		log := logger.L().With(zap.Uint("user_id", p.ID))

		conn.SetReadLimit(1 << 20)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		})

		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			log.Debug("ws read failed", zap.Error(err))
			return
		}
		var start wsStartPayload
		if err := json.Unmarshal(msgBytes, &start); err != nil || strings.ToLower(start.Type) != "start" {
			_ = conn.WriteJSON(wsMessage{Type: services.EventError, Data: services.ErrorData{Error: "invalid start payload"}})
			return
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		release, err := middleware.AcquireUserSlot(ctx, p.ID)
		if err != nil {
			return
		}
		defer release()

		events, err := chats.Stream(ctx, p, services.ChatRequest{Question: start.Question, IsStreaming: true, Model: start.Model})
		if err != nil {
			_ = conn.WriteJSON(wsMessage{Type: services.EventError, Data: services.ErrorData{Error: errorMessage(err)}})
			return
		}

		// reader goroutine: a stop message or a dropped connection cancels generation
		go func() {
			for {
				_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
				mt, msg, err := conn.ReadMessage()
				if err != nil {
					cancel()
					return
				}
				if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
					continue
				}
				var obj struct {
					Type string `json:"type"`
				}
				_ = json.Unmarshal(msg, &obj)
				if strings.ToLower(strings.TrimSpace(obj.Type)) == "stop" {
					log.Info("ws stream stopped by client")
					cancel()
					return
				}
			}
		}()

		for ev := range events {
			if err := conn.WriteJSON(wsMessage{Type: ev.Name, Data: ev.Data}); err != nil {
				cancel()
			}
		}
		if ctx.Err() != nil {
			_ = conn.WriteJSON(wsMessage{Type: "stopped"})
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

// errorMessage is the client-facing text of a service error.
func errorMessage(err error) string {
	if se, ok := err.(*services.Error); ok && se.Kind != services.KindInternal {
		return se.Msg
	}
	return "internal server error"
}
