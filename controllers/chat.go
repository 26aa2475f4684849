package controllers

import (
	"io"
	"net/http"

	"chatbot/pkg/services"

	"github.com/gin-gonic/gin"
)

// CreateChat answers with JSON, or with an SSE stream when isStreaming is set.
func CreateChat(chats *services.ChatManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var body services.ChatRequest
		if !bindJSON(c, &body) {
			return
		}
		if body.IsStreaming {
			streamChat(c, chats, body)
			return
		}
		chat, err := chats.Create(c.Request.Context(), p, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, services.NewChatView(*chat))
	}
}

// CreateChatStream only accepts streaming requests.
func CreateChatStream(chats *services.ChatManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := principal(c); !ok {
			return
		}
		var body services.ChatRequest
		if !bindJSON(c, &body) {
			return
		}
		if !body.IsStreaming {
			respondError(c, services.FieldError("isStreaming", "must be true for this endpoint"))
			return
		}
		streamChat(c, chats, body)
	}
}

func streamChat(c *gin.Context, chats *services.ChatManager, body services.ChatRequest) {
	p, _ := principal(c)
	events, err := chats.Stream(c.Request.Context(), p, body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(ev.Name, ev.Data)
		return true
	})
}

func ListThreads(threads *services.ThreadManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		req, ok := pageRequest(c, 10, "desc")
		if !ok {
			return
		}
		page, err := threads.ListThreads(c.Request.Context(), p, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func ThreadChats(threads *services.ThreadManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "threadId")
		if !ok {
			return
		}
		req, ok := pageRequest(c, 20, "asc")
		if !ok {
			return
		}
		page, err := threads.ThreadChats(c.Request.Context(), p, id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func DeleteThread(threads *services.ThreadManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "threadId")
		if !ok {
			return
		}
		if err := threads.DeleteThread(c.Request.Context(), p, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "Thread deleted successfully"})
	}
}
