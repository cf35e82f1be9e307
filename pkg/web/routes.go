package web

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/THEREALVANHEL/coalbot/internal/analytics"
	"github.com/THEREALVANHEL/coalbot/internal/backup"
	"github.com/THEREALVANHEL/coalbot/pkg/database"
	"github.com/THEREALVANHEL/coalbot/pkg/discord"
	"github.com/THEREALVANHEL/coalbot/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SetupRoutes registers the API routes on the server
func SetupRoutes(s *Server, stats *analytics.Collector, backups *backup.Manager) {
	api := s.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.GET("/status", func(c *gin.Context) {
		dbStatus, dbConnected := "unavailable", false
		if db := database.Get(); db != nil {
			dbStatus, dbConnected = db.GetStatus()
		}

		botReady := false
		if client := discord.Get(); client != nil {
			botReady = client.IsReady()
		}

		c.JSON(http.StatusOK, gin.H{
			"bot_ready":    botReady,
			"database":     dbStatus,
			"db_connected": dbConnected,
		})
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.Summarize())
	})

	api.GET("/backups", func(c *gin.Context) {
		metas, err := backups.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list backups"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"count":   len(metas),
			"backups": metas,
		})
	})

	s.GET("/ws/logs", handleLogStream)
}

// handleLogStream streams log lines to a websocket client. Each
// connection gets its own buffered feed; slow consumers drop lines
// rather than blocking the logger.
func handleLogStream(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Debug(fmt.Sprintf("Websocket upgrade failed: %v", err), "WebServer")
		return
	}

	feed := make(chan string, 64)
	var closed sync.Once
	done := make(chan struct{})

	logger.Get().AddListener(func(level logger.LogLevel, message, prefix string) {
		line := fmt.Sprintf("[%s] [%s] %s", level.String(), prefix, message)
		select {
		case feed <- line:
		default:
		}
	})

	// Reader goroutine detects client disconnect.
	go func() {
		defer closed.Do(func() { close(done) })
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		for {
			select {
			case <-done:
				return
			case line := <-feed:
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
					closed.Do(func() { close(done) })
					return
				}
			}
		}
	}()
}
