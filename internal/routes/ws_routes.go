package routes

import (
	"campusreq_backend/ws"

	"github.com/gin-gonic/gin"
)

// SetupRealtimeRoutes mounts the broadcast channel on an authenticated group.
func SetupRealtimeRoutes(r *gin.RouterGroup, wsHandler *ws.WebSocketHandler) {
	r.GET("/ws", wsHandler.ServeWS)
	r.GET("/events", wsHandler.ServeSSE)
}
