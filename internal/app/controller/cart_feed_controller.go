package controller

import (
	"net/http"

	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/farmavida/farmavida-backend/internal/middleware"
	ws "github.com/farmavida/farmavida-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CartFeedController upgrades a tab onto the websocket cart feed. Every tab
// of a session that connects here re-renders whenever the cart changes in
// any of them.
type CartFeedController struct {
	hub      *ws.Hub
	carts    *cartstore.Manager
	upgrader websocket.Upgrader
}

func NewCartFeedController(hub *ws.Hub, carts *cartstore.Manager) *CartFeedController {
	return &CartFeedController{
		hub:   hub,
		carts: carts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin checks are handled by the CORS layer; the feed
			// only ever pushes the session's own cart.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect subscribes the calling tab to cart updates
// GET /api/v1/cart/feed
func (ctrl *CartFeedController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, exists := middleware.GetSessionID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No browsing session"})
		return
	}

	// Materialize the store so its updates start flowing to the hub.
	ctrl.carts.GetOrCreate(c.Request.Context(), sessionID)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"session": sessionID,
		})
		return
	}

	client := ws.NewClient(ctrl.hub, conn, sessionID)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
