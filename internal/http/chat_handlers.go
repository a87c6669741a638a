package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ProjectSGH/pashumitra/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// same-origin policy is the frontend's concern; the socket itself is
	// authenticated by token
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatToken pulls the bearer token from the header or, for browser websocket
// clients that cannot set headers, from the query string.
func (s *Server) chatClaims(c *gin.Context) (*auth.Claims, bool) {
	raw := c.Query("token")
	if raw == "" {
		raw, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if raw == "" {
		return nil, false
	}
	claims, err := s.deps.Auth.Parse(raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// @Summary Open chat socket with a peer
// @Tags chat
// @Param peer query int true "Peer user ID"
// @Param token query string false "Bearer token (alternative to header)"
// @Success 101
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /chat/ws [get]
func (s *Server) chatSocket(c *gin.Context) {
	claims, ok := s.chatClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	peer, err := parseID(c.Query("peer"))
	if err != nil || peer <= 0 || peer == claims.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer"})
		return
	}
	// the room must be keyed to a real account
	if _, err := s.deps.Users.GetByID(c, peer); err != nil {
		fail(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.deps.Hub.Serve(c.Request.Context(), conn, claims.UserID, peer)
}

// @Summary Chat history with a peer
// @Tags chat
// @Produce json
// @Param peer query int true "Peer user ID"
// @Success 200 {array} domain.ChatMessage
// @Failure 400 {object} map[string]string
// @Router /chat/history [get]
func (s *Server) chatHistory(c *gin.Context) {
	claims, _ := auth.Identity(c)
	peer, err := parseID(c.Query("peer"))
	if err != nil || peer <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer"})
		return
	}
	msgs, err := s.deps.Hub.History(c, claims.UserID, peer, s.deps.ChatHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgs)
}
