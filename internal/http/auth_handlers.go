package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProjectSGH/pashumitra/internal/domain"
)

type registerReq struct {
	Role      domain.Role `json:"role" binding:"required"`
	Name      string      `json:"name" binding:"required"`
	Contact   string      `json:"contact"`
	Location  string      `json:"location"`
	StoreName string      `json:"store_name"`
}

type tokenResp struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// @Summary Register account
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerReq true "Account"
// @Success 201 {object} tokenResp
// @Failure 400 {object} map[string]string
// @Router /auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := s.deps.Users.Register(c, domain.User{
		Role:      req.Role,
		Name:      req.Name,
		Contact:   req.Contact,
		Location:  req.Location,
		StoreName: req.StoreName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	token, err := s.deps.Auth.Issue(u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tokenResp{User: u, Token: token})
}

type tokenReq struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// @Summary Issue token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body tokenReq true "Account reference"
// @Success 200 {object} tokenResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /auth/token [post]
func (s *Server) token(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := s.deps.Users.GetByID(c, req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := s.deps.Auth.Issue(u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResp{User: u, Token: token})
}
