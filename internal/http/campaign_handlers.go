package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProjectSGH/pashumitra/internal/auth"
	"github.com/ProjectSGH/pashumitra/internal/domain"
)

type campaignReq struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Capacity    int64     `json:"capacity" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// @Summary Create campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param input body campaignReq true "Campaign"
// @Success 201 {object} domain.Campaign
// @Failure 400 {object} map[string]string
// @Router /campaigns [post]
func (s *Server) createCampaign(c *gin.Context) {
	claims, _ := auth.Identity(c)
	var req campaignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	campaign, err := s.deps.Campaigns.Create(c, domain.Campaign{
		StoreID:     claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Capacity:    req.Capacity,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

// @Summary List campaigns
// @Tags campaigns
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} domain.Campaign
// @Router /campaigns [get]
func (s *Server) listCampaigns(c *gin.Context) {
	var status *domain.CampaignStatus
	if v := c.Query("status"); v != "" {
		st := domain.CampaignStatus(v)
		status = &st
	}
	list, err := s.deps.Campaigns.List(c, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get campaign by id
// @Tags campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} domain.Campaign
// @Failure 404 {object} map[string]string
// @Router /campaigns/{id} [get]
func (s *Server) getCampaign(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	campaign, err := s.deps.Campaigns.GetByID(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// @Summary Register for campaign
// @Tags campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} domain.Campaign
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /campaigns/{id}/register [post]
func (s *Server) registerCampaign(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	campaign, err := s.deps.Campaigns.Register(c, id, claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}
