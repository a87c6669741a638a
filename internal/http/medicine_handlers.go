package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ProjectSGH/pashumitra/internal/auth"
	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

type medicineReq struct {
	Name              string  `json:"name" binding:"required"`
	Category          string  `json:"category"`
	Quantity          int64   `json:"quantity"`
	UnitPrice         float64 `json:"unit_price"`
	IsCommunity       bool    `json:"is_community"`
	DistributionLimit int64   `json:"distribution_limit"`
}

// @Summary Create catalog entry
// @Tags medicines
// @Accept json
// @Produce json
// @Param input body medicineReq true "Medicine"
// @Success 201 {object} domain.Medicine
// @Failure 400 {object} map[string]string
// @Router /medicines [post]
func (s *Server) createMedicine(c *gin.Context) {
	claims, _ := auth.Identity(c)
	var req medicineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := s.deps.Medicines.Create(c, domain.Medicine{
		StoreID:           claims.UserID,
		Name:              req.Name,
		Category:          req.Category,
		Quantity:          req.Quantity,
		UnitPrice:         req.UnitPrice,
		IsCommunity:       req.IsCommunity,
		DistributionLimit: req.DistributionLimit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// @Summary Get catalog entry by id
// @Tags medicines
// @Produce json
// @Param id path int true "Medicine ID"
// @Success 200 {object} domain.Medicine
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /medicines/{id} [get]
func (s *Server) getMedicine(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	m, err := s.deps.Medicines.GetByID(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary Update catalog entry
// @Tags medicines
// @Accept json
// @Produce json
// @Param id path int true "Medicine ID"
// @Param input body medicineReq true "Update"
// @Success 200 {object} domain.Medicine
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /medicines/{id} [put]
func (s *Server) updateMedicine(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req medicineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := s.deps.Medicines.Update(c, claims.UserID, domain.Medicine{
		ID:                id,
		Name:              req.Name,
		Category:          req.Category,
		Quantity:          req.Quantity,
		UnitPrice:         req.UnitPrice,
		IsCommunity:       req.IsCommunity,
		DistributionLimit: req.DistributionLimit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary Delete catalog entry
// @Tags medicines
// @Param id path int true "Medicine ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /medicines/{id} [delete]
func (s *Server) deleteMedicine(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.deps.Medicines.Delete(c, claims.UserID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List catalog
// @Tags medicines
// @Produce json
// @Param q query string false "Name contains"
// @Param category query string false "Category contains"
// @Param store_id query int false "Owning store"
// @Param community query bool false "Community entries only"
// @Param min_price query number false "Min price"
// @Param max_price query number false "Max price"
// @Success 200 {array} domain.Medicine
// @Router /medicines [get]
func (s *Server) listMedicines(c *gin.Context) {
	var f repository.MedicineFilter
	f.NameSubstring = c.Query("q")
	f.Category = c.Query("category")
	if v := c.Query("store_id"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.StoreID = &x
		}
	}
	if v := c.Query("community"); v != "" {
		if x, err := strconv.ParseBool(v); err == nil {
			f.Community = &x
		}
	}
	if v := c.Query("min_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.deps.Medicines.List(c, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}
