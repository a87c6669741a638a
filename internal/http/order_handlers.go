package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProjectSGH/pashumitra/internal/auth"
	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
	"github.com/ProjectSGH/pashumitra/internal/service"
)

type createOrderReq struct {
	Kind       domain.OrderKind `json:"kind" binding:"required"`
	MedicineID int64            `json:"medicine_id" binding:"required"`
	Quantity   int64            `json:"quantity" binding:"required"`
}

// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	claims, _ := auth.Identity(c)
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.deps.Orders.Create(c, service.CreateOrderInput{
		Kind:       req.Kind,
		MedicineID: req.MedicineID,
		FarmerID:   claims.UserID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.deps.Orders.GetOrder(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary List caller's orders
// @Tags orders
// @Produce json
// @Param status query string false "Filter by status"
// @Param kind query string false "Filter by kind"
// @Param incoming query bool false "Stores: transfers pending acceptance"
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	claims, _ := auth.Identity(c)
	var f repository.OrderFilter
	if v := c.Query("status"); v != "" {
		st := domain.OrderStatus(v)
		f.Status = &st
	}
	if v := c.Query("kind"); v != "" {
		k := domain.OrderKind(v)
		f.Kind = &k
	}
	// scope the listing to the caller
	switch claims.Role {
	case domain.RoleStore:
		if c.Query("incoming") == "true" {
			f.TransferredToStoreID = &claims.UserID
		} else {
			f.StoreID = &claims.UserID
		}
	default:
		f.FarmerID = &claims.UserID
	}
	list, err := s.deps.Orders.List(c, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

type orderNotesReq struct {
	Notes string `json:"notes"`
}

// @Summary Approve order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body orderNotesReq false "Store notes"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/approve [post]
func (s *Server) approveOrder(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req orderNotesReq
	_ = c.ShouldBindJSON(&req)
	o, err := s.deps.Orders.Approve(c, id, claims.UserID, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Reject order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body orderNotesReq false "Store notes"
// @Success 200 {object} domain.Order
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/reject [post]
func (s *Server) rejectOrder(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req orderNotesReq
	_ = c.ShouldBindJSON(&req)
	o, err := s.deps.Orders.Reject(c, id, claims.UserID, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Complete order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/complete [post]
func (s *Server) completeOrder(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.deps.Orders.Complete(c, id, claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Cancel order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/cancel [post]
func (s *Server) cancelOrder(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.deps.Orders.Cancel(c, id, claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type transferReq struct {
	TargetStoreID int64  `json:"target_store_id" binding:"required"`
	Reason        string `json:"reason"`
}

// @Summary Transfer order to another store
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body transferReq true "Transfer"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/transfer [post]
func (s *Server) transferOrder(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req transferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.deps.Orders.Transfer(c, id, claims.UserID, req.TargetStoreID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Accept transferred order
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body orderNotesReq false "Store notes"
// @Success 200 {object} domain.Order
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/accept-transfer [post]
func (s *Server) acceptTransfer(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req orderNotesReq
	_ = c.ShouldBindJSON(&req)
	o, err := s.deps.Orders.AcceptTransfer(c, id, claims.UserID, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Reject transferred order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/reject-transfer [post]
func (s *Server) rejectTransfer(c *gin.Context) {
	claims, _ := auth.Identity(c)
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.deps.Orders.RejectTransfer(c, id, claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
