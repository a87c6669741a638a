package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ProjectSGH/pashumitra/internal/auth"
	"github.com/ProjectSGH/pashumitra/internal/chat"
	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
	"github.com/ProjectSGH/pashumitra/internal/service"
)

// Deps is everything the server needs wired in.
type Deps struct {
	Users            *service.UserService
	Medicines        *service.MedicineService
	Orders           *service.OrderService
	Notifications    *service.NotificationService
	Campaigns        *service.CampaignService
	Hub              *chat.Hub
	Auth             *auth.Manager
	ChatHistoryLimit int
}

type Server struct {
	engine *gin.Engine
	deps   Deps
}

func NewServer(deps Deps) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, deps: deps}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		authRoutes.POST("/register", s.register)
		authRoutes.POST("/token", s.token)

		medicines := v1.Group("/medicines")
		medicines.GET("", s.listMedicines)
		medicines.GET(":id", s.getMedicine)
		storeMedicines := medicines.Group("", s.deps.Auth.Middleware(), auth.RequireRole(domain.RoleStore))
		storeMedicines.POST("", s.createMedicine)
		storeMedicines.PUT(":id", s.updateMedicine)
		storeMedicines.DELETE(":id", s.deleteMedicine)

		orders := v1.Group("/orders", s.deps.Auth.Middleware())
		orders.GET("", s.listOrders)
		orders.GET(":id", s.getOrder)
		farmerOrders := orders.Group("", auth.RequireRole(domain.RoleFarmer))
		farmerOrders.POST("", s.createOrder)
		farmerOrders.POST(":id/cancel", s.cancelOrder)
		storeOrders := orders.Group("", auth.RequireRole(domain.RoleStore))
		storeOrders.POST(":id/approve", s.approveOrder)
		storeOrders.POST(":id/reject", s.rejectOrder)
		storeOrders.POST(":id/complete", s.completeOrder)
		storeOrders.POST(":id/transfer", s.transferOrder)
		storeOrders.POST(":id/accept-transfer", s.acceptTransfer)
		storeOrders.POST(":id/reject-transfer", s.rejectTransfer)

		notifications := v1.Group("/notifications", s.deps.Auth.Middleware())
		notifications.GET("", s.listNotifications)
		notifications.POST(":id/read", s.markNotificationRead)
		notifications.POST("read-all", s.markAllNotificationsRead)
		notifications.DELETE(":id", s.deleteNotification)

		campaigns := v1.Group("/campaigns")
		campaigns.GET("", s.listCampaigns)
		campaigns.GET(":id", s.getCampaign)
		campaigns.POST("", s.deps.Auth.Middleware(), auth.RequireRole(domain.RoleStore), s.createCampaign)
		campaigns.POST(":id/register", s.deps.Auth.Middleware(), auth.RequireRole(domain.RoleFarmer), s.registerCampaign)

		chatRoutes := v1.Group("/chat")
		chatRoutes.GET("/ws", s.chatSocket)
		chatRoutes.GET("/history", s.deps.Auth.Middleware(), s.chatHistory)
	}
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch err {
	case service.ErrInvalidInput,
		service.ErrOutOfStock,
		service.ErrInsufficientStock,
		service.ErrDistributionLimit,
		service.ErrDuplicatePending,
		service.ErrKindMismatch,
		service.ErrTransferToSelf,
		service.ErrCapacityFull,
		service.ErrAlreadyRegistered,
		service.ErrCampaignInactive:
		return http.StatusBadRequest
	case repository.ErrNotFound:
		return http.StatusNotFound
	case service.ErrForbidden, service.ErrNotTransferTarget:
		return http.StatusForbidden
	case service.ErrInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
}
