package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"consignment-service/internal/service"
)

// RegisterRoutes mounts every endpoint on e.
func RegisterRoutes(e *echo.Echo, items *service.ItemService, orders *service.OrderService, users *service.UserService, jwtSecret string) {
	itemHandler := NewItemHandler(items)
	orderHandler := NewOrderHandler(orders)
	userHandler := NewUserHandler(users)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "consignment-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.POST("/users", userHandler.Register)
	e.POST("/login", userHandler.Login)
	e.POST("/eligibility", itemHandler.CheckEligibility)

	jwtMW := JWT(jwtSecret)
	sessionMW := Session(users)
	e.GET("/users/validate", userHandler.ValidateSession, jwtMW, sessionMW)
	e.GET("/users/me", userHandler.Me, jwtMW, sessionMW)
	e.POST("/logout", userHandler.Logout, jwtMW, sessionMW)
	e.POST("/items", itemHandler.SubmitItem, jwtMW, sessionMW)
	e.GET("/items", itemHandler.ListItems, jwtMW, sessionMW)
	e.GET("/items/:id", itemHandler.GetItem, jwtMW, sessionMW)
	e.DELETE("/items/:id", itemHandler.WithdrawItem, jwtMW, sessionMW)
	e.GET("/orders", orderHandler.ListOrders, jwtMW, sessionMW)
	e.GET("/dashboard", orderHandler.Dashboard, jwtMW, sessionMW)

	admin := e.Group("/admin", jwtMW, sessionMW, AdminOnly)
	admin.PUT("/items/:id/review", itemHandler.ReviewItem)
	admin.POST("/pricing/quote", orderHandler.Quote)
	admin.POST("/orders", orderHandler.FinalizeSale)
	admin.GET("/orders/:consignor", orderHandler.ListConsignorOrders)
	admin.DELETE("/orders/:consignor/:id", orderHandler.CancelSale)
	admin.PUT("/orders/:consignor/:id/payout", orderHandler.MarkPayoutPaid)
	admin.GET("/dashboard/:consignor", orderHandler.ConsignorDashboard)
}
