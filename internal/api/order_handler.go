package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"consignment-service/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type saleRequest struct {
	ItemID     int      `json:"item_id"`
	SalePrice  *float64 `json:"sale_price"`
	PayoutType string   `json:"payout_type"`
}

// Quote prices a sale without recording it --> /admin/pricing/quote
func (h *OrderHandler) Quote(c echo.Context) error {
	var req saleRequest
	if err := c.Bind(&req); err != nil || req.SalePrice == nil {
		return badRequest(c, "sale_price must be a number")
	}

	result, err := h.orderService.QuoteCommission(*req.SalePrice, req.PayoutType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// FinalizeSale records the sale of an item --> /admin/orders
func (h *OrderHandler) FinalizeSale(c echo.Context) error {
	var req saleRequest
	if err := c.Bind(&req); err != nil || req.SalePrice == nil {
		return badRequest(c, "sale_price must be a number")
	}

	order, err := h.orderService.FinalizeSale(c.Request().Context(), req.ItemID, *req.SalePrice, req.PayoutType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ListOrders lists the caller's orders --> /orders
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrders(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// ListConsignorOrders lists any consignor's orders --> /admin/orders/:consignor
func (h *OrderHandler) ListConsignorOrders(c echo.Context) error {
	consignorID, err := strconv.Atoi(c.Param("consignor"))
	if err != nil {
		return badRequest(c, "Invalid consignor ID")
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), consignorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// CancelSale cancels an unpaid order --> DELETE /admin/orders/:consignor/:id
func (h *OrderHandler) CancelSale(c echo.Context) error {
	consignorID, id, err := orderParams(c)
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	order, err := h.orderService.CancelSale(c.Request().Context(), consignorID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// MarkPayoutPaid settles a payout --> /admin/orders/:consignor/:id/payout
func (h *OrderHandler) MarkPayoutPaid(c echo.Context) error {
	consignorID, id, err := orderParams(c)
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	order, err := h.orderService.MarkPayoutPaid(c.Request().Context(), consignorID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Dashboard summarises the caller's sales --> /dashboard
func (h *OrderHandler) Dashboard(c echo.Context) error {
	d, err := h.orderService.Dashboard(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// ConsignorDashboard summarises any consignor's sales --> /admin/dashboard/:consignor
func (h *OrderHandler) ConsignorDashboard(c echo.Context) error {
	consignorID, err := strconv.Atoi(c.Param("consignor"))
	if err != nil {
		return badRequest(c, "Invalid consignor ID")
	}

	d, err := h.orderService.Dashboard(c.Request().Context(), consignorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func orderParams(c echo.Context) (consignorID, id int, err error) {
	if consignorID, err = strconv.Atoi(c.Param("consignor")); err != nil {
		return 0, 0, err
	}
	if id, err = strconv.Atoi(c.Param("id")); err != nil {
		return 0, 0, err
	}
	return consignorID, id, nil
}
