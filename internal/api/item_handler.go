package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"consignment-service/internal/entity"
	"consignment-service/internal/service"
)

type ItemHandler struct {
	itemService *service.ItemService
}

// NewItemHandler creates a new instance of ItemHandler
func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CheckEligibility runs the intake floor check --> /eligibility
func (h *ItemHandler) CheckEligibility(c echo.Context) error {
	var req struct {
		EstimatedValue *float64 `json:"estimated_value"`
	}
	if err := c.Bind(&req); err != nil || req.EstimatedValue == nil {
		return badRequest(c, "estimated_value must be a number")
	}

	result, err := h.itemService.CheckEligibility(*req.EstimatedValue)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// SubmitItem submits an item for consignment --> /items
func (h *ItemHandler) SubmitItem(c echo.Context) error {
	sub := service.Submission{}
	if err := c.Bind(&sub); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	sub.IdempotentKey = c.Request().Header.Get("Idempotent-Key")

	item, err := h.itemService.SubmitItem(c.Request().Context(), currentUserID(c), sub)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// ListItems lists the caller's items; admins may list anyone's --> /items
func (h *ItemHandler) ListItems(c echo.Context) error {
	filter := entity.ItemFilter{
		ConsignorID: currentUserID(c),
		Status:      c.QueryParam("status"),
	}
	if isAdmin(c) {
		filter.ConsignorID = 0
		if v := c.QueryParam("consignor_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				return badRequest(c, "Invalid consignor_id")
			}
			filter.ConsignorID = id
		}
	}

	items, err := h.itemService.ListItems(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetItem gets an item --> /items/:id
func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	item, err := h.itemService.GetItem(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !isAdmin(c) && item.ConsignorID != currentUserID(c) {
		return respondError(c, service.ErrForbidden)
	}
	return c.JSON(http.StatusOK, item)
}

// WithdrawItem withdraws an unsold item --> DELETE /items/:id
func (h *ItemHandler) WithdrawItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	item, err := h.itemService.WithdrawItem(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// ReviewItem approves or rejects a pending item --> /admin/items/:id/review
func (h *ItemHandler) ReviewItem(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid ID")
	}
	var req struct {
		Decision string `json:"decision"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	var approve bool
	switch req.Decision {
	case "approve":
		approve = true
	case "reject":
	default:
		return badRequest(c, "decision must be approve or reject")
	}

	item, err := h.itemService.ReviewItem(c.Request().Context(), id, approve)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}
