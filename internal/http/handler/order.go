package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/http/middleware"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/service"
)

// GetMenu godoc
// @Summary Get the pizza menu
// @Tags order
// @Produce json
// @Success 200 {array} model.MenuItem
// @Router /api/order/menu [get]
func GetMenu(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.GetMenu(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// AddMenuItem godoc
// @Summary Add an item to the menu
// @Tags order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.MenuItem true "Menu item"
// @Success 200 {array} model.MenuItem
// @Failure 403 {object} errorPayload
// @Router /api/order/menu [put]
func AddMenuItem(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.MenuItem
		if err := bind(c, &req); err != nil {
			return err
		}
		items, err := svc.AddMenuItem(c.UserContext(), middleware.PrincipalFrom(c), req)
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// AddMenuItemWithImage godoc
// @Summary Add a menu item with an uploaded image
// @Tags order
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param price formData string true "Price in bitcoin"
// @Param file formData file true "Image"
// @Success 200 {array} model.MenuItem
// @Failure 400 {object} errorPayload
// @Router /api/order/menu/image [put]
func AddMenuItemWithImage(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		price, err := decimal.NewFromString(c.FormValue("price"))
		if err != nil {
			return errs.NewBadRequestError("price must be a number")
		}
		item := model.MenuItem{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Price:       price,
		}
		if err := validateStruct(item); err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return errs.NewBadRequestError("file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return errs.NewBadRequestError("cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get(fiber.HeaderContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}

		items, err := svc.AddMenuItemWithImage(c.UserContext(), middleware.PrincipalFrom(c), item, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// GetOrders godoc
// @Summary List the caller's orders
// @Tags order
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, starting at 1"
// @Success 200 {object} model.OrderPage
// @Router /api/order [get]
func GetOrders(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := 1
		if raw := c.Query("page"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil {
				return errs.NewBadRequestError("invalid page")
			}
			page = p
		}
		out, err := svc.GetOrders(c.UserContext(), middleware.PrincipalFrom(c), page)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// CreateOrder godoc
// @Summary Order pizzas
// @Description Stores the order and has the factory fulfil it.
// @Tags order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.NewOrder true "Order"
// @Success 200 {object} service.OrderReceipt
// @Failure 500 {object} errorPayload
// @Router /api/order [post]
func CreateOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.NewOrder
		if err := bind(c, &req); err != nil {
			return err
		}
		receipt, err := svc.CreateOrder(c.UserContext(), middleware.PrincipalFrom(c), req)
		if err != nil {
			return err
		}
		return c.JSON(receipt)
	}
}
