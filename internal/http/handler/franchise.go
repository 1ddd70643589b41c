package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/http/middleware"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/service"
)

// ListFranchises godoc
// @Summary List all franchises
// @Description Admins also receive franchise admins and store revenue.
// @Tags franchise
// @Produce json
// @Success 200 {array} model.Franchise
// @Router /api/franchise [get]
func ListFranchises(svc service.FranchiseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.List(c.UserContext(), middleware.PrincipalFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// ListUserFranchises godoc
// @Summary List the franchises a user administers
// @Tags franchise
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User id"
// @Success 200 {array} model.Franchise
// @Router /api/franchise/{userId} [get]
func ListUserFranchises(svc service.FranchiseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := pathID(c, "userId")
		if err != nil {
			return err
		}
		out, err := svc.ListForUser(c.UserContext(), middleware.PrincipalFrom(c), userID)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// CreateFranchise godoc
// @Summary Create a franchise
// @Tags franchise
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.NewFranchise true "Franchise"
// @Success 200 {object} model.Franchise
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/franchise [post]
func CreateFranchise(svc service.FranchiseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.NewFranchise
		if err := bind(c, &req); err != nil {
			return err
		}
		f, err := svc.Create(c.UserContext(), middleware.PrincipalFrom(c), req)
		if err != nil {
			return err
		}
		return c.JSON(f)
	}
}

// DeleteFranchise godoc
// @Summary Delete a franchise with its stores
// @Tags franchise
// @Produce json
// @Security BearerAuth
// @Param franchiseId path int true "Franchise id"
// @Success 200 {object} messageResponse
// @Router /api/franchise/{franchiseId} [delete]
func DeleteFranchise(svc service.FranchiseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "franchiseId")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
			return err
		}
		return c.JSON(messageResponse{Message: "franchise deleted"})
	}
}

// CreateStore godoc
// @Summary Open a store in a franchise
// @Tags franchise
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param franchiseId path int true "Franchise id"
// @Param body body model.NewStore true "Store"
// @Success 200 {object} model.Store
// @Failure 403 {object} errorPayload
// @Router /api/franchise/{franchiseId}/store [post]
func CreateStore(svc service.FranchiseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "franchiseId")
		if err != nil {
			return err
		}
		var req model.NewStore
		if err := bind(c, &req); err != nil {
			return err
		}
		s, err := svc.CreateStore(c.UserContext(), middleware.PrincipalFrom(c), id, req)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// DeleteStore godoc
// @Summary Close a store
// @Tags franchise
// @Produce json
// @Security BearerAuth
// @Param franchiseId path int true "Franchise id"
// @Param storeId path int true "Store id"
// @Success 200 {object} messageResponse
// @Router /api/franchise/{franchiseId}/store/{storeId} [delete]
func DeleteStore(svc service.FranchiseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		franchiseID, err := pathID(c, "franchiseId")
		if err != nil {
			return err
		}
		storeID, err := pathID(c, "storeId")
		if err != nil {
			return err
		}
		if err := svc.DeleteStore(c.UserContext(), middleware.PrincipalFrom(c), franchiseID, storeID); err != nil {
			return err
		}
		return c.JSON(messageResponse{Message: "store deleted"})
	}
}
