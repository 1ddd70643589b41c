package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/http/middleware"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary Register a new diner
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "New user"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} errorPayload
// @Router /api/auth [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		res, err := svc.Register(c.UserContext(), req.Name, req.Email, req.Password)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// Login godoc
// @Summary Log in an existing user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} service.AuthResult
// @Failure 404 {object} errorPayload
// @Router /api/auth [put]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// Logout godoc
// @Summary Log out the presented credential
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} messageResponse
// @Router /api/auth [delete]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Logout(c.UserContext(), middleware.PrincipalFrom(c)); err != nil {
			return err
		}
		return c.JSON(messageResponse{Message: "logout successful"})
	}
}

// UpdateUser godoc
// @Summary Update a user's email or password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User id"
// @Param body body model.UserUpdate true "Fields to change"
// @Success 200 {object} model.User
// @Failure 403 {object} errorPayload
// @Router /api/auth/{userId} [put]
func UpdateUser(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := pathID(c, "userId")
		if err != nil {
			return err
		}
		var req model.UserUpdate
		if err := bind(c, &req); err != nil {
			return err
		}
		u, err := svc.UpdateUser(c.UserContext(), middleware.PrincipalFrom(c), userID, req)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// pathID parses a numeric route parameter.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewBadRequestError("invalid " + name)
	}
	return id, nil
}
