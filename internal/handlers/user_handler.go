package handlers

import (
	"fmt"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler exposes admin user management.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers the user routes behind the admin guard.
func (h *UserHandler) RegisterRoutes(router fiber.Router, admin []fiber.Handler) {
	router.Delete("/users/:id", guarded(admin, h.HandleDelete)...)
}

// HandleDelete removes a user account and its cart.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user ID")
	}
	if err := h.userService.DeleteUser(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("User with ID %d deleted successfully", id)})
}
