package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the authenticated user's cart.
type CartHandler struct {
	cartService *services.CartService
	policy      services.CartPolicy
	validate    *validator.Validate
}

// NewCartHandler creates a new CartHandler. policy applies to POST /cart;
// POST /cart/items always accumulates.
func NewCartHandler(cartService *services.CartService, policy services.CartPolicy) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		policy:      policy,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the cart routes behind the user guard.
func (h *CartHandler) RegisterRoutes(router fiber.Router, user []fiber.Handler) {
	cart := router.Group("/cart", user...)
	cart.Get("/", h.HandleGet)
	cart.Post("/", h.HandleUpsert)
	cart.Post("/items", h.HandleAddItem)
	cart.Delete("/:productId", h.HandleRemove)
	cart.Delete("/", h.HandleClear)
}

// CartItemRequest is the body of both cart write routes.
type CartItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=1,max=10000"`
}

// HandleGet returns the caller's cart lines.
func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	lines, err := h.cartService.GetCart(c.UserContext(), middleware.Principal(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lines)
}

// HandleUpsert adds or updates a line using the configured policy.
func (h *CartHandler) HandleUpsert(c *fiber.Ctx) error {
	return h.addOrUpdate(c, h.policy)
}

// HandleAddItem adds to the quantity already in the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	return h.addOrUpdate(c, services.PolicyAccumulate)
}

func (h *CartHandler) addOrUpdate(c *fiber.Ctx, policy services.CartPolicy) error {
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	err := h.cartService.AddOrUpdate(c.UserContext(), middleware.Principal(c).ID, req.ProductID, req.Quantity, policy)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart updated"})
}

// HandleRemove deletes one line from the cart.
func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	productID, ok := paramID(c, "productId")
	if !ok {
		return invalidID(c, "product ID")
	}
	if err := h.cartService.RemoveLine(c.UserContext(), middleware.Principal(c).ID, productID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.cartService.ClearCart(c.UserContext(), middleware.Principal(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
