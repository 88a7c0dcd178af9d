package handlers

import (
	"log"
	"strings"

	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	productService *services.ProductService
	validate       *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the catalog routes. Reads are public; writes go
// through the admin guard.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, admin []fiber.Handler) {
	products := router.Group("/products")
	products.Get("/", h.HandleList)
	products.Get("/:id", h.HandleGet)
	products.Post("/", guarded(admin, h.HandleCreate)...)
	products.Put("/:id", guarded(admin, h.HandleUpdate)...)
	products.Delete("/:id", guarded(admin, h.HandleDelete)...)
}

// UpdateProductRequest is the JSON body of PUT /products/:id.
type UpdateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// HandleList returns every product in insertion order.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.productService.ListProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGet returns one product.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product ID")
	}
	product, err := h.productService.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleCreate creates a product from a multipart form with an image file.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	in := services.NewProduct{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: c.FormValue("description"),
	}

	if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return respondError(c, services.ErrInvalidPrice)
		}
		in.Price = price
	}

	if image, err := c.FormFile("image"); err == nil {
		in.Image = image
	}

	product, err := h.productService.CreateProduct(c.UserContext(), in)
	if err != nil {
		log.Printf("Error creating product %q: %v", in.Name, err)
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleUpdate edits name, price and description of a product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product ID")
	}

	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	err := h.productService.UpdateProduct(c.UserContext(), id, services.ProductUpdate{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated"})
}

// HandleDelete deletes a product along with every cart line referencing it.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product ID")
	}
	if err := h.productService.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
