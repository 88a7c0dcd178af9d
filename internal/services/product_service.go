package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore persists uploaded product images and returns their public URL.
type ImageStore interface {
	Save(file *multipart.FileHeader) (string, error)
	Remove(url string) error
}

// NewProduct is the input of CreateProduct.
type NewProduct struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Image       *multipart.FileHeader
}

// ProductUpdate is the input of UpdateProduct. Images cannot be replaced.
type ProductUpdate struct {
	Name        string
	Price       decimal.Decimal
	Description string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	images    ImageStore
	publisher EventPublisher
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, images ImageStore, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		images:    images,
		publisher: publisher,
	}
}

// ListProducts retrieves every product. There is no pagination.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct stores the image, then inserts the product pointing at it.
func (s *ProductService) CreateProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price.IsZero() || in.Image == nil {
		return nil, ErrMissingFields
	}
	if !validPrice(in.Price) {
		return nil, ErrInvalidPrice
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(in.Image.Filename))] {
		return nil, ErrInvalidImage
	}

	imageURL, err := s.images.Save(in.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	product := &models.Product{
		Name:        name,
		Price:       in.Price,
		Description: in.Description,
		ImageURL:    imageURL,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		s.removeImage(imageURL)
		return nil, err
	}

	publishEvent(s.publisher, EventProductCreated, map[string]interface{}{
		"productId": product.ID,
		"name":      product.Name,
		"price":     product.Price,
	})
	return product, nil
}

// UpdateProduct overwrites name, price and description of an existing product.
// Cart lines keep the values they snapshotted.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, in ProductUpdate) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price.IsZero() {
		return ErrMissingFields
	}
	if !validPrice(in.Price) {
		return ErrInvalidPrice
	}

	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}

	product := &models.Product{ID: id, Name: name, Price: in.Price, Description: in.Description}
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	publishEvent(s.publisher, EventProductUpdated, map[string]interface{}{
		"productId": id,
		"name":      name,
		"price":     in.Price,
	})
	return nil
}

// DeleteProduct removes a product and, through the store, every cart line
// referencing it. The image file is removed afterwards on a best-effort basis.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.removeImage(product.ImageURL)

	publishEvent(s.publisher, EventProductDeleted, map[string]interface{}{"productId": id})
	return nil
}

func (s *ProductService) removeImage(url string) {
	if err := s.images.Remove(url); err != nil {
		log.Printf("Failed to remove image %s: %v", url, err)
	}
}

// maxPrice is the first value that no longer fits the decimal(10,2) column.
var maxPrice = decimal.New(1, 8)

func validPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(maxPrice) && p.Equal(p.Round(2))
}
