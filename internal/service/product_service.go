package service

import (
	"strings"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	Slug          string
	Name          string
	Price         models.Money
	OriginalPrice *models.Money
	StockQuantity int
	TrackStock    *bool
	Variants      models.VariantList
	IsActive      *bool
}

// GetPublic 获取上架商品
func (s *ProductService) GetPublic(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Availability 查询商品（或变体）当前可售库存
func (s *ProductService) Availability(id uint, ref *models.VariantRef) (catalog.Availability, error) {
	product, err := s.GetPublic(id)
	if err != nil {
		return catalog.Availability{}, err
	}
	return catalog.AvailableFor(product, ref), nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrInvalidPayload
	}
	if input.Price.IsNegative() || input.StockQuantity < 0 {
		return nil, ErrInvalidPayload
	}
	for _, variant := range input.Variants {
		if catalog.IsEmptyRef(&variant) || variant.Stock < 0 || variant.Price.IsNegative() {
			return nil, ErrInvalidPayload
		}
	}

	trackStock := true
	if input.TrackStock != nil {
		trackStock = *input.TrackStock
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	variants := input.Variants
	if variants == nil {
		variants = models.VariantList{}
	}
	product := &models.Product{
		Slug:          slug,
		Name:          name,
		Price:         models.NewMoneyFromDecimal(input.Price.Decimal),
		OriginalPrice: input.OriginalPrice,
		StockQuantity: input.StockQuantity,
		TrackStock:    trackStock,
		Variants:      variants,
		IsActive:      isActive,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}
