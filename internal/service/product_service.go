package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"github.com/tealeg/xlsx"
)

type ProductInput struct {
	Name                 string
	Category             string
	Price                float64
	Rating               float64
	Stock                int64
	Description          string
	SellerID             string
	Image                string
	RequiresPrescription bool
	Available            *bool
}

type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	List(ctx context.Context, sellerID string) ([]model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	Update(ctx context.Context, id string, in ProductInput) (*model.Product, error)
	UpdateStock(ctx context.Context, id string, stock int64) (*model.Product, error)
	Delete(ctx context.Context, id string) error
	// Export writes the catalog (optionally one seller's) as an xlsx workbook.
	Export(ctx context.Context, sellerID string, w io.Writer) error
}

type productService struct {
	repo     repository.ProductRepository
	sellers  repository.SellerRepository
	activity ActivityService
	now      func() time.Time
}

func NewProductService(repo repository.ProductRepository, sellers repository.SellerRepository, activity ActivityService) ProductService {
	return &productService{repo: repo, sellers: sellers, activity: activity, now: time.Now}
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(in.SellerID) == "" {
		return invalid("seller_id is required")
	}
	if in.Price < 0 {
		return invalid("price must not be negative")
	}
	if in.Stock < 0 {
		return invalid("stock must not be negative")
	}
	if in.Rating < 0 || in.Rating > 5 {
		return invalid("rating must be between 0 and 5")
	}
	return nil
}

func (s *productService) sellerName(ctx context.Context, sellerID string) (string, error) {
	seller, err := s.sellers.FindByID(ctx, sellerID)
	if err != nil {
		return "", wrap(err, "seller "+sellerID)
	}
	return seller.Name, nil
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	name, err := s.sellerName(ctx, in.SellerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := &model.Product{
		Name:                 strings.TrimSpace(in.Name),
		Category:             in.Category,
		Price:                in.Price,
		Rating:               in.Rating,
		Stock:                in.Stock,
		Description:          in.Description,
		SellerID:             in.SellerID,
		SellerName:           name,
		Image:                in.Image,
		RequiresPrescription: in.RequiresPrescription,
		Available:            true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, wrap(err, "create product")
	}
	s.activity.Record(ctx, "product.created", EntityProduct, p.ID, p.Name)
	return p, nil
}

func (s *productService) List(ctx context.Context, sellerID string) ([]model.Product, error) {
	list, err := s.repo.List(ctx, sellerID)
	if err != nil {
		return nil, wrap(err, "list products")
	}
	return list, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("product id is required")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get product "+id)
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	name, err := s.sellerName(ctx, in.SellerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p, err := s.repo.Update(ctx, id, func(p *model.Product) error {
		p.Name = strings.TrimSpace(in.Name)
		p.Category = in.Category
		p.Price = in.Price
		p.Rating = in.Rating
		p.Stock = in.Stock
		p.Description = in.Description
		p.SellerID = in.SellerID
		p.SellerName = name
		p.Image = in.Image
		p.RequiresPrescription = in.RequiresPrescription
		if in.Available != nil {
			p.Available = *in.Available
		}
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update product "+id)
	}
	s.activity.Record(ctx, "product.updated", EntityProduct, id, p.Name)
	return p, nil
}

func (s *productService) UpdateStock(ctx context.Context, id string, stock int64) (*model.Product, error) {
	if stock < 0 {
		return nil, invalid("stock must not be negative")
	}
	now := s.now()
	p, err := s.repo.Update(ctx, id, func(p *model.Product) error {
		p.Stock = stock
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update stock "+id)
	}
	s.activity.Record(ctx, "product.stock", EntityProduct, id, fmt.Sprintf("stock=%d", stock))
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrap(err, "delete product "+id)
	}
	s.activity.Record(ctx, "product.deleted", EntityProduct, id, "")
	return nil
}

var exportHeaders = []string{
	"ID", "Name", "Category", "Price", "Rating", "Stock", "SellerID", "SellerName",
	"RequiresPrescription", "Available", "Image", "CreatedAt", "UpdatedAt",
}

func (s *productService) Export(ctx context.Context, sellerID string, w io.Writer) error {
	products, err := s.List(ctx, sellerID)
	if err != nil {
		return err
	}
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Rating)
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.SellerID)
		row.AddCell().SetValue(p.SellerName)
		row.AddCell().SetBool(p.RequiresPrescription)
		row.AddCell().SetBool(p.Available)
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
