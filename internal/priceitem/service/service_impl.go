package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	priceitemdomain "github.com/RonanBeelen/InvoiceStudio/internal/priceitem/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) priceitemdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("priceitem.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req priceitemdomain.CreateRequest) (*priceitemdomain.PriceItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, priceitemdomain.ErrInvalidName
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "general"
	}
	if !priceitemdomain.IsAllowedCategory(category) {
		return nil, priceitemdomain.ErrInvalidCategory
	}

	item := priceitemdomain.PriceItem{
		ID:              s.genID.Generate(),
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		Category:        category,
		UnitPrice:       req.UnitPrice,
		Unit:            strings.TrimSpace(req.Unit),
		BtwPercentage:   decimal.NewFromInt(21),
		DefaultQuantity: decimal.NewFromInt(1),
		SKU:             strings.TrimSpace(req.SKU),
		IsActive:        true,
		SortOrder:       req.SortOrder,
	}
	if req.BtwPercentage != nil {
		item.BtwPercentage = *req.BtwPercentage
	}
	if req.DefaultQuantity != nil {
		item.DefaultQuantity = *req.DefaultQuantity
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) List(ctx context.Context, filter priceitemdomain.ListFilter) ([]priceitemdomain.PriceItem, error) {
	q := s.db.WithContext(ctx).Order("sort_order ASC, name ASC")

	if search := strings.TrimSpace(filter.Query); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	} else {
		if filter.ActiveOnly {
			q = q.Where("is_active = ?", true)
		}
		if category := strings.TrimSpace(filter.Category); category != "" {
			q = q.Where("category = ?", category)
		}
	}

	var items []priceitemdomain.PriceItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*priceitemdomain.PriceItem, error) {
	var item priceitemdomain.PriceItem
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, priceitemdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) Update(ctx context.Context, req priceitemdomain.UpdateRequest) (*priceitemdomain.PriceItem, error) {
	item, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, priceitemdomain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if !priceitemdomain.IsAllowedCategory(category) {
			return nil, priceitemdomain.ErrInvalidCategory
		}
		item.Category = category
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.Unit != nil {
		item.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.BtwPercentage != nil {
		item.BtwPercentage = *req.BtwPercentage
	}
	if req.DefaultQuantity != nil {
		item.DefaultQuantity = *req.DefaultQuantity
	}
	if req.SKU != nil {
		item.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&priceitemdomain.PriceItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return priceitemdomain.ErrNotFound
	}
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).
		Model(&priceitemdomain.PriceItem{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}
