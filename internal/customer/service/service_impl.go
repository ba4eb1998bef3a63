package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	customerdomain "github.com/RonanBeelen/InvoiceStudio/internal/customer/domain"
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

func NewService(p Params) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateRequest) (*customerdomain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, customerdomain.ErrInvalidName
	}

	customer := customerdomain.Customer{
		ID:          s.genID.Generate(),
		Name:        name,
		CompanyName: strings.TrimSpace(req.CompanyName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		City:        strings.TrimSpace(req.City),
		Country:     strings.TrimSpace(req.Country),
		KvkNumber:   strings.TrimSpace(req.KvkNumber),
		BtwNumber:   strings.TrimSpace(req.BtwNumber),
		Notes:       strings.TrimSpace(req.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Service) List(ctx context.Context, query string) ([]customerdomain.Customer, error) {
	q := s.db.WithContext(ctx).Order("name ASC")

	if search := strings.TrimSpace(query); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(company_name) LIKE ?", like, like)
	}

	var customers []customerdomain.Customer
	if err := q.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customerdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Service) Update(ctx context.Context, req customerdomain.UpdateRequest) (*customerdomain.Customer, error) {
	customer, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&customer.Name, req.Name)
	set(&customer.CompanyName, req.CompanyName)
	set(&customer.Email, req.Email)
	set(&customer.Phone, req.Phone)
	set(&customer.Address, req.Address)
	set(&customer.PostalCode, req.PostalCode)
	set(&customer.City, req.City)
	set(&customer.Country, req.Country)
	set(&customer.KvkNumber, req.KvkNumber)
	set(&customer.BtwNumber, req.BtwNumber)
	set(&customer.Notes, req.Notes)

	if customer.Name == "" {
		return nil, customerdomain.ErrInvalidName
	}

	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&customerdomain.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return customerdomain.ErrNotFound
	}
	return nil
}
