package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	templatedomain "github.com/RonanBeelen/InvoiceStudio/internal/template/domain"
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

func NewService(p Params) templatedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("template.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req templatedomain.CreateRequest) (*templatedomain.Template, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, templatedomain.ErrInvalidName
	}
	if err := validateTemplateJSON(req.TemplateJSON); err != nil {
		return nil, err
	}

	tmpl := templatedomain.Template{
		ID:           s.genID.Generate(),
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		TemplateJSON: datatypes.JSONMap(req.TemplateJSON),
	}
	if err := s.db.WithContext(ctx).Create(&tmpl).Error; err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (s *Service) List(ctx context.Context) ([]templatedomain.Template, error) {
	var templates []templatedomain.Template
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*templatedomain.Template, error) {
	var tmpl templatedomain.Template
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, templatedomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (s *Service) Update(ctx context.Context, req templatedomain.UpdateRequest) (*templatedomain.Template, error) {
	tmpl, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, templatedomain.ErrInvalidName
		}
		tmpl.Name = name
	}
	if req.Description != nil {
		tmpl.Description = strings.TrimSpace(*req.Description)
	}
	if req.TemplateJSON != nil {
		if err := validateTemplateJSON(req.TemplateJSON); err != nil {
			return nil, err
		}
		tmpl.TemplateJSON = datatypes.JSONMap(req.TemplateJSON)
	}

	if err := s.db.WithContext(ctx).Save(tmpl).Error; err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&templatedomain.Template{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return templatedomain.ErrNotFound
	}
	return nil
}

func (s *Service) RecordUsage(ctx context.Context, templateID snowflake.ID, filename string, sizeBytes int64) error {
	entry := templatedomain.UsageLog{
		ID:            s.genID.Generate(),
		TemplateID:    templateID,
		PdfFilename:   filename,
		FileSizeBytes: sizeBytes,
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

// validateTemplateJSON checks the minimal pdfme shape: a basePdf and at
// least one page schema.
func validateTemplateJSON(raw map[string]any) error {
	if raw == nil {
		return templatedomain.ErrInvalidJSON
	}
	if _, ok := raw["basePdf"]; !ok {
		return templatedomain.ErrInvalidJSON
	}
	schemas, ok := raw["schemas"].([]any)
	if !ok || len(schemas) == 0 {
		return templatedomain.ErrInvalidJSON
	}
	return nil
}
