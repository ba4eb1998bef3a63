package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
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

func NewService(p Params) activitydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
	}
}

func (s *Service) Log(ctx context.Context, record activitydomain.Record) {
	if err := s.LogTx(ctx, s.db, record); err != nil {
		s.log.Warn("failed to append activity entry",
			zap.String("action", string(record.Action)),
			zap.Error(err),
		)
	}
}

func (s *Service) LogTx(ctx context.Context, tx *gorm.DB, record activitydomain.Record) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	if record.Action == "" || record.EntityType == "" {
		return errors.New("invalid_activity_record")
	}

	detail := datatypes.JSONMap{}
	for key, value := range record.Detail {
		detail[key] = value
	}

	entry := activitydomain.Entry{
		ID:         s.genID.Generate(),
		DocumentID: record.DocumentID,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		Action:     record.Action,
		Detail:     detail,
	}
	return tx.WithContext(ctx).Create(&entry).Error
}

func (s *Service) ForDocument(ctx context.Context, filter activitydomain.ListFilter) ([]activitydomain.Entry, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var entries []activitydomain.Entry
	err := s.db.WithContext(ctx).
		Where("document_id = ?", filter.DocumentID).
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) Feed(ctx context.Context, limit int) ([]activitydomain.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var entries []activitydomain.Entry
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
