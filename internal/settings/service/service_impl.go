package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RonanBeelen/InvoiceStudio/internal/cache"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
)

const (
	cacheKey = "company_settings"
	cacheTTL = 30 * time.Second

	// claimRetries bounds the optimistic sequence-claim loop.
	claimRetries = 3
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	cache *cache.TTLCache[string, settingsdomain.CompanySettings]
}

func NewService(p Params) settingsdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("settings.service"),
		genID: p.GenID,
		clock: p.Clock,
		cache: cache.New[string, settingsdomain.CompanySettings](),
	}
}

func (s *Service) Get(ctx context.Context) (settingsdomain.CompanySettings, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	row, err := s.load(ctx, s.db)
	if err != nil {
		return settingsdomain.CompanySettings{}, err
	}
	if row == nil {
		return settingsdomain.Defaults(), nil
	}

	s.cache.Set(cacheKey, *row, cacheTTL)
	return *row, nil
}

func (s *Service) Update(ctx context.Context, req settingsdomain.UpdateRequest) (settingsdomain.CompanySettings, error) {
	var updated settingsdomain.CompanySettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.ensureRow(ctx, tx)
		if err != nil {
			return err
		}
		if err := applyUpdate(row, req); err != nil {
			return err
		}
		row.UpdatedAt = s.clock.Now()
		if err := tx.WithContext(ctx).Save(row).Error; err != nil {
			return err
		}
		updated = *row
		return nil
	})
	if err != nil {
		return settingsdomain.CompanySettings{}, err
	}

	s.cache.Delete(cacheKey)
	return updated, nil
}

func (s *Service) NextDocumentNumber(ctx context.Context, tx *gorm.DB, kind string) (string, error) {
	if tx == nil {
		tx = s.db
	}

	row, err := s.ensureRow(ctx, tx)
	if err != nil {
		return "", err
	}

	var column, format, prefix string
	switch kind {
	case "invoice":
		column, format, prefix = "invoice_number_next", row.InvoiceNumberFormat, row.InvoiceNumberPrefix
	case "quote":
		column, format, prefix = "quote_number_next", row.QuoteNumberFormat, row.QuoteNumberPrefix
	default:
		return "", settingsdomain.ErrInvalidKind
	}

	seq, err := s.claimSequence(ctx, tx, row.ID, column)
	if err != nil {
		return "", err
	}

	s.cache.Delete(cacheKey)
	actualFormat := strings.ReplaceAll(format, "{PREFIX}", prefix)
	return settingsdomain.FormatDocumentNumber(actualFormat, seq, s.clock.Now()), nil
}

// claimSequence reserves the current sequence value with a conditional
// update so concurrent claims never hand out the same number.
func (s *Service) claimSequence(ctx context.Context, tx *gorm.DB, id snowflake.ID, column string) (int, error) {
	for attempt := 0; attempt < claimRetries; attempt++ {
		var current int
		if err := tx.WithContext(ctx).
			Table("company_settings").
			Select(column).
			Where("id = ?", id).
			Scan(&current).Error; err != nil {
			return 0, err
		}

		result := tx.WithContext(ctx).
			Table("company_settings").
			Where("id = ? AND "+column+" = ?", id, current).
			Update(column, current+1)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected > 0 {
			return current, nil
		}
	}
	return 0, errors.New("sequence_claim_contention")
}

func (s *Service) load(ctx context.Context, tx *gorm.DB) (*settingsdomain.CompanySettings, error) {
	var row settingsdomain.CompanySettings
	err := tx.WithContext(ctx).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Service) ensureRow(ctx context.Context, tx *gorm.DB) (*settingsdomain.CompanySettings, error) {
	row, err := s.load(ctx, tx)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}

	fresh := settingsdomain.Defaults()
	fresh.ID = s.genID.Generate()
	now := s.clock.Now()
	fresh.CreatedAt = now
	fresh.UpdatedAt = now
	if err := tx.WithContext(ctx).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

func applyUpdate(row *settingsdomain.CompanySettings, req settingsdomain.UpdateRequest) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	setString(&row.CompanyName, req.CompanyName)
	setString(&row.Address, req.Address)
	setString(&row.PostalCode, req.PostalCode)
	setString(&row.City, req.City)
	setString(&row.Country, req.Country)
	setString(&row.KvkNumber, req.KvkNumber)
	setString(&row.BtwNumber, req.BtwNumber)
	setString(&row.IBAN, req.IBAN)
	setString(&row.Phone, req.Phone)
	setString(&row.Email, req.Email)
	if req.LogoBase64 != nil {
		row.LogoBase64 = req.LogoBase64
	}
	setString(&row.BrandColorPrimary, req.BrandColorPrimary)
	setString(&row.BrandColorSecondary, req.BrandColorSecondary)

	if req.DefaultPaymentTermsDays != nil && *req.DefaultPaymentTermsDays > 0 {
		row.DefaultPaymentTermsDays = *req.DefaultPaymentTermsDays
	}
	if req.DefaultBtwPercentage != nil {
		pct, err := decimal.NewFromString(strings.TrimSpace(*req.DefaultBtwPercentage))
		if err != nil || pct.IsNegative() {
			return settingsdomain.ErrInvalidPercentage
		}
		row.DefaultBtwPercentage = pct
	}

	setString(&row.InvoiceNumberFormat, req.InvoiceNumberFormat)
	setString(&row.InvoiceNumberPrefix, req.InvoiceNumberPrefix)
	if req.InvoiceNumberNext != nil && *req.InvoiceNumberNext > 0 {
		row.InvoiceNumberNext = *req.InvoiceNumberNext
	}
	setString(&row.QuoteNumberFormat, req.QuoteNumberFormat)
	setString(&row.QuoteNumberPrefix, req.QuoteNumberPrefix)
	if req.QuoteNumberNext != nil && *req.QuoteNumberNext > 0 {
		row.QuoteNumberNext = *req.QuoteNumberNext
	}

	setString(&row.FooterText, req.FooterText)
	setString(&row.EmailFromName, req.EmailFromName)
	setString(&row.EmailFromAddress, req.EmailFromAddress)
	setString(&row.EmailReplyTo, req.EmailReplyTo)
	setString(&row.EmailInvoiceSubject, req.EmailInvoiceSubject)
	setString(&row.EmailInvoiceBody, req.EmailInvoiceBody)
	setString(&row.EmailQuoteSubject, req.EmailQuoteSubject)
	setString(&row.EmailQuoteBody, req.EmailQuoteBody)
	return nil
}
