package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrExchangeNotFound = errors.New("pure exchange not found")
	ErrExchangeExists   = errors.New("pure exchange already recorded for token")
)

type PureExchange struct {
	TokenNo   string          `gorm:"primaryKey;size:8"`
	Token     *Token          `gorm:"foreignKey:TokenNo;references:TokenNo"`
	Weight    decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	ExGold    decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	ExWeight  decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	Remarks   string          `gorm:"size:200;not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ExchangeDAO struct {
	db *gorm.DB
}

func NewExchangeDAO(db *gorm.DB) *ExchangeDAO {
	return &ExchangeDAO{
		db: db,
	}
}

func (d *ExchangeDAO) Insert(ctx context.Context, ex PureExchange) (PureExchange, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&ex)
	if result.Error != nil {
		switch {
		case isForeignKeyViolation(result.Error):
			return PureExchange{}, ErrTokenNotFound
		case isUniqueViolation(result.Error, "pure_exchanges_pkey"):
			return PureExchange{}, ErrExchangeExists
		default:
			return PureExchange{}, result.Error
		}
	}

	return d.FindByTokenNo(ctx, ex.TokenNo)
}

func (d *ExchangeDAO) FindByTokenNo(ctx context.Context, tokenNo string) (PureExchange, error) {
	var ex PureExchange

	result := d.db.WithContext(ctx).
		Preload("Token.Entry").
		First(&ex, "token_no = ?", tokenNo)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return PureExchange{}, ErrExchangeNotFound
		}

		return PureExchange{}, result.Error
	}

	return ex, nil
}

func (d *ExchangeDAO) Find(ctx context.Context, from, to time.Time, offset, limit int) ([]PureExchange, int64, error) {
	tx := d.db.WithContext(ctx).Model(&PureExchange{}).
		Joins("JOIN tokens ON tokens.token_no = pure_exchanges.token_no")
	if !from.IsZero() {
		tx = tx.Where("tokens.issued_at >= ?", from)
	}
	if !to.IsZero() {
		tx = tx.Where("tokens.issued_at < ?", to)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Preload("Token.Entry").Order("tokens.issued_at, pure_exchanges.token_no")
	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}

	var list []PureExchange
	if err := tx.Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (d *ExchangeDAO) Update(ctx context.Context, ex PureExchange) (PureExchange, error) {
	result := d.db.WithContext(ctx).Model(&PureExchange{}).
		Where("token_no = ?", ex.TokenNo).
		Updates(map[string]interface{}{
			"weight":     ex.Weight,
			"ex_gold":    ex.ExGold,
			"ex_weight":  ex.ExWeight,
			"remarks":    ex.Remarks,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return PureExchange{}, result.Error
	}
	if result.RowsAffected == 0 {
		return PureExchange{}, ErrExchangeNotFound
	}

	return d.FindByTokenNo(ctx, ex.TokenNo)
}

func (d *ExchangeDAO) Delete(ctx context.Context, tokenNo string) error {
	result := d.db.WithContext(ctx).Where("token_no = ?", tokenNo).Delete(&PureExchange{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExchangeNotFound
	}

	return nil
}

type ExchangeTotals struct {
	Count    int64
	ExWeight decimal.Decimal
}

// Totals sums exchanges whose token was issued in [from, to).
func (d *ExchangeDAO) Totals(ctx context.Context, from, to time.Time) (ExchangeTotals, error) {
	var totals ExchangeTotals

	result := d.db.WithContext(ctx).Model(&PureExchange{}).
		Select("COUNT(*) AS count, COALESCE(SUM(pure_exchanges.ex_weight), 0) AS ex_weight").
		Joins("JOIN tokens ON tokens.token_no = pure_exchanges.token_no").
		Where("tokens.issued_at >= ? AND tokens.issued_at < ?", from, to).
		Scan(&totals)
	if result.Error != nil {
		return ExchangeTotals{}, result.Error
	}

	return totals, nil
}
