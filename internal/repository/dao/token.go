package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExists   = errors.New("token number already issued")
	ErrTokenInUse    = errors.New("token has test results")
)

// tokenSequenceLock is the advisory lock key serializing token number
// issuance.
const tokenSequenceLock = 7_301_001

type Token struct {
	ID           uint            `gorm:"primaryKey"`
	TokenNo      string          `gorm:"size:8;not null;uniqueIndex:uni_tokens_token_no"`
	IssuedAt     time.Time       `gorm:"not null;index"`
	Code         string          `gorm:"size:20;not null;index"`
	Entry        Entry           `gorm:"foreignKey:Code;references:Code"`
	Test         string          `gorm:"size:10;not null"` // "skin" or "photo"
	Weight       decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	Sample       string          `gorm:"size:100;not null;default:''"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsPaid       bool            `gorm:"not null;default:false"`
	SkinTest     *SkinTest       `gorm:"foreignKey:TokenNo;references:TokenNo"`
	PureExchange *PureExchange   `gorm:"foreignKey:TokenNo;references:TokenNo"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TokenQuery struct {
	From   time.Time
	To     time.Time
	Code   string
	IsPaid *bool
	Offset int
	Limit  int
}

// NextTokenNo derives the next token number from the last one issued.
// last is empty when no token exists yet.
type NextTokenNo func(last string) (string, error)

type TokenDAO struct {
	db *gorm.DB
}

func NewTokenDAO(db *gorm.DB) *TokenDAO {
	return &TokenDAO{
		db: db,
	}
}

func lastTokenNo(tx *gorm.DB) (string, error) {
	var last Token
	err := tx.Select("token_no").Order("token_no DESC").Take(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}

		return "", err
	}

	return last.TokenNo, nil
}

// Insert numbers and stores token inside one transaction holding the
// sequence lock, so concurrent issuers never draw the same number.
func (d *TokenDAO) Insert(ctx context.Context, token Token, next NextTokenNo) (Token, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", tokenSequenceLock).Error; err != nil {
			return fmt.Errorf("pg_advisory_xact_lock -> %w", err)
		}

		last, err := lastTokenNo(tx)
		if err != nil {
			return fmt.Errorf("lastTokenNo -> %w", err)
		}

		token.TokenNo, err = next(last)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(&token).Error; err != nil {
			switch {
			case isForeignKeyViolation(err):
				return ErrEntryNotFound
			case isUniqueViolation(err, "uni_tokens_token_no"):
				return ErrTokenExists
			default:
				return err
			}
		}

		return nil
	})
	if err != nil {
		return Token{}, err
	}

	return d.FindByTokenNo(ctx, token.TokenNo)
}

// PeekNext returns the number the next Insert would draw.
func (d *TokenDAO) PeekNext(ctx context.Context, next NextTokenNo) (string, error) {
	last, err := lastTokenNo(d.db.WithContext(ctx))
	if err != nil {
		return "", err
	}

	return next(last)
}

func (d *TokenDAO) FindByTokenNo(ctx context.Context, tokenNo string) (Token, error) {
	var token Token

	result := d.db.WithContext(ctx).
		Preload("Entry").
		First(&token, "token_no = ?", tokenNo)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Token{}, ErrTokenNotFound
		}

		return Token{}, result.Error
	}

	return token, nil
}

func (d *TokenDAO) filter(ctx context.Context, q TokenQuery) *gorm.DB {
	tx := d.db.WithContext(ctx).Model(&Token{})
	if !q.From.IsZero() {
		tx = tx.Where("issued_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("issued_at < ?", q.To)
	}
	if q.Code != "" {
		tx = tx.Where("code = ?", q.Code)
	}
	if q.IsPaid != nil {
		tx = tx.Where("is_paid = ?", *q.IsPaid)
	}

	return tx
}

// Find lists tokens in issue order. A zero Limit returns every match.
func (d *TokenDAO) Find(ctx context.Context, q TokenQuery) ([]Token, int64, error) {
	tx := d.filter(ctx, q)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Preload("Entry").Order("issued_at, token_no")
	if q.Limit > 0 {
		tx = tx.Offset(q.Offset).Limit(q.Limit)
	}

	var tokens []Token
	if err := tx.Find(&tokens).Error; err != nil {
		return nil, 0, err
	}

	return tokens, total, nil
}

// FindWithResults is Find with skin tests and exchanges preloaded.
func (d *TokenDAO) FindWithResults(ctx context.Context, q TokenQuery) ([]Token, error) {
	var tokens []Token

	result := d.filter(ctx, q).
		Preload("Entry").
		Preload("SkinTest").
		Preload("PureExchange").
		Order("issued_at, token_no").
		Find(&tokens)
	if result.Error != nil {
		return nil, result.Error
	}

	return tokens, nil
}

func (d *TokenDAO) Update(ctx context.Context, token Token) (Token, error) {
	result := d.db.WithContext(ctx).Model(&Token{}).
		Where("token_no = ?", token.TokenNo).
		Updates(map[string]interface{}{
			"issued_at":  token.IssuedAt,
			"code":       token.Code,
			"test":       token.Test,
			"weight":     token.Weight,
			"sample":     token.Sample,
			"amount":     token.Amount,
			"is_paid":    token.IsPaid,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return Token{}, ErrEntryNotFound
		}

		return Token{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Token{}, ErrTokenNotFound
	}

	return d.FindByTokenNo(ctx, token.TokenNo)
}

func (d *TokenDAO) SetPaid(ctx context.Context, tokenNo string, paid bool) (Token, error) {
	result := d.db.WithContext(ctx).Model(&Token{}).
		Where("token_no = ?", tokenNo).
		Updates(map[string]interface{}{
			"is_paid":    paid,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return Token{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Token{}, ErrTokenNotFound
	}

	return d.FindByTokenNo(ctx, tokenNo)
}

func (d *TokenDAO) Delete(ctx context.Context, tokenNo string) error {
	result := d.db.WithContext(ctx).Where("token_no = ?", tokenNo).Delete(&Token{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrTokenInUse
		}

		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

type TokenTotals struct {
	Test      string
	Count     int64
	Amount    decimal.Decimal
	Collected decimal.Decimal
}

// Totals aggregates tokens issued in [from, to) per test type.
func (d *TokenDAO) Totals(ctx context.Context, from, to time.Time) ([]TokenTotals, error) {
	var totals []TokenTotals

	result := d.db.WithContext(ctx).Model(&Token{}).
		Select(`test,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS amount,
			COALESCE(SUM(amount) FILTER (WHERE is_paid), 0) AS collected`).
		Where("issued_at >= ? AND issued_at < ?", from, to).
		Group("test").
		Order("test").
		Scan(&totals)
	if result.Error != nil {
		return nil, result.Error
	}

	return totals, nil
}
