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
	ErrSkinTestNotFound = errors.New("skin test not found")
	ErrSkinTestExists   = errors.New("skin test already recorded for token")
)

type SkinTest struct {
	TokenNo   string          `gorm:"primaryKey;size:8"`
	Token     *Token          `gorm:"foreignKey:TokenNo;references:TokenNo"`
	Gold      decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Silver    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Copper    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Zinc      decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Cadmium   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Nickel    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Iridium   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Ruthenium decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Osmium    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Rhodium   decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Lead      decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Tungsten  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Platinum  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Palladium decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Others    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Karat     decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Remarks   string          `gorm:"size:200;not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SkinTestDAO struct {
	db *gorm.DB
}

func NewSkinTestDAO(db *gorm.DB) *SkinTestDAO {
	return &SkinTestDAO{
		db: db,
	}
}

func (d *SkinTestDAO) Insert(ctx context.Context, test SkinTest) (SkinTest, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&test)
	if result.Error != nil {
		switch {
		case isForeignKeyViolation(result.Error):
			return SkinTest{}, ErrTokenNotFound
		case isUniqueViolation(result.Error, "skin_tests_pkey"):
			return SkinTest{}, ErrSkinTestExists
		default:
			return SkinTest{}, result.Error
		}
	}

	return d.FindByTokenNo(ctx, test.TokenNo)
}

func (d *SkinTestDAO) FindByTokenNo(ctx context.Context, tokenNo string) (SkinTest, error) {
	var test SkinTest

	result := d.db.WithContext(ctx).
		Preload("Token.Entry").
		First(&test, "token_no = ?", tokenNo)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return SkinTest{}, ErrSkinTestNotFound
		}

		return SkinTest{}, result.Error
	}

	return test, nil
}

// Find lists skin tests whose token was issued in [from, to).
func (d *SkinTestDAO) Find(ctx context.Context, from, to time.Time, offset, limit int) ([]SkinTest, int64, error) {
	tx := d.db.WithContext(ctx).Model(&SkinTest{}).
		Joins("JOIN tokens ON tokens.token_no = skin_tests.token_no")
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

	tx = tx.Preload("Token.Entry").Order("tokens.issued_at, skin_tests.token_no")
	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}

	var tests []SkinTest
	if err := tx.Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (d *SkinTestDAO) Update(ctx context.Context, test SkinTest) (SkinTest, error) {
	test.UpdatedAt = time.Now().UTC()

	result := d.db.WithContext(ctx).Model(&SkinTest{}).
		Where("token_no = ?", test.TokenNo).
		Select("gold", "silver", "copper", "zinc", "cadmium", "nickel", "iridium",
			"ruthenium", "osmium", "rhodium", "lead", "tungsten", "platinum",
			"palladium", "others", "karat", "remarks", "updated_at").
		Updates(&test)
	if result.Error != nil {
		return SkinTest{}, result.Error
	}
	if result.RowsAffected == 0 {
		return SkinTest{}, ErrSkinTestNotFound
	}

	return d.FindByTokenNo(ctx, test.TokenNo)
}

func (d *SkinTestDAO) Delete(ctx context.Context, tokenNo string) error {
	result := d.db.WithContext(ctx).Where("token_no = ?", tokenNo).Delete(&SkinTest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSkinTestNotFound
	}

	return nil
}

// CountIssued counts skin tests whose token was issued in [from, to).
func (d *SkinTestDAO) CountIssued(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64

	result := d.db.WithContext(ctx).Model(&SkinTest{}).
		Joins("JOIN tokens ON tokens.token_no = skin_tests.token_no").
		Where("tokens.issued_at >= ? AND tokens.issued_at < ?", from, to).
		Count(&n)
	if result.Error != nil {
		return 0, result.Error
	}

	return n, nil
}
