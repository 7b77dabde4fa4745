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
	ErrExpenseTypeNotFound = errors.New("expense type not found")
	ErrExpenseTypeExists   = errors.New("expense type already exists")
	ErrExpenseTypeInUse    = errors.New("expense type has expenses")
	ErrExpenseNotFound     = errors.New("expense not found")
)

type ExpenseType struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Expense struct {
	ID        uint            `gorm:"primaryKey"`
	Date      time.Time       `gorm:"type:date;not null;index"`
	TypeID    uint            `gorm:"not null"`
	Type      ExpenseType     `gorm:"foreignKey:TypeID"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaidTo    string          `gorm:"size:100;not null;default:''"`
	PayMode   string          `gorm:"size:10;not null"`
	Remarks   string          `gorm:"size:200;not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ExpenseQuery struct {
	From    time.Time
	To      time.Time
	TypeID  uint
	PayMode string
}

type ExpenseDAO struct {
	db *gorm.DB
}

func NewExpenseDAO(db *gorm.DB) *ExpenseDAO {
	return &ExpenseDAO{
		db: db,
	}
}

func (d *ExpenseDAO) InsertType(ctx context.Context, t ExpenseType) (ExpenseType, error) {
	result := d.db.WithContext(ctx).Create(&t)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_expense_types_name") {
			return ExpenseType{}, ErrExpenseTypeExists
		}

		return ExpenseType{}, result.Error
	}

	return t, nil
}

func (d *ExpenseDAO) FindTypes(ctx context.Context) ([]ExpenseType, error) {
	var types []ExpenseType

	result := d.db.WithContext(ctx).Order("name").Find(&types)
	if result.Error != nil {
		return nil, result.Error
	}

	return types, nil
}

func (d *ExpenseDAO) DeleteType(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&ExpenseType{}, id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrExpenseTypeInUse
		}

		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExpenseTypeNotFound
	}

	return nil
}

func (d *ExpenseDAO) Insert(ctx context.Context, e Expense) (Expense, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&e)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return Expense{}, ErrExpenseTypeNotFound
		}

		return Expense{}, result.Error
	}

	return d.FindByID(ctx, e.ID)
}

func (d *ExpenseDAO) FindByID(ctx context.Context, id uint) (Expense, error) {
	var e Expense

	result := d.db.WithContext(ctx).Preload("Type").First(&e, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Expense{}, ErrExpenseNotFound
		}

		return Expense{}, result.Error
	}

	return e, nil
}

func (d *ExpenseDAO) filter(ctx context.Context, q ExpenseQuery) *gorm.DB {
	tx := d.db.WithContext(ctx).Model(&Expense{})
	if !q.From.IsZero() {
		tx = tx.Where("expenses.date >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("expenses.date < ?", q.To)
	}
	if q.TypeID != 0 {
		tx = tx.Where("expenses.type_id = ?", q.TypeID)
	}
	if q.PayMode != "" {
		tx = tx.Where("expenses.pay_mode = ?", q.PayMode)
	}

	return tx
}

func (d *ExpenseDAO) Find(ctx context.Context, q ExpenseQuery) ([]Expense, error) {
	var list []Expense

	result := d.filter(ctx, q).Preload("Type").Order("expenses.date, expenses.id").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

func (d *ExpenseDAO) Update(ctx context.Context, e Expense) (Expense, error) {
	result := d.db.WithContext(ctx).Model(&Expense{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"date":       e.Date,
			"type_id":    e.TypeID,
			"amount":     e.Amount,
			"paid_to":    e.PaidTo,
			"pay_mode":   e.PayMode,
			"remarks":    e.Remarks,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return Expense{}, ErrExpenseTypeNotFound
		}

		return Expense{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Expense{}, ErrExpenseNotFound
	}

	return d.FindByID(ctx, e.ID)
}

func (d *ExpenseDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Expense{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

type ExpenseGroupTotal struct {
	Key    string
	Count  int64
	Amount decimal.Decimal
}

// TotalsByType groups the matching expenses by type name.
func (d *ExpenseDAO) TotalsByType(ctx context.Context, q ExpenseQuery) ([]ExpenseGroupTotal, error) {
	var totals []ExpenseGroupTotal

	result := d.filter(ctx, q).
		Select("expense_types.name AS key, COUNT(*) AS count, COALESCE(SUM(expenses.amount), 0) AS amount").
		Joins("JOIN expense_types ON expense_types.id = expenses.type_id").
		Group("expense_types.name").
		Order("expense_types.name").
		Scan(&totals)
	if result.Error != nil {
		return nil, result.Error
	}

	return totals, nil
}

// TotalsByPayMode groups the matching expenses by pay mode.
func (d *ExpenseDAO) TotalsByPayMode(ctx context.Context, q ExpenseQuery) ([]ExpenseGroupTotal, error) {
	var totals []ExpenseGroupTotal

	result := d.filter(ctx, q).
		Select("expenses.pay_mode AS key, COUNT(*) AS count, COALESCE(SUM(expenses.amount), 0) AS amount").
		Group("expenses.pay_mode").
		Order("expenses.pay_mode").
		Scan(&totals)
	if result.Error != nil {
		return nil, result.Error
	}

	return totals, nil
}
