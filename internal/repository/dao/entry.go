package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrEntryNotFound    = errors.New("entry not found")
	ErrEntryCodeExists  = errors.New("entry code already exists")
	ErrEntryPhoneExists = errors.New("phone already registered")
	ErrEntryInUse       = errors.New("entry has tokens")
)

type Entry struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:20;not null;uniqueIndex:uni_entries_code"`
	Name      string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:15;not null;uniqueIndex:uni_entries_phone"`
	Place     string `gorm:"size:100;not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EntryDAO struct {
	db *gorm.DB
}

func NewEntryDAO(db *gorm.DB) *EntryDAO {
	return &EntryDAO{
		db: db,
	}
}

func entryWriteErr(err error) error {
	switch {
	case isUniqueViolation(err, "uni_entries_code"):
		return ErrEntryCodeExists
	case isUniqueViolation(err, "uni_entries_phone"):
		return ErrEntryPhoneExists
	default:
		return err
	}
}

func (d *EntryDAO) Insert(ctx context.Context, entry Entry) (Entry, error) {
	result := d.db.WithContext(ctx).Create(&entry)
	if result.Error != nil {
		return Entry{}, entryWriteErr(result.Error)
	}

	return entry, nil
}

func (d *EntryDAO) FindByCode(ctx context.Context, code string) (Entry, error) {
	var entry Entry

	result := d.db.WithContext(ctx).First(&entry, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Entry{}, ErrEntryNotFound
		}

		return Entry{}, result.Error
	}

	return entry, nil
}

// likeEscaper makes % and _ in a search match literally. Backslash is the
// default LIKE escape in postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Find lists entries newest first. query matches code, name or phone.
func (d *EntryDAO) Find(ctx context.Context, query string, offset, limit int) ([]Entry, int64, error) {
	tx := d.db.WithContext(ctx).Model(&Entry{})
	if query != "" {
		like := "%" + likeEscaper.Replace(query) + "%"
		tx = tx.Where("code ILIKE ? OR name ILIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []Entry
	if err := tx.Order("id DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (d *EntryDAO) Update(ctx context.Context, entry Entry) (Entry, error) {
	result := d.db.WithContext(ctx).Model(&Entry{}).
		Where("code = ?", entry.Code).
		Updates(map[string]interface{}{
			"name":       entry.Name,
			"phone":      entry.Phone,
			"place":      entry.Place,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return Entry{}, entryWriteErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return Entry{}, ErrEntryNotFound
	}

	return d.FindByCode(ctx, entry.Code)
}

func (d *EntryDAO) Delete(ctx context.Context, code string) error {
	result := d.db.WithContext(ctx).Where("code = ?", code).Delete(&Entry{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrEntryInUse
		}

		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}
