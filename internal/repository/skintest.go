package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/goldlab/assay-api/internal/domain"
	"github.com/goldlab/assay-api/internal/repository/dao"
)

var (
	ErrSkinTestNotFound = dao.ErrSkinTestNotFound
	ErrSkinTestExists   = dao.ErrSkinTestExists
)

type SkinTestDAO interface {
	Insert(ctx context.Context, test dao.SkinTest) (dao.SkinTest, error)
	FindByTokenNo(ctx context.Context, tokenNo string) (dao.SkinTest, error)
	Find(ctx context.Context, from, to time.Time, offset, limit int) ([]dao.SkinTest, int64, error)
	Update(ctx context.Context, test dao.SkinTest) (dao.SkinTest, error)
	Delete(ctx context.Context, tokenNo string) error
	CountIssued(ctx context.Context, from, to time.Time) (int64, error)
}

type SkinTestRepository struct {
	dao SkinTestDAO
	loc *time.Location
}

func NewSkinTestRepository(dao SkinTestDAO, loc *time.Location) *SkinTestRepository {
	return &SkinTestRepository{
		dao: dao,
		loc: loc,
	}
}

func (r *SkinTestRepository) Create(ctx context.Context, test domain.SkinTest) (domain.SkinTest, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(test))
	if err != nil {
		return domain.SkinTest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *SkinTestRepository) FindByTokenNo(ctx context.Context, tokenNo string) (domain.SkinTest, error) {
	found, err := r.dao.FindByTokenNo(ctx, tokenNo)
	if err != nil {
		return domain.SkinTest{}, fmt.Errorf("r.dao.FindByTokenNo -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *SkinTestRepository) Find(ctx context.Context, filter domain.SkinTestFilter) ([]domain.SkinTest, int64, error) {
	found, total, err := r.dao.Find(ctx, filter.From, filter.To, filter.Page.Offset(), filter.Page.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Find -> %w", err)
	}

	tests := make([]domain.SkinTest, 0, len(found))
	for _, t := range found {
		tests = append(tests, r.daoToDomain(t))
	}

	return tests, total, nil
}

func (r *SkinTestRepository) Update(ctx context.Context, test domain.SkinTest) (domain.SkinTest, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(test))
	if err != nil {
		return domain.SkinTest{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *SkinTestRepository) Delete(ctx context.Context, tokenNo string) error {
	if err := r.dao.Delete(ctx, tokenNo); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *SkinTestRepository) CountIssued(ctx context.Context, from, to time.Time) (int64, error) {
	n, err := r.dao.CountIssued(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountIssued -> %w", err)
	}

	return n, nil
}

func (r *SkinTestRepository) domainToDao(s domain.SkinTest) dao.SkinTest {
	return dao.SkinTest{
		TokenNo:   s.TokenNo,
		Gold:      s.Gold,
		Silver:    s.Silver,
		Copper:    s.Copper,
		Zinc:      s.Zinc,
		Cadmium:   s.Cadmium,
		Nickel:    s.Nickel,
		Iridium:   s.Iridium,
		Ruthenium: s.Ruthenium,
		Osmium:    s.Osmium,
		Rhodium:   s.Rhodium,
		Lead:      s.Lead,
		Tungsten:  s.Tungsten,
		Platinum:  s.Platinum,
		Palladium: s.Palladium,
		Others:    s.Others,
		Karat:     s.Karat,
		Remarks:   s.Remarks,
	}
}

func (r *SkinTestRepository) daoToDomain(s dao.SkinTest) domain.SkinTest {
	test := domain.SkinTest{
		TokenNo: s.TokenNo,
		Composition: domain.Composition{
			Gold:      s.Gold,
			Silver:    s.Silver,
			Copper:    s.Copper,
			Zinc:      s.Zinc,
			Cadmium:   s.Cadmium,
			Nickel:    s.Nickel,
			Iridium:   s.Iridium,
			Ruthenium: s.Ruthenium,
			Osmium:    s.Osmium,
			Rhodium:   s.Rhodium,
			Lead:      s.Lead,
			Tungsten:  s.Tungsten,
			Platinum:  s.Platinum,
			Palladium: s.Palladium,
			Others:    s.Others,
		},
		Karat:     s.Karat,
		Remarks:   s.Remarks,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}

	if s.Token != nil {
		test.Code = s.Token.Code
		test.Name = s.Token.Entry.Name
		test.Weight = s.Token.Weight
		test.Sample = s.Token.Sample
		test.IssuedAt = s.Token.IssuedAt
		test.Date = s.Token.IssuedAt.In(r.loc).Format(domain.DateLayout)
	}

	return test
}
