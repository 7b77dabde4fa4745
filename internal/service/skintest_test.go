package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldlab/assay-api/internal/domain"
)

func TestSkinTestService_CreateSkinTest(t *testing.T) {
	repo := fakeSkinTests{}
	svc := NewSkinTestService(repo)

	created, err := svc.CreateSkinTest(context.Background(), domain.SkinTest{
		TokenNo: "A0001",
		Composition: domain.Composition{
			Gold:   dec("91.666"),
			Silver: dec("4.5"),
			Copper: dec("3.834"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "91.67", created.Gold.StringFixed(2))
	assert.Equal(t, "22.00", created.Karat.StringFixed(2))
	assert.Contains(t, repo, "A0001")

	_, err = svc.CreateSkinTest(context.Background(), domain.SkinTest{TokenNo: "A0001"})
	assert.ErrorIs(t, err, ErrSkinTestExists)
}

func TestSkinTestService_CreateSkinTest_Invalid(t *testing.T) {
	repo := fakeSkinTests{}
	svc := NewSkinTestService(repo)

	_, err := svc.CreateSkinTest(context.Background(), domain.SkinTest{
		TokenNo:     "A0001",
		Composition: domain.Composition{Gold: dec("91.60"), Silver: dec("9.00")},
	})
	assert.ErrorIs(t, err, ErrCompositionOverflow)

	_, err = svc.CreateSkinTest(context.Background(), domain.SkinTest{
		TokenNo:     "A0001",
		Composition: domain.Composition{Gold: dec("-1")},
	})
	assert.ErrorIs(t, err, ErrPercentageRange)
	assert.Empty(t, repo)
}

func TestSkinTestService_UpdateAndDelete(t *testing.T) {
	repo := fakeSkinTests{
		"A0001": {TokenNo: "A0001", Composition: domain.Composition{Gold: dec("75.00")}},
	}
	svc := NewSkinTestService(repo)

	updated, err := svc.UpdateSkinTest(context.Background(), domain.SkinTest{
		TokenNo:     "A0001",
		Composition: domain.Composition{Gold: dec("87.50")},
		Remarks:     "retest",
	})
	require.NoError(t, err)
	assert.Equal(t, "21.00", updated.Karat.StringFixed(2))

	_, err = svc.UpdateSkinTest(context.Background(), domain.SkinTest{TokenNo: "A0009"})
	assert.ErrorIs(t, err, ErrSkinTestNotFound)

	require.NoError(t, svc.DeleteSkinTest(context.Background(), "A0001"))
	assert.ErrorIs(t, svc.DeleteSkinTest(context.Background(), "A0001"), ErrSkinTestNotFound)
}

func TestSkinTestService_ListSkinTests(t *testing.T) {
	repo := fakeSkinTests{
		"A0001": {TokenNo: "A0001"},
		"A0002": {TokenNo: "A0002"},
	}
	svc := NewSkinTestService(repo)

	page, err := svc.ListSkinTests(context.Background(), domain.SkinTestFilter{Page: domain.NewPage(1, 20)})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
}
