package paging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordstudy/internal/storeerr"
)

type card struct {
	ID    uint `gorm:"primaryKey"`
	Name  string
	Score int

	Hits int64 `gorm:"->;-:migration"`
}

type hit struct {
	ID     uint `gorm:"primaryKey"`
	CardID uint
}

var cardFields = NewFields("card", "cards.id", "name", map[string]string{
	"name":  "cards.name",
	"score": "cards.score",
	"hits":  "COALESCE(hit_counts.total, 0)",
})

func withHits(q *gorm.DB) *gorm.DB {
	return q.Select("cards.*, COALESCE(hit_counts.total, 0) AS hits").
		Joins("LEFT JOIN (SELECT card_id, COUNT(*) AS total FROM hits GROUP BY card_id) AS hit_counts ON hit_counts.card_id = cards.id")
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "paging.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&card{}, &hit{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func seedCards(t *testing.T, db *gorm.DB) {
	cards := []card{
		{Name: "b", Score: 2},
		{Name: "a", Score: 2},
		{Name: "c", Score: 1},
	}
	require.NoError(t, db.Create(&cards).Error)
	// "c" gets two hits, "b" one, "a" none.
	require.NoError(t, db.Create(&[]hit{{CardID: cards[2].ID}, {CardID: cards[2].ID}, {CardID: cards[0].ID}}).Error)
}

func names(cards []card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Name)
	}
	return out
}

func TestFields_Order(t *testing.T) {
	order, err := cardFields.Order(Request{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "cards.name ASC, cards.id ASC", order)

	order, err = cardFields.Order(Request{Limit: 10, SortField: "hits", SortDir: "DESC"})
	require.NoError(t, err)
	assert.Equal(t, "COALESCE(hit_counts.total, 0) DESC, cards.id ASC", order)
}

func TestFields_OrderRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		msg  string
	}{
		{"negative skip", Request{Skip: -1, Limit: 10}, "skip must be non-negative"},
		{"zero limit", Request{Limit: 0}, "limit must be between 1 and 100"},
		{"limit too large", Request{Limit: MaxLimit + 1}, "limit must be between 1 and 100"},
		{"unknown field", Request{Limit: 10, SortField: "id; DROP TABLE cards"}, "unknown card sort field"},
		{"bad direction", Request{Limit: 10, SortDir: "sideways"}, "sort direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cardFields.Order(tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, storeerr.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestFields_Names(t *testing.T) {
	assert.Equal(t, []string{"hits", "name", "score"}, cardFields.Names())
	assert.Equal(t, "name", cardFields.Default())
}

func TestNewFields_PanicsOnUnknownDefault(t *testing.T) {
	assert.Panics(t, func() {
		NewFields("card", "cards.id", "missing", map[string]string{"name": "cards.name"})
	})
}

func TestFetch_SortsByStoredColumn(t *testing.T) {
	db := setupTestDB(t)
	seedCards(t, db)

	items, total, err := Fetch[card](db.Model(&card{}), Request{Limit: 10, SortField: "name"}, cardFields, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"a", "b", "c"}, names(items))
}

func TestFetch_SortsByComputedColumnWithZeroDefault(t *testing.T) {
	db := setupTestDB(t)
	seedCards(t, db)

	items, total, err := Fetch[card](db.Model(&card{}), Request{Limit: 10, SortField: "hits", SortDir: Desc}, cardFields, withHits)

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"c", "b", "a"}, names(items))
	assert.Equal(t, int64(2), items[0].Hits)
	assert.Equal(t, int64(0), items[2].Hits)
}

func TestFetch_TieBreakIsStable(t *testing.T) {
	db := setupTestDB(t)
	seedCards(t, db)

	req := Request{Limit: 10, SortField: "score", SortDir: Desc}
	first, _, err := Fetch[card](db.Model(&card{}), req, cardFields, nil)
	require.NoError(t, err)
	second, _, err := Fetch[card](db.Model(&card{}), req, cardFields, nil)
	require.NoError(t, err)

	// "b" and "a" tie on score 2; id ascending puts "b" (inserted first) ahead.
	assert.Equal(t, []string{"b", "a", "c"}, names(first))
	assert.Equal(t, names(first), names(second))
}

func TestFetch_PagesAreDisjointAndShareTotal(t *testing.T) {
	db := setupTestDB(t)
	seedCards(t, db)

	p1, t1, err := Fetch[card](db.Model(&card{}), Request{Skip: 0, Limit: 1}, cardFields, nil)
	require.NoError(t, err)
	p2, t2, err := Fetch[card](db.Model(&card{}), Request{Skip: 1, Limit: 1}, cardFields, nil)
	require.NoError(t, err)
	all, t3, err := Fetch[card](db.Model(&card{}), Request{Skip: 0, Limit: MaxLimit}, cardFields, nil)
	require.NoError(t, err)

	require.Len(t, p1, 1)
	require.Len(t, p2, 1)
	assert.NotEqual(t, p1[0].ID, p2[0].ID)
	assert.Equal(t, t1, t2)
	assert.Equal(t, t1, t3)
	assert.Equal(t, all[0].ID, p1[0].ID)
	assert.Equal(t, all[1].ID, p2[0].ID)
}

func TestFetch_SkipBeyondTotalIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	seedCards(t, db)

	items, total, err := Fetch[card](db.Model(&card{}), Request{Skip: 10, Limit: 5}, cardFields, nil)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Equal(t, int64(3), total)
}

func TestFetch_InvalidRequestDoesNotQuery(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := Fetch[card](db.Model(&card{}), Request{Limit: 0}, cardFields, nil)

	assert.ErrorIs(t, err, storeerr.ErrInvalidArgument)
}
