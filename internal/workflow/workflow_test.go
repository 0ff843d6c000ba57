package workflow

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/pkg/common"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a file-backed sqlite database in the test's temp dir
// and migrates the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// immediate transactions serialize concurrent writers instead of
	// failing with SQLITE_BUSY mid-transaction
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", filepath.Join(t.TempDir(), "wms.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, onHand int64) *domain.WmsProduct {
	t.Helper()
	p := &domain.WmsProduct{
		ID:        common.UUIDint64(),
		Sku:       sku,
		Name:      "product " + sku,
		Uom:       "pcs",
		OnHandQty: onHand,
		Price:     decimal.New(500, -2),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func onHand(t *testing.T, db *gorm.DB, productID int64) int64 {
	t.Helper()
	var p domain.WmsProduct
	require.NoError(t, db.First(&p, productID).Error)
	return p.OnHandQty
}
