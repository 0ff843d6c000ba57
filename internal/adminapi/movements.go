package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
)

func registerMovementRoutes() {
	webserver.ApiGET("/wms/movements", listMovements)
}

// listMovements returns the stock movement ledger, filterable by
// product, document kind, or document number
func listMovements(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.WmsStockMovement{})
	if v := c.QueryParam("product_id"); v != "" {
		db = db.Where("product_id = ?", cast.ToInt64(v))
	}
	if v := strings.TrimSpace(c.QueryParam("doc_kind")); v != "" {
		db = db.Where("doc_kind = ?", v)
	}
	if v := strings.TrimSpace(c.QueryParam("doc_number")); v != "" {
		db = db.Where("doc_number = ?", strings.ToUpper(v))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query movements", err.Error())
	}
	var rows []domain.WmsStockMovement
	if err := db.Order("created_at DESC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query movements", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}
