package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
	"github.com/talkincode/toughwms/pkg/common"
)

type productPayload struct {
	Sku         string          `json:"sku" validate:"required,min=1,max=64"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Category    string          `json:"category" validate:"omitempty,max=64"`
	Uom         string          `json:"uom" validate:"omitempty,max=32"`
	MinQty      int64           `json:"min_qty" validate:"omitempty,min=0"`
	Price       decimal.Decimal `json:"price"`
	WarehouseId int64           `json:"warehouse_id,string"`
	Location    string          `json:"location" validate:"omitempty,max=64"`
	Remark      string          `json:"remark" validate:"omitempty,max=500"`
}

type adjustPayload struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,min=1,max=255"`
}

// productCsvRecord is the CSV import/export row shape
type productCsvRecord struct {
	Sku      string `csv:"sku"`
	Name     string `csv:"name"`
	Category string `csv:"category"`
	Uom      string `csv:"uom"`
	MinQty   int64  `csv:"min_qty"`
	Price    string `csv:"price"`
	OnHand   int64  `csv:"on_hand_qty"`
	Location string `csv:"location"`
}

// registerProductRoutes registers product CRUD and stock endpoints
func registerProductRoutes() {
	webserver.ApiGET("/wms/products", listProducts)
	webserver.ApiGET("/wms/products/:id", getProduct)
	webserver.ApiPOST("/wms/products", createProduct)
	webserver.ApiPUT("/wms/products/:id", updateProduct)
	webserver.ApiDELETE("/wms/products/:id", deleteProduct)
	webserver.ApiPOST("/wms/products/:id/adjust", adjustProduct)
	webserver.ApiGET("/wms/products/export/csv", exportProductsCsv)
	webserver.ApiPOST("/wms/products/import/csv", importProductsCsv)
	webserver.ApiGET("/wms/products/export/xlsx", exportStockReport)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	category := strings.TrimSpace(c.QueryParam("category"))
	lowStock := c.QueryParam("low_stock") == "true"

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":          "id",
		"sku":         "sku",
		"name":        "name",
		"price":       "price",
		"on_hand_qty": "on_hand_qty",
		"created_at":  "created_at",
		"updated_at":  "updated_at",
	}
	sortCol, exists := allowed[sortField]
	if !exists || sortCol == "" {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.WmsProduct{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if lowStock {
		db = db.Where("min_qty > 0 AND on_hand_qty < min_qty")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.WmsProduct
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.WmsProduct
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	if payload.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price cannot be negative", nil)
	}

	var dup domain.WmsProduct
	if err := GetDB(c).Where("sku = ?", strings.TrimSpace(payload.Sku)).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_SKU", "Product with this SKU already exists", nil)
	}

	now := time.Now()
	p := domain.WmsProduct{
		ID:          common.UUIDint64(),
		Sku:         strings.TrimSpace(payload.Sku),
		Name:        strings.TrimSpace(payload.Name),
		Category:    payload.Category,
		Uom:         common.IfEmptyStr(payload.Uom, "pcs"),
		MinQty:      payload.MinQty,
		Price:       payload.Price,
		WarehouseId: payload.WarehouseId,
		Location:    payload.Location,
		Remark:      payload.Remark,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	oprLog(c, "create_product", p.Sku)
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.WmsProduct
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	if payload.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price cannot be negative", nil)
	}

	// on-hand and reserved quantities are never edited here; they only
	// change through the workflow and adjust endpoints
	p.Sku = strings.TrimSpace(payload.Sku)
	p.Name = strings.TrimSpace(payload.Name)
	p.Category = payload.Category
	p.Uom = common.IfEmptyStr(payload.Uom, "pcs")
	p.MinQty = payload.MinQty
	p.Price = payload.Price
	p.WarehouseId = payload.WarehouseId
	p.Location = payload.Location
	p.Remark = payload.Remark
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	oprLog(c, "update_product", p.Sku)
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	// products referenced by documents are kept for history
	var refs int64
	GetDB(c).Model(&domain.WmsStockMovement{}).Where("product_id = ?", id).Count(&refs)
	if refs > 0 {
		return fail(c, http.StatusConflict, "PRODUCT_REFERENCED", "Product is referenced by stock movements and cannot be deleted", nil)
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.WmsProduct{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	oprLog(c, "delete_product", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}

func adjustProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload adjustPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse adjustment", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	if err := GetWorkflow(c).AdjustProduct(c.Request().Context(), id, payload.Delta, payload.Reason, currentOprName(c)); err != nil {
		return workflowError(c, err)
	}

	var p domain.WmsProduct
	if err := GetDB(c).First(&p, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to reload product", err.Error())
	}
	oprLog(c, "adjust_product", p.Sku)
	return ok(c, p)
}

func exportProductsCsv(c echo.Context) error {
	var rows []domain.WmsProduct
	if err := GetDB(c).Order("sku ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	records := make([]productCsvRecord, 0, len(rows))
	for _, p := range rows {
		records = append(records, productCsvRecord{
			Sku:      p.Sku,
			Name:     p.Name,
			Category: p.Category,
			Uom:      p.Uom,
			MinQty:   p.MinQty,
			Price:    p.Price.StringFixed(2),
			OnHand:   p.OnHandQty,
			Location: p.Location,
		})
	}

	data, err := gocsv.MarshalString(&records)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to marshal csv", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}

func importProductsCsv(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing csv file", nil)
	}
	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open csv file", err.Error())
	}
	defer src.Close()

	var records []productCsvRecord
	if err := gocsv.Unmarshal(src, &records); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse csv file", err.Error())
	}

	var imported, skipped int
	db := GetDB(c)
	for _, rec := range records {
		sku := strings.TrimSpace(rec.Sku)
		if sku == "" || strings.TrimSpace(rec.Name) == "" {
			skipped++
			continue
		}
		price, err := decimal.NewFromString(common.IfEmptyStr(rec.Price, "0"))
		if err != nil || price.IsNegative() {
			skipped++
			continue
		}

		var existing domain.WmsProduct
		err = db.Where("sku = ?", sku).First(&existing).Error
		if err == nil {
			db.Model(&domain.WmsProduct{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
				"name":       strings.TrimSpace(rec.Name),
				"category":   rec.Category,
				"uom":        common.IfEmptyStr(rec.Uom, "pcs"),
				"min_qty":    rec.MinQty,
				"price":      price,
				"location":   rec.Location,
				"updated_at": time.Now(),
			})
			imported++
			continue
		}
		if err := db.Create(&domain.WmsProduct{
			ID:        common.UUIDint64(),
			Sku:       sku,
			Name:      strings.TrimSpace(rec.Name),
			Category:  rec.Category,
			Uom:       common.IfEmptyStr(rec.Uom, "pcs"),
			MinQty:    rec.MinQty,
			OnHandQty: rec.OnHand,
			Price:     price,
			Location:  rec.Location,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error; err != nil {
			skipped++
			continue
		}
		imported++
	}

	oprLog(c, "import_products", file.Filename)
	return ok(c, map[string]interface{}{"imported": imported, "skipped": skipped})
}

// exportStockReport writes all products with their stock state to xlsx
func exportStockReport(c echo.Context) error {
	var rows []domain.WmsProduct
	if err := GetDB(c).Order("sku ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"SKU", "Name", "Category", "UoM", "On hand", "Reserved", "Free", "Minimum", "Price", "Location"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%s1", excelize.ToAlphaString(i)), h)
	}
	for r, p := range rows {
		values := []interface{}{
			p.Sku, p.Name, p.Category, p.Uom,
			p.OnHandQty, p.ReservedQty, p.FreeQty(), p.MinQty,
			p.Price.StringFixed(2), p.Location,
		}
		for i, v := range values {
			xlsx.SetCellValue(sheet, fmt.Sprintf("%s%d", excelize.ToAlphaString(i), r+2), v)
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="stock_report.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response())
}
