package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
	"github.com/talkincode/toughwms/pkg/common"
)

type warehousePayload struct {
	Code    string `json:"code" validate:"required,min=1,max=32"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"omitempty,max=500"`
	Remark  string `json:"remark" validate:"omitempty,max=500"`
}

func registerWarehouseRoutes() {
	webserver.ApiGET("/wms/warehouses", listWarehouses)
	webserver.ApiPOST("/wms/warehouses", createWarehouse)
	webserver.ApiPUT("/wms/warehouses/:id", updateWarehouse)
	webserver.ApiDELETE("/wms/warehouses/:id", deleteWarehouse)
}

func listWarehouses(c echo.Context) error {
	var rows []domain.WmsWarehouse
	if err := GetDB(c).Order("code ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query warehouses", err.Error())
	}
	return ok(c, rows)
}

func createWarehouse(c echo.Context) error {
	var payload warehousePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse warehouse", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	var dup domain.WmsWarehouse
	if err := GetDB(c).Where("code = ?", strings.TrimSpace(payload.Code)).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_CODE", "Warehouse with this code already exists", nil)
	}

	w := domain.WmsWarehouse{
		ID:      common.UUIDint64(),
		Code:    strings.TrimSpace(payload.Code),
		Name:    strings.TrimSpace(payload.Name),
		Address: payload.Address,
		Remark:  payload.Remark,
	}
	if err := GetDB(c).Create(&w).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create warehouse", err.Error())
	}
	oprLog(c, "create_warehouse", w.Code)
	return ok(c, w)
}

func updateWarehouse(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid warehouse ID", nil)
	}
	var w domain.WmsWarehouse
	if err := GetDB(c).Where("id = ?", id).First(&w).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Warehouse not found", nil)
	}

	var payload warehousePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse warehouse", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	w.Code = strings.TrimSpace(payload.Code)
	w.Name = strings.TrimSpace(payload.Name)
	w.Address = payload.Address
	w.Remark = payload.Remark

	if err := GetDB(c).Save(&w).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update warehouse", err.Error())
	}
	oprLog(c, "update_warehouse", w.Code)
	return ok(c, w)
}

func deleteWarehouse(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid warehouse ID", nil)
	}

	var products int64
	GetDB(c).Model(&domain.WmsProduct{}).Where("warehouse_id = ?", id).Count(&products)
	if products > 0 {
		return fail(c, http.StatusConflict, "WAREHOUSE_REFERENCED", "Warehouse still holds products and cannot be deleted", nil)
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.WmsWarehouse{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete warehouse", err.Error())
	}
	oprLog(c, "delete_warehouse", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
