package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
)

type settingPayload struct {
	Type  string `json:"type" validate:"required,max=64"`
	Name  string `json:"name" validate:"required,max=64"`
	Value string `json:"value" validate:"max=500"`
}

func registerSettingsRoutes() {
	webserver.ApiGET("/settings", listSettings)
	webserver.ApiPOST("/settings", updateSetting)
	webserver.ApiGET("/oprlog", listOprLog)
}

func listSettings(c echo.Context) error {
	db := GetDB(c).Model(&domain.SysConfig{})
	if t := strings.TrimSpace(c.QueryParam("type")); t != "" {
		db = db.Where("type = ?", t)
	}
	var rows []domain.SysConfig
	if err := db.Order("type ASC, sort ASC, name ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, rows)
}

func updateSetting(c echo.Context) error {
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse setting", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	if err := GetAppContext(c).ConfigMgr().SetValue(payload.Type, payload.Name, payload.Value); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update setting", err.Error())
	}
	oprLog(c, "update_setting", payload.Type+"."+payload.Name)
	return ok(c, map[string]interface{}{"type": payload.Type, "name": payload.Name, "value": payload.Value})
}

func listOprLog(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.SysOprLog{})
	if v := strings.TrimSpace(c.QueryParam("opr_name")); v != "" {
		db = db.Where("opr_name = ?", v)
	}
	if v := strings.TrimSpace(c.QueryParam("action")); v != "" {
		db = db.Where("opt_action = ?", v)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operation log", err.Error())
	}
	var rows []domain.SysOprLog
	if err := db.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operation log", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}
