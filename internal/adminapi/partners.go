package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
	"github.com/talkincode/toughwms/pkg/common"
)

type partnerPayload struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Kind    string `json:"kind" validate:"required,oneof=supplier customer"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"omitempty,max=500"`
	City    string `json:"city" validate:"omitempty,max=64"`
	Remark  string `json:"remark" validate:"omitempty,max=500"`
}

func registerPartnersRoutes() {
	webserver.ApiGET("/wms/partners", listPartners)
	webserver.ApiGET("/wms/partners/:id", getPartner)
	webserver.ApiPOST("/wms/partners", createPartner)
	webserver.ApiPUT("/wms/partners/:id", updatePartner)
	webserver.ApiDELETE("/wms/partners/:id", deletePartner)
}

func listPartners(c echo.Context) error {
	page, pageSize := parsePagination(c)
	q := strings.TrimSpace(c.QueryParam("q"))
	kind := strings.TrimSpace(c.QueryParam("kind"))

	db := GetDB(c).Model(&domain.SysPartner{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query partners", err.Error())
	}
	var rows []domain.SysPartner
	if err := db.Order("name ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query partners", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getPartner(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid partner ID", nil)
	}
	var p domain.SysPartner
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Partner not found", nil)
	}
	return ok(c, p)
}

func createPartner(c echo.Context) error {
	var payload partnerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse partner", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	p := domain.SysPartner{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Kind:      payload.Kind,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Address:   payload.Address,
		City:      payload.City,
		Remark:    payload.Remark,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create partner", err.Error())
	}
	oprLog(c, "create_partner", p.Name)
	return ok(c, p)
}

func updatePartner(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid partner ID", nil)
	}
	var p domain.SysPartner
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Partner not found", nil)
	}

	var payload partnerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse partner", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	p.Name = strings.TrimSpace(payload.Name)
	p.Kind = payload.Kind
	p.Email = payload.Email
	p.Phone = payload.Phone
	p.Address = payload.Address
	p.City = payload.City
	p.Remark = payload.Remark
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update partner", err.Error())
	}
	oprLog(c, "update_partner", p.Name)
	return ok(c, p)
}

func deletePartner(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid partner ID", nil)
	}

	var receipts, deliveries int64
	GetDB(c).Model(&domain.WmsReceipt{}).Where("supplier_id = ?", id).Count(&receipts)
	GetDB(c).Model(&domain.WmsDelivery{}).Where("customer_id = ?", id).Count(&deliveries)
	if receipts > 0 || deliveries > 0 {
		return fail(c, http.StatusConflict, "PARTNER_REFERENCED", "Partner is referenced by documents and cannot be deleted", nil)
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.SysPartner{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete partner", err.Error())
	}
	oprLog(c, "delete_partner", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
