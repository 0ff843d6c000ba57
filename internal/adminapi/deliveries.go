package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
	"github.com/talkincode/toughwms/internal/workflow"
	"gorm.io/gorm"
)

type deliveryPayload struct {
	CustomerId int64               `json:"customer_id,string" validate:"required"`
	DeliveryAt *time.Time          `json:"delivery_at"`
	Remark     string              `json:"remark" validate:"omitempty,max=500"`
	Items      []deliveryItemInput `json:"items" validate:"dive"`
}

type deliveryItemInput struct {
	ProductId int64           `json:"product_id,string" validate:"required"`
	QtyPicked int64           `json:"qty_picked" validate:"min=0"`
	QtyPacked int64           `json:"qty_packed" validate:"min=0"`
	Price     decimal.Decimal `json:"price"`
}

type deliveryItemsPayload struct {
	Items []deliveryItemInput `json:"items" validate:"dive"`
}

type deliveryView struct {
	domain.WmsDelivery
	Total string `json:"total"`
}

func deliveryWithTotal(del *domain.WmsDelivery) deliveryView {
	return deliveryView{WmsDelivery: *del, Total: workflow.DeliveryTotal(del.Items).StringFixed(2)}
}

func registerDeliveryRoutes() {
	webserver.ApiGET("/wms/deliveries", listDeliveries)
	webserver.ApiGET("/wms/deliveries/:id", getDelivery)
	webserver.ApiPOST("/wms/deliveries", createDelivery)
	webserver.ApiPUT("/wms/deliveries/:id", updateDelivery)
	webserver.ApiPUT("/wms/deliveries/:id/items", updateDeliveryItems)
	webserver.ApiPOST("/wms/deliveries/:id/transition", transitionDelivery)
	webserver.ApiDELETE("/wms/deliveries/:id", deleteDelivery)
}

func listDeliveries(c echo.Context) error {
	page, pageSize := parsePagination(c)
	status := strings.TrimSpace(c.QueryParam("status"))
	q := strings.TrimSpace(c.QueryParam("q"))

	db := GetDB(c).Model(&domain.WmsDelivery{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if q != "" {
		db = db.Where("number LIKE ?", "%"+strings.ToUpper(q)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query deliveries", err.Error())
	}
	var rows []domain.WmsDelivery
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query deliveries", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getDelivery(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid delivery ID", nil)
	}
	del, err := GetWorkflow(c).GetDelivery(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, deliveryWithTotal(del))
}

func createDelivery(c echo.Context) error {
	var payload deliveryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse delivery", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	del := domain.WmsDelivery{
		CustomerId: payload.CustomerId,
		DeliveryAt: payload.DeliveryAt,
		Remark:     payload.Remark,
		Items:      deliveryItemsFromInput(payload.Items),
	}
	if err := GetWorkflow(c).CreateDelivery(c.Request().Context(), &del); err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "create_delivery", del.Number)
	return ok(c, deliveryWithTotal(&del))
}

func updateDelivery(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid delivery ID", nil)
	}
	var del domain.WmsDelivery
	if err := GetDB(c).First(&del, id).Error; err != nil {
		return workflowError(c, err)
	}
	if del.IsTerminal() {
		return fail(c, http.StatusConflict, "DOCUMENT_LOCKED", "Delivery is validated and can no longer be edited", nil)
	}

	var payload deliveryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse delivery", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	updates := map[string]interface{}{
		"customer_id": payload.CustomerId,
		"delivery_at": payload.DeliveryAt,
		"remark":      payload.Remark,
		"updated_at":  time.Now(),
	}
	if err := GetDB(c).Model(&domain.WmsDelivery{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update delivery", err.Error())
	}

	out, err := GetWorkflow(c).GetDelivery(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "update_delivery", out.Number)
	return ok(c, deliveryWithTotal(out))
}

func updateDeliveryItems(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid delivery ID", nil)
	}
	var payload deliveryItemsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse items", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	del, err := GetWorkflow(c).UpdateDeliveryItems(c.Request().Context(), id, deliveryItemsFromInput(payload.Items))
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "update_delivery_items", del.Number)
	return ok(c, deliveryWithTotal(del))
}

func transitionDelivery(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid delivery ID", nil)
	}
	var payload transitionPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse transition", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	del, err := GetWorkflow(c).TransitionDelivery(c.Request().Context(), id, payload.Status)
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "transition_delivery", del.Number+" -> "+payload.Status)
	return ok(c, deliveryWithTotal(del))
}

func deleteDelivery(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid delivery ID", nil)
	}
	var del domain.WmsDelivery
	if err := GetDB(c).First(&del, id).Error; err != nil {
		return workflowError(c, err)
	}
	if del.IsTerminal() {
		return fail(c, http.StatusConflict, "DOCUMENT_LOCKED", "Delivery is validated and cannot be deleted", nil)
	}

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("delivery_id = ?", id).Delete(&domain.WmsDeliveryItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.WmsDelivery{}, id).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete delivery", err.Error())
	}
	oprLog(c, "delete_delivery", del.Number)
	return ok(c, map[string]interface{}{"id": id})
}

func deliveryItemsFromInput(in []deliveryItemInput) []domain.WmsDeliveryItem {
	items := make([]domain.WmsDeliveryItem, 0, len(in))
	for _, it := range in {
		items = append(items, domain.WmsDeliveryItem{
			ProductId: it.ProductId,
			QtyPicked: it.QtyPicked,
			QtyPacked: it.QtyPacked,
			Price:     it.Price,
		})
	}
	return items
}
