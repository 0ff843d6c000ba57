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

type manufacturePayload struct {
	ProductId int64            `json:"product_id,string" validate:"required"`
	Qty       int64            `json:"qty" validate:"required,min=1"`
	Remark    string           `json:"remark" validate:"omitempty,max=500"`
	Items     []componentInput `json:"items" validate:"dive"`
}

type componentInput struct {
	ProductId int64           `json:"product_id,string" validate:"required"`
	Qty       int64           `json:"qty" validate:"min=0"`
	Price     decimal.Decimal `json:"price"`
}

type componentsPayload struct {
	Items []componentInput `json:"items" validate:"dive"`
}

type manufactureView struct {
	domain.WmsManufactureOrder
	Total string `json:"total"`
}

func manufactureWithTotal(mo *domain.WmsManufactureOrder) manufactureView {
	return manufactureView{WmsManufactureOrder: *mo, Total: workflow.ManufactureTotal(mo).StringFixed(2)}
}

func registerManufactureRoutes() {
	webserver.ApiGET("/wms/manufacture", listManufactureOrders)
	webserver.ApiGET("/wms/manufacture/:id", getManufactureOrder)
	webserver.ApiPOST("/wms/manufacture", createManufactureOrder)
	webserver.ApiPUT("/wms/manufacture/:id", updateManufactureOrder)
	webserver.ApiPUT("/wms/manufacture/:id/items", updateManufactureComponents)
	webserver.ApiPOST("/wms/manufacture/:id/transition", transitionManufactureOrder)
	webserver.ApiDELETE("/wms/manufacture/:id", deleteManufactureOrder)
}

func listManufactureOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	status := strings.TrimSpace(c.QueryParam("status"))
	q := strings.TrimSpace(c.QueryParam("q"))

	db := GetDB(c).Model(&domain.WmsManufactureOrder{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if q != "" {
		db = db.Where("number LIKE ?", "%"+strings.ToUpper(q)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query manufacture orders", err.Error())
	}
	var rows []domain.WmsManufactureOrder
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query manufacture orders", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getManufactureOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	mo, err := GetWorkflow(c).GetManufactureOrder(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, manufactureWithTotal(mo))
}

func createManufactureOrder(c echo.Context) error {
	var payload manufacturePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse manufacture order", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	mo := domain.WmsManufactureOrder{
		ProductId: payload.ProductId,
		Qty:       payload.Qty,
		Remark:    payload.Remark,
		Items:     componentsFromInput(payload.Items),
	}
	if err := GetWorkflow(c).CreateManufactureOrder(c.Request().Context(), &mo); err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "create_manufacture_order", mo.Number)
	return ok(c, manufactureWithTotal(&mo))
}

func updateManufactureOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var mo domain.WmsManufactureOrder
	if err := GetDB(c).First(&mo, id).Error; err != nil {
		return workflowError(c, err)
	}
	if mo.IsTerminal() {
		return fail(c, http.StatusConflict, "DOCUMENT_LOCKED", "Manufacture order is done and can no longer be edited", nil)
	}

	var payload manufacturePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse manufacture order", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	updates := map[string]interface{}{
		"product_id": payload.ProductId,
		"qty":        payload.Qty,
		"remark":     payload.Remark,
		"updated_at": time.Now(),
	}
	if err := GetDB(c).Model(&domain.WmsManufactureOrder{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update manufacture order", err.Error())
	}

	out, err := GetWorkflow(c).GetManufactureOrder(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "update_manufacture_order", out.Number)
	return ok(c, manufactureWithTotal(out))
}

func updateManufactureComponents(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload componentsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse components", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	mo, err := GetWorkflow(c).UpdateManufactureComponents(c.Request().Context(), id, componentsFromInput(payload.Items))
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "update_manufacture_components", mo.Number)
	return ok(c, manufactureWithTotal(mo))
}

func transitionManufactureOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload transitionPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse transition", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	mo, err := GetWorkflow(c).TransitionManufactureOrder(c.Request().Context(), id, payload.Status)
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "transition_manufacture_order", mo.Number+" -> "+payload.Status)
	return ok(c, manufactureWithTotal(mo))
}

func deleteManufactureOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var mo domain.WmsManufactureOrder
	if err := GetDB(c).First(&mo, id).Error; err != nil {
		return workflowError(c, err)
	}
	if mo.IsTerminal() {
		return fail(c, http.StatusConflict, "DOCUMENT_LOCKED", "Manufacture order is done and cannot be deleted", nil)
	}

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.WmsManufactureComponent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.WmsManufactureOrder{}, id).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete manufacture order", err.Error())
	}
	oprLog(c, "delete_manufacture_order", mo.Number)
	return ok(c, map[string]interface{}{"id": id})
}

func componentsFromInput(in []componentInput) []domain.WmsManufactureComponent {
	items := make([]domain.WmsManufactureComponent, 0, len(in))
	for _, it := range in {
		items = append(items, domain.WmsManufactureComponent{
			ProductId: it.ProductId,
			Qty:       it.Qty,
			Price:     it.Price,
		})
	}
	return items
}
