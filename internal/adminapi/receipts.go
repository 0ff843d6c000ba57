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

type receiptPayload struct {
	SupplierId  int64              `json:"supplier_id,string" validate:"required"`
	WarehouseId int64              `json:"warehouse_id,string"`
	ScheduledAt *time.Time         `json:"scheduled_at"`
	Remark      string             `json:"remark" validate:"omitempty,max=500"`
	Items       []receiptItemInput `json:"items" validate:"dive"`
}

type receiptItemInput struct {
	ProductId   int64           `json:"product_id,string" validate:"required"`
	QtyReceived int64           `json:"qty_received" validate:"min=0"`
	Price       decimal.Decimal `json:"price"`
}

type receiptItemsPayload struct {
	Items []receiptItemInput `json:"items" validate:"dive"`
}

type transitionPayload struct {
	Status string `json:"status" validate:"required"`
}

// receiptView adds the computed total to the response body
type receiptView struct {
	domain.WmsReceipt
	Total string `json:"total"`
}

func receiptWithTotal(rec *domain.WmsReceipt) receiptView {
	return receiptView{WmsReceipt: *rec, Total: workflow.ReceiptTotal(rec.Items).StringFixed(2)}
}

func registerReceiptRoutes() {
	webserver.ApiGET("/wms/receipts", listReceipts)
	webserver.ApiGET("/wms/receipts/:id", getReceipt)
	webserver.ApiPOST("/wms/receipts", createReceipt)
	webserver.ApiPUT("/wms/receipts/:id", updateReceipt)
	webserver.ApiPUT("/wms/receipts/:id/items", updateReceiptItems)
	webserver.ApiPOST("/wms/receipts/:id/transition", transitionReceipt)
	webserver.ApiDELETE("/wms/receipts/:id", deleteReceipt)
}

func listReceipts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	status := strings.TrimSpace(c.QueryParam("status"))
	q := strings.TrimSpace(c.QueryParam("q"))

	db := GetDB(c).Model(&domain.WmsReceipt{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if q != "" {
		db = db.Where("number LIKE ?", "%"+strings.ToUpper(q)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query receipts", err.Error())
	}
	var rows []domain.WmsReceipt
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query receipts", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getReceipt(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid receipt ID", nil)
	}
	rec, err := GetWorkflow(c).GetReceipt(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, receiptWithTotal(rec))
}

func createReceipt(c echo.Context) error {
	var payload receiptPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse receipt", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	rec := domain.WmsReceipt{
		SupplierId:  payload.SupplierId,
		WarehouseId: payload.WarehouseId,
		ScheduledAt: payload.ScheduledAt,
		Remark:      payload.Remark,
		Items:       receiptItemsFromInput(payload.Items),
	}
	if err := GetWorkflow(c).CreateReceipt(c.Request().Context(), &rec); err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "create_receipt", rec.Number)
	return ok(c, receiptWithTotal(&rec))
}

func updateReceipt(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid receipt ID", nil)
	}
	var rec domain.WmsReceipt
	if err := GetDB(c).First(&rec, id).Error; err != nil {
		return workflowError(c, err)
	}
	if rec.IsTerminal() {
		return fail(c, http.StatusConflict, "DOCUMENT_LOCKED", "Receipt is done and can no longer be edited", nil)
	}

	var payload receiptPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse receipt", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	updates := map[string]interface{}{
		"supplier_id":  payload.SupplierId,
		"warehouse_id": payload.WarehouseId,
		"scheduled_at": payload.ScheduledAt,
		"remark":       payload.Remark,
		"updated_at":   time.Now(),
	}
	if err := GetDB(c).Model(&domain.WmsReceipt{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update receipt", err.Error())
	}

	out, err := GetWorkflow(c).GetReceipt(c.Request().Context(), id)
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "update_receipt", out.Number)
	return ok(c, receiptWithTotal(out))
}

func updateReceiptItems(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid receipt ID", nil)
	}
	var payload receiptItemsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse items", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	rec, err := GetWorkflow(c).UpdateReceiptItems(c.Request().Context(), id, receiptItemsFromInput(payload.Items))
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "update_receipt_items", rec.Number)
	return ok(c, receiptWithTotal(rec))
}

func transitionReceipt(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid receipt ID", nil)
	}
	var payload transitionPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse transition", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	rec, err := GetWorkflow(c).TransitionReceipt(c.Request().Context(), id, payload.Status)
	if err != nil {
		return workflowError(c, err)
	}
	oprLog(c, "transition_receipt", rec.Number+" -> "+payload.Status)
	return ok(c, receiptWithTotal(rec))
}

func deleteReceipt(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid receipt ID", nil)
	}
	var rec domain.WmsReceipt
	if err := GetDB(c).First(&rec, id).Error; err != nil {
		return workflowError(c, err)
	}
	if rec.IsTerminal() {
		return fail(c, http.StatusConflict, "DOCUMENT_LOCKED", "Receipt is done and cannot be deleted", nil)
	}

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", id).Delete(&domain.WmsReceiptItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.WmsReceipt{}, id).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete receipt", err.Error())
	}
	oprLog(c, "delete_receipt", rec.Number)
	return ok(c, map[string]interface{}{"id": id})
}

func receiptItemsFromInput(in []receiptItemInput) []domain.WmsReceiptItem {
	items := make([]domain.WmsReceiptItem, 0, len(in))
	for _, it := range in {
		items = append(items, domain.WmsReceiptItem{
			ProductId:   it.ProductId,
			QtyReceived: it.QtyReceived,
			Price:       it.Price,
		})
	}
	return items
}
