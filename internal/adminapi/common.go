package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/toughwms/internal/app"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
	"github.com/talkincode/toughwms/internal/workflow"
	"github.com/talkincode/toughwms/pkg/common"
	"gorm.io/gorm"
)

// RestResult is the envelope of every non-paged response
type RestResult struct {
	Code    int         `json:"code"`
	Msgtype string      `json:"msgtype,omitempty"`
	Message string      `json:"message,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse is the envelope of paged list responses
type ListResponse struct {
	Items   interface{} `json:"items"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// InitRouter registers all admin api routes; call after webserver.Init
func InitRouter() {
	registerAuthRoutes()
	registerProductRoutes()
	registerPartnersRoutes()
	registerWarehouseRoutes()
	registerReceiptRoutes()
	registerDeliveryRoutes()
	registerManufactureRoutes()
	registerMovementRoutes()
	registerSettingsRoutes()
}

// GetAppContext retrieves the application context injected by the webserver
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

// GetDB retrieves the gorm handle from the application context
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB()
}

// GetWorkflow retrieves the document workflow service
func GetWorkflow(c echo.Context) *workflow.Service {
	return GetAppContext(c).Workflow()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, RestResult{Code: 0, Data: data})
}

func fail(c echo.Context, status int, msgtype, message string, detail interface{}) error {
	return c.JSON(status, RestResult{
		Code:    1,
		Msgtype: msgtype,
		Message: message,
		Detail:  detail,
	})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, RestResult{Code: 0, Data: ListResponse{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	}})
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func parsePagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("perPage"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

// workflowError maps workflow errors to the http taxonomy: guard and
// input failures are recoverable client errors, locked documents are
// conflicts, everything else is a server error.
func workflowError(c echo.Context, err error) error {
	switch {
	case workflow.IsGuardError(err):
		return fail(c, http.StatusUnprocessableEntity, "GUARD_REJECTED", err.Error(), nil)
	case workflow.IsValidationError(err):
		return fail(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case workflow.IsTransitionError(err):
		return fail(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, workflow.ErrDocumentLocked):
		return fail(c, http.StatusConflict, "DOCUMENT_LOCKED", "Document is locked", err.Error())
	case errors.Is(err, workflow.ErrInsufficientStock):
		return fail(c, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", "Insufficient stock", err.Error())
	case errors.Is(err, workflow.ErrProductNotFound):
		return fail(c, http.StatusBadRequest, "PRODUCT_NOT_FOUND", "Referenced product not found", err.Error())
	case errors.Is(err, workflow.ErrNumberConflict):
		return fail(c, http.StatusConflict, "NUMBER_CONFLICT", "Document number conflict, please retry", nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Record not found", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Operation failed", err.Error())
	}
}

// currentOprName reads the operator username from the jwt token
func currentOprName(c echo.Context) string {
	token, okk := c.Get("user").(*jwt.Token)
	if !okk {
		return ""
	}
	claims, okk := token.Claims.(jwt.MapClaims)
	if !okk {
		return ""
	}
	username, _ := claims["usr"].(string)
	return username
}

// oprLog writes an operation audit row, best effort
func oprLog(c echo.Context, action, desc string) {
	_ = GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   currentOprName(c),
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}).Error
}
