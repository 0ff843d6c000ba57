package adminapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/toughwms/config"
	"github.com/talkincode/toughwms/internal/app"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
	"github.com/talkincode/toughwms/pkg/common"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp builds an echo instance and an application backed by a
// temp sqlite database, without starting the web server.
func newTestApp(t *testing.T) (*echo.Echo, *app.Application) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", filepath.Join(t.TempDir(), "wms.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	application := app.NewApplication(config.DefaultAppConfig)
	application.OverrideDB(db)

	e := echo.New()
	e.Validator = webserver.NewCustomValidator()
	return e, application
}

// invoke runs a handler against a synthetic request with the
// application context injected, the way the webserver middleware does.
func invoke(t *testing.T, e *echo.Echo, a *app.Application, handler echo.HandlerFunc,
	method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(webserver.AppContextKey, a)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) RestResult {
	t.Helper()
	var out RestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateProductAndDuplicateSku(t *testing.T) {
	e, a := newTestApp(t)

	body := `{"sku":"SKU-1","name":"Widget","price":"9.90","min_qty":5}`
	rec := invoke(t, e, a, createProduct, http.MethodPost, "/api/v1/wms/products", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, 0, res.Code)

	rec = invoke(t, e, a, createProduct, http.MethodPost, "/api/v1/wms/products", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_SKU", decodeResult(t, rec).Msgtype)
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	e, a := newTestApp(t)

	body := `{"sku":"SKU-2","name":"Widget","price":"-1.00"}`
	rec := invoke(t, e, a, createProduct, http.MethodPost, "/api/v1/wms/products", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustProductEndpoint(t *testing.T) {
	e, a := newTestApp(t)

	p := domain.WmsProduct{ID: common.UUIDint64(), Sku: "ADJ-1", Name: "Bolt", OnHandQty: 10}
	require.NoError(t, a.DB().Create(&p).Error)
	id := fmt.Sprintf("%d", p.ID)

	rec := invoke(t, e, a, adjustProduct, http.MethodPost, "/api/v1/wms/products/"+id+"/adjust",
		`{"delta":-4,"reason":"cycle count"}`, map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded domain.WmsProduct
	require.NoError(t, a.DB().First(&reloaded, p.ID).Error)
	assert.EqualValues(t, 6, reloaded.OnHandQty)

	// a drop below zero is rejected and leaves stock unchanged
	rec = invoke(t, e, a, adjustProduct, http.MethodPost, "/api/v1/wms/products/"+id+"/adjust",
		`{"delta":-100,"reason":"shrinkage"}`, map[string]string{"id": id})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NoError(t, a.DB().First(&reloaded, p.ID).Error)
	assert.EqualValues(t, 6, reloaded.OnHandQty)
}

func TestReceiptLifecycleOverApi(t *testing.T) {
	e, a := newTestApp(t)

	supplier := domain.SysPartner{ID: common.UUIDint64(), Name: "Acme", Kind: domain.PartnerKindSupplier}
	require.NoError(t, a.DB().Create(&supplier).Error)
	product := domain.WmsProduct{ID: common.UUIDint64(), Sku: "RCV-1", Name: "Crate", OnHandQty: 0}
	require.NoError(t, a.DB().Create(&product).Error)

	body := fmt.Sprintf(`{"supplier_id":"%d","warehouse_id":"%d","items":[{"product_id":"%d","qty_received":10,"price":"5.00"}]}`,
		supplier.ID, app.DefaultWarehouseId, product.ID)
	rec := invoke(t, e, a, createReceipt, http.MethodPost, "/api/v1/wms/receipts", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var created domain.WmsReceipt
	require.NoError(t, a.DB().First(&created).Error)
	assert.Equal(t, domain.ReceiptStatusDraft, created.Status)
	assert.True(t, strings.HasPrefix(created.Number, "REC"))
	id := fmt.Sprintf("%d", created.ID)

	// skipping straight to done is not a legal transition
	rec = invoke(t, e, a, transitionReceipt, http.MethodPost, "/api/v1/wms/receipts/"+id+"/transition",
		`{"status":"done"}`, map[string]string{"id": id})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = invoke(t, e, a, transitionReceipt, http.MethodPost, "/api/v1/wms/receipts/"+id+"/transition",
		`{"status":"ready"}`, map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = invoke(t, e, a, transitionReceipt, http.MethodPost, "/api/v1/wms/receipts/"+id+"/transition",
		`{"status":"done"}`, map[string]string{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded domain.WmsProduct
	require.NoError(t, a.DB().First(&reloaded, product.ID).Error)
	assert.EqualValues(t, 10, reloaded.OnHandQty)

	// editing a done receipt is refused
	rec = invoke(t, e, a, updateReceiptItems, http.MethodPut, "/api/v1/wms/receipts/"+id+"/items",
		`{"items":[]}`, map[string]string{"id": id})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeliveryGuardRejectionOverApi(t *testing.T) {
	e, a := newTestApp(t)

	customer := domain.SysPartner{ID: common.UUIDint64(), Name: "Buyer", Kind: domain.PartnerKindCustomer}
	require.NoError(t, a.DB().Create(&customer).Error)
	product := domain.WmsProduct{ID: common.UUIDint64(), Sku: "DLV-1", Name: "Box", OnHandQty: 20}
	require.NoError(t, a.DB().Create(&product).Error)

	body := fmt.Sprintf(`{"customer_id":"%d","items":[{"product_id":"%d","qty_picked":0,"qty_packed":0,"price":"2.00"}]}`,
		customer.ID, product.ID)
	rec := invoke(t, e, a, createDelivery, http.MethodPost, "/api/v1/wms/deliveries", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var created domain.WmsDelivery
	require.NoError(t, a.DB().First(&created).Error)
	id := fmt.Sprintf("%d", created.ID)

	// nothing picked yet, packing is rejected by the guard
	rec = invoke(t, e, a, transitionDelivery, http.MethodPost, "/api/v1/wms/deliveries/"+id+"/transition",
		`{"status":"packed"}`, map[string]string{"id": id})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "GUARD_REJECTED", decodeResult(t, rec).Msgtype)

	var unchanged domain.WmsDelivery
	require.NoError(t, a.DB().First(&unchanged, created.ID).Error)
	assert.Equal(t, domain.DeliveryStatusPicked, unchanged.Status)
}

func TestLogin(t *testing.T) {
	e, a := newTestApp(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	opr := domain.SysOpr{
		ID:       common.UUIDint64(),
		Username: "admin",
		Password: string(hash),
		Level:    "super",
		Status:   common.ENABLED,
	}
	require.NoError(t, a.DB().Create(&opr).Error)

	rec := invoke(t, e, a, login, http.MethodPost, "/auth/login",
		`{"username":"admin","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	data, okk := res.Data.(map[string]interface{})
	require.True(t, okk)
	assert.NotEmpty(t, data["token"])

	rec = invoke(t, e, a, login, http.MethodPost, "/auth/login",
		`{"username":"admin","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListProductsPaging(t *testing.T) {
	e, a := newTestApp(t)

	for i := 0; i < 25; i++ {
		require.NoError(t, a.DB().Create(&domain.WmsProduct{
			ID:   common.UUIDint64(),
			Sku:  fmt.Sprintf("PG-%03d", i),
			Name: fmt.Sprintf("item %d", i),
		}).Error)
	}

	rec := invoke(t, e, a, listProducts, http.MethodGet, "/api/v1/wms/products?page=2&perPage=10&sort=sku&order=ASC", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Code int `json:"code"`
		Data struct {
			Items   []domain.WmsProduct `json:"items"`
			Total   int64               `json:"total"`
			Page    int                 `json:"page"`
			PerPage int                 `json:"per_page"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.EqualValues(t, 25, out.Data.Total)
	assert.Len(t, out.Data.Items, 10)
	assert.Equal(t, "PG-010", out.Data.Items[0].Sku)
}
