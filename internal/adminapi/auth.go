package adminapi

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/internal/webserver"
	"github.com/talkincode/toughwms/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/auth/login", login)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	var opr domain.SysOpr
	if err := GetDB(c).Where("username = ?", payload.Username).First(&opr).Error; err != nil {
		return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", "Invalid username or password", nil)
	}
	if opr.Status != common.ENABLED {
		return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", "Account is disabled", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(opr.Password), []byte(payload.Password)); err != nil {
		zap.L().Warn("login failed", zap.String("username", payload.Username), zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", "Invalid username or password", nil)
	}

	appCtx := GetAppContext(c)
	expireMinutes := appCtx.Config().Web.JwtExpire
	if expireMinutes <= 0 {
		expireMinutes = 120
	}
	claims := jwt.MapClaims{
		"usr": opr.Username,
		"lvl": opr.Level,
		"exp": time.Now().Add(time.Duration(expireMinutes) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(appCtx.Config().Web.Secret))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token", nil)
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).
		Update("last_login", time.Now())

	zap.L().Info("operator login", zap.String("username", opr.Username), zap.String("ip", c.RealIP()))
	return ok(c, map[string]interface{}{
		"token":    signed,
		"username": opr.Username,
		"level":    opr.Level,
	})
}
