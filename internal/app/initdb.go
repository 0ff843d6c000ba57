package app

import (
	"errors"
	"strings"
	"time"

	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "toughwms"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default password", zap.Error(err))
		return
	}

	var operator domain.SysOpr
	err = a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  string(hashed),
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hashed)
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

type configDefault struct {
	Type        string
	Name        string
	Value       string
	Description string
}

var configDefaults = []configDefault{
	{"system", "site_title", "ToughWMS", "Site title shown in the admin UI"},
	{"stock", "alert_enabled", "true", "Enable the hourly low stock scan"},
	{"stock", "alert_mail_to", "", "Recipient for low stock alert mail, empty disables mail"},
	{"smtp", "host", "", "SMTP server host"},
	{"smtp", "port", "465", "SMTP server port"},
	{"smtp", "username", "", "SMTP username"},
	{"smtp", "password", "", "SMTP password"},
	{"smtp", "from", "toughwms@localhost", "SMTP sender address"},
	{"oprlog", "retention_days", "365", "Operation log retention in days"},
}

func (a *Application) checkSettings() {
	// Iterate over all configuration defaults, initializing missing entries
	for sortid, schema := range configDefaults {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", schema.Type, schema.Name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   schema.Type,
				Name:   schema.Name,
				Value:  schema.Value,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Type+"."+schema.Name),
				zap.String("default", schema.Value))
		}
	}
}
