package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/talkincode/toughwms/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@hourly", func() {
		a.SchedLowStockScanTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		days := a.GetSettingsInt64Value("oprlog", "retention_days")
		if days <= 0 {
			days = 365
		}
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*time.Duration(days))).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedLowStockScanTask lists products at or below their reorder
// threshold and mails an alert when SMTP is configured.
func (a *Application) SchedLowStockScanTask() {
	if !a.GetSettingsBoolValue("stock", "alert_enabled") {
		return
	}

	var products []domain.WmsProduct
	err := a.gormDB.
		Where("min_qty > 0 AND on_hand_qty < min_qty").
		Order("sku ASC").
		Find(&products).Error
	if err != nil {
		zap.L().Error("low stock scan failed", zap.Error(err))
		return
	}
	if len(products) == 0 {
		return
	}

	zap.L().Warn("low stock products found", zap.Int("count", len(products)))

	mailTo := a.GetSettingsStringValue("stock", "alert_mail_to")
	if mailTo == "" {
		return
	}
	if err := a.sendLowStockMail(mailTo, products); err != nil {
		zap.L().Error("failed to send low stock alert mail", zap.Error(err))
	}
}

func (a *Application) sendLowStockMail(mailTo string, products []domain.WmsProduct) error {
	host := a.GetSettingsStringValue("smtp", "host")
	if host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	port := int(a.GetSettingsInt64Value("smtp", "port"))
	if port == 0 {
		port = 465
	}

	var body strings.Builder
	body.WriteString("The following products are below their minimum quantity:\n\n")
	for _, p := range products {
		body.WriteString(fmt.Sprintf("%s  %s  on hand %d, minimum %d\n",
			p.Sku, p.Name, p.OnHandQty, p.MinQty))
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.GetSettingsStringValue("smtp", "from"))
	m.SetHeader("To", mailTo)
	m.SetHeader("Subject", fmt.Sprintf("[ToughWMS] %d products below minimum stock", len(products)))
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(host, port,
		a.GetSettingsStringValue("smtp", "username"),
		a.GetSettingsStringValue("smtp", "password"))
	return d.DialAndSend(m)
}
