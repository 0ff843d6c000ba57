package config

import (
	"os"
	"path"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Secret    string `yaml:"secret" json:"secret"`
	JwtExpire int    `yaml:"jwt_expire" json:"jwt_expire"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "toughwms",
		Location: "Asia/Jakarta",
		Workdir:  "/var/toughwms",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		Secret:    "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
		JwtExpire: 120,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "toughwms",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/toughwms/toughwms.log",
	},
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

// LoadConfig loads the yaml configuration file and applies TOUGHWMS_*
// environment overrides on top of it.
func LoadConfig(cfile string) *AppConfig {
	appconfig := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, appconfig); err != nil {
				panic(err)
			}
		}
	}

	setEnvValue("TOUGHWMS_SYSTEM_WORKDIR", &appconfig.System.Workdir)
	setEnvValue("TOUGHWMS_SYSTEM_LOCATION", &appconfig.System.Location)
	setEnvBoolValue("TOUGHWMS_SYSTEM_DEBUG", &appconfig.System.Debug)

	setEnvValue("TOUGHWMS_WEB_HOST", &appconfig.Web.Host)
	setEnvValue("TOUGHWMS_WEB_SECRET", &appconfig.Web.Secret)
	setEnvIntValue("TOUGHWMS_WEB_PORT", &appconfig.Web.Port)

	setEnvValue("TOUGHWMS_DB_TYPE", &appconfig.Database.Type)
	setEnvValue("TOUGHWMS_DB_HOST", &appconfig.Database.Host)
	setEnvValue("TOUGHWMS_DB_NAME", &appconfig.Database.Name)
	setEnvValue("TOUGHWMS_DB_USER", &appconfig.Database.User)
	setEnvValue("TOUGHWMS_DB_PWD", &appconfig.Database.Passwd)
	setEnvIntValue("TOUGHWMS_DB_PORT", &appconfig.Database.Port)
	setEnvBoolValue("TOUGHWMS_DB_DEBUG", &appconfig.Database.Debug)

	setEnvValue("TOUGHWMS_LOGGER_MODE", &appconfig.Logger.Mode)
	setEnvValue("TOUGHWMS_LOGGER_FILENAME", &appconfig.Logger.Filename)
	setEnvBoolValue("TOUGHWMS_LOGGER_FILE_ENABLE", &appconfig.Logger.FileEnable)

	return appconfig
}
