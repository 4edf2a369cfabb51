package config

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/infoabcd/Warehouse-Query-System/pkg/common"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DBConfig Database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres, mysql or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"` // database name, or file path for sqlite
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// SysConfig System configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Secret       string        `yaml:"secret"`
	TokenExpire  time.Duration `yaml:"token_expire"`
	CookieName   string        `yaml:"cookie_name"`
	CookieMaxAge time.Duration `yaml:"cookie_max_age"`
	CookieSecure bool          `yaml:"cookie_secure"`
	AllowOrigins []string      `yaml:"allow_origins"`
	Metrics      bool          `yaml:"metrics"`
}

// MediaConfig uploaded image storage
type MediaConfig struct {
	Dir     string `yaml:"dir"`
	MaxSize int64  `yaml:"max_size"` // bytes
}

// CatalogConfig catalog defaults and reference data
type CatalogConfig struct {
	DefaultLimit   int      `yaml:"default_limit"`
	MaxLimit       int      `yaml:"max_limit"`
	SeedCategories []string `yaml:"seed_categories"`
}

// AdminConfig the administrator account created on first start
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system"`
	Web      WebConfig     `yaml:"web"`
	Database DBConfig      `yaml:"database"`
	Media    MediaConfig   `yaml:"media"`
	Catalog  CatalogConfig `yaml:"catalog"`
	Admin    AdminConfig   `yaml:"admin"`
	Logger   LogConfig     `yaml:"logger"`
}

func (c *AppConfig) GetMediaDir() string {
	if c.Media.Dir != "" {
		return c.Media.Dir
	}
	return path.Join(c.System.Workdir, "uploads/images")
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
	_ = os.MkdirAll(c.GetMediaDir(), 0o755)
}

// DefaultAppConfig returns the built-in configuration used when no file is found.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "Warehouse",
			Location: "Asia/Shanghai",
			Workdir:  "/var/warehouse",
			Debug:    true,
		},
		Web: WebConfig{
			Host:         "0.0.0.0",
			Port:         3000,
			Secret:       "70aiuqtehspiBcxp",
			TokenExpire:  4 * time.Hour,
			CookieName:   "authToken",
			CookieMaxAge: 24 * time.Hour,
			CookieSecure: false,
			AllowOrigins: []string{"http://localhost:5173"},
			Metrics:      false,
		},
		Database: DBConfig{
			Type:     "mysql",
			Host:     "127.0.0.1",
			Port:     3306,
			Name:     "warehouse",
			User:     "root",
			Passwd:   "123456",
			MaxConn:  100,
			IdleConn: 10,
			Debug:    false,
		},
		Media: MediaConfig{
			MaxSize: 5 * 1024 * 1024,
		},
		Catalog: CatalogConfig{
			DefaultLimit:   15,
			MaxLimit:       500,
			SeedCategories: []string{"Kitchen", "Tableware", "Household", "Stationery", "Promotion"},
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin",
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/warehouse/warehouse.log",
		},
	}
}

// LoadConfig reads the yaml file cfile, falling back to ./warehouse.yml,
// /etc/warehouse.yml and finally the built-in defaults. Environment
// variables prefixed with WAREHOUSE_ override file values.
func LoadConfig(cfile string) *AppConfig {
	if cfile == "" {
		cfile = "warehouse.yml"
	}
	if !common.FileExists(cfile) {
		cfile = "/etc/warehouse.yml"
	}
	cfg := DefaultAppConfig()
	if common.FileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	}
	cfg.applyEnv()
	cfg.fillDefaults()
	cfg.initDirs()
	return cfg
}

func (c *AppConfig) applyEnv() {
	setEnvValue("WAREHOUSE_SYSTEM_WORKER_DIR", &c.System.Workdir)
	setEnvBoolValue("WAREHOUSE_SYSTEM_DEBUG", &c.System.Debug)

	setEnvValue("WAREHOUSE_WEB_HOST", &c.Web.Host)
	setEnvIntValue("WAREHOUSE_WEB_PORT", &c.Web.Port)
	setEnvValue("WAREHOUSE_WEB_SECRET", &c.Web.Secret)
	setEnvDurationValue("WAREHOUSE_WEB_TOKEN_EXPIRE", &c.Web.TokenExpire)
	setEnvBoolValue("WAREHOUSE_WEB_COOKIE_SECURE", &c.Web.CookieSecure)
	setEnvBoolValue("WAREHOUSE_WEB_METRICS", &c.Web.Metrics)
	if v := os.Getenv("WAREHOUSE_WEB_ALLOW_ORIGINS"); v != "" {
		c.Web.AllowOrigins = common.SplitTrim(v, ",")
	}

	setEnvValue("WAREHOUSE_DB_TYPE", &c.Database.Type)
	setEnvValue("WAREHOUSE_DB_HOST", &c.Database.Host)
	setEnvIntValue("WAREHOUSE_DB_PORT", &c.Database.Port)
	setEnvValue("WAREHOUSE_DB_NAME", &c.Database.Name)
	setEnvValue("WAREHOUSE_DB_USER", &c.Database.User)
	setEnvValue("WAREHOUSE_DB_PWD", &c.Database.Passwd)
	setEnvBoolValue("WAREHOUSE_DB_DEBUG", &c.Database.Debug)

	setEnvValue("WAREHOUSE_MEDIA_DIR", &c.Media.Dir)
	setEnvInt64Value("WAREHOUSE_MEDIA_MAX_SIZE", &c.Media.MaxSize)

	setEnvIntValue("WAREHOUSE_CATALOG_MAX_LIMIT", &c.Catalog.MaxLimit)

	setEnvValue("WAREHOUSE_ADMIN_USERNAME", &c.Admin.Username)
	setEnvValue("WAREHOUSE_ADMIN_PASSWORD", &c.Admin.Password)

	setEnvValue("WAREHOUSE_LOGGER_MODE", &c.Logger.Mode)
	setEnvBoolValue("WAREHOUSE_LOGGER_FILE_ENABLE", &c.Logger.FileEnable)
}

func (c *AppConfig) fillDefaults() {
	def := DefaultAppConfig()
	if c.Web.TokenExpire <= 0 {
		c.Web.TokenExpire = def.Web.TokenExpire
	}
	if c.Web.CookieMaxAge <= 0 {
		c.Web.CookieMaxAge = def.Web.CookieMaxAge
	}
	c.Web.CookieName = common.IfEmptyStr(c.Web.CookieName, def.Web.CookieName)
	if c.Media.MaxSize <= 0 {
		c.Media.MaxSize = def.Media.MaxSize
	}
	if c.Catalog.DefaultLimit <= 0 {
		c.Catalog.DefaultLimit = def.Catalog.DefaultLimit
	}
	if c.Catalog.MaxLimit <= 0 {
		c.Catalog.MaxLimit = def.Catalog.MaxLimit
	}
	c.Database.Type = strings.ToLower(common.IfEmptyStr(c.Database.Type, def.Database.Type))
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	if p, err := cast.ToIntE(evalue); err == nil {
		*val = p
	}
}

func setEnvInt64Value(name string, val *int64) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	if p, err := cast.ToInt64E(evalue); err == nil {
		*val = p
	}
}

func setEnvDurationValue(name string, val *time.Duration) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	if d, err := cast.ToDurationE(evalue); err == nil {
		*val = d
	}
}
