package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/infoabcd/Warehouse-Query-System/config"
	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	"github.com/infoabcd/Warehouse-Query-System/internal/catalog"
	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"github.com/infoabcd/Warehouse-Query-System/internal/media"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	catalog       *catalog.Service
	media         *media.Store
	tokens        *auth.TokenService
	authenticator *auth.Authenticator
}

// Ensure Application implements all interfaces
var (
	_ DBProvider      = (*Application)(nil)
	_ ConfigProvider  = (*Application)(nil)
	_ CatalogProvider = (*Application)(nil)
	_ MediaProvider   = (*Application)(nil)
	_ AuthProvider    = (*Application)(nil)
	_ AppContext      = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

func (a *Application) Catalog() *catalog.Service {
	return a.catalog
}

func (a *Application) Media() *media.Store {
	return a.media
}

func (a *Application) Tokens() *auth.TokenService {
	return a.tokens
}

func (a *Application) Authenticator() *auth.Authenticator {
	return a.authenticator
}

// OverrideDB replaces the application's database handle and rebuilds the
// services that depend on it (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
	a.initServices()
}

// OverrideMedia replaces the image store (used in tests).
func (a *Application) OverrideMedia(store *media.Store) {
	a.media = store
}

// Init sets up logging, the database and the services. It migrates the
// schema and seeds the administrator and categories before returning.
func (a *Application) Init(cfg *config.AppConfig) error {
	a.appConfig = cfg
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	InitLogger(cfg.Logger)

	a.gormDB, err = getDatabase(cfg.Database, cfg.GetDataDir())
	if err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		return errors.Wrap(err, "migrate database")
	}

	a.media, err = media.NewDiskStore(cfg.GetMediaDir(), cfg.Media.MaxSize)
	if err != nil {
		return err
	}
	a.initServices()

	return a.Seed()
}

func (a *Application) initServices() {
	cfg := a.appConfig
	a.catalog = catalog.NewService(catalog.NewGormCommodityRepository(a.gormDB), cfg.Catalog.DefaultLimit, cfg.Catalog.MaxLimit)
	a.tokens = auth.NewTokenService(cfg.Web.Secret, cfg.Web.TokenExpire)
	a.authenticator = auth.NewAuthenticator(auth.NewGormUserRepository(a.gormDB))
}

// InitLogger installs the global zap logger, teeing to a rotating file when enabled.
func InitLogger(cfg config.LogConfig) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var log *zap.Logger
	if cfg.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		log = zap.New(core, zap.AddCaller())
	} else {
		var err error
		log, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(log)
}

func getDatabase(cfg config.DBConfig, dataDir string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, time.Local.String())
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Passwd, cfg.Host, cfg.Port, cfg.Name)
		dialector = mysql.Open(dsn)
	case "sqlite":
		file := sqlitePath(cfg.Name, dataDir)
		if file != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
				return nil, errors.Wrap(err, "create sqlite dir")
			}
		}
		dialector = sqlite.Open(file)
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Type)
	}

	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Type)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database handle")
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func sqlitePath(name, dataDir string) string {
	switch {
	case name == "":
		return filepath.Join(dataDir, "warehouse.db")
	case name == ":memory:" || filepath.IsAbs(name):
		return name
	default:
		return filepath.Join(dataDir, name)
	}
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(append([]interface{}{"commodity_categories"}, domain.Tables...)...)
}

// InitDb drops every table and recreates the schema.
func (a *Application) InitDb() error {
	a.DropAll()
	return a.MigrateDB(false)
}

// Ping checks that the database answers.
func (a *Application) Ping(ctx context.Context) error {
	sqlDB, err := a.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
