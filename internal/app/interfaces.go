package app

import (
	"context"

	"github.com/infoabcd/Warehouse-Query-System/config"
	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	"github.com/infoabcd/Warehouse-Query-System/internal/catalog"
	"github.com/infoabcd/Warehouse-Query-System/internal/media"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
	Ping(ctx context.Context) error
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// CatalogProvider provides the catalog query and mutation service
type CatalogProvider interface {
	Catalog() *catalog.Service
}

// MediaProvider provides the uploaded image store
type MediaProvider interface {
	Media() *media.Store
}

// AuthProvider provides token issuance and credential checks
type AuthProvider interface {
	Tokens() *auth.TokenService
	Authenticator() *auth.Authenticator
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	CatalogProvider
	MediaProvider
	AuthProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb() error
	DropAll()
	Seed() error
}
