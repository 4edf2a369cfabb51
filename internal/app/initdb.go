package app

import (
	"errors"
	"strings"
	"time"

	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed creates the configured administrator and categories when missing.
func (a *Application) Seed() error {
	if err := a.checkAdmin(); err != nil {
		return err
	}
	return a.checkCategories()
}

func (a *Application) checkAdmin() error {
	username := strings.TrimSpace(a.appConfig.Admin.Username)
	password := a.appConfig.Admin.Password
	if username == "" || password == "" {
		zap.L().Warn("admin seeding skipped, username or password not configured")
		return nil
	}

	var user domain.User
	err := a.gormDB.Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		if err := a.gormDB.Create(&domain.User{
			Username: username,
			Password: hashed,
			Role:     true,
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
			return err
		}
		zap.L().Info("initialized default admin account", zap.String("username", username))
		return nil
	case err != nil:
		zap.L().Error("failed to query admin", zap.Error(err))
		return err
	}

	resetPassword := strings.TrimSpace(user.Password) == ""
	resetRole := !user.Role
	if !resetPassword && !resetRole {
		return nil
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
		"role":       true,
	}
	if resetPassword {
		hashed, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		updates["password"] = hashed
	}
	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return err
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", username),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
	return nil
}

func (a *Application) checkCategories() error {
	for _, name := range a.appConfig.Catalog.SeedCategories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var count int64
		if err := a.gormDB.Model(&domain.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := a.gormDB.Create(&domain.Category{Name: name}).Error; err != nil {
			zap.L().Error("failed to create category", zap.String("name", name), zap.Error(err))
			return err
		}
		zap.L().Info("initialized category", zap.String("name", name))
	}
	return nil
}
