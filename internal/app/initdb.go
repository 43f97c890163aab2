package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openmallhq/openmall/internal/domain"
	"github.com/openmallhq/openmall/pkg/common"
)

func (a *Application) checkSuper() {
	const superEmail = "admin@openmall.local"
	const defaultPassword = "openmall"

	hashedPassword, err := common.HashPassword(defaultPassword)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var admin domain.User
	err = a.gormDB.Where("email = ?", superEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			Name:      "administrator",
			Email:     superEmail,
			Password:  hashedPassword,
			IsAdmin:   true,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(admin.Password) == ""
	resetRole := !admin.IsAdmin
	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetRole {
		updates["is_admin"] = true
	}
	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair default admin account", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default admin account",
		zap.String("email", superEmail),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}

// checkProducts seeds a demo catalog on an empty store
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{
			Name:         "Airpods Wireless Bluetooth Headphones",
			Image:        "/images/airpods.jpg",
			Brand:        "Apple",
			Category:     "Electronics",
			Description:  "Bluetooth technology lets you connect it with compatible devices wirelessly",
			Price:        8999,
			CountInStock: 10,
		},
		{
			Name:         "iPhone 13 Pro 256GB Memory",
			Image:        "/images/phone.jpg",
			Brand:        "Apple",
			Category:     "Electronics",
			Description:  "Introducing the iPhone 13 Pro. A transformative triple-camera system",
			Price:        59999,
			CountInStock: 7,
		},
		{
			Name:         "Cannon EOS 80D DSLR Camera",
			Image:        "/images/camera.jpg",
			Brand:        "Cannon",
			Category:     "Electronics",
			Description:  "Characterized by versatile imaging specs and a pair of robust focusing systems",
			Price:        92999,
			CountInStock: 5,
		},
		{
			Name:         "Logitech G-Series Gaming Mouse",
			Image:        "/images/mouse.jpg",
			Brand:        "Logitech",
			Category:     "Electronics",
			Description:  "Get a better handle on your games with this Logitech LIGHTSYNC gaming mouse",
			Price:        4999,
			CountInStock: 0,
		},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("name = ?", p.Name).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("name", p.Name))
			}
		}
	}
}
