package models

import (
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// InitDefaultAdmin 库中没有任何管理员时创建一个 order_manager 账号
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if username = strings.TrimSpace(username); username == "" {
		username = defaultAdminUsername
	}
	usingDefault := password == ""
	if usingDefault {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := DB.Create(&Admin{
		Username:     username,
		PasswordHash: string(hash),
		Role:         constants.RoleOrderManager,
	}).Error; err != nil {
		return err
	}

	if usingDefault {
		logger.Warnw("default_admin_password_change_required", "username", username)
		return nil
	}
	logger.Infow("default_admin_created", "username", username)
	return nil
}
