package main

import (
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商品
	originalMug := models.NewMoneyFromInt(24)
	products := []models.Product{
		{
			Slug:          "classic-tee",
			Name:          "Classic Tee",
			Price:         models.NewMoneyFromInt(25),
			TrackStock:    true,
			IsActive:      true,
			StockQuantity: 0,
			Variants: models.VariantList{
				{ID: "tee-s", AttributeName: "Size", AttributeValue: "S", Price: models.NewMoneyFromInt(25), Stock: 10},
				{ID: "tee-m", AttributeName: "Size", AttributeValue: "M", Price: models.NewMoneyFromInt(25), Stock: 12},
				{ID: "tee-l", AttributeName: "Size", AttributeValue: "L", Price: models.NewMoneyFromInt(27), Stock: 4},
			},
		},
		{
			Slug:          "ceramic-mug",
			Name:          "Ceramic Mug",
			Price:         models.NewMoneyFromFloat(18.5),
			OriginalPrice: &originalMug,
			TrackStock:    true,
			IsActive:      true,
			StockQuantity: 30,
		},
		{
			Slug:       "gift-wrap",
			Name:       "Gift Wrap",
			Price:      models.NewMoneyFromInt(3),
			TrackStock: false,
			IsActive:   true,
		},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", product.Slug)
			continue
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			continue
		}
		stdLog.Printf("Created product: %s", product.Slug)
	}

	// 添加优惠券
	now := time.Now()
	validUntil := now.AddDate(0, 3, 0)
	coupons := []models.Coupon{
		{
			Code:               "WELCOME10",
			Type:               constants.CouponTypePercentage,
			Value:              models.NewMoneyFromInt(10),
			MinimumOrderAmount: models.NewMoneyFromInt(20),
			MaxDiscount:        models.NewMoneyFromInt(15),
			PerUserUsageLimit:  1,
			ValidFrom:          &now,
			ValidUntil:         &validUntil,
			IsActive:           true,
		},
		{
			Code:               "FIVEOFF",
			Type:               constants.CouponTypeFixed,
			Value:              models.NewMoneyFromInt(5),
			MinimumOrderAmount: models.NewMoneyFromInt(30),
			TotalUsageLimit:    100,
			IsActive:           true,
		},
	}
	for _, coupon := range coupons {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err == nil {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
			continue
		}
		if err := models.DB.Create(&coupon).Error; err != nil {
			stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			continue
		}
		stdLog.Printf("Created coupon: %s", coupon.Code)
	}

	// 添加示例顾客及店铺余额
	customer := models.User{Email: "customer@example.com", DisplayName: "Demo Customer", Status: "active"}
	if err := models.DB.Where("email = ?", customer.Email).FirstOrCreate(&customer).Error; err != nil {
		stdLog.Printf("Failed to create customer: %v", err)
		return
	}
	account := models.StoreCreditAccount{UserID: customer.ID, Balance: models.NewMoneyFromInt(10)}
	if err := models.DB.Where("user_id = ?", customer.ID).FirstOrCreate(&account).Error; err != nil {
		stdLog.Printf("Failed to create store credit account: %v", err)
		return
	}
	stdLog.Printf("Seed finished: customer=%s store_credit=%s", customer.Email, account.Balance.String())
}
