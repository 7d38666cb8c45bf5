package main

import (
	"github.com/grabhealth-next/internal/config"
	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/logger"
	"github.com/grabhealth-next/internal/models"

	"github.com/shopspring/decimal"
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
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "supplements", Name: "Supplements", Description: "Vitamins and daily supplements", Icon: "pill", SortOrder: 1},
		{Slug: "personal-care", Name: "Personal Care", Description: "Daily personal care essentials", Icon: "heart", SortOrder: 2},
		{Slug: "wellness-devices", Name: "Wellness Devices", Description: "Home health monitoring devices", Icon: "device", SortOrder: 3},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"supplements", "personal-care", "wellness-devices"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加商品
	products := []models.Product{
		{
			CategoryID:        categoryIDs["supplements"],
			Slug:              "vitamin-c-1000",
			Name:              "Vitamin C 1000mg",
			Description:       "High strength vitamin C, 60 tablets per bottle.",
			PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(28.90)),
			PointValue:        20,
			Tags:              models.StringArray{"immunity", "daily"},
			CommissionEnabled: true,
			IsActive:          true,
			SortOrder:         1,
		},
		{
			CategoryID:        categoryIDs["supplements"],
			Slug:              "omega-3-fish-oil",
			Name:              "Omega-3 Fish Oil",
			Description:       "Deep sea fish oil softgels, 90 capsules.",
			PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(45.00)),
			PointValue:        35,
			Tags:              models.StringArray{"heart", "daily"},
			CommissionEnabled: true,
			IsActive:          true,
			SortOrder:         2,
		},
		{
			CategoryID:        categoryIDs["personal-care"],
			Slug:              "herbal-toothpaste",
			Name:              "Herbal Toothpaste",
			Description:       "Fluoride-free herbal toothpaste.",
			PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(8.50)),
			PointValue:        5,
			Tags:              models.StringArray{"oral-care"},
			CommissionEnabled: false,
			IsActive:          true,
			SortOrder:         3,
		},
		{
			CategoryID:        categoryIDs["wellness-devices"],
			Slug:              "blood-pressure-monitor",
			Name:              "Blood Pressure Monitor",
			Description:       "Upper arm blood pressure monitor with memory.",
			PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(129.00)),
			PointValue:        80,
			Tags:              models.StringArray{"monitoring"},
			CommissionEnabled: true,
			IsActive:          true,
			SortOrder:         4,
		},
	}

	productIDs := map[string]uint{}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
				continue
			}
			stdLog.Printf("Created product: %s", product.Slug)
			productIDs[product.Slug] = product.ID
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
			productIDs[product.Slug] = existing.ID
		}
	}

	// 为示例商品配置佣金模板（一级 10%，二级 5%）
	if productID := productIDs["vitamin-c-1000"]; productID > 0 {
		var existing models.CommissionTemplate
		if err := models.DB.Where("product_id = ?", productID).First(&existing).Error; err != nil {
			template := models.CommissionTemplate{
				ProductID: productID,
				Name:      "Default two level plan",
				IsActive:  true,
				Tiers: []models.CommissionTier{
					{Level: 1, RatePercent: models.NewMoneyFromDecimal(decimal.NewFromInt(10))},
					{Level: 2, RatePercent: models.NewMoneyFromDecimal(decimal.NewFromInt(5))},
				},
			}
			if err := models.DB.Create(&template).Error; err != nil {
				stdLog.Printf("Failed to create commission template: %v", err)
			} else {
				stdLog.Printf("Created commission template for product %d", productID)
			}
		} else {
			stdLog.Printf("Commission template already exists for product %d", productID)
		}
	}

	// 添加会员等级
	tiers := []models.MembershipTier{
		{Name: "Member", MinTotalSpend: models.NewMoneyFromDecimal(decimal.Zero), DiscountPercent: models.NewMoneyFromDecimal(decimal.Zero), Rank: 1},
		{Name: "Silver", MinTotalSpend: models.NewMoneyFromDecimal(decimal.NewFromInt(500)), DiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), Rank: 2},
		{Name: "Gold", MinTotalSpend: models.NewMoneyFromDecimal(decimal.NewFromInt(2000)), DiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), Rank: 3},
	}
	for _, tier := range tiers {
		var existing models.MembershipTier
		if err := models.DB.Where("name = ?", tier.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&tier).Error; err != nil {
				stdLog.Printf("Failed to create membership tier %s: %v", tier.Name, err)
			} else {
				stdLog.Printf("Created membership tier: %s", tier.Name)
			}
		} else {
			stdLog.Printf("Membership tier already exists: %s", tier.Name)
		}
	}

	// 添加合作门店
	partners := []models.Partner{
		{
			Name:    "GrabHealth Wellness Center",
			Email:   "center@grabhealth.local",
			Phone:   "+65 6100 0001",
			Address: "1 Raffles Place, Singapore",
			Status:  constants.PartnerStatusActive,
		},
		{
			Name:    "Harbour TCM Clinic",
			Email:   "harbour@grabhealth.local",
			Phone:   "+65 6100 0002",
			Address: "8 Harbour Front, Singapore",
			Status:  constants.PartnerStatusActive,
		},
	}
	for _, partner := range partners {
		var existing models.Partner
		if err := models.DB.Where("name = ?", partner.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&partner).Error; err != nil {
				stdLog.Printf("Failed to create partner %s: %v", partner.Name, err)
			} else {
				stdLog.Printf("Created partner: %s", partner.Name)
			}
		} else {
			stdLog.Printf("Partner already exists: %s", partner.Name)
		}
	}

	stdLog.Printf("Seed completed")
}
