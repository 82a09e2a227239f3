package main

import (
	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/constants"
	"github.com/jessmaeeGit/kimklesordering-api/internal/logger"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"

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

	// 添加默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 添加烘焙商品
	products := []models.Product{
		{
			Slug:        "classic-banana-bread",
			Name:        "Classic Banana Bread",
			Description: "Moist banana loaf baked fresh daily with ripe saba bananas.",
			Category:    "breads",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(120)),
			Stock:       30,
			Status:      constants.ProductStatusActive,
		},
		{
			Slug:        "ube-cheese-pandesal",
			Name:        "Ube Cheese Pandesal",
			Description: "Soft purple yam pandesal with a melty cheese center, box of 6.",
			Category:    "breads",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(150)),
			Stock:       40,
			Status:      constants.ProductStatusActive,
		},
		{
			Slug:        "chocolate-crinkles",
			Name:        "Chocolate Crinkles",
			Description: "Fudgy chocolate crinkle cookies dusted with powdered sugar, dozen.",
			Category:    "cookies",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(180)),
			Stock:       25,
			Status:      constants.ProductStatusActive,
		},
		{
			Slug:        "leche-flan-cupcakes",
			Name:        "Leche Flan Cupcakes",
			Description: "Vanilla cupcakes topped with silky leche flan, box of 4.",
			Category:    "cakes",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(220)),
			Stock:       20,
			Status:      constants.ProductStatusActive,
		},
		{
			Slug:        "dark-chocolate-brownies",
			Name:        "Dark Chocolate Brownies",
			Description: "Rich dark chocolate brownies with walnuts, box of 8.",
			Category:    "cakes",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(240)),
			Stock:       25,
			Status:      constants.ProductStatusActive,
		},
		{
			Slug:        "calamansi-bars",
			Name:        "Calamansi Bars",
			Description: "Tangy calamansi curd on buttery shortbread, seasonal batch.",
			Category:    "cookies",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(200)),
			Stock:       0,
			Status:      constants.ProductStatusInactive,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	stdLog.Printf("Seed finished")
}
