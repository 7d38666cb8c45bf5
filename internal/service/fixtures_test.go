package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/grabhealth-next/internal/config"
	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/queue"
	"github.com/grabhealth-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db *gorm.DB

	userRepo     repository.UserRepository
	networkRepo  repository.NetworkRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
	orderRepo    repository.OrderRepository
	commRepo     repository.CommissionRepository
	templateRepo repository.CommissionTemplateRepository
	tierRepo     repository.MembershipRepository
	partnerRepo  repository.PartnerRepository
	bookingRepo  repository.BookingRepository
	settingRepo  repository.SettingRepository

	settingService    *SettingService
	referralService   *ReferralService
	membershipService *MembershipService
	commissionService *CommissionService
	orderService      *OrderService
	cartService       *CartService
	bookingService    *BookingService
}

func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserNetwork{},
		&models.Category{},
		&models.Product{},
		&models.CommissionTemplate{},
		&models.CommissionTier{},
		&models.Order{},
		&models.OrderItem{},
		&models.CartItem{},
		&models.Commission{},
		&models.MembershipTier{},
		&models.Partner{},
		&models.Booking{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	env := &serviceTestEnv{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		networkRepo:  repository.NewNetworkRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		productRepo:  repository.NewProductRepository(db),
		cartRepo:     repository.NewCartRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		commRepo:     repository.NewCommissionRepository(db),
		templateRepo: repository.NewCommissionTemplateRepository(db),
		tierRepo:     repository.NewMembershipRepository(db),
		partnerRepo:  repository.NewPartnerRepository(db),
		bookingRepo:  repository.NewBookingRepository(db),
		settingRepo:  repository.NewSettingRepository(db),
	}

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}

	env.settingService = NewSettingService(env.settingRepo)
	env.referralService = NewReferralService(env.userRepo, env.networkRepo, 0)
	env.membershipService = NewMembershipService(env.tierRepo, env.orderRepo)
	env.commissionService = NewCommissionService(
		env.commRepo,
		env.orderRepo,
		env.userRepo,
		env.networkRepo,
		env.productRepo,
		env.templateRepo,
		env.settingService,
	)
	env.cartService = NewCartService(env.cartRepo, env.productRepo)
	env.orderService = NewOrderService(
		env.orderRepo,
		env.productRepo,
		env.cartRepo,
		env.membershipService,
		env.commissionService,
		env.settingService,
		queueClient,
		30,
	)
	env.bookingService = NewBookingService(env.bookingRepo, env.partnerRepo, queueClient, 120)
	return env
}

func (env *serviceTestEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		DisplayName:  strings.SplitN(email, "@", 2)[0],
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := env.userRepo.Create(user); err != nil {
		t.Fatalf("create user %s failed: %v", email, err)
	}
	return user
}

func (env *serviceTestEnv) createProduct(t *testing.T, slug string, price float64, pv int, commissionEnabled bool) *models.Product {
	t.Helper()
	category := models.Category{Slug: "cat-" + slug, Name: "Category " + slug}
	if err := env.db.Where("slug = ?", category.Slug).FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{
		CategoryID:        category.ID,
		Slug:              slug,
		Name:              "Product " + slug,
		PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		PointValue:        pv,
		CommissionEnabled: commissionEnabled,
		IsActive:          true,
	}
	if err := env.productRepo.Create(product); err != nil {
		t.Fatalf("create product %s failed: %v", slug, err)
	}
	return product
}

func (env *serviceTestEnv) linkReferral(t *testing.T, userID, parentID uint) {
	t.Helper()
	if err := env.networkRepo.CreateEdge(&models.UserNetwork{UserID: userID, ParentID: parentID, Level: 1}); err != nil {
		t.Fatalf("link referral %d -> %d failed: %v", userID, parentID, err)
	}
}

func (env *serviceTestEnv) createPaidOrder(t *testing.T, user *models.User, product *models.Product, quantity int) *models.Order {
	t.Helper()
	lineTotal := product.PriceAmount.Decimal.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	order := &models.Order{
		OrderNo:        fmt.Sprintf("GHTEST%d%d", user.ID, time.Now().UnixNano()),
		UserID:         user.ID,
		Status:         constants.OrderStatusProcessing,
		PaymentStatus:  constants.PaymentStatusPaid,
		Currency:       constants.SiteCurrencyDefault,
		OriginalAmount: models.NewMoneyFromDecimal(lineTotal),
		TotalAmount:    models.NewMoneyFromDecimal(lineTotal),
		TotalPV:        product.PointValue * quantity,
		Items: []models.OrderItem{{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.PriceAmount,
			Quantity:    quantity,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
			PointValue:  product.PointValue * quantity,
		}},
	}
	if err := env.orderRepo.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (env *serviceTestEnv) createCommissionTemplate(t *testing.T, productID uint, rates map[int]float64) {
	t.Helper()
	template := &models.CommissionTemplate{
		ProductID: productID,
		Name:      "plan",
		IsActive:  true,
	}
	for level, rate := range rates {
		template.Tiers = append(template.Tiers, models.CommissionTier{
			Level:       level,
			RatePercent: models.NewMoneyFromDecimal(decimal.NewFromFloat(rate)),
		})
	}
	if err := env.db.Create(template).Error; err != nil {
		t.Fatalf("create commission template failed: %v", err)
	}
}

func newTestUserAuthService(t *testing.T, env *serviceTestEnv) *UserAuthService {
	t.Helper()
	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "unit-test-secret-key-0123456789abcdef"
	cfg.UserJWT.ExpireHours = 24
	cfg.Security.PasswordPolicy.MinLength = 8
	return NewUserAuthService(cfg, env.userRepo, env.referralService)
}
