package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/moneta-app/moneta-backend/internal/service"
	"github.com/moneta-app/moneta-backend/internal/testutil"
	"github.com/moneta-app/moneta-backend/internal/websocket"
)

// setupUserContext injects the authenticated user into the echo context the
// same way the principal middleware does.
func setupUserContext(c echo.Context, userID uuid.UUID) {
	c.Set("user_id", userID)
}

// testEnv bundles the in-memory repositories and services handler tests run
// against.
type testEnv struct {
	categoryRepo    *testutil.MockCategoryRepository
	accountRepo     *testutil.MockAccountRepository
	accountTypeRepo *testutil.MockAccountTypeRepository
	transactionRepo *testutil.MockTransactionRepository

	categoryService    *service.CategoryService
	accountService     *service.AccountService
	transactionService *service.TransactionService

	accountType *domain.AccountType
	publisher   *websocket.NoOpPublisher
}

func newTestEnv() *testEnv {
	categoryRepo := testutil.NewMockCategoryRepository()
	accountRepo := testutil.NewMockAccountRepository()
	accountTypeRepo := testutil.NewMockAccountTypeRepository()
	transactionRepo := testutil.NewMockTransactionRepository(categoryRepo)

	guard := domain.NewGuard()
	accountType, _ := accountTypeRepo.Create(&domain.AccountType{Name: "Cash"})

	categoryService := service.NewCategoryService(categoryRepo, guard)
	accountService := service.NewAccountService(accountRepo, accountTypeRepo, guard, "VND")
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo, accountRepo, guard)

	return &testEnv{
		categoryRepo:       categoryRepo,
		accountRepo:        accountRepo,
		accountTypeRepo:    accountTypeRepo,
		transactionRepo:    transactionRepo,
		categoryService:    categoryService,
		accountService:     accountService,
		transactionService: transactionService,
		accountType:        accountType,
		publisher:          &websocket.NoOpPublisher{},
	}
}
