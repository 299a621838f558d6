package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneta-app/moneta-backend/internal/service"
	"github.com/shopspring/decimal"
)

func TestCreateAccountHandler_Success(t *testing.T) {
	e := echo.New()
	env := newTestEnv()
	handler := NewAccountHandler(env.accountService, env.publisher)

	reqBody := `{"name": "Wallet", "accountTypeId": "` + env.accountType.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Wallet" {
		t.Errorf("Expected name 'Wallet', got %s", response.Name)
	}
	if response.Balance != "0.00" {
		t.Errorf("Expected balance '0.00', got %s", response.Balance)
	}
	if response.Currency != "VND" {
		t.Errorf("Expected currency VND, got %s", response.Currency)
	}
	if !response.IsActive {
		t.Error("Expected new account to be active")
	}
}

func TestCreateAccountHandler_UnknownAccountType(t *testing.T) {
	e := echo.New()
	env := newTestEnv()
	handler := NewAccountHandler(env.accountService, env.publisher)

	reqBody := `{"name": "Wallet", "accountTypeId": "` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestMutateBalanceHandler_Add(t *testing.T) {
	e := echo.New()
	env := newTestEnv()
	handler := NewAccountHandler(env.accountService, env.publisher)
	userID := uuid.New()

	account, err := env.accountService.CreateAccount(userID, service.CreateAccountInput{
		AccountTypeID: env.accountType.ID,
		Name:          "Wallet",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	reqBody := `{"amount": "150000", "operation": "add"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/accounts/"+account.ID.String()+"/balance", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(account.ID.String())
	setupUserContext(c, userID)

	if err := handler.MutateBalance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Balance != "150000.00" {
		t.Errorf("Expected balance '150000.00', got %s", response.Balance)
	}
}

func TestMutateBalanceHandler_InvalidOperation(t *testing.T) {
	e := echo.New()
	env := newTestEnv()
	handler := NewAccountHandler(env.accountService, env.publisher)
	userID := uuid.New()

	account, _ := env.accountService.CreateAccount(userID, service.CreateAccountInput{
		AccountTypeID: env.accountType.ID,
		Name:          "Wallet",
	})

	reqBody := `{"amount": "100", "operation": "multiply"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/accounts/"+account.ID.String()+"/balance", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(account.ID.String())
	setupUserContext(c, userID)

	if err := handler.MutateBalance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestMutateBalanceHandler_ForeignAccount(t *testing.T) {
	e := echo.New()
	env := newTestEnv()
	handler := NewAccountHandler(env.accountService, env.publisher)

	owner := uuid.New()
	account, _ := env.accountService.CreateAccount(owner, service.CreateAccountInput{
		AccountTypeID: env.accountType.ID,
		Name:          "Wallet",
	})

	reqBody := `{"amount": "100", "operation": "add"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/accounts/"+account.ID.String()+"/balance", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(account.ID.String())
	setupUserContext(c, uuid.New())

	if err := handler.MutateBalance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestDeleteAccountHandler_Conflict(t *testing.T) {
	e := echo.New()
	env := newTestEnv()
	handler := NewAccountHandler(env.accountService, env.publisher)
	userID := uuid.New()

	account, _ := env.accountService.CreateAccount(userID, service.CreateAccountInput{
		AccountTypeID: env.accountType.ID,
		Name:          "Wallet",
	})
	env.accountRepo.TxRefCounts[account.ID] = 1

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/"+account.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(account.ID.String())
	setupUserContext(c, userID)

	if err := handler.DeleteAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}

	// The account must survive the failed delete.
	if _, err := env.accountRepo.GetByID(account.ID); err != nil {
		t.Error("Expected account to still exist")
	}
}

func TestGetTotalBalanceHandler(t *testing.T) {
	e := echo.New()
	env := newTestEnv()
	handler := NewAccountHandler(env.accountService, env.publisher)
	userID := uuid.New()

	account, _ := env.accountService.CreateAccount(userID, service.CreateAccountInput{
		AccountTypeID: env.accountType.ID,
		Name:          "Wallet",
	})
	env.accountRepo.MutateBalance(account.ID, decimal.NewFromInt(250000), "set")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/total-balance?currency=vnd", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.GetTotalBalance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response TotalBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Total != "250000.00" {
		t.Errorf("Expected total '250000.00', got %s", response.Total)
	}
	if response.Currency != "VND" {
		t.Errorf("Expected currency VND, got %s", response.Currency)
	}
}
