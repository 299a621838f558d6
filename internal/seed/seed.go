// Package seed populates the lookup data every installation needs: account
// types and the shared system category catalog. Seeding is idempotent; rows
// that already exist are left untouched, so it runs on every startup.
package seed

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

type accountTypeRow struct {
	name  string
	icon  string
	color string
}

type categoryRow struct {
	name     string
	icon     string
	color    string
	children []categoryRow
}

var accountTypes = []accountTypeRow{
	{name: "Tiền mặt", icon: "payments", color: "#4CAF50"},
	{name: "Ngân hàng", icon: "account_balance", color: "#2196F3"},
	{name: "Ví điện tử", icon: "account_balance_wallet", color: "#9C27B0"},
	{name: "Thẻ tín dụng", icon: "credit_card", color: "#F44336"},
	{name: "Tiết kiệm", icon: "savings", color: "#FF9800"},
	{name: "Đầu tư", icon: "trending_up", color: "#00BCD4"},
}

var incomeCategories = []categoryRow{
	{name: "Lương", icon: "work", color: "#4CAF50"},
	{name: "Thưởng", icon: "card_giftcard", color: "#8BC34A"},
	{name: "Đầu tư", icon: "trending_up", color: "#009688"},
	{name: "Kinh doanh", icon: "business", color: "#00BCD4"},
	{name: "Chuyển khoản", icon: "sync_alt", color: "#9E9E9E"},
	{name: "Thu nhập khác", icon: "attach_money", color: "#03A9F4"},
}

var expenseCategories = []categoryRow{
	{name: "Ăn uống", icon: "restaurant", color: "#FF5722", children: []categoryRow{
		{name: "Ăn sáng", icon: "breakfast_dining"},
		{name: "Ăn trưa", icon: "lunch_dining"},
		{name: "Ăn tối", icon: "dinner_dining"},
		{name: "Cà phê", icon: "local_cafe"},
	}},
	{name: "Mua sắm", icon: "shopping_cart", color: "#E91E63"},
	{name: "Đi lại", icon: "directions_car", color: "#9C27B0"},
	{name: "Nhà cửa", icon: "home", color: "#673AB7"},
	{name: "Y tế", icon: "local_hospital", color: "#3F51B5"},
	{name: "Giáo dục", icon: "school", color: "#2196F3"},
	{name: "Giải trí", icon: "movie", color: "#00BCD4"},
	{name: "Hóa đơn", icon: "receipt", color: "#009688"},
	{name: "Bảo hiểm", icon: "security", color: "#4CAF50"},
	{name: "Chuyển khoản", icon: "sync_alt", color: "#9E9E9E"},
	{name: "Chi phí khác", icon: "more_horiz", color: "#FFC107"},
}

// Run seeds account types and system categories.
func Run(accountTypeRepo domain.AccountTypeRepository, categoryRepo domain.CategoryRepository) error {
	if err := seedAccountTypes(accountTypeRepo); err != nil {
		return fmt.Errorf("seed account types: %w", err)
	}
	if err := seedSystemCategories(categoryRepo); err != nil {
		return fmt.Errorf("seed system categories: %w", err)
	}
	return nil
}

func seedAccountTypes(repo domain.AccountTypeRepository) error {
	created := 0
	for _, row := range accountTypes {
		_, err := repo.GetByName(row.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAccountTypeNotFound) {
			return err
		}

		icon, color := row.icon, row.color
		if _, err := repo.Create(&domain.AccountType{
			Name:  row.name,
			Icon:  &icon,
			Color: &color,
		}); err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("Seeded account types")
	}
	return nil
}

func seedSystemCategories(repo domain.CategoryRepository) error {
	// Listing roots for the nil owner returns only system rows.
	roots, err := repo.ListRootsForOwner(uuid.Nil, nil)
	if err != nil {
		return err
	}

	type rootKey struct {
		name string
		typ  domain.CategoryType
	}
	existing := make(map[rootKey]uuid.UUID, len(roots))
	for _, r := range roots {
		existing[rootKey{r.Name, r.Type}] = r.ID
	}

	created := 0
	seedOne := func(row categoryRow, categoryType domain.CategoryType) error {
		parentID, ok := existing[rootKey{row.name, categoryType}]
		if !ok {
			icon, color := row.icon, row.color
			parent, err := repo.Create(&domain.Category{
				Name:     row.name,
				Type:     categoryType,
				Icon:     &icon,
				Color:    &color,
				IsSystem: true,
			})
			if err != nil {
				return err
			}
			parentID = parent.ID
			created++
		}

		if len(row.children) == 0 {
			return nil
		}

		children, err := repo.ListChildren(parentID)
		if err != nil {
			return err
		}
		haveChild := make(map[string]bool, len(children))
		for _, c := range children {
			haveChild[c.Name] = true
		}
		for _, child := range row.children {
			if haveChild[child.name] {
				continue
			}
			icon, color := child.icon, row.color
			id := parentID
			if _, err := repo.Create(&domain.Category{
				Name:     child.name,
				Type:     categoryType,
				ParentID: &id,
				Icon:     &icon,
				Color:    &color,
				IsSystem: true,
			}); err != nil {
				return err
			}
			created++
		}
		return nil
	}

	for _, row := range incomeCategories {
		if err := seedOne(row, domain.CategoryTypeIncome); err != nil {
			return err
		}
	}
	for _, row := range expenseCategories {
		if err := seedOne(row, domain.CategoryTypeExpense); err != nil {
			return err
		}
	}

	if created > 0 {
		log.Info().Int("created", created).Msg("Seeded system categories")
	}
	return nil
}
