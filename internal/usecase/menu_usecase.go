package usecase

import (
	"context"
	"errors"
	"strings"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"
)

type MenuUsecase struct {
	tables      repo.TableRepository
	restaurants repo.RestaurantRepository
	categories  repo.MenuCategoryRepository
	menuItems   repo.MenuItemRepository
}

func NewMenuUsecase(
	tables repo.TableRepository,
	restaurants repo.RestaurantRepository,
	categories repo.MenuCategoryRepository,
	menuItems repo.MenuItemRepository,
) *MenuUsecase {
	return &MenuUsecase{
		tables:      tables,
		restaurants: restaurants,
		categories:  categories,
		menuItems:   menuItems,
	}
}

type MenuCategoryOutput struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	SortOrder   int              `json:"sort_order"`
	IsActive    bool             `json:"is_active,omitempty"`
	Items       []model.MenuItem `json:"items"`
}

type BrowseMenuOutput struct {
	RestaurantName  string               `json:"restaurant_name"`
	Description     string               `json:"description,omitempty"`
	TableNumber     int                  `json:"table_number"`
	PrepaidEnabled  bool                 `json:"prepaid_enabled"`
	PostpaidEnabled bool                 `json:"postpaid_enabled"`
	Categories      []MenuCategoryOutput `json:"categories"`
}

// 客のメニュー閲覧。有効なカテゴリ・品目のみ、並び順つき。
func (u *MenuUsecase) BrowseByToken(ctx context.Context, tableToken string) (BrowseMenuOutput, error) {
	if tableToken == "" {
		return BrowseMenuOutput{}, NewValidationError("table token required")
	}

	table, err := u.tables.FindByToken(ctx, tableToken)
	if errors.Is(err, repo.ErrNotFound) {
		return BrowseMenuOutput{}, NewNotFoundError("invalid or expired table")
	}
	if err != nil {
		return BrowseMenuOutput{}, NewInternalError()
	}

	rest, err := u.restaurants.FindByID(ctx, table.RestaurantID)
	if err != nil {
		return BrowseMenuOutput{}, NewInternalError()
	}

	cats, err := u.categories.ListByRestaurantID(ctx, table.RestaurantID, true)
	if err != nil {
		return BrowseMenuOutput{}, NewInternalError()
	}

	out := BrowseMenuOutput{
		RestaurantName:  rest.Name,
		Description:     rest.Description,
		TableNumber:     table.Number,
		PrepaidEnabled:  rest.PrepaidEnabled,
		PostpaidEnabled: rest.PostpaidEnabled,
		Categories:      make([]MenuCategoryOutput, 0, len(cats)),
	}

	for _, c := range cats {
		items, err := u.menuItems.ListByCategoryID(ctx, c.ID, true)
		if err != nil {
			return BrowseMenuOutput{}, NewInternalError()
		}
		out.Categories = append(out.Categories, MenuCategoryOutput{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			SortOrder:   c.SortOrder,
			Items:       items,
		})
	}

	return out, nil
}

// 管理画面向け一覧（無効化済みも含む）
func (u *MenuUsecase) ListForAdmin(ctx context.Context, restaurantID int64) ([]MenuCategoryOutput, error) {
	cats, err := u.categories.ListByRestaurantID(ctx, restaurantID, false)
	if err != nil {
		return nil, NewInternalError()
	}

	outs := make([]MenuCategoryOutput, 0, len(cats))
	for _, c := range cats {
		items, err := u.menuItems.ListByCategoryID(ctx, c.ID, false)
		if err != nil {
			return nil, NewInternalError()
		}
		outs = append(outs, MenuCategoryOutput{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			SortOrder:   c.SortOrder,
			IsActive:    c.IsActive,
			Items:       items,
		})
	}
	return outs, nil
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	SortOrder   int    `json:"sort_order"`
}

func (u *MenuUsecase) CreateCategory(ctx context.Context, restaurantID int64, in CategoryInput) (model.MenuCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.MenuCategory{}, NewValidationError("category name required")
	}

	c := model.MenuCategory{
		RestaurantID: restaurantID,
		Name:         name,
		Description:  in.Description,
		SortOrder:    in.SortOrder,
		IsActive:     true,
	}
	id, err := u.categories.Create(ctx, c)
	if err != nil {
		return model.MenuCategory{}, NewInternalError()
	}
	c.ID = id
	return c, nil
}

func (u *MenuUsecase) UpdateCategory(ctx context.Context, restaurantID int64, categoryID int64, in CategoryInput) error {
	c, err := u.findOwnCategory(ctx, restaurantID, categoryID)
	if err != nil {
		return err
	}

	c.Name = strings.TrimSpace(in.Name)
	if c.Name == "" {
		return NewValidationError("category name required")
	}
	c.Description = in.Description
	c.SortOrder = in.SortOrder

	if err := u.categories.Update(ctx, c); err != nil {
		return NewInternalError()
	}
	return nil
}

// カテゴリの無効化は配下の品目にカスケードする
func (u *MenuUsecase) DeactivateCategory(ctx context.Context, restaurantID int64, categoryID int64) error {
	if _, err := u.findOwnCategory(ctx, restaurantID, categoryID); err != nil {
		return err
	}
	if err := u.categories.SetActive(ctx, categoryID, false); err != nil {
		return NewInternalError()
	}
	if err := u.menuItems.DeactivateByCategoryID(ctx, categoryID); err != nil {
		return NewInternalError()
	}
	return nil
}

type MenuItemInput struct {
	CategoryID   int64  `json:"category_id" validate:"required,gt=0"`
	Name         string `json:"name" validate:"required,max=255"`
	Description  string `json:"description" validate:"max=2000"`
	Price        int64  `json:"price" validate:"gte=0"`
	IsVegetarian bool   `json:"is_vegetarian"`
	SortOrder    int    `json:"sort_order"`
}

func (u *MenuUsecase) CreateItem(ctx context.Context, restaurantID int64, in MenuItemInput) (model.MenuItem, error) {
	if err := validateItemInput(in); err != nil {
		return model.MenuItem{}, err
	}
	if _, err := u.findOwnCategory(ctx, restaurantID, in.CategoryID); err != nil {
		return model.MenuItem{}, err
	}

	m := model.MenuItem{
		CategoryID:   in.CategoryID,
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        in.Price,
		IsVegetarian: in.IsVegetarian,
		SortOrder:    in.SortOrder,
		IsActive:     true,
	}
	id, err := u.menuItems.Create(ctx, m)
	if err != nil {
		return model.MenuItem{}, NewInternalError()
	}
	m.ID = id
	return m, nil
}

func (u *MenuUsecase) UpdateItem(ctx context.Context, restaurantID int64, itemID int64, in MenuItemInput) error {
	if err := validateItemInput(in); err != nil {
		return err
	}

	m, err := u.menuItems.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("menu item not found")
	}
	if err != nil {
		return NewInternalError()
	}
	if m.RestaurantID != restaurantID {
		return NewNotFoundError("menu item not found")
	}
	if _, err := u.findOwnCategory(ctx, restaurantID, in.CategoryID); err != nil {
		return err
	}

	m.CategoryID = in.CategoryID
	m.Name = strings.TrimSpace(in.Name)
	m.Description = in.Description
	m.Price = in.Price
	m.IsVegetarian = in.IsVegetarian
	m.SortOrder = in.SortOrder

	if err := u.menuItems.Update(ctx, m); err != nil {
		return NewInternalError()
	}
	return nil
}

func (u *MenuUsecase) DeactivateItem(ctx context.Context, restaurantID int64, itemID int64) error {
	m, err := u.menuItems.FindByID(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("menu item not found")
	}
	if err != nil {
		return NewInternalError()
	}
	if m.RestaurantID != restaurantID {
		return NewNotFoundError("menu item not found")
	}

	if err := u.menuItems.SetActive(ctx, itemID, false); err != nil {
		return NewInternalError()
	}
	return nil
}

func (u *MenuUsecase) findOwnCategory(ctx context.Context, restaurantID int64, categoryID int64) (model.MenuCategory, error) {
	c, err := u.categories.FindByID(ctx, categoryID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.MenuCategory{}, NewNotFoundError("category not found")
	}
	if err != nil {
		return model.MenuCategory{}, NewInternalError()
	}
	// 別店舗のカテゴリは存在しない扱い
	if c.RestaurantID != restaurantID {
		return model.MenuCategory{}, NewNotFoundError("category not found")
	}
	return c, nil
}

func validateItemInput(in MenuItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("item name required")
	}
	if in.Price < 0 {
		return NewValidationError("price must not be negative")
	}
	return nil
}
