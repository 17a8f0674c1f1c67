package usecase

import (
	"context"
	"errors"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"

	"github.com/google/uuid"
)

type TableUsecase struct {
	tables repo.TableRepository
}

func NewTableUsecase(tables repo.TableRepository) *TableUsecase {
	return &TableUsecase{tables: tables}
}

type TableOutput struct {
	ID       int64  `json:"id"`
	Number   int    `json:"number"`
	QRToken  string `json:"qr_token"`
	IsActive bool   `json:"is_active"`
}

func (u *TableUsecase) List(ctx context.Context, restaurantID int64) ([]TableOutput, error) {
	tables, err := u.tables.ListByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, NewInternalError()
	}

	outs := make([]TableOutput, 0, len(tables))
	for _, t := range tables {
		outs = append(outs, toTableOutput(t))
	}
	return outs, nil
}

func (u *TableUsecase) Create(ctx context.Context, restaurantID int64, number int) (TableOutput, error) {
	if number <= 0 {
		return TableOutput{}, NewValidationError("table number must be positive")
	}

	// 同一店舗内で番号は一意
	_, err := u.tables.FindByNumber(ctx, restaurantID, number)
	if err == nil {
		return TableOutput{}, NewConflictError("table number already exists")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return TableOutput{}, NewInternalError()
	}

	t := model.Table{
		RestaurantID: restaurantID,
		Number:       number,
		QRToken:      uuid.NewString(),
		IsActive:     true,
	}
	id, err := u.tables.Create(ctx, t)
	if err != nil {
		return TableOutput{}, NewInternalError()
	}
	t.ID = id
	return toTableOutput(t), nil
}

// トークンのローテーション。テーブルのidentityはそのまま、旧トークンは即失効。
func (u *TableUsecase) RotateToken(ctx context.Context, restaurantID int64, tableID int64) (TableOutput, error) {
	t, err := u.findOwnTable(ctx, restaurantID, tableID)
	if err != nil {
		return TableOutput{}, err
	}

	t.QRToken = uuid.NewString()
	if err := u.tables.UpdateToken(ctx, tableID, t.QRToken); err != nil {
		return TableOutput{}, NewInternalError()
	}
	return toTableOutput(t), nil
}

// 物理削除はしない
func (u *TableUsecase) Deactivate(ctx context.Context, restaurantID int64, tableID int64) error {
	if _, err := u.findOwnTable(ctx, restaurantID, tableID); err != nil {
		return err
	}
	if err := u.tables.SetActive(ctx, tableID, false); err != nil {
		return NewInternalError()
	}
	return nil
}

// QR画像用：トークンを埋めた客向けURLを返す（描画はhandlerの仕事）
func (u *TableUsecase) CustomerURL(ctx context.Context, restaurantID int64, tableID int64, baseURL string) (string, error) {
	t, err := u.findOwnTable(ctx, restaurantID, tableID)
	if err != nil {
		return "", err
	}
	return baseURL + "/t/" + t.QRToken + "/menu", nil
}

func (u *TableUsecase) findOwnTable(ctx context.Context, restaurantID int64, tableID int64) (model.Table, error) {
	t, err := u.tables.FindByID(ctx, tableID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Table{}, NewNotFoundError("table not found")
	}
	if err != nil {
		return model.Table{}, NewInternalError()
	}
	if t.RestaurantID != restaurantID {
		return model.Table{}, NewNotFoundError("table not found")
	}
	return t, nil
}

func toTableOutput(t model.Table) TableOutput {
	return TableOutput{
		ID:       t.ID,
		Number:   t.Number,
		QRToken:  t.QRToken,
		IsActive: t.IsActive,
	}
}
