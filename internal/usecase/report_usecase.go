package usecase

import (
	"context"
	"time"

	repo "tableservice/internal/repository"
)

type ReportUsecase struct {
	orders repo.OrderRepository
}

func NewReportUsecase(orders repo.OrderRepository) *ReportUsecase {
	return &ReportUsecase{orders: orders}
}

type DailyReportOutput struct {
	Day        string `json:"day"`
	OrderCount int64  `json:"order_count"`
	Revenue    int64  `json:"revenue"`
}

type StatusCountOutput struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// 期間の正規化。未指定なら直近30日。
func normalizeRange(from *time.Time, to *time.Time) (time.Time, time.Time, error) {
	now := time.Now()
	f := now.AddDate(0, 0, -30)
	t := now

	if from != nil {
		f = *from
	}
	if to != nil {
		t = *to
	}
	if t.Before(f) {
		return time.Time{}, time.Time{}, NewValidationError("invalid date range")
	}
	return f, t, nil
}

func (u *ReportUsecase) Daily(ctx context.Context, restaurantID int64, from *time.Time, to *time.Time) ([]DailyReportOutput, error) {
	f, t, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := u.orders.ReportDaily(ctx, restaurantID, f, t)
	if err != nil {
		return nil, NewInternalError()
	}

	outs := make([]DailyReportOutput, 0, len(rows))
	for _, r := range rows {
		outs = append(outs, DailyReportOutput{
			Day:        r.Day.Format("2006-01-02"),
			OrderCount: r.OrderCount,
			Revenue:    r.Revenue,
		})
	}
	return outs, nil
}

func (u *ReportUsecase) StatusBreakdown(ctx context.Context, restaurantID int64, from *time.Time, to *time.Time) ([]StatusCountOutput, error) {
	f, t, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := u.orders.ReportStatusCounts(ctx, restaurantID, f, t)
	if err != nil {
		return nil, NewInternalError()
	}

	outs := make([]StatusCountOutput, 0, len(rows))
	for _, r := range rows {
		outs = append(outs, StatusCountOutput{Status: string(r.Status), Count: r.Count})
	}
	return outs, nil
}
