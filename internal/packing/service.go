package packing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/harvestlane/veggiebox-backend/internal/boxes"
	"github.com/harvestlane/veggiebox-backend/internal/orders"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

// BoxReader is the slice of the box repository the report builders need.
type BoxReader interface {
	FindByDay(ctx context.Context, day string) ([]boxes.Box, error)
}

// OrderReader is the slice of the order repository the report builders need.
type OrderReader interface {
	FindByDay(ctx context.Context, day string, sources []string) ([]orders.Order, error)
}

// Service builds warehouse reports for one delivery day.
type Service interface {
	PickingList(ctx context.Context, day string) ([]PickEntry, error)
	PackingWorkbook(ctx context.Context, day string, w io.Writer) error
	PickingWorkbook(ctx context.Context, day string, w io.Writer) error
	OrdersWorkbook(ctx context.Context, day string, w io.Writer) error
}

type service struct {
	boxes  BoxReader
	orders OrderReader
	logg   *logger.Logger
}

func NewService(boxReader BoxReader, orderReader OrderReader, logg *logger.Logger) (Service, error) {
	if boxReader == nil {
		return nil, fmt.Errorf("box reader required")
	}
	if orderReader == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{boxes: boxReader, orders: orderReader, logg: logg}, nil
}

func (s *service) summaries(ctx context.Context, day string) ([]BoxSummary, error) {
	if strings.TrimSpace(day) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery day required")
	}
	dayBoxes, err := s.boxes.FindByDay(ctx, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load boxes for day")
	}
	dayOrders, err := s.orders.FindByDay(ctx, day, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load orders for day")
	}
	return Summarize(dayBoxes, dayOrders), nil
}

func (s *service) PickingList(ctx context.Context, day string) ([]PickEntry, error) {
	summaries, err := s.summaries(ctx, day)
	if err != nil {
		return nil, err
	}
	return Aggregate(summaries), nil
}

func (s *service) PackingWorkbook(ctx context.Context, day string, w io.Writer) error {
	summaries, err := s.summaries(ctx, day)
	if err != nil {
		return err
	}
	sheet := BuildSheet(day, summaries, Aggregate(summaries))
	if err := RenderPackingSheet(sheet, w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render packing sheet")
	}
	ctx = s.logg.WithDeliveryDay(ctx, day)
	s.logg.Info(ctx, "packing sheet rendered")
	return nil
}

func (s *service) PickingWorkbook(ctx context.Context, day string, w io.Writer) error {
	picks, err := s.PickingList(ctx, day)
	if err != nil {
		return err
	}
	if err := RenderPickingList(day, picks, w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render picking list")
	}
	return nil
}

func (s *service) OrdersWorkbook(ctx context.Context, day string, w io.Writer) error {
	if strings.TrimSpace(day) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery day required")
	}
	dayOrders, err := s.orders.FindByDay(ctx, day, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load orders for day")
	}
	if err := RenderOrders(day, dayOrders, w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render orders workbook")
	}
	return nil
}
