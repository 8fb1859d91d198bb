package services

import (
	"context"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"as-system/internal/dto"
	"as-system/pkg/types"
)

type ReportServiceInterface interface {
	ExportRequests(ctx context.Context, filter types.Filter) (*excelize.File, error)
}

// ReportService выгружает список заявок в XLSX. Видимость та же, что и в
// обычном списке: выгрузка идет через RequestService и его ролевые правила.
type ReportService struct {
	requestService RequestServiceInterface
	logger         *zap.Logger
}

func NewReportService(requestService RequestServiceInterface, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{requestService: requestService, logger: logger}
}

var reportHeaders = []interface{}{
	"№", "Номер заявки", "Статус", "Клиент", "Телефон", "Изделие", "Модель",
	"Принял", "Инженер", "Статус назначения", "Создана", "Завершена", "Описание",
}

func (s *ReportService) ExportRequests(ctx context.Context, filter types.Filter) (*excelize.File, error) {
	// Без пагинации: в отчет попадает все, что видно по роли.
	filter.WithPagination = false
	requests, _, err := s.requestService.GetRequests(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Заявки A/S"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "M1", style)

	for i, item := range requests {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := requestToRow(i+1, item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "B", 20)
	f.SetColWidth(sheet, "D", "I", 18)
	f.SetColWidth(sheet, "M", "M", 50)

	s.logger.Info("Сформирован отчет по заявкам", zap.Int("rows", len(requests)))
	return f, nil
}

func requestToRow(n int, r dto.RequestDTO) []interface{} {
	engineerFio := ""
	if r.Engineer != nil {
		engineerFio = r.Engineer.Fio
	}
	completedAt := ""
	if r.CompletedAt != nil {
		completedAt = *r.CompletedAt
	}
	return []interface{}{
		n, r.RequestNo, r.Status, r.Customer.Name, r.Customer.Phone,
		r.CustomerProduct.ProductName, r.CustomerProduct.ModelCode,
		r.Receiver.Fio, engineerFio, r.AssignmentStatus,
		r.CreatedAt, completedAt, r.Content,
	}
}
