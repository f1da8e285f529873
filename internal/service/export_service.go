package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

var (
	ErrExportForbidden    = pkgerrors.New(pkgerrors.ErrForbidden, "only the director or an administrator may export requests")
	ErrExportGenerateFail = errors.New("generate spreadsheet failed")
)

// maxExportRows caps a single report
const maxExportRows = 5000

// ExportService spreadsheet reports.
// The workbook is returned as a buffer; the handler sets the download headers.
type ExportService interface {
	// ExportRequests request report honouring the listing filters
	ExportRequests(ctx context.Context, actor policy.Actor, req *dto.RequestListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRequests
// ═══════════════════════════════════════════════════════════
//
// Layout: one sheet "Solicitudes", a title row, a header row, one row per
// request ordered newest first.

func (s *exportService) ExportRequests(ctx context.Context, actor policy.Actor, req *dto.RequestListRequest) (*bytes.Buffer, string, error) {
	if !actor.IsElevated() {
		return nil, "", ErrExportForbidden
	}

	filter, ok, err := requestFilter(actor, req)
	if err != nil {
		return nil, "", err
	}
	var reqs []model.Request
	if ok {
		reqs, _, err = s.repo.Request.List(ctx, filter, repository.Page{Limit: maxExportRows})
		if err != nil {
			s.logger.Error("load requests for export failed", zap.Error(err))
			return nil, "", err
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Solicitudes"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Funcionario", "Departamento", "Tipo", "Desde", "Hasta", "Días", "Motivo", "Jefatura", "Dirección", "Estado", "Creada"}
	widths := []float64{8, 28, 22, 22, 12, 12, 6, 40, 12, 12, 12, 20}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// title row
	generated := time.Now().Format("2006-01-02 15:04")
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Solicitudes (%s)", generated))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// header row
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// data rows
	row := 3
	for i := range reqs {
		r := &reqs[i]
		values := []interface{}{
			r.ID,
			userName(r.Requester),
			departmentName(r.Requester),
			typeName(r.Type),
			formatDate(r.StartDate),
			formatDate(r.EndDate),
			daysInclusive(r.StartDate, r.EndDate),
			r.Reason,
			decisionLabel(r.ApprovedByManager),
			decisionLabel(r.ApprovedByDirector),
			r.Status.Label(),
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write spreadsheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("solicitudes_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func decisionLabel(v *bool) string {
	switch {
	case v == nil:
		return "-"
	case *v:
		return "Aprobada"
	default:
		return "Rechazada"
	}
}

func userName(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func departmentName(u *model.User) string {
	if u == nil || u.Department == nil {
		return ""
	}
	return u.Department.Name
}

func typeName(t *model.RequestType) string {
	if t == nil {
		return ""
	}
	return t.Name
}
