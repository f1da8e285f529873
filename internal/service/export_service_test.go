package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

// ── helpers ──

func setupTestExportService() (ExportService, *mocks, *model.User, *model.User) {
	m := newMocks()
	dept := m.depts.add("Dental")
	staff := m.addUser("Luis Soto", model.RoleStaff, dept.ID, "x")
	director := m.addUser("Directora", model.RoleDirector, 0, "x")
	return NewExportService(m.repo, nopLogger), m, staff, director
}

func exportRequest(m *mocks, u *model.User, start string, days int, status model.RequestStatus) *model.Request {
	s, _ := time.Parse("2006-01-02", start)
	return m.requests.add(&model.Request{
		RequesterID: u.ID,
		TypeID:      1,
		StartDate:   s,
		EndDate:     s.AddDate(0, 0, days-1),
		Reason:      "trámite",
		Status:      status,
	})
}

func readSheet(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("output should be a valid workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Solicitudes")
	if err != nil {
		t.Fatalf("sheet Solicitudes should exist: %v", err)
	}
	return rows
}

// ── ExportRequests ──

func TestExportService_ExportRequests_Rows(t *testing.T) {
	svc, m, staff, director := setupTestExportService()
	exportRequest(m, staff, "2026-03-02", 3, model.RequestPending)
	approved := exportRequest(m, staff, "2026-04-06", 5, model.RequestApproved)
	approved.ApprovedByManager, approved.ApprovedByDirector = boolPtr(true), boolPtr(true)

	buf, filename, err := svc.ExportRequests(context.Background(), actorOf(director), &dto.RequestListRequest{})
	if err != nil {
		t.Fatalf("ExportRequests should succeed: %v", err)
	}
	if !strings.HasPrefix(filename, "solicitudes_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("unexpected filename %q", filename)
	}

	rows := readSheet(t, buf.Bytes())
	if len(rows) != 4 {
		t.Fatalf("expected title, header and 2 data rows, got %d", len(rows))
	}
	if !strings.HasPrefix(rows[0][0], "Solicitudes") {
		t.Errorf("unexpected title %q", rows[0][0])
	}
	if rows[1][1] != "Funcionario" || rows[1][10] != "Estado" {
		t.Errorf("unexpected header row %v", rows[1])
	}

	// newest first
	first := rows[2]
	if first[1] != "Luis Soto" || first[2] != "Dental" {
		t.Errorf("unexpected requester columns %v", first)
	}
	if first[6] != "5" || first[8] != "Aprobada" || first[9] != "Aprobada" || first[10] != "Aprobada" {
		t.Errorf("unexpected approved row %v", first)
	}
	if second := rows[3]; second[8] != "-" || second[10] != "Pendiente" {
		t.Errorf("unexpected pending row %v", second)
	}
}

func TestExportService_ExportRequests_StatusFilter(t *testing.T) {
	svc, m, staff, director := setupTestExportService()
	exportRequest(m, staff, "2026-03-02", 1, model.RequestPending)
	exportRequest(m, staff, "2026-03-09", 1, model.RequestRejected)

	buf, _, err := svc.ExportRequests(context.Background(), actorOf(director), &dto.RequestListRequest{Status: "rejected"})
	if err != nil {
		t.Fatalf("ExportRequests should succeed: %v", err)
	}
	rows := readSheet(t, buf.Bytes())
	if len(rows) != 3 || rows[2][10] != "Rechazada" {
		t.Errorf("expected only the rejected request, got %v", rows[2:])
	}
}

func TestExportService_ExportRequests_Empty(t *testing.T) {
	svc, _, _, director := setupTestExportService()

	buf, _, err := svc.ExportRequests(context.Background(), actorOf(director), &dto.RequestListRequest{})
	if err != nil {
		t.Fatalf("empty export should still produce a workbook: %v", err)
	}
	if rows := readSheet(t, buf.Bytes()); len(rows) != 2 {
		t.Errorf("expected title and header only, got %d rows", len(rows))
	}
}

func TestExportService_ExportRequests_Forbidden(t *testing.T) {
	svc, _, staff, _ := setupTestExportService()

	_, _, err := svc.ExportRequests(context.Background(), actorOf(staff), &dto.RequestListRequest{})
	if !errors.Is(err, ErrExportForbidden) || !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("expected ErrExportForbidden, got %v", err)
	}
}

func TestExportService_ExportRequests_BadRange(t *testing.T) {
	svc, _, _, director := setupTestExportService()

	_, _, err := svc.ExportRequests(context.Background(), actorOf(director), &dto.RequestListRequest{From: "2026-05-01", To: "2026-04-01"})
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
