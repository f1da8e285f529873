package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
)

// ── Announcements ──

func TestAnnouncementService_Create_ByRole(t *testing.T) {
	m := newMocks()
	svc := NewAnnouncementService(m.repo, nopLogger)
	dept := m.depts.add("Dental")
	head := m.addUser("Jefa Dental", model.RoleStaff, 0, "x")
	m.makeHead(head, dept)
	staff := m.addUser("Luis Soto", model.RoleStaff, dept.ID, "x")
	director := m.addUser("Directora", model.RoleDirector, 0, "x")

	tests := []struct {
		name    string
		actor   *model.User
		wantErr error
	}{
		{"director", director, nil},
		{"department head", head, nil},
		{"staff", staff, policy.ErrCannotAnnounce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Create(context.Background(), actorOf(tt.actor), &dto.CreateAnnouncementRequest{Title: "Vacunación influenza", Body: "Desde el lunes"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if err == nil && (result.Author == nil || result.Author.ID != tt.actor.ID) {
				t.Errorf("expected author %d, got %+v", tt.actor.ID, result.Author)
			}
		})
	}
}

func TestAnnouncementService_List_NewestFirst(t *testing.T) {
	m := newMocks()
	svc := NewAnnouncementService(m.repo, nopLogger)
	director := m.addUser("Directora", model.RoleDirector, 0, "x")
	svc.Create(context.Background(), actorOf(director), &dto.CreateAnnouncementRequest{Title: "Primero"})
	svc.Create(context.Background(), actorOf(director), &dto.CreateAnnouncementRequest{Title: "Segundo"})

	result, total, err := svc.List(context.Background(), &dto.PaginationRequest{Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if total != 2 || len(result) != 1 || result[0].Title != "Segundo" {
		t.Errorf("expected newest first with total 2, got %d %+v", total, result)
	}
}

func TestAnnouncementService_Delete(t *testing.T) {
	m := newMocks()
	svc := NewAnnouncementService(m.repo, nopLogger)
	dept := m.depts.add("Dental")
	head := m.addUser("Jefa Dental", model.RoleStaff, 0, "x")
	m.makeHead(head, dept)
	otherHead := m.addUser("Jefe Farmacia", model.RoleStaff, 0, "x")
	m.makeHead(otherHead, m.depts.add("Farmacia"))
	admin := m.addUser("Admin Sistema", model.RoleAdmin, 0, "x")
	created, _ := svc.Create(context.Background(), actorOf(head), &dto.CreateAnnouncementRequest{Title: "Reunión"})

	if err := svc.Delete(context.Background(), actorOf(otherHead), created.ID); !errors.Is(err, policy.ErrNotOwner) {
		t.Errorf("other head: expected ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(context.Background(), actorOf(admin), created.ID); err != nil {
		t.Fatalf("admin delete should succeed: %v", err)
	}
	if err := svc.Delete(context.Background(), actorOf(admin), created.ID); !errors.Is(err, ErrAnnouncementNotFound) {
		t.Errorf("expected ErrAnnouncementNotFound, got %v", err)
	}
}

// ── Login audit ──

func TestLoginRecordService_List(t *testing.T) {
	m := newMocks()
	svc := NewLoginRecordService(m.repo, nopLogger)
	staff := m.addUser("Luis Soto", model.RoleStaff, 0, "x")
	director := m.addUser("Directora", model.RoleDirector, 0, "x")
	admin := m.addUser("Admin Sistema", model.RoleAdmin, 0, "x")
	m.logins.items = []model.LoginRecord{
		{UserID: staff.ID, IP: "10.0.0.1", LoggedAt: time.Now()},
		{UserID: director.ID, IP: "10.0.0.2", LoggedAt: time.Now()},
		{UserID: staff.ID, IP: "10.0.0.3", LoggedAt: time.Now()},
	}

	if _, _, err := svc.List(context.Background(), actorOf(director), &dto.LoginRecordListRequest{}); !errors.Is(err, policy.ErrAdminOnly) {
		t.Errorf("director: expected ErrAdminOnly, got %v", err)
	}

	result, total, err := svc.List(context.Background(), actorOf(admin), &dto.LoginRecordListRequest{UserID: staff.ID})
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if total != 2 || len(result) != 2 {
		t.Errorf("expected 2 records for staff, got %d", total)
	}
}
