package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

func setupTestUserService() (UserService, *mocks, *model.User) {
	m := newMocks()
	admin := m.addUser("Admin Sistema", model.RoleAdmin, 0, "password123")
	return NewUserService(m.repo, nopLogger), m, admin
}

// ── Create ──

func TestUserService_Create_GeneratesPassword(t *testing.T) {
	svc, m, admin := setupTestUserService()
	dept := m.depts.add("Dental")

	result, err := svc.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		RUT:          "12.345.678-5",
		Name:         "Ana Rojas",
		Email:        "ana@cesfam.cl",
		Role:         string(model.RoleStaff),
		DepartmentID: int64Ptr(dept.ID),
	})
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if result.User.RUT != "12345678-5" {
		t.Errorf("expected canonical RUT 12345678-5, got %s", result.User.RUT)
	}
	if len(result.TempPassword) < 8 {
		t.Errorf("expected a generated password, got %q", result.TempPassword)
	}

	stored, _ := m.users.GetByRUT(context.Background(), 12345678)
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(result.TempPassword)) != nil {
		t.Error("stored hash should match the returned temporary password")
	}
}

func TestUserService_Create_ExplicitPassword(t *testing.T) {
	svc, _, admin := setupTestUserService()

	result, err := svc.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		RUT:      "12345678-5",
		Name:     "Ana Rojas",
		Password: "password123",
		Role:     string(model.RoleStaff),
	})
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if result.TempPassword != "" {
		t.Error("no temporary password when one was supplied")
	}
}

func TestUserService_Create_InvalidCheckDigit(t *testing.T) {
	svc, _, admin := setupTestUserService()

	_, err := svc.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		RUT:  "12345678-9",
		Name: "Ana Rojas",
		Role: string(model.RoleStaff),
	})
	var verrs validation.Errors
	if !errors.As(err, &verrs) || !verrs.Has("rut") {
		t.Errorf("expected a rut field error, got %v", err)
	}
}

func TestUserService_Create_DuplicateRUT(t *testing.T) {
	svc, m, admin := setupTestUserService()
	existing := m.addUser("Ana Rojas", model.RoleStaff, 0, "password123")

	_, err := svc.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		RUT:  rutOf(existing),
		Name: "Otra Persona",
		Role: string(model.RoleStaff),
	})
	if !errors.Is(err, ErrRUTExists) {
		t.Errorf("expected ErrRUTExists, got %v", err)
	}
}

func TestUserService_Create_DepartmentHead(t *testing.T) {
	svc, m, admin := setupTestUserService()
	dept := m.depts.add("Dental")

	result, err := svc.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		RUT:          "12345678-5",
		Name:         "Jefa Dental",
		Password:     "password123",
		Role:         string(model.RoleDepartmentHead),
		DepartmentID: int64Ptr(dept.ID),
	})
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if h := m.depts.depts[dept.ID].HeadID; h == nil || *h != result.User.ID {
		t.Error("department should point at the new head")
	}
}

func TestUserService_Create_HeadWithoutDepartment(t *testing.T) {
	svc, _, admin := setupTestUserService()

	_, err := svc.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		RUT:  "12345678-5",
		Name: "Jefa",
		Role: string(model.RoleDepartmentHead),
	})
	var verrs validation.Errors
	if !errors.As(err, &verrs) || !verrs.Has("department_id") {
		t.Errorf("expected a department_id field error, got %v", err)
	}
}

func TestUserService_Create_StaffForbidden(t *testing.T) {
	svc, m, _ := setupTestUserService()
	staff := m.addUser("Luis Soto", model.RoleStaff, 0, "password123")

	_, err := svc.Create(context.Background(), actorOf(staff), &dto.CreateUserRequest{
		RUT:  "12345678-5",
		Name: "Ana Rojas",
		Role: string(model.RoleStaff),
	})
	if !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

// ── ListDirectory ──

func TestUserService_ListDirectory_ByInitial(t *testing.T) {
	svc, m, _ := setupTestUserService()
	m.addUser("Beatriz Muñoz", model.RoleStaff, 0, "password123")
	m.addUser("Bruno Lagos", model.RoleStaff, 0, "password123")
	m.addUser("Carla Vera", model.RoleStaff, 0, "password123")

	result, total, err := svc.ListDirectory(context.Background(), &dto.UserListRequest{Initial: "b"})
	if err != nil {
		t.Fatalf("ListDirectory should succeed: %v", err)
	}
	if total != 2 || len(result) != 2 {
		t.Fatalf("expected 2 users starting with B, got %d", total)
	}
	if result[0].Name != "Beatriz Muñoz" {
		t.Errorf("expected alphabetical order, got %s first", result[0].Name)
	}
}

func TestUserService_ListDirectory_ByDepartment(t *testing.T) {
	svc, m, _ := setupTestUserService()
	dept := m.depts.add("Dental")
	m.addUser("Beatriz Muñoz", model.RoleStaff, dept.ID, "password123")
	m.addUser("Carla Vera", model.RoleStaff, 0, "password123")

	result, total, err := svc.ListDirectory(context.Background(), &dto.UserListRequest{DepartmentID: dept.ID})
	if err != nil {
		t.Fatalf("ListDirectory should succeed: %v", err)
	}
	if total != 1 || result[0].Department == nil || result[0].Department.ID != dept.ID {
		t.Errorf("expected the Dental member only, got %+v", result)
	}
}

// ── Update ──

func TestUserService_Update_SelfContact(t *testing.T) {
	svc, m, _ := setupTestUserService()
	staff := m.addUser("Luis Soto", model.RoleStaff, 0, "password123")

	result, err := svc.Update(context.Background(), actorOf(staff), staff.ID, &dto.UpdateUserRequest{
		Phone: strPtr("+56 9 1234 5678"),
	})
	if err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if result.Phone != "+56 9 1234 5678" {
		t.Errorf("expected phone to change, got %q", result.Phone)
	}
}

func TestUserService_Update_CannotUpdateOthers(t *testing.T) {
	svc, m, _ := setupTestUserService()
	staff := m.addUser("Luis Soto", model.RoleStaff, 0, "password123")
	other := m.addUser("Rosa Díaz", model.RoleStaff, 0, "password123")

	_, err := svc.Update(context.Background(), actorOf(staff), other.ID, &dto.UpdateUserRequest{Phone: strPtr("1")})
	if !errors.Is(err, policy.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestUserService_Update_StaffCannotChangeOwnDepartment(t *testing.T) {
	svc, m, _ := setupTestUserService()
	dept := m.depts.add("Dental")
	staff := m.addUser("Luis Soto", model.RoleStaff, 0, "password123")

	_, err := svc.Update(context.Background(), actorOf(staff), staff.ID, &dto.UpdateUserRequest{DepartmentID: int64Ptr(dept.ID)})
	if !errors.Is(err, policy.ErrAdminOnly) {
		t.Errorf("expected ErrAdminOnly, got %v", err)
	}
}

func TestUserService_Update_SelfRoleChange(t *testing.T) {
	svc, _, admin := setupTestUserService()

	_, err := svc.Update(context.Background(), actorOf(admin), admin.ID, &dto.UpdateUserRequest{Role: strPtr(string(model.RoleStaff))})
	if !errors.Is(err, ErrSelfRoleChange) {
		t.Errorf("expected ErrSelfRoleChange, got %v", err)
	}
}

func TestUserService_Update_DemotingHeadClearsHeadship(t *testing.T) {
	svc, m, admin := setupTestUserService()
	dept := m.depts.add("Dental")
	head := m.addUser("Jefa Dental", model.RoleStaff, 0, "password123")
	m.makeHead(head, dept)

	result, err := svc.Update(context.Background(), actorOf(admin), head.ID, &dto.UpdateUserRequest{Role: strPtr(string(model.RoleStaff))})
	if err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if result.Role != string(model.RoleStaff) {
		t.Errorf("expected staff, got %s", result.Role)
	}
	if m.depts.depts[dept.ID].HeadID != nil {
		t.Error("department should lose its head")
	}
}

func TestUserService_Update_PromoteToHead(t *testing.T) {
	svc, m, admin := setupTestUserService()
	dept := m.depts.add("Dental")
	oldHead := m.addUser("Jefa Dental", model.RoleStaff, 0, "password123")
	m.makeHead(oldHead, dept)
	staff := m.addUser("Luis Soto", model.RoleStaff, dept.ID, "password123")

	if _, err := svc.Update(context.Background(), actorOf(admin), staff.ID, &dto.UpdateUserRequest{Role: strPtr(string(model.RoleDepartmentHead))}); err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if h := m.depts.depts[dept.ID].HeadID; h == nil || *h != staff.ID {
		t.Error("department should be headed by the promoted user")
	}
	if got := m.users.users[oldHead.ID].Role; got != model.RoleStaff {
		t.Errorf("previous head should be demoted, got %s", got)
	}
}

func TestUserService_Update_ClearDepartment(t *testing.T) {
	svc, m, admin := setupTestUserService()
	dept := m.depts.add("Dental")
	staff := m.addUser("Luis Soto", model.RoleStaff, dept.ID, "password123")

	result, err := svc.Update(context.Background(), actorOf(admin), staff.ID, &dto.UpdateUserRequest{DepartmentID: int64Ptr(0)})
	if err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if result.Department != nil {
		t.Error("department should be cleared")
	}
}

func TestUserService_Update_NotFound(t *testing.T) {
	svc, _, admin := setupTestUserService()

	_, err := svc.Update(context.Background(), actorOf(admin), 999, &dto.UpdateUserRequest{Phone: strPtr("1")})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ── Delete ──

func TestUserService_Delete_ClearsHeadship(t *testing.T) {
	svc, m, admin := setupTestUserService()
	dept := m.depts.add("Dental")
	head := m.addUser("Jefa Dental", model.RoleStaff, 0, "password123")
	m.makeHead(head, dept)

	if err := svc.Delete(context.Background(), actorOf(admin), head.ID); err != nil {
		t.Fatalf("Delete should succeed: %v", err)
	}
	if _, ok := m.users.users[head.ID]; ok {
		t.Error("user should be gone")
	}
	if m.depts.depts[dept.ID].HeadID != nil {
		t.Error("department should be headless")
	}
}

func TestUserService_Delete_SelfProtection(t *testing.T) {
	svc, _, admin := setupTestUserService()

	err := svc.Delete(context.Background(), actorOf(admin), admin.ID)
	if !errors.Is(err, policy.ErrSelfDelete) {
		t.Errorf("expected ErrSelfDelete, got %v", err)
	}
}

func TestUserService_Delete_NotFound(t *testing.T) {
	svc, _, admin := setupTestUserService()

	err := svc.Delete(context.Background(), actorOf(admin), 999)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ── ResetPassword ──

func TestUserService_ResetPassword_Success(t *testing.T) {
	svc, m, admin := setupTestUserService()
	staff := m.addUser("Luis Soto", model.RoleStaff, 0, "password123")

	result, err := svc.ResetPassword(context.Background(), actorOf(admin), staff.ID)
	if err != nil {
		t.Fatalf("ResetPassword should succeed: %v", err)
	}
	stored := m.users.users[staff.ID]
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(result.TempPassword)) != nil {
		t.Error("stored hash should match the temporary password")
	}
}

func TestUserService_ResetPassword_DirectorForbidden(t *testing.T) {
	svc, m, _ := setupTestUserService()
	director := m.addUser("Director", model.RoleDirector, 0, "password123")
	staff := m.addUser("Luis Soto", model.RoleStaff, 0, "password123")

	_, err := svc.ResetPassword(context.Background(), actorOf(director), staff.ID)
	if !errors.Is(err, policy.ErrAdminOnly) {
		t.Errorf("expected ErrAdminOnly, got %v", err)
	}
}

// ── Import ──

func buildImportFile(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestUserService_ParseImportFile(t *testing.T) {
	svc, _, _ := setupTestUserService()
	buf := buildImportFile(t, [][]interface{}{
		{"Departamento", "Nombre", "RUT", "Correo"},
		{"Dental", "Ana Rojas", "12.345.678-5", "ana@cesfam.cl"},
		{"", "", "", ""},
		{"", "Luis Soto", "11111111-1", ""},
	})

	rows, err := svc.ParseImportFile(buf)
	if err != nil {
		t.Fatalf("ParseImportFile should succeed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (blank skipped), got %d", len(rows))
	}
	if rows[0].RUT != "12.345.678-5" || rows[0].DepartmentName != "Dental" || rows[0].Row != 2 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Row != 4 {
		t.Errorf("row numbers should follow the sheet, got %d", rows[1].Row)
	}
}

func TestUserService_ParseImportFile_BadHeader(t *testing.T) {
	svc, _, _ := setupTestUserService()
	buf := buildImportFile(t, [][]interface{}{
		{"RUT", "Nombre"},
		{"12345678-5", "Ana Rojas"},
	})

	if _, err := svc.ParseImportFile(buf); !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("expected ErrImportBadHeader, got %v", err)
	}
}

func TestUserService_ParseImportFile_NotSpreadsheet(t *testing.T) {
	svc, _, _ := setupTestUserService()

	if _, err := svc.ParseImportFile(strings.NewReader("rut,nombre")); !errors.Is(err, ErrImportUnreadable) {
		t.Errorf("expected ErrImportUnreadable, got %v", err)
	}
}

func TestUserService_ImportUsers_Mixed(t *testing.T) {
	svc, m, admin := setupTestUserService()
	m.depts.add("Dental")
	existing := m.addUser("Rosa Díaz", model.RoleStaff, 0, "password123")

	result, err := svc.ImportUsers(context.Background(), actorOf(admin), []ImportUserRow{
		{Row: 2, RUT: "12.345.678-5", Name: "Ana Rojas", DepartmentName: "dental"},
		{Row: 3, RUT: "12345678-5", Name: "Ana Repetida"},
		{Row: 4, RUT: "12345678-9", Name: "Dígito Malo"},
		{Row: 5, RUT: rutOf(existing), Name: "Rosa Otra"},
		{Row: 6, RUT: "11111111-1", Name: "Luis Soto", DepartmentName: "Inexistente"},
		{Row: 7, RUT: "", Name: "Sin RUT"},
		{Row: 8, RUT: "11111111-1", Name: "Luis Soto"},
	})
	if err != nil {
		t.Fatalf("ImportUsers should succeed: %v", err)
	}
	if result.Total != 7 || result.Success != 2 || result.Failed != 5 {
		t.Fatalf("expected 7/2/5, got %d/%d/%d: %+v", result.Total, result.Success, result.Failed, result.Errors)
	}
	if len(result.Credentials) != 2 || result.Credentials[0].RUT != "12345678-5" {
		t.Errorf("unexpected credentials: %+v", result.Credentials)
	}

	imported, err := m.users.GetByRUT(context.Background(), 12345678)
	if err != nil {
		t.Fatalf("imported user should exist: %v", err)
	}
	if imported.Role != model.RoleStaff || imported.Department == nil || imported.Department.Name != "Dental" {
		t.Errorf("imported user should be Dental staff, got role=%s dept=%+v", imported.Role, imported.Department)
	}
}

func TestUserService_ImportUsers_AdminOnly(t *testing.T) {
	svc, m, _ := setupTestUserService()
	director := m.addUser("Director", model.RoleDirector, 0, "password123")

	_, err := svc.ImportUsers(context.Background(), actorOf(director), []ImportUserRow{{Row: 2, RUT: "12345678-5", Name: "Ana"}})
	if !errors.Is(err, policy.ErrAdminOnly) {
		t.Errorf("expected ErrAdminOnly, got %v", err)
	}
}

// ── generateTempPassword ──

func TestGenerateTempPassword(t *testing.T) {
	for _, length := range []int{4, 8, 12} {
		pw, err := generateTempPassword(length)
		if err != nil {
			t.Fatalf("generateTempPassword(%d): %v", length, err)
		}
		want := length
		if want < 8 {
			want = 8
		}
		if len(pw) != want {
			t.Errorf("length %d: expected %d chars, got %d", length, want, len(pw))
		}
		if !strings.ContainsAny(pw, "23456789") {
			t.Errorf("password %q should contain a digit", pw)
		}
		if strings.ContainsAny(pw, "0O1lI") {
			t.Errorf("password %q should avoid ambiguous characters", pw)
		}
	}
}
