package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

var (
	ErrRUTExists      = pkgerrors.New(pkgerrors.ErrValidation, "RUT already registered")
	ErrSelfRoleChange = pkgerrors.New(pkgerrors.ErrForbidden, "you cannot change your own role")
)

// UserService staff directory
type UserService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.UserResponse, error)
	ListDirectory(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
	ResetPassword(ctx context.Context, actor policy.Actor, id int64) (*dto.ResetPasswordResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, actor policy.Actor, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

// ImportUserRow one parsed spreadsheet row
type ImportUserRow struct {
	Row            int
	RUT            string
	Name           string
	Email          string
	DepartmentName string
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}

	var errs validation.Errors
	rut, dv := validation.CheckRUT(&errs, "rut", req.RUT)
	if rut > 0 {
		if _, err := s.repo.User.GetByRUT(ctx, rut); err == nil {
			return nil, ErrRUTExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		errs.Add("role", "unknown role")
	}
	if err := s.checkRefs(ctx, &errs, req.DepartmentID, req.PositionID); err != nil {
		return nil, err
	}
	if role == model.RoleDepartmentHead && req.DepartmentID == nil {
		errs.Add("department_id", "a department head needs a department")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	password, temp := req.Password, ""
	if password == "" {
		generated, err := generateTempPassword(10)
		if err != nil {
			s.logger.Error("generate temporary password failed", zap.Error(err))
			return nil, err
		}
		password, temp = generated, generated
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		RUT:          rut,
		DV:           dv,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		Role:         role,
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
		RegisteredAt: time.Now(),
	}

	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.User.Create(ctx, user); err != nil {
			return err
		}
		if role == model.RoleDepartmentHead {
			return reassignHead(ctx, txRepo, *req.DepartmentID, user.ID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create user failed", zap.Int("rut", rut), zap.Error(err))
		return nil, err
	}

	created, err := s.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Int64("id", user.ID), zap.Int64("by", actor.UserID))
	return &dto.CreateUserResponse{User: created, TempPassword: temp}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── ListDirectory ──────────────────────

func (s *userService) ListDirectory(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filter := repository.UserListFilter{
		Initial:      strings.TrimSpace(req.Initial),
		Keyword:      strings.TrimSpace(req.Keyword),
		DepartmentID: req.DepartmentID,
		Role:         model.Role(req.Role),
	}

	users, total, err := s.repo.User.List(ctx, filter, page(&req.PaginationRequest))
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	// contact fields are self-service; the rest belongs to director/admin
	if err := policy.CanMutate(policy.KindDirectory, actor, id, 0); err != nil {
		return nil, err
	}
	managed := req.Name != nil || req.Role != nil || req.DepartmentID != nil || req.PositionID != nil
	if managed {
		if err := policy.CanManageUsers(actor); err != nil {
			return nil, err
		}
	}
	if req.Role != nil && id == actor.UserID && model.Role(*req.Role) != user.Role {
		return nil, ErrSelfRoleChange
	}

	wasHead := user.Role == model.RoleDepartmentHead
	prevDept := user.DeptID()

	var errs validation.Errors
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		user.Role = model.Role(*req.Role)
		if !user.Role.Valid() {
			errs.Add("role", "unknown role")
		}
	}
	if req.DepartmentID != nil {
		user.DepartmentID = nonZero(*req.DepartmentID)
	}
	if req.PositionID != nil {
		user.PositionID = nonZero(*req.PositionID)
	}
	if err := s.checkRefs(ctx, &errs, user.DepartmentID, user.PositionID); err != nil {
		return nil, err
	}
	if user.Role == model.RoleDepartmentHead && user.DepartmentID == nil {
		errs.Add("department_id", "a department head needs a department")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		user.Department, user.Position = nil, nil
		if err := txRepo.User.Update(ctx, user); err != nil {
			return err
		}
		if wasHead && (user.Role != model.RoleDepartmentHead || user.DeptID() != prevDept) {
			if err := txRepo.Department.ClearHeadship(ctx, user.ID); err != nil {
				return err
			}
		}
		if user.Role == model.RoleDepartmentHead {
			return reassignHead(ctx, txRepo, user.DeptID(), user.ID)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.Kind(err) == nil {
			s.logger.Error("update user failed", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.CanDeleteUser(actor, id); err != nil {
		return err
	}

	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	err := inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Department.ClearHeadship(ctx, id); err != nil {
			return err
		}
		return txRepo.User.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("delete user failed", zap.Int64("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("user deleted", zap.Int64("id", id), zap.Int64("by", actor.UserID))
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, actor policy.Actor, id int64) (*dto.ResetPasswordResponse, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("generate temporary password failed", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.Department, user.Position = nil, nil
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("reset password failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = pkgerrors.New(pkgerrors.ErrValidation, "spreadsheet has no data rows (the first row is the header)")
	ErrImportTooManyRows = pkgerrors.New(pkgerrors.ErrValidation, fmt.Sprintf("spreadsheet exceeds %d rows", maxImportRows))
	ErrImportBadHeader   = pkgerrors.New(pkgerrors.ErrValidation, "spreadsheet header must contain RUT, Nombre, Correo and Departamento")
	ErrImportUnreadable  = pkgerrors.New(pkgerrors.ErrValidation, "file is not a readable .xlsx spreadsheet")
)

// ParseImportFile reads the first sheet of an .xlsx file.
// Columns are located by header name, in any order.
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ErrImportUnreadable
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, ErrImportUnreadable
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	for _, idx := range colIndex {
		if idx < 0 {
			return nil, ErrImportBadHeader
		}
	}

	cellAt := func(row []string, col string) string {
		if idx := colIndex[col]; idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		item := ImportUserRow{
			Row:            i + 1,
			RUT:            cellAt(excelRows[i], "rut"),
			Name:           cellAt(excelRows[i], "name"),
			Email:          cellAt(excelRows[i], "email"),
			DepartmentName: cellAt(excelRows[i], "department"),
		}
		if item.RUT == "" && item.Name == "" && item.Email == "" && item.DepartmentName == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex maps column keys to their index, -1 when absent
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"rut":        -1,
		"name":       -1,
		"email":      -1,
		"department": -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "rut":
			idx["rut"] = i
		case "nombre", "name":
			idx["name"] = i
		case "correo", "email":
			idx["email"] = i
		case "departamento", "department":
			idx["department"] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

// ImportUsers validates every row first, then creates the valid ones in a single
// transaction. Imported users are staff with a generated password.
func (s *userService) ImportUsers(ctx context.Context, actor policy.Actor, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	resp := &dto.ImportUserResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	deptMap, err := s.buildDepartmentMap(ctx)
	if err != nil {
		s.logger.Error("load departments failed", zap.Error(err))
		return nil, err
	}

	// phase 1: validation, no writes
	type validatedRow struct {
		row      ImportUserRow
		rut      int
		dv       string
		deptID   *int64
		password string
		hash     []byte
	}
	var validRows []validatedRow
	seen := make(map[int]int)

	for _, row := range rows {
		if row.RUT == "" || row.Name == "" {
			fail(row.Row, "RUT and Nombre are required")
			continue
		}

		var errs validation.Errors
		rut, dv := validation.CheckRUT(&errs, "rut", row.RUT)
		if errs.Err() != nil {
			fail(row.Row, fmt.Sprintf("invalid RUT: %s", row.RUT))
			continue
		}
		if first, dup := seen[rut]; dup {
			fail(row.Row, fmt.Sprintf("RUT repeated from row %d", first))
			continue
		}
		if _, err := s.repo.User.GetByRUT(ctx, rut); err == nil {
			fail(row.Row, fmt.Sprintf("RUT already registered: %s", validation.FormatRUT(rut, dv)))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var deptID *int64
		if row.DepartmentName != "" {
			dept, ok := deptMap[strings.ToLower(row.DepartmentName)]
			if !ok {
				fail(row.Row, fmt.Sprintf("department not found: %s", row.DepartmentName))
				continue
			}
			deptID = &dept.ID
		}

		password, err := generateTempPassword(10)
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "password hashing failed")
			continue
		}

		seen[rut] = row.Row
		validRows = append(validRows, validatedRow{row: row, rut: rut, dv: dv, deptID: deptID, password: password, hash: hash})
	}

	// phase 2: one transaction for every valid row
	if len(validRows) > 0 {
		now := time.Now()
		err := inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
			for _, vr := range validRows {
				user := &model.User{
					RUT:          vr.rut,
					DV:           vr.dv,
					Name:         vr.row.Name,
					Email:        vr.row.Email,
					PasswordHash: string(vr.hash),
					Role:         model.RoleStaff,
					DepartmentID: vr.deptID,
					RegisteredAt: now,
				}
				if err := txRepo.User.Create(ctx, user); err != nil {
					s.logger.Error("import row write failed, rolling back",
						zap.Int("row", vr.row.Row), zap.Error(err))
					return fmt.Errorf("row %d could not be written, import rolled back: %w", vr.row.Row, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for _, vr := range validRows {
			resp.Success++
			resp.Credentials = append(resp.Credentials, dto.ImportCredential{
				Row:          vr.row.Row,
				RUT:          validation.FormatRUT(vr.rut, vr.dv),
				TempPassword: vr.password,
			})
		}
	}

	s.logger.Info("users imported",
		zap.Int("total", resp.Total), zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

// ── helpers ──

// checkRefs records field errors for department/position ids that do not exist
func (s *userService) checkRefs(ctx context.Context, errs *validation.Errors, deptID, positionID *int64) error {
	if deptID != nil {
		if _, err := s.repo.Department.GetByID(ctx, *deptID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			errs.Add("department_id", "department not found")
		}
	}
	if positionID != nil {
		if _, err := s.repo.Reference.GetPosition(ctx, *positionID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			errs.Add("position_id", "position not found")
		}
	}
	return nil
}

func (s *userService) buildDepartmentMap(ctx context.Context) (map[string]*model.Department, error) {
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*model.Department, len(depts))
	for i := range depts {
		m[strings.ToLower(depts[i].Name)] = &depts[i]
	}
	return m, nil
}

func nonZero(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// generateTempPassword random password with at least one letter and one digit
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 8 {
		length = 8
	}

	result := make([]byte, length)

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates shuffle
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}
