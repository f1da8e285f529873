package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	"intranet-cesfam/backend/pkg/storage"
)

// ── transactions ──

// inTx runs fn against a transaction-bound repository aggregate and commits when
// fn succeeds. An aggregate without a database (unit tests) runs fn directly.
func inTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		logger.Error("begin transaction failed", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			logger.Error("commit transaction failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// ── uploads ──

// FileUpload incoming multipart file
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// checkUpload validates f against rule and returns the detected MIME type and a
// reader over the full content.
func checkUpload(rule validation.UploadRule, f *FileUpload) (string, io.Reader, error) {
	head, body, err := validation.Sniff(f.Content)
	if err != nil {
		return "", nil, err
	}
	mime, err := rule.Check(f.Filename, f.Size, head)
	if err != nil {
		return "", nil, err
	}
	return mime, body, nil
}

// discardFile best-effort removal of a stored file
func discardFile(ctx context.Context, store storage.Storage, logger *zap.Logger, ref string) {
	if ref == "" {
		return
	}
	if err := store.Delete(ctx, ref); err != nil {
		logger.Warn("delete stored file failed", zap.String("ref", ref), zap.Error(err))
	}
}

// ── clock ──

// clock yields "now" and the organisation's time zone for "today".
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.UTC
	}
	return clock{now: time.Now, loc: loc}
}

func (c clock) today() time.Time {
	return validation.Today(c.now(), c.loc)
}

// ── conversions ──

func formatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// daysInclusive calendar days covered by [start, end]
func daysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.ID, Name: u.Name}
}

func toDepartmentBrief(d *model.Department) *dto.DepartmentBrief {
	if d == nil {
		return nil
	}
	return &dto.DepartmentBrief{ID: d.ID, Name: d.Name}
}

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:           u.ID,
		RUT:          validation.FormatRUT(u.RUT, u.DV),
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         string(u.Role),
		RoleLabel:    u.Role.Label(),
		Department:   toDepartmentBrief(u.Department),
		RegisteredAt: formatTime(u.RegisteredAt),
	}
	if u.Position != nil {
		resp.Position = &dto.PositionResponse{ID: u.Position.ID, Name: u.Position.Name}
	}
	return resp
}

func page(p *dto.PaginationRequest) repository.Page {
	return repository.Page{Offset: p.GetOffset(), Limit: p.GetPageSize()}
}
