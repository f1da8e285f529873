package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/repository"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
	"intranet-cesfam/backend/pkg/storage"
)

var ErrDocumentNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "document not found")

const documentDir = "documentos"

// DocumentService shared document library
type DocumentService interface {
	Upload(ctx context.Context, actor policy.Actor, req *dto.UploadDocumentRequest, file *FileUpload) (*dto.DocumentResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.DocumentResponse, error)
	List(ctx context.Context, req *dto.DocumentListRequest) ([]dto.DocumentResponse, int64, error)
	// Open streams the content; the caller closes the reader.
	Open(ctx context.Context, id int64) (io.ReadCloser, *dto.DocumentResponse, error)
	Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

type documentService struct {
	repo       *repository.Repository
	store      storage.Storage
	uploadRule validation.UploadRule
	logger     *zap.Logger
}

// NewDocumentService creates a DocumentService; maxBytes caps uploads.
func NewDocumentService(repo *repository.Repository, store storage.Storage, maxBytes int64, logger *zap.Logger) DocumentService {
	return &documentService{
		repo:       repo,
		store:      store,
		uploadRule: validation.DocumentRule(maxBytes),
		logger:     logger,
	}
}

// ────────────────────── Upload ──────────────────────

func (s *documentService) Upload(ctx context.Context, actor policy.Actor, req *dto.UploadDocumentRequest, file *FileUpload) (*dto.DocumentResponse, error) {
	if !actor.Valid() {
		return nil, policy.ErrNoActor
	}
	if file == nil {
		return nil, validation.Field("file", "file is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validation.Field("name", "is required")
	}

	mime, body, err := checkUpload(s.uploadRule, file)
	if err != nil {
		return nil, err
	}
	ref, err := s.store.Save(ctx, documentDir, file.Filename, body, file.Size, mime)
	if err != nil {
		s.logger.Error("store document failed", zap.String("filename", file.Filename), zap.Error(err))
		return nil, err
	}

	doc := &model.Document{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		FileRef:     ref,
		FileName:    file.Filename,
		FileSize:    file.Size,
		MimeType:    mime,
		UploaderID:  actor.UserID,
	}
	if err := s.repo.Document.Create(ctx, doc); err != nil {
		s.logger.Error("create document failed", zap.Error(err))
		discardFile(ctx, s.store, s.logger, ref)
		return nil, err
	}

	s.logger.Info("document uploaded", zap.Int64("id", doc.ID), zap.Int64("uploader_id", actor.UserID))
	return s.GetByID(ctx, doc.ID)
}

// ────────────────────── GetByID ──────────────────────

func (s *documentService) GetByID(ctx context.Context, id int64) (*dto.DocumentResponse, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// ────────────────────── List ──────────────────────

func (s *documentService) List(ctx context.Context, req *dto.DocumentListRequest) ([]dto.DocumentResponse, int64, error) {
	docs, total, err := s.repo.Document.List(ctx, strings.TrimSpace(req.Keyword), page(&req.PaginationRequest))
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, *toDocumentResponse(&docs[i]))
	}
	return result, total, nil
}

// ────────────────────── Open ──────────────────────

func (s *documentService) Open(ctx context.Context, id int64) (io.ReadCloser, *dto.DocumentResponse, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, doc.FileRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		s.logger.Error("open document failed", zap.Int64("id", id), zap.Error(err))
		return nil, nil, err
	}
	return rc, toDocumentResponse(doc), nil
}

// ────────────────────── Update ──────────────────────

func (s *documentService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMutate(policy.KindDocument, actor, doc.UploaderID, 0); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validation.Field("name", "is required")
		}
		doc.Name = name
	}
	if req.Description != nil {
		doc.Description = strings.TrimSpace(*req.Description)
	}

	doc.Uploader = nil
	if err := s.repo.Document.Update(ctx, doc); err != nil {
		s.logger.Error("update document failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *documentService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	doc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanMutate(policy.KindDocument, actor, doc.UploaderID, 0); err != nil {
		return err
	}

	if err := s.repo.Document.Delete(ctx, id); err != nil {
		s.logger.Error("delete document failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	discardFile(ctx, s.store, s.logger, doc.FileRef)
	return nil
}

// ── helpers ──

func (s *documentService) load(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.Document.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		s.logger.Error("load document failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func toDocumentResponse(doc *model.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		FileName:    doc.FileName,
		FileSize:    doc.FileSize,
		MimeType:    doc.MimeType,
		Uploader:    toUserBrief(doc.Uploader),
		UploadedAt:  formatTime(doc.CreatedAt),
	}
}
