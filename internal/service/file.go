package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
	"github.com/sakif/portfolio-backend/internal/storage"
)

// unsafeNameChars matches everything we strip from an uploaded filename.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileService manages uploaded files: the metadata record in the database
// and the blob on disk. The blob is named after the record id, so a record
// always locates its bytes and uploads never collide.
type FileService struct {
	files  repository.FileRepository
	blobs  *storage.Local
	logger *slog.Logger

	allowedTypes      []string
	allowedExtensions []string
}

func NewFileService(files repository.FileRepository, blobs *storage.Local, allowedTypes, allowedExtensions []string, logger *slog.Logger) *FileService {
	return &FileService{
		files:             files,
		blobs:             blobs,
		logger:            logger,
		allowedTypes:      allowedTypes,
		allowedExtensions: allowedExtensions,
	}
}

// Upload validates the file type and extension against the allow-lists,
// records the metadata, and persists the blob. If the blob write fails the
// record is rolled back.
func (s *FileService) Upload(ctx context.Context, fileType, filename string, r io.Reader) (*model.File, error) {
	fileType = strings.ToLower(strings.TrimSpace(fileType))
	if !slices.Contains(s.allowedTypes, fileType) {
		return nil, apperror.ValidationFailed("fileType", "file type is not allowed")
	}

	name := sanitizeFilename(filename)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" || !slices.Contains(s.allowedExtensions, ext) {
		return nil, apperror.ValidationFailed("filename", "file extension is not allowed")
	}

	file := &model.File{Name: name, FileType: fileType, Extension: ext}
	if err := s.files.CreateFile(ctx, file); err != nil {
		return nil, err
	}

	if err := s.blobs.Save(fileType, blobName(file), r); err != nil {
		if delErr := s.files.DeleteFile(ctx, file.ID); delErr != nil {
			s.logger.Error("orphaned file record after failed blob write",
				"file_id", file.ID, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("file uploaded", "file_id", file.ID, "name", name, "type", fileType)
	return file, nil
}

func (s *FileService) Get(ctx context.Context, id string) (*model.File, error) {
	return s.files.GetFileByID(ctx, id)
}

func (s *FileService) List(ctx context.Context, opts repository.ListOptions) ([]model.File, error) {
	return s.files.ListFiles(ctx, opts)
}

// Blob returns a file's record together with the filesystem location of
// its bytes, for serving.
func (s *FileService) Blob(ctx context.Context, id string) (*model.File, string, error) {
	file, err := s.files.GetFileByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return file, s.blobs.Path(file.FileType, blobName(file)), nil
}

// Rename updates the display name of a file. The blob on disk is keyed by
// id and extension, so renaming never touches it.
func (s *FileService) Rename(ctx context.Context, id, name string) (*model.File, error) {
	name = sanitizeFilename(name)
	if name == "" || name == "." {
		return nil, apperror.ValidationFailed("name", "name is required")
	}

	file, err := s.files.GetFileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	file.Name = name
	if err := s.files.UpdateFile(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// Delete removes the record; the blob follows. A failed blob removal is
// logged but does not resurrect the record, since the row is the source of
// truth for what exists.
func (s *FileService) Delete(ctx context.Context, id string) error {
	file, err := s.files.GetFileByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.files.DeleteFile(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Remove(file.FileType, blobName(file)); err != nil {
		s.logger.Error("removing blob for deleted file", "file_id", id, "error", err)
	}
	s.logger.Info("file deleted", "file_id", id)
	return nil
}

func blobName(f *model.File) string {
	return f.ID + "." + f.Extension
}

// sanitizeFilename strips directories and anything outside a conservative
// character set, so the name is safe to echo back and store.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return unsafeNameChars.ReplaceAllString(name, "_")
}
