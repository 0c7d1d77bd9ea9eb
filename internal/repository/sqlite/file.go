package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

var _ repository.FileRepository = (*DB)(nil)

func (db *DB) CreateFile(ctx context.Context, file *model.File) error {
	file.ID = xid.New().String()
	file.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO files (id, name, file_type, extension, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		file.ID, file.Name, file.FileType, file.Extension, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting file %q: %w", file.Name, err)
	}
	return nil
}

func (db *DB) GetFileByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, file_type, extension, created_at FROM files WHERE id = ?`, id,
	).Scan(&f.ID, &f.Name, &f.FileType, &f.Extension, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("file", id)
		}
		return nil, fmt.Errorf("sqlite: getting file %s: %w", id, err)
	}
	return &f, nil
}

func (db *DB) ListFiles(ctx context.Context, opts repository.ListOptions) ([]model.File, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, file_type, extension, created_at FROM files
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing files: %w", err)
	}
	defer rows.Close()

	files := []model.File{}
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.Name, &f.FileType, &f.Extension, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning file row: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (db *DB) UpdateFile(ctx context.Context, file *model.File) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE files SET name = ?, file_type = ?, extension = ? WHERE id = ?`,
		file.Name, file.FileType, file.Extension, file.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating file %s: %w", file.ID, err)
	}
	return requireRow(res, "file", file.ID)
}

func (db *DB) DeleteFile(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting file %s: %w", id, err)
	}
	return requireRow(res, "file", id)
}
