package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

var _ repository.ProjectRepository = (*DB)(nil)

const projectColumns = `id, title, description, tags, link, is_featured, image_id, owner_id, created_at, updated_at`

func (db *DB) CreateProject(ctx context.Context, project *model.Project) error {
	now := time.Now().UTC()
	project.ID = xid.New().String()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, title, description, tags, link, is_featured, image_id, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Title,
		project.Description,
		strings.Join(project.Tags, ","),
		project.Link,
		project.IsFeatured,
		nullString(project.ImageID),
		project.OwnerID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting project %q: %w", project.Title, err)
	}
	return nil
}

func (db *DB) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return p, nil
}

func (db *DB) ListProjects(ctx context.Context, opts repository.ListOptions) ([]model.Project, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 ORDER BY is_featured DESC, created_at DESC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (db *DB) UpdateProject(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, tags = ?, link = ?, is_featured = ?, image_id = ?, updated_at = ?
		 WHERE id = ?`,
		project.Title,
		project.Description,
		strings.Join(project.Tags, ","),
		project.Link,
		project.IsFeatured,
		nullString(project.ImageID),
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}
	return requireRow(res, "project", project.ID)
}

func (db *DB) DeleteProject(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	return requireRow(res, "project", id)
}

func scanProject(scan func(dest ...any) error) (*model.Project, error) {
	var (
		p       model.Project
		tags    string
		imageID sql.NullString
	)
	if err := scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&tags,
		&p.Link,
		&p.IsFeatured,
		&imageID,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if tags != "" {
		p.Tags = strings.Split(tags, ",")
	} else {
		p.Tags = []string{}
	}
	p.ImageID = imageID.String
	return &p, nil
}
