package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

var _ repository.PageDataRepository = (*DB)(nil)

// Page documents are stored as a JSON text column keyed by the page name,
// so arbitrary frontend payloads round-trip without schema changes.

func (db *DB) GetPageData(ctx context.Context, page string) (*model.PageData, error) {
	var (
		pd  model.PageData
		raw string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT page, data, owner_id FROM page_data WHERE page = ?`, page,
	).Scan(&pd.Page, &raw, &pd.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("page data", page)
		}
		return nil, fmt.Errorf("sqlite: getting page data %q: %w", page, err)
	}

	if err := json.Unmarshal([]byte(raw), &pd.Data); err != nil {
		return nil, fmt.Errorf("sqlite: decoding page data %q: %w", page, err)
	}
	return &pd, nil
}

func (db *DB) CreatePageData(ctx context.Context, data *model.PageData) error {
	raw, err := json.Marshal(data.Data)
	if err != nil {
		return fmt.Errorf("sqlite: encoding page data %q: %w", data.Page, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO page_data (page, data, owner_id) VALUES (?, ?, ?)`,
		data.Page, string(raw), data.OwnerID,
	)
	if err != nil {
		if dup := constraintError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("sqlite: inserting page data %q: %w", data.Page, err)
	}
	return nil
}

func (db *DB) UpdatePageData(ctx context.Context, data *model.PageData) error {
	raw, err := json.Marshal(data.Data)
	if err != nil {
		return fmt.Errorf("sqlite: encoding page data %q: %w", data.Page, err)
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE page_data SET data = ? WHERE page = ?`,
		string(raw), data.Page,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating page data %q: %w", data.Page, err)
	}
	return requireRow(res, "page data", data.Page)
}

func (db *DB) DeletePageData(ctx context.Context, page string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM page_data WHERE page = ?`, page)
	if err != nil {
		return fmt.Errorf("sqlite: deleting page data %q: %w", page, err)
	}
	return requireRow(res, "page data", page)
}
