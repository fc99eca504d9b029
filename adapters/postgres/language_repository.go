package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gotypo/domain/core"
	"gotypo/domain/survey"
	"gotypo/ports"
)

// LanguageRepositoryImpl implements LanguageRepository for PostgreSQL
type LanguageRepositoryImpl struct {
	db *sqlx.DB
}

// NewLanguageRepository creates a new PostgreSQL language repository
func NewLanguageRepository(db *sqlx.DB) ports.LanguageRepository {
	return &LanguageRepositoryImpl{db: db}
}

// Get retrieves a language by id
func (r *LanguageRepositoryImpl) Get(ctx context.Context, id string) (*survey.Language, error) {
	var lang survey.Language
	err := r.db.GetContext(ctx, &lang, `
		SELECT id, name_full, position, grp, isocode, glottocode
		FROM languages
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrLanguageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lang, nil
}

// List returns all languages in survey position order
func (r *LanguageRepositoryImpl) List(ctx context.Context) ([]survey.Language, error) {
	langs := []survey.Language{}
	err := r.db.SelectContext(ctx, &langs, `
		SELECT id, name_full, position, grp, isocode, glottocode
		FROM languages
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	return langs, nil
}

// Upsert creates or updates a language
func (r *LanguageRepositoryImpl) Upsert(ctx context.Context, lang *survey.Language) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO languages (id, name_full, position, grp, isocode, glottocode)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name_full = EXCLUDED.name_full,
		    position = EXCLUDED.position,
		    grp = EXCLUDED.grp,
		    isocode = EXCLUDED.isocode,
		    glottocode = EXCLUDED.glottocode
	`, lang.ID, lang.Name, lang.Position, lang.Group, lang.ISOCode, lang.Glottocode)
	return err
}

// Delete removes a language; answers and values go with it by cascade
func (r *LanguageRepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM languages WHERE id = $1`, id)
	return err
}
