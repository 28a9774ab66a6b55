package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
)

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new PostgreSQL message template repository
func NewTemplateRepository(pool *pgxpool.Pool) repository.TemplateRepository {
	return &templateRepository{pool: pool}
}

const templateColumns = `
	id, type, threshold_days, text_english, text_arabic, message_english, message_arabic
`

func (r *templateRepository) GetByTypeAndThreshold(ctx context.Context, templateType entity.TemplateType, thresholdDays int32) ([]*entity.MessageTemplate, error) {
	defer observe("template_get_bucket")()

	query := `
		SELECT ` + templateColumns + `
		FROM message_templates
		WHERE type = $1 AND threshold_days = $2
	`

	rows, err := r.pool.Query(ctx, query, string(templateType), thresholdDays)
	if err != nil {
		return nil, fmt.Errorf("failed to get templates: %w", err)
	}
	defer rows.Close()

	return scanTemplates(rows)
}

func (r *templateRepository) GetByType(ctx context.Context, templateType entity.TemplateType) ([]*entity.MessageTemplate, error) {
	defer observe("template_get_type")()

	query := `
		SELECT ` + templateColumns + `
		FROM message_templates
		WHERE type = $1
	`

	rows, err := r.pool.Query(ctx, query, string(templateType))
	if err != nil {
		return nil, fmt.Errorf("failed to get templates: %w", err)
	}
	defer rows.Close()

	return scanTemplates(rows)
}

func scanTemplates(rows pgx.Rows) ([]*entity.MessageTemplate, error) {
	var templates []*entity.MessageTemplate
	for rows.Next() {
		tmpl := &entity.MessageTemplate{}
		err := rows.Scan(
			&tmpl.ID, &tmpl.Type, &tmpl.ThresholdDays,
			&tmpl.TextEnglish, &tmpl.TextArabic, &tmpl.MessageEnglish, &tmpl.MessageArabic,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}
