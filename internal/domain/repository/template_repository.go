package repository

import (
	"context"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// TemplateRepository defines read access to message template reference data.
type TemplateRepository interface {
	// GetByTypeAndThreshold returns all templates at an exact (type, threshold).
	GetByTypeAndThreshold(ctx context.Context, templateType entity.TemplateType, thresholdDays int32) ([]*entity.MessageTemplate, error)

	// GetByType returns all templates of a type, any threshold. Used as the
	// fallback when no template exists at the exact bucket.
	GetByType(ctx context.Context, templateType entity.TemplateType) ([]*entity.MessageTemplate, error)
}
