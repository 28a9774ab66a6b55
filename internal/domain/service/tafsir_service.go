package service

import (
	"context"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// TafsirService answers free-text and image queries with verse identification
// and explanatory content. The generative-AI backend is an external
// collaborator; the streak engine has no dependency on this interface.
type TafsirService interface {
	// LookupText identifies the ayah a text query refers to and returns its tafsir.
	LookupText(ctx context.Context, query string, language string) (*entity.TafsirResult, error)

	// LookupImage extracts the ayah from a photo of a mushaf page and returns
	// its tafsir.
	LookupImage(ctx context.Context, image []byte, mimeType string, language string) (*entity.TafsirResult, error)
}
