package service

import (
	"context"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// NotificationDispatcher delivers text to a recipient. The chat transport
// behind it is an external collaborator; this service only hands messages off.
type NotificationDispatcher interface {
	Send(ctx context.Context, chatID int64, text string, kind entity.NotificationKind) error
}
