package utils

import (
	"context"

	"maintenance-system/pkg/contextkeys"
	apperrors "maintenance-system/pkg/errors"
)

// GetUserIDFromCtx достает идентификатор действующего пользователя,
// положенный в контекст auth-middleware.
func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	if userID == 0 {
		return 0, apperrors.ErrInvalidUserID
	}
	return userID, nil
}
