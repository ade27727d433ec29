package service

import (
	"context"
	"log/slog"

	"github.com/sakif/mentor-directory/internal/model"
)

// Notifier delivers single-use codes to account holders.
type Notifier interface {
	SendVerification(ctx context.Context, account *model.Account, code string) error
	SendPasswordReset(ctx context.Context, account *model.Account, code string) error
}

// LogNotifier writes codes to the log instead of sending mail. It is what
// the server uses until a mail transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerification(ctx context.Context, account *model.Account, code string) error {
	n.logger.InfoContext(ctx, "verification code issued",
		slog.String("accountID", account.ID),
		slog.String("email", account.Email),
		slog.String("code", code),
	)
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, account *model.Account, code string) error {
	n.logger.InfoContext(ctx, "password reset code issued",
		slog.String("accountID", account.ID),
		slog.String("email", account.Email),
		slog.String("code", code),
	)
	return nil
}
