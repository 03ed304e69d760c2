package identity

import (
	"context"
	"fmt"

	"github.com/desertthunder/reload/internal/models"
	"github.com/desertthunder/reload/internal/shared"
)

// InboxLimit caps how many notifications [Directory.Notifications] returns.
const InboxLimit = 50

// Notify posts a notification to an account's inbox.
func (d *Directory) Notify(ctx context.Context, uid, title, message string) (*models.Notification, error) {
	n := &models.Notification{UserID: uid, Title: title, Message: message}
	if err := d.inbox.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Notifications returns the newest notifications of an account.
func (d *Directory) Notifications(ctx context.Context, uid string) ([]*models.Notification, error) {
	list, err := d.inbox.List(ctx, uid, InboxLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	return list, nil
}

// UnreadCount returns how many notifications of an account are unread.
func (d *Directory) UnreadCount(ctx context.Context, uid string) (int, error) {
	return d.inbox.CountUnread(ctx, uid)
}

// MarkRead marks every notification of an account as read.
func (d *Directory) MarkRead(ctx context.Context, uid string) error {
	n, err := d.inbox.MarkAllRead(ctx, uid)
	if err != nil {
		return err
	}
	d.logger.Debug("notifications read", "user", uid, "count", n)
	return nil
}

// welcome greets a new account. A failed greeting does not fail the sign-up.
func (d *Directory) welcome(ctx context.Context, account *models.Account) {
	name := account.DisplayName
	if name == "" {
		name = account.Email
	}
	_, err := d.Notify(ctx, account.ID, "Welcome to Reload", fmt.Sprintf("Hi %s, your account is ready.", name))
	if err != nil {
		d.logger.Warn("failed to post welcome notification", "user", account.ID, "error", err)
	}
}
