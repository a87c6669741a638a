package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

func TestNotificationFanOut(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	n, err := e.notify.Create(ctx, []int64{1, 2}, "Stock alert", "Ivermectin is back", domain.NotifySystem)
	assert.NoError(t, err)
	assert.NotZero(t, n.ID)

	for _, uid := range []int64{1, 2} {
		list, err := e.notify.ListForUser(ctx, uid, false)
		assert.NoError(t, err)
		assert.Len(t, list, 1)
	}
	list, err := e.notify.ListForUser(ctx, 3, false)
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationMarkRead(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	n, _ := e.notify.Create(ctx, []int64{1, 2}, "Title", "Message", domain.NotifyOrder)

	assert.NoError(t, e.notify.MarkRead(ctx, n.ID, 1))
	// read state is per recipient
	unread1, _ := e.notify.ListForUser(ctx, 1, true)
	assert.Empty(t, unread1)
	unread2, _ := e.notify.ListForUser(ctx, 2, true)
	assert.Len(t, unread2, 1)

	// marking twice is a no-op, not an error
	assert.NoError(t, e.notify.MarkRead(ctx, n.ID, 1))

	// a non-recipient cannot mark it
	assert.ErrorIs(t, e.notify.MarkRead(ctx, n.ID, 9), repository.ErrNotFound)
}

func TestNotificationMarkAllRead(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	e.notify.Create(ctx, []int64{1}, "one", "", domain.NotifyOrder)
	e.notify.Create(ctx, []int64{1, 2}, "two", "", domain.NotifyOrder)
	e.notify.Create(ctx, []int64{2}, "three", "", domain.NotifyOrder)

	assert.NoError(t, e.notify.MarkAllRead(ctx, 1))

	unread1, _ := e.notify.ListForUser(ctx, 1, true)
	assert.Empty(t, unread1)
	unread2, _ := e.notify.ListForUser(ctx, 2, true)
	assert.Len(t, unread2, 2)
}

func TestNotificationDelete(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	n, _ := e.notify.Create(ctx, []int64{1}, "Title", "", domain.NotifyOrder)

	// only a recipient may delete
	assert.ErrorIs(t, e.notify.Delete(ctx, n.ID, 2), ErrForbidden)
	assert.NoError(t, e.notify.Delete(ctx, n.ID, 1))
	assert.ErrorIs(t, e.notify.Delete(ctx, n.ID, 1), repository.ErrNotFound)
}

func TestNotificationSend_BestEffort(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	// invalid input is swallowed, not propagated
	e.notify.Send(ctx, nil, "", "", domain.NotifySystem)
	list, err := e.notify.ListForUser(ctx, 1, false)
	assert.NoError(t, err)
	assert.Empty(t, list)
}
