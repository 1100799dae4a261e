package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/storage/memory"
)

type fakeChannel struct {
	name string
	err  error
	sent []notification.Notification
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Send(_ context.Context, n notification.Notification) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func TestNotifyDeliversToAllChannels(t *testing.T) {
	a := &fakeChannel{name: "a"}
	b := &fakeChannel{name: "b"}
	d := NewDispatcher(nil, a, b)

	err := d.Notify(context.Background(), "u1", notification.KindTaskAssigned, map[string]any{"task_id": "t1"})
	require.NoError(t, err)
	require.Len(t, a.sent, 1)
	require.Len(t, b.sent, 1)
	assert.Equal(t, "u1", a.sent[0].RecipientID)
	assert.Equal(t, notification.KindTaskAssigned, a.sent[0].Kind)
}

func TestNotifyContinuesPastFailingChannel(t *testing.T) {
	broken := &fakeChannel{name: "broken", err: errors.New("smtp down")}
	ok := &fakeChannel{name: "ok"}
	d := NewDispatcher(nil, broken, ok)

	err := d.Notify(context.Background(), "u1", notification.KindOverdue, nil)
	require.Error(t, err)
	assert.True(t, core.IsDeliveryError(err))
	// The healthy channel still delivered.
	assert.Len(t, ok.sent, 1)
}

func TestNotifyEachIsolatesRecipients(t *testing.T) {
	flaky := &selectiveChannel{failOn: "u2"}
	d := NewDispatcher(nil, flaky)

	delivered := d.NotifyEach(context.Background(), []string{"u1", "u2", "", "u3"}, notification.KindProjectDeleted, nil)
	assert.Equal(t, 2, delivered)
	assert.Equal(t, []string{"u1", "u3"}, flaky.delivered)
}

type selectiveChannel struct {
	failOn    string
	delivered []string
}

func (c *selectiveChannel) Name() string { return "selective" }

func (c *selectiveChannel) Send(_ context.Context, n notification.Notification) error {
	if n.RecipientID == c.failOn {
		return errors.New("boom")
	}
	c.delivered = append(c.delivered, n.RecipientID)
	return nil
}

func TestInAppChannelPersists(t *testing.T) {
	store := memory.New()
	d := NewDispatcher(nil, NewInAppChannel(store))

	require.NoError(t, d.Notify(context.Background(), "u1", notification.KindDeadlineSoon, map[string]any{"task_id": "t1"}))

	ns, err := store.ListNotifications(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, notification.KindDeadlineSoon, ns[0].Kind)
	assert.Equal(t, "t1", ns[0].Payload["task_id"])
}

type fakeSender struct {
	subjects []string
}

func (s *fakeSender) SendEmail(_ context.Context, _, subject string, _ map[string]any) error {
	s.subjects = append(s.subjects, subject)
	return nil
}

func TestEmailChannelSubjects(t *testing.T) {
	sender := &fakeSender{}
	ch := NewEmailChannel(sender)

	for _, kind := range []notification.Kind{notification.KindTaskAssigned, notification.KindOverdue} {
		require.NoError(t, ch.Send(context.Background(), notification.Notification{
			RecipientID: "u1", Kind: kind,
		}))
	}
	assert.Equal(t, []string{"Task assigned to you", "Task overdue"}, sender.subjects)
}
