package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// recordingNotifier collects what the event service emits.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []entity.NewNotification
}

func (r *recordingNotifier) Notify(n entity.NewNotification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) all() []entity.NewNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.NewNotification(nil), r.sent...)
}

type sentMail struct {
	to, subject, text, html string
}

// fakeSender records mail and fails with err when set. A positive delay
// makes Send wait for it or for ctx, whichever comes first.
type fakeSender struct {
	mu    sync.Mutex
	err   error
	delay time.Duration
	mails []sentMail
}

func (f *fakeSender) Send(ctx context.Context, to, subject, text, html string) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.mails = append(f.mails, sentMail{to, subject, text, html})
	return nil
}

func (f *fakeSender) sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.mails...)
}

// fakeAvatars stores uploads in memory.
type fakeAvatars struct {
	err     error
	path    string
	ctype   string
	payload []byte
}

func (f *fakeAvatars) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.path, f.ctype, f.payload = objectPath, contentType, b
	return "https://storage.example.com/bucket/" + objectPath, nil
}

var errBoom = errors.New("boom")
