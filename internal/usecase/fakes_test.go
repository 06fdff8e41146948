package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/semmidev/siteshot-storage/internal/domain"
)

type putCall struct {
	Key       string
	LocalPath string
}

type fakeStore struct {
	mu sync.Mutex

	objects map[string][]byte
	putErrs map[string]error
	getErrs map[string]error

	puts []putCall
	gets []string

	created   bool
	ensureErr error
	policy    domain.AccessPolicy

	inflight    int
	maxInflight int
	// barrier, when set, holds every PutFile until that many are in flight.
	barrier int
	arrived chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: map[string][]byte{},
		putErrs: map[string]error{},
		getErrs: map[string]error{},
	}
}

func (f *fakeStore) EnsureContainer(ctx context.Context, policy domain.AccessPolicy) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policy = policy
	return f.created, f.ensureErr
}

func (f *fakeStore) PutFile(ctx context.Context, key string, localPath string) error {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	f.puts = append(f.puts, putCall{Key: key, LocalPath: localPath})
	reached := f.barrier > 0 && f.inflight == f.barrier
	arrived := f.arrived
	f.mu.Unlock()

	if arrived != nil {
		if reached {
			close(arrived)
		}
		select {
		case <-arrived:
		case <-time.After(2 * time.Second):
		}
	} else {
		time.Sleep(5 * time.Millisecond)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--

	if err, ok := f.putErrs[key]; ok {
		return err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) GetFile(ctx context.Context, key string, localPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, key)

	if err, ok := f.getErrs[key]; ok {
		return err
	}
	data, ok := f.objects[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return os.WriteFile(localPath, data, 0644)
}

func (f *fakeStore) GetStream(ctx context.Context, key string, w io.Writer) error {
	f.mu.Lock()
	data, ok := f.objects[key]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	_, err := w.Write(data)
	return err
}

func (f *fakeStore) withBarrier(n int) {
	f.barrier = n
	f.arrived = make(chan struct{})
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Debugf(template string, args ...interface{}) { l.record("DEBUG", template, args...) }
func (l *recordingLogger) Infof(template string, args ...interface{})  { l.record("INFO", template, args...) }
func (l *recordingLogger) Warnf(template string, args ...interface{})  { l.record("WARN", template, args...) }
func (l *recordingLogger) Errorf(template string, args ...interface{}) { l.record("ERROR", template, args...) }

func (l *recordingLogger) contains(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.HasPrefix(line, level+" ") && strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (n *fakeNotifier) Notify(ctx context.Context, message string) error {
	n.messages = append(n.messages, message)
	return n.err
}
