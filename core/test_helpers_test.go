package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeAccountType struct {
	id      string
	granted bool
}

func (t fakeAccountType) Identifier() string { return t.id }

func (t fakeAccountType) AccessGranted() bool { return t.granted }

type fakeCredential struct {
	token string
}

func (c fakeCredential) OAuthToken() string { return c.token }

type fakeAccount struct {
	id         string
	credential Credential
}

func (a fakeAccount) Identifier() string { return a.id }

func (a fakeAccount) Credential() Credential { return a.credential }

func grantedType() AccountType {
	return fakeAccountType{id: DefaultAccountTypeIdentifier, granted: true}
}

func accountWithToken(token string) Account {
	return fakeAccount{id: "acct_1", credential: fakeCredential{token: token}}
}

type stubAccountStore struct {
	mu          sync.Mutex
	accountType AccountType
	accounts    []Account
	accessFn    func(options AccessOptions, completion AccessCompletion)
	renewFn     func(account Account, completion RenewalCompletion)
	accessCalls []AccessOptions
	renewCalls  int
	lookups     []string
}

func (s *stubAccountStore) AccountTypeWithIdentifier(_ context.Context, identifier string) AccountType {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, identifier)
	return s.accountType
}

func (s *stubAccountStore) AccountsWithType(context.Context, AccountType) []Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Account(nil), s.accounts...)
}

func (s *stubAccountStore) RequestAccess(_ context.Context, _ AccountType, options AccessOptions, completion AccessCompletion) {
	s.mu.Lock()
	s.accessCalls = append(s.accessCalls, options)
	fn := s.accessFn
	s.mu.Unlock()
	if fn == nil {
		completion(true, nil)
		return
	}
	fn(options, completion)
}

func (s *stubAccountStore) RenewCredentials(_ context.Context, account Account, completion RenewalCompletion) {
	s.mu.Lock()
	s.renewCalls++
	fn := s.renewFn
	s.mu.Unlock()
	if fn == nil {
		completion(RenewalRenewed, nil)
		return
	}
	fn(account, completion)
}

func (s *stubAccountStore) setAccounts(accounts ...Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = accounts
}

func (s *stubAccountStore) accessCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accessCalls)
}

func (s *stubAccountStore) lastAccessOptions() AccessOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.accessCalls) == 0 {
		return AccessOptions{}
	}
	return s.accessCalls[len(s.accessCalls)-1]
}

func (s *stubAccountStore) renewCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renewCalls
}

// recordingQueue wraps a SerialQueue and reports whether the caller is
// currently running inside one of its tasks.
type recordingQueue struct {
	inner      *SerialQueue
	dispatched atomic.Int32
	running    atomic.Bool
}

func newRecordingQueue(t *testing.T) *recordingQueue {
	t.Helper()
	queue := &recordingQueue{inner: NewSerialQueue()}
	t.Cleanup(func() { _ = queue.inner.Close() })
	return queue
}

func (q *recordingQueue) Dispatch(task func()) error {
	q.dispatched.Add(1)
	return q.inner.Dispatch(func() {
		q.running.Store(true)
		defer q.running.Store(false)
		task()
	})
}

func newTestService(t *testing.T, store AccountStore, opts ...Option) *Service {
	t.Helper()
	options := append([]Option{WithAccountStore(store)}, opts...)
	svc, err := NewService(DefaultConfig(), options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func captureOutcomes() (AccessHandler, <-chan AuthorizationOutcome) {
	outcomes := make(chan AuthorizationOutcome, 4)
	return func(outcome AuthorizationOutcome) { outcomes <- outcome }, outcomes
}

func captureRenewals() (RenewalHandler, <-chan RenewalOutcome) {
	outcomes := make(chan RenewalOutcome, 4)
	return func(outcome RenewalOutcome) { outcomes <- outcome }, outcomes
}

func awaitOutcome[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case value := <-ch:
		return value
	case <-time.After(2 * time.Second):
		var zero T
		t.Fatalf("timed out waiting for outcome")
		return zero
	}
}

func expectNoOutcome[T any](t *testing.T, ch <-chan T, wait time.Duration) {
	t.Helper()
	select {
	case value := <-ch:
		t.Fatalf("expected no further outcome, got %#v", value)
	case <-time.After(wait):
	}
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) counterSnapshot() []capturedCounter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]capturedCounter(nil), m.counters...)
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]capturedLog, len(*l.records))
	copy(out, *l.records)
	return out
}

func (l *captureLogger) count(level string, msg string) int {
	total := 0
	for _, entry := range l.snapshot() {
		if entry.level == level && entry.msg == msg {
			total++
		}
	}
	return total
}
