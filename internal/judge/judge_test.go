package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/algoprep/backend/internal/domain"
)

type fakeOutcome struct {
	output string
	err    error
}

// fakeSession replays scripted outcomes, one per Run call
type fakeSession struct {
	outcomes []fakeOutcome
	calls    int
	closed   bool
}

func (s *fakeSession) Run(ctx context.Context, input string) (string, error) {
	if s.calls >= len(s.outcomes) {
		return "", errors.New("unexpected run")
	}
	outcome := s.outcomes[s.calls]
	s.calls++
	return outcome.output, outcome.err
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeExecutor struct {
	session  *fakeSession
	startErr error
}

func (e *fakeExecutor) Start(ctx context.Context, code string, language domain.Language) (Session, error) {
	if e.startErr != nil {
		return nil, e.startErr
	}
	return e.session, nil
}

func newTestService(executor Executor) *Service {
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewService(executor, 2*time.Second, tracer, zap.NewNop())
}

func testCases(n int) []domain.TestCase {
	cases := make([]domain.TestCase, n)
	for i := range cases {
		cases[i] = domain.TestCase{Input: "in", ExpectedOutput: "42"}
	}
	return cases
}

func TestEvaluateAccepted(t *testing.T) {
	session := &fakeSession{outcomes: []fakeOutcome{
		{output: "42"},
		{output: "42\n"}, // trailing whitespace is ignored
		{output: "  42  "},
	}}
	svc := newTestService(&fakeExecutor{session: session})

	verdict := svc.Evaluate(context.Background(), "code", domain.LanguagePython, testCases(3))

	assert.Equal(t, domain.StatusAccepted, verdict.Status)
	assert.Equal(t, 3, verdict.Passed)
	require.Len(t, verdict.Details, 3)
	for _, detail := range verdict.Details {
		assert.True(t, detail.Passed)
		assert.Equal(t, "42", detail.Actual)
	}
	assert.True(t, session.closed)
}

func TestEvaluateWrongAnswer(t *testing.T) {
	session := &fakeSession{outcomes: []fakeOutcome{
		{output: "42"},
		{output: "41"},
		{output: "42"},
	}}
	svc := newTestService(&fakeExecutor{session: session})

	verdict := svc.Evaluate(context.Background(), "code", domain.LanguagePython, testCases(3))

	assert.Equal(t, domain.StatusWrongAnswer, verdict.Status)
	assert.Equal(t, 2, verdict.Passed)
	assert.False(t, verdict.Details[1].Passed)
	assert.Equal(t, "41", verdict.Details[1].Actual)
}

func TestEvaluateTimeLimit(t *testing.T) {
	session := &fakeSession{outcomes: []fakeOutcome{
		{output: "42"},
		{err: ErrTimeLimit},
	}}
	svc := newTestService(&fakeExecutor{session: session})

	verdict := svc.Evaluate(context.Background(), "code", domain.LanguageJavaScript, testCases(2))

	assert.Equal(t, domain.StatusTimeLimitExceeded, verdict.Status)
	assert.Equal(t, 1, verdict.Passed)
	assert.Equal(t, "Time Limit Exceeded", verdict.Details[1].Actual)
	assert.NotEmpty(t, verdict.Details[1].Error)
}

func TestEvaluateRuntimeErrorTakesPrecedence(t *testing.T) {
	// One crash, one timeout, one pass: Runtime Error wins the aggregate
	session := &fakeSession{outcomes: []fakeOutcome{
		{err: &RunError{ExitCode: 1, Stderr: "boom"}},
		{err: ErrTimeLimit},
		{output: "42"},
	}}
	svc := newTestService(&fakeExecutor{session: session})

	verdict := svc.Evaluate(context.Background(), "code", domain.LanguageCPP, testCases(3))

	assert.Equal(t, domain.StatusRuntimeError, verdict.Status)
	assert.Equal(t, 1, verdict.Passed)
}

func TestEvaluateFaultContinuesBatch(t *testing.T) {
	session := &fakeSession{outcomes: []fakeOutcome{
		{err: &RunError{ExitCode: 2, Stderr: "segfault"}},
		{output: "42"},
		{output: "42"},
	}}
	svc := newTestService(&fakeExecutor{session: session})

	verdict := svc.Evaluate(context.Background(), "code", domain.LanguageJava, testCases(3))

	require.Len(t, verdict.Details, 3)
	assert.Equal(t, 2, verdict.Passed)
	assert.Equal(t, 3, session.calls)
	assert.Equal(t, "Runtime Error", verdict.Details[0].Actual)
	assert.Contains(t, verdict.Details[0].Error, "segfault")
}

func TestEvaluateStartFailureDegrades(t *testing.T) {
	svc := newTestService(&fakeExecutor{startErr: &CompileError{Output: "syntax error"}})

	verdict := svc.Evaluate(context.Background(), "code", domain.LanguageJava, testCases(4))

	assert.Equal(t, domain.StatusRuntimeError, verdict.Status)
	assert.Equal(t, 0, verdict.Passed)
	require.Len(t, verdict.Details, 1)
	assert.Contains(t, verdict.Details[0].Error, "syntax error")
}

func TestSpecForUnsupportedLanguage(t *testing.T) {
	_, err := specFor(domain.Language("ruby"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}
