package judge

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/algoprep/backend/internal/domain"
)

// Verdict is the aggregate outcome of evaluating a submission
type Verdict struct {
	Status  domain.SubmissionStatus
	Passed  int
	Details []domain.TestCaseDetail
}

// Service runs candidate code against a problem's test cases and produces a
// verdict. The execution engine is pluggable behind the Executor interface so
// the pipeline stays engine-agnostic.
type Service struct {
	executor  Executor
	timeLimit time.Duration
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewService creates a new evaluation service. timeLimit bounds each
// individual test-case run.
func NewService(executor Executor, timeLimit time.Duration, tracer trace.Tracer, logger *zap.Logger) *Service {
	return &Service{
		executor:  executor,
		timeLimit: timeLimit,
		tracer:    tracer,
		logger:    logger,
	}
}

// Evaluate runs code against every test case in order and aggregates a
// verdict. It never returns an error: any fault it cannot attribute to a
// single test case degrades the whole submission to Runtime Error with zero
// passed. A fault on one test case is recorded in its detail row and does not
// abort the remaining test cases.
//
// A test case passes iff its trimmed actual output equals the trimmed
// expected output. Aggregate precedence when causes mix:
// Runtime Error > Time Limit Exceeded > Wrong Answer > Accepted.
func (s *Service) Evaluate(ctx context.Context, code string, language domain.Language, testCases []domain.TestCase) Verdict {
	ctx, span := s.tracer.Start(ctx, "Judge.Evaluate")
	defer span.End()

	span.SetAttributes(
		attribute.String("submission.language", string(language)),
		attribute.Int("submission.test_cases", len(testCases)),
	)

	session, err := s.executor.Start(ctx, code, language)
	if err != nil {
		s.logger.Warn("Failed to prepare submission for execution",
			zap.String("language", string(language)),
			zap.Error(err),
		)
		return degraded(err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Warn("Failed to clean up execution session", zap.Error(cerr))
		}
	}()

	verdict := Verdict{Details: make([]domain.TestCaseDetail, 0, len(testCases))}
	var sawRuntimeError, sawTimeLimit bool

	for i, tc := range testCases {
		detail := s.runTestCase(ctx, session, tc)
		verdict.Details = append(verdict.Details, detail)

		switch {
		case detail.Passed:
			verdict.Passed++
		case detail.Actual == actualTimeLimit:
			sawTimeLimit = true
		case detail.Actual == actualRuntimeError:
			sawRuntimeError = true
		}

		if !detail.Passed {
			s.logger.Debug("Test case failed",
				zap.Int("test_case", i+1),
				zap.String("actual", truncate(detail.Actual, 128)),
			)
		}
	}

	switch {
	case sawRuntimeError:
		verdict.Status = domain.StatusRuntimeError
	case sawTimeLimit:
		verdict.Status = domain.StatusTimeLimitExceeded
	case verdict.Passed == len(testCases):
		verdict.Status = domain.StatusAccepted
	default:
		verdict.Status = domain.StatusWrongAnswer
	}

	span.SetAttributes(
		attribute.String("submission.status", string(verdict.Status)),
		attribute.Int("submission.passed", verdict.Passed),
	)

	return verdict
}

const (
	actualRuntimeError = "Runtime Error"
	actualTimeLimit    = "Time Limit Exceeded"
)

// runTestCase executes one test case under the per-test deadline and
// classifies the outcome. Faults are folded into the detail row so the batch
// continues.
func (s *Service) runTestCase(ctx context.Context, session Session, tc domain.TestCase) domain.TestCaseDetail {
	runCtx, cancel := context.WithTimeout(ctx, s.timeLimit)
	defer cancel()

	detail := domain.TestCaseDetail{
		Input:    tc.Input,
		Expected: tc.ExpectedOutput,
	}

	output, err := session.Run(runCtx, tc.Input)
	if err != nil {
		if errors.Is(err, ErrTimeLimit) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			detail.Actual = actualTimeLimit
			detail.Error = ErrTimeLimit.Error()
			return detail
		}
		detail.Actual = actualRuntimeError
		detail.Error = err.Error()
		return detail
	}

	detail.Actual = strings.TrimSpace(output)
	detail.Passed = detail.Actual == strings.TrimSpace(tc.ExpectedOutput)
	return detail
}

// degraded folds a pipeline-level fault (compile failure, malformed session,
// engine unavailable) into a Runtime Error verdict with a single error detail.
func degraded(err error) Verdict {
	return Verdict{
		Status: domain.StatusRuntimeError,
		Passed: 0,
		Details: []domain.TestCaseDetail{
			{
				Actual: actualRuntimeError,
				Passed: false,
				Error:  err.Error(),
			},
		},
	}
}
