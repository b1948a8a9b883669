package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/kona-labs/study-advisor-go/internal/errors"
)

// stubCompleter is a scripted Completer for fallback tests.
type stubCompleter struct {
	provider Provider
	text     string
	errs     []error
	calls    int
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return s.text, nil
}

func (s *stubCompleter) IsEnabled() bool    { return true }
func (s *stubCompleter) Close() error       { return nil }
func (s *stubCompleter) Provider() Provider { return s.provider }

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestFallbackCompleterPrimarySuccess(t *testing.T) {
	t.Parallel()

	primary := &stubCompleter{provider: ProviderGemini, text: "answer"}
	fallback := &stubCompleter{provider: ProviderGroq, text: "unused"}
	f := NewFallbackCompleter(primary, fallback, fastRetry())

	got, err := f.Complete(context.Background(), "prompt")
	if err != nil || got != "answer" {
		t.Errorf("Complete = (%q, %v), want (answer, nil)", got, err)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestFallbackCompleterRetriesTransient(t *testing.T) {
	t.Parallel()

	primary := &stubCompleter{
		provider: ProviderGemini,
		text:     "recovered",
		errs:     []error{errors.New("503 unavailable")},
	}
	f := NewFallbackCompleter(primary, nil, fastRetry())

	got, err := f.Complete(context.Background(), "prompt")
	if err != nil || got != "recovered" {
		t.Errorf("Complete = (%q, %v), want (recovered, nil)", got, err)
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2", primary.calls)
	}
}

func TestFallbackCompleterSwitchesProvider(t *testing.T) {
	t.Parallel()

	primary := &stubCompleter{
		provider: ProviderGemini,
		errs:     []error{errors.New("503 down"), errors.New("503 down")},
	}
	fallback := &stubCompleter{provider: ProviderGroq, text: "from groq"}
	f := NewFallbackCompleter(primary, fallback, fastRetry())

	got, err := f.Complete(context.Background(), "prompt")
	if err != nil || got != "from groq" {
		t.Errorf("Complete = (%q, %v), want (from groq, nil)", got, err)
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2 (retry then give up)", primary.calls)
	}
}

func TestFallbackCompleterPermanentErrorSkipsRetry(t *testing.T) {
	t.Parallel()

	primary := &stubCompleter{
		provider: ProviderGemini,
		errs:     []error{errors.New("401 invalid api key")},
	}
	fallback := &stubCompleter{provider: ProviderGroq, text: "from groq"}
	f := NewFallbackCompleter(primary, fallback, fastRetry())

	got, err := f.Complete(context.Background(), "prompt")
	if err != nil || got != "from groq" {
		t.Errorf("Complete = (%q, %v), want (from groq, nil)", got, err)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1 (permanent error, no retry)", primary.calls)
	}
}

func TestFallbackCompleterAllFail(t *testing.T) {
	t.Parallel()

	primary := &stubCompleter{
		provider: ProviderGemini,
		errs:     []error{errors.New("503"), errors.New("503")},
	}
	fallback := &stubCompleter{
		provider: ProviderGroq,
		errs:     []error{errors.New("503"), errors.New("503")},
	}
	f := NewFallbackCompleter(primary, fallback, fastRetry())

	_, err := f.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}
}

// recordedOutcome captures one RecordGeneration call.
type recordedOutcome struct {
	provider string
	status   string
}

type stubRecorder struct {
	outcomes []recordedOutcome
}

func (r *stubRecorder) RecordGeneration(provider, status string) {
	r.outcomes = append(r.outcomes, recordedOutcome{provider, status})
}

func TestFallbackCompleterRecordsOutcomes(t *testing.T) {
	t.Parallel()

	primary := &stubCompleter{
		provider: ProviderGemini,
		errs:     []error{errors.New("401 invalid api key")},
	}
	fallback := &stubCompleter{provider: ProviderGroq, text: "from groq"}
	rec := &stubRecorder{}
	f := NewFallbackCompleter(primary, fallback, fastRetry()).WithRecorder(rec)

	if _, err := f.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	want := []recordedOutcome{
		{"gemini", "error"},
		{"groq", "success"},
	}
	if len(rec.outcomes) != len(want) {
		t.Fatalf("recorded %v, want %v", rec.outcomes, want)
	}
	for i := range want {
		if rec.outcomes[i] != want[i] {
			t.Errorf("outcome %d = %v, want %v", i, rec.outcomes[i], want[i])
		}
	}
}

func TestFallbackCompleterRecordsPrimarySuccess(t *testing.T) {
	t.Parallel()

	rec := &stubRecorder{}
	primary := &stubCompleter{provider: ProviderGemini, text: "answer"}
	f := NewFallbackCompleter(primary, nil, fastRetry()).WithRecorder(rec)

	if _, err := f.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if len(rec.outcomes) != 1 || rec.outcomes[0] != (recordedOutcome{"gemini", "success"}) {
		t.Errorf("recorded %v, want a single gemini success", rec.outcomes)
	}
}

func TestFallbackCompleterNotConfigured(t *testing.T) {
	t.Parallel()

	f := NewFallbackCompleter(nil, nil, fastRetry())
	_, err := f.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error for unconfigured completer")
	}
	if !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
	if f.IsEnabled() {
		t.Error("unconfigured completer should not be enabled")
	}

	var nilF *FallbackCompleter
	if nilF.IsEnabled() {
		t.Error("nil completer should not be enabled")
	}
	if err := nilF.Close(); err != nil {
		t.Errorf("nil Close error = %v", err)
	}
}
