package errors

import (
	"net/http"
	"testing"
)

func TestKindFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusInternalServerError, KindTransport},
		{http.StatusBadGateway, KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := KindFromHTTPStatus(tt.status); got != tt.want {
				t.Errorf("KindFromHTTPStatus(%d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestServiceErrorKind(t *testing.T) {
	conflict := NewServiceError("wms", http.StatusConflict, "CONFLICT", "wave is not releasable")
	if conflict.Kind() != KindConflict {
		t.Errorf("Kind() = %v, want conflict", conflict.Kind())
	}
	if !IsConflict(conflict) {
		t.Error("IsConflict() = false for a 409 service error")
	}

	transport := NewTransportError("wms", New("connection refused"))
	if transport.Kind() != KindTransport {
		t.Errorf("Kind() = %v, want transport", transport.Kind())
	}
	if !IsRetryable(transport) {
		t.Error("transport errors should be retryable")
	}
}

func TestSignalErrorWrapping(t *testing.T) {
	cause := NewServiceError("wms", http.StatusConflict, "CONFLICT", "not in a packable step")
	err := NewSignalError("packs-complete", cause).WithEntityID(42)

	if !IsConflict(err) {
		t.Error("IsConflict should see through SignalError to the wrapped ServiceError")
	}
	if IsRetryable(err) {
		t.Error("a domain conflict must not be retryable")
	}
	if !IsUserFacing(err) {
		t.Error("signal errors are user facing")
	}

	var sigErr *SignalError
	if !As(err, &sigErr) {
		t.Fatal("As(*SignalError) failed")
	}
	if sigErr.Signal != "packs-complete" || sigErr.EntityID != 42 {
		t.Errorf("signal context lost: %+v", sigErr)
	}
}

func TestSignalErrorTransportRetryable(t *testing.T) {
	cause := NewTransportError("wms", New("timeout"))
	err := NewSignalError("release-wave", cause)

	if !IsRetryable(err) {
		t.Error("a signal that failed in transport should be retryable by the operator")
	}
	if IsConflict(err) {
		t.Error("transport failure misclassified as conflict")
	}
}

func TestPollError(t *testing.T) {
	err := NewPollError(7, New("connection reset"))
	if !IsRetryable(err) {
		t.Error("poll errors are always retryable")
	}
	if IsUserFacing(err) {
		t.Error("raw poll errors are not shown verbatim")
	}

	var pollErr *PollError
	if !As(err, &pollErr) {
		t.Fatal("As(*PollError) failed")
	}
	if pollErr.Seq != 7 {
		t.Errorf("Seq = %d, want 7", pollErr.Seq)
	}
}

func TestSentinelMatching(t *testing.T) {
	err := Wrap(ErrSignalInFlight, "dispatch rejected")
	if !Is(err, ErrSignalInFlight) {
		t.Error("wrapped sentinel should match with Is")
	}

	err = Wrapf(ErrNoWorkflowID, "wave %d", 9)
	if !Is(err, ErrNoWorkflowID) {
		t.Error("Wrapf should preserve the sentinel")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "service error with status",
			err:  NewServiceError("oms", http.StatusNotFound, "NOT_FOUND", "order not found"),
			want: "oms error [status=404]: order not found",
		},
		{
			name: "signal error with entity",
			err:  NewSignalError("cancel-wave", New("boom")).WithEntityID(3),
			want: "signal error [signal=cancel-wave, entity=3]: boom",
		},
		{
			name: "poll error",
			err:  NewPollError(2, New("eof")),
			want: "poll error [seq=2]: eof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNilSafety(t *testing.T) {
	if IsRetryable(nil) || IsUserFacing(nil) || IsConflict(nil) || IsNotFound(nil) {
		t.Error("classification helpers must be false for nil")
	}
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}
