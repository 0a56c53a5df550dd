package model

import (
	"errors"
	"io"
	"testing"
)

func TestError_isMatchesKindAndCause(t *testing.T) {
	t.Parallel()

	err := Transport(io.ErrUnexpectedEOF)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("errors.Is(err, ErrTransport) = false, want true")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("errors.Is(err, io.ErrUnexpectedEOF) = false, want true")
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("errors.Is(err, ErrTimeout) = true, want false")
	}
}

func TestTransport_keepsTimeoutKind(t *testing.T) {
	t.Parallel()

	timeout := &Error{Kind: ErrTimeout, Err: errors.New("deadline")}
	got := Transport(timeout)
	if got != timeout {
		t.Fatalf("Transport(timeout) got %v, want the same error", got)
	}
	if errors.Is(got, ErrTransport) {
		t.Fatalf("timeout must not be classified as a transport failure")
	}
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "server message verbatim", err: Rejected("sold out"), want: "sold out"},
		{name: "validation message", err: Invalid("title is required"), want: "title is required"},
		{name: "timeout", err: &Error{Kind: ErrTimeout}, want: "The server did not respond in time. Please try again."},
		{name: "unauthenticated without message", err: &Error{Kind: ErrUnauthenticated}, want: "Please log in first."},
		{name: "unknown", err: errors.New("boom"), want: "fallback"},
		{name: "nil", err: nil, want: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := UserMessage(tc.err, "fallback"); got != tc.want {
				t.Fatalf("UserMessage got %q, want %q", got, tc.want)
			}
		})
	}
}
