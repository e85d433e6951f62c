package transport

import (
	"errors"
	"testing"
)

func TestSessionErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *SessionError
		want string
	}{
		{
			name: "with address",
			err:  &SessionError{Op: "write", Addr: "203.0.113.9:51235", Err: ErrSessionClosed},
			want: "session write 203.0.113.9:51235: session closed",
		},
		{
			name: "without address",
			err:  &SessionError{Op: "send", Err: ErrNotReady},
			want: "session send: session not ready",
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

func TestSessionErrorUnwrap(t *testing.T) {
	err := &SessionError{Op: "handshake", Addr: "pipe", Err: ErrSessionClosed}

	if !errors.Is(err, ErrSessionClosed) {
		t.Error("errors.Is should reach the wrapped sentinel")
	}

	var sessErr *SessionError
	if !errors.As(error(err), &sessErr) {
		t.Fatal("errors.As should match *SessionError")
	}
	if sessErr.Op != "handshake" {
		t.Errorf("Op = %q, want %q", sessErr.Op, "handshake")
	}
}
