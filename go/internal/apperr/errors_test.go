package apperr

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
)

// TestIsMatchesByKind verifies wrapped domain errors match their kind sentinel.
func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("failed to join league: %w", Validation("league is full"))

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("errors.Is(err, ErrValidation) = false, want true")
	}
	if errors.Is(err, ErrStateConflict) {
		t.Fatalf("errors.Is(err, ErrStateConflict) = true, want false")
	}
	if got := KindOf(err); got != KindValidation {
		t.Fatalf("KindOf = %q, want %q", got, KindValidation)
	}
}

// TestComputationKeepsCause verifies the simulation failure stays reachable.
func TestComputationKeepsCause(t *testing.T) {
	cause := errors.New("empty squad")
	err := Computation("simulation failed", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true")
	}
	if got, want := err.Error(), "simulation failed: empty squad"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

// TestConnectCode verifies kind to RPC code mapping.
func TestConnectCode(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{Validation("bad"), connect.CodeInvalidArgument},
		{StateConflict("busy"), connect.CodeFailedPrecondition},
		{NotFound("gone"), connect.CodeNotFound},
		{Computation("boom", nil), connect.CodeInternal},
		{Consistency("self match"), connect.CodeInternal},
		{errors.New("plain"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := ConnectCode(tt.err); got != tt.want {
			t.Fatalf("ConnectCode(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
