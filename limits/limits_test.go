package limits

import (
	"errors"
	"strings"
	"testing"
)

// TestWirePayloadMatchesHeaderWidth verifies that MaxWirePayload is exactly
// the value expressible in the 28-bit size field of a frame header.
func TestWirePayloadMatchesHeaderWidth(t *testing.T) {
	if MaxWirePayload != 1<<28-1 {
		t.Errorf("MaxWirePayload = %d, want %d (28-bit field)", MaxWirePayload, 1<<28-1)
	}
}

// TestMessagePayloadFitsOnWire verifies that the buffering limit can always
// be expressed in a frame header.
func TestMessagePayloadFitsOnWire(t *testing.T) {
	if MaxMessagePayload > MaxWirePayload {
		t.Errorf("MaxMessagePayload = %d exceeds MaxWirePayload %d", MaxMessagePayload, MaxWirePayload)
	}
}

// TestCompressedHeaderExtendsUncompressed verifies the compressed header is
// the uncompressed layout plus the 4-byte uncompressed-size field.
func TestCompressedHeaderExtendsUncompressed(t *testing.T) {
	if HeaderSizeCompressed != HeaderSizeUncompressed+4 {
		t.Errorf("HeaderSizeCompressed = %d, want %d", HeaderSizeCompressed, HeaderSizeUncompressed+4)
	}
}

func TestValidatePayloadSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"zero", 0, false},
		{"small", 1024, false},
		{"at limit", MaxMessagePayload, false},
		{"over limit", MaxMessagePayload + 1, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayloadSize(tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePayloadSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrPayloadTooLarge) {
				t.Errorf("ValidatePayloadSize(%d) error = %v, want ErrPayloadTooLarge", tt.size, err)
			}
		})
	}
}

// TestValidatePayloadSizeIncludesContext verifies the error carries both the
// offending size and the limit.
func TestValidatePayloadSizeIncludesContext(t *testing.T) {
	err := ValidatePayloadSize(MaxMessagePayload + 1)
	if err == nil {
		t.Fatal("ValidatePayloadSize should fail above the limit")
	}
	if !strings.Contains(err.Error(), "67108865") {
		t.Errorf("error %q should include the actual size", err.Error())
	}
	if !strings.Contains(err.Error(), "67108864") {
		t.Errorf("error %q should include the limit", err.Error())
	}
}

func TestValidateHandshakeBlock(t *testing.T) {
	if err := ValidateHandshakeBlock(MaxHandshakeBlock); err != nil {
		t.Errorf("ValidateHandshakeBlock(%d) = %v, want nil", MaxHandshakeBlock, err)
	}
	err := ValidateHandshakeBlock(MaxHandshakeBlock + 1)
	if !errors.Is(err, ErrBlockTooLarge) {
		t.Errorf("ValidateHandshakeBlock(%d) = %v, want ErrBlockTooLarge", MaxHandshakeBlock+1, err)
	}
}

func TestValidateIdentifier(t *testing.T) {
	if err := ValidateIdentifier(""); err != nil {
		t.Errorf("empty identifier should validate, got %v", err)
	}
	if err := ValidateIdentifier(strings.Repeat("x", MaxIdentifier)); err != nil {
		t.Errorf("identifier at limit should validate, got %v", err)
	}
	err := ValidateIdentifier(strings.Repeat("x", MaxIdentifier+1))
	if !errors.Is(err, ErrIdentifierTooLong) {
		t.Errorf("oversized identifier error = %v, want ErrIdentifierTooLong", err)
	}
}
