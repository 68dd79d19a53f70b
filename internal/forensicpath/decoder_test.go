package forensicpath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    uint64
		wantErr bool
	}{
		{name: "xor region", token: "5000-XOR-20", want: 5020},
		{name: "xor region with trailing segments", token: "5000-XOR-20-GZIP-4", want: 5020},
		{name: "xor marker after other segments", token: "100-GZIP-5000-XOR-20", want: 5020},
		{name: "encoded segment", token: "7000-ENC", want: 7000},
		{name: "nested segments", token: "12345-200-ENCODED", want: 12345},
		{name: "plain offset", token: "42", want: 42},
		{name: "zero", token: "0", want: 0},
		{name: "surrounding whitespace", token: " 99\n", want: 99},
		{name: "not a number", token: "not-a-number-XYZ", wantErr: true},
		{name: "empty token", token: "", wantErr: true},
		{name: "leading separator", token: "-100", wantErr: true},
		{name: "negative looking xor", token: "abc-XOR-1", wantErr: true},
		{name: "xor overflow", token: "18446744073709551615-XOR-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.token))
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, brerrors.ErrMalformedOffset), "expected ErrMalformedOffset, got %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsEncoded(t *testing.T) {
	assert.True(t, IsEncoded([]byte("5000-XOR-20")))
	assert.True(t, IsEncoded([]byte("7000-GZIP-3")))
	assert.False(t, IsEncoded([]byte("7000")))
}
