package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyHMACSHA256(t *testing.T) {
	body := []byte(`{"type":"payment.completed"}`)
	sig := SignHMACSHA256("whsec", body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{"valid", "whsec", body, sig, true},
		{"valid with prefix", "whsec", body, "sha256=" + sig, true},
		{"uppercase hex", "whsec", body, strings.ToUpper(sig), true},
		{"wrong secret", "other", body, sig, false},
		{"tampered body", "whsec", []byte(`{"type":"payment.refunded"}`), sig, false},
		{"not hex", "whsec", body, "zz", false},
		{"empty signature", "whsec", body, "", false},
		{"empty secret", "", body, sig, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyHMACSHA256(tt.secret, tt.body, tt.signature))
		})
	}
}

func TestEncryptDecrypt(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	enc, err := Encrypt([]byte("ig-token"), key)
	assert.NoError(t, err)
	assert.NotEqual(t, "ig-token", enc)

	dec, err := Decrypt(enc, key)
	assert.NoError(t, err)
	assert.Equal(t, "ig-token", dec)

	_, err = Decrypt(enc, []byte("fedcba9876543210fedcba9876543210"))
	assert.Error(t, err)
}
