package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenSignerGenerateAndParse(t *testing.T) {
	signer := NewTokenSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("export-1", "kartu/aisyah.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	subject, resource, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "export-1", subject)
	require.Equal(t, "kartu/aisyah.csv", resource)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestTokenSignerExpired(t *testing.T) {
	signer := NewTokenSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("export-1", "kartu/aisyah.csv")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	subject, resource, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "export-1", subject)
	require.Equal(t, "kartu/aisyah.csv", resource)
}

func TestTokenSignerRejectsTampering(t *testing.T) {
	signer := NewTokenSigner("secret", time.Hour)
	token, _, err := signer.Generate("alhuda-iqro", "share")
	require.NoError(t, err)

	tampered := "other-kelas" + token[len("alhuda-iqro"):]
	_, _, _, err = signer.Parse(tampered, false)
	require.Error(t, err)

	_, _, _, err = NewTokenSigner("different", time.Hour).Parse(token, false)
	require.Error(t, err)
}
