package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignerSignAndVerify(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("user-1", "transcripts/user-1/t.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	link, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", link.OwnerID)
	require.Equal(t, "transcripts/user-1/t.csv", link.Key)
	require.WithinDuration(t, expiresAt, link.ExpiresAt, time.Second)
}

func TestSignerExpired(t *testing.T) {
	signer := NewSigner("secret", time.Minute)
	token, _, err := signer.Sign("user-1", "a.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	link, err := signer.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.Equal(t, "a.pdf", link.Key)
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, _, err := signer.Sign("user-1", "a.pdf")
	require.NoError(t, err)

	_, err = NewSigner("other", time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = NewSigner("", time.Hour).Sign("user-1", "a.pdf")
	require.Error(t, err)
}
