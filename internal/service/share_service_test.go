package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/storage"
)

func newShareService() *ShareService {
	return NewShareService(storage.NewTokenSigner("share-secret", time.Hour), "/api/v1", nil)
}

func TestShareServiceOpenLink(t *testing.T) {
	svc := newShareService()

	link, err := svc.Create("alhuda-iqro", "")
	require.NoError(t, err)
	assert.False(t, link.Protected)
	assert.Contains(t, link.URL, "/api/v1/public/kelas/alhuda-iqro?token=")

	require.NoError(t, svc.Authorize(link.Token, "alhuda-iqro", ""))
}

func TestShareServicePasscodeLink(t *testing.T) {
	svc := newShareService()

	link, err := svc.Create("alhuda-iqro", "bismillah")
	require.NoError(t, err)
	assert.True(t, link.Protected)

	require.NoError(t, svc.Authorize(link.Token, "alhuda-iqro", "bismillah"))
	assert.Error(t, svc.Authorize(link.Token, "alhuda-iqro", "wrong"))
	assert.Error(t, svc.Authorize(link.Token, "alhuda-iqro", ""))
}

func TestShareServiceRejectsOtherClass(t *testing.T) {
	svc := newShareService()

	link, err := svc.Create("alhuda-iqro", "")
	require.NoError(t, err)

	err = svc.Authorize(link.Token, "kelas-lain", "")
	require.Error(t, err)
}

func TestShareServiceRejectsForeignToken(t *testing.T) {
	svc := newShareService()
	other := NewShareService(storage.NewTokenSigner("other-secret", time.Hour), "/api/v1", nil)

	link, err := other.Create("alhuda-iqro", "")
	require.NoError(t, err)

	err = svc.Authorize(link.Token, "alhuda-iqro", "")
	require.Error(t, err)
}
