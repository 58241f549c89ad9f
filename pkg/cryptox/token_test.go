package cryptox_test

import (
	"testing"

	"github.com/galleria-app/galleria/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tok, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)
	require.Len(t, tok, 22) // 16 bytes base64url, no padding

	other, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	_, err = cryptox.GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintTokenIsDeterministic(t *testing.T) {
	fp1 := cryptox.FingerprintToken("abc")
	fp2 := cryptox.FingerprintToken("abc")
	require.Equal(t, fp1, fp2)
	require.Len(t, fp1, 43) // sha256 base64url, no padding
	require.NotEqual(t, fp1, cryptox.FingerprintToken("abd"))
}
