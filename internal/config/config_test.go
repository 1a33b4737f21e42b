package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeEnvFile(t, strings.Join([]string{
		"# SelfAuth Environment Configuration",
		"",
		"ADMIN_EMAIL=admin@example.com",
		"SALTED_PASS=deadbeef:salt",
		"SMTP_HOST=mail.example.com",
		"SMTP_PORT=2525",
		"SMTP_USERNAME=mailer",
		"SMTP_PASSWORD=hunter2",
		"SMTP_FROM=auth@example.com",
	}, "\n"))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", cfg.AdminEmail)
	require.Equal(t, "deadbeef:salt", cfg.SaltedPass)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, "mail.example.com", cfg.SMTP.Host)
	require.Equal(t, 2525, cfg.SMTP.Port)
	require.Equal(t, "mailer", cfg.SMTP.Username)
	require.Equal(t, "hunter2", cfg.SMTP.Password)
	require.Equal(t, "auth@example.com", cfg.SMTP.From)
}

func TestLoadDefaults(t *testing.T) {
	path := writeEnvFile(t, "ADMIN_EMAIL=a@b.c\nSALTED_PASS=h:s\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, defaultSMTPPort, cfg.SMTP.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotConfigured))
}

func TestLoadMissingRequiredKeys(t *testing.T) {
	for name, contents := range map[string]string{
		"empty":        "",
		"only email":   "ADMIN_EMAIL=a@b.c\n",
		"only pass":    "SALTED_PASS=h:s\n",
		"blank values": "ADMIN_EMAIL=\nSALTED_PASS=\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeEnvFile(t, contents))
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadInvalidSMTPPort(t *testing.T) {
	path := writeEnvFile(t, "ADMIN_EMAIL=a@b.c\nSALTED_PASS=h:s\nSMTP_PORT=nope\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestSaltPasswordRoundTrip(t *testing.T) {
	salted := SaltPassword("secret")
	hash, salt, ok := strings.Cut(salted, ":")
	require.True(t, ok)
	require.Len(t, hash, 64)
	require.NotEmpty(t, salt)

	cfg := &Config{SaltedPass: salted}
	require.True(t, cfg.VerifyPassword("secret"))
	require.False(t, cfg.VerifyPassword("Secret"))
	require.False(t, cfg.VerifyPassword(""))
}

func TestVerifyPasswordStoredFormat(t *testing.T) {
	// Credential produced outside the process must verify the same way.
	sum := sha256.Sum256([]byte("pw" + "known-salt"))
	cfg := &Config{SaltedPass: hex.EncodeToString(sum[:]) + ":known-salt"}
	require.True(t, cfg.VerifyPassword("pw"))
	require.False(t, cfg.VerifyPassword("pw2"))
}

func TestVerifyPasswordMalformedCredential(t *testing.T) {
	for _, stored := range []string{"", "nocolon", ":salt", "hash:"} {
		cfg := &Config{SaltedPass: stored}
		require.False(t, cfg.VerifyPassword("pw"), "stored=%q", stored)
	}
}

func TestSaltPasswordUniqueSalts(t *testing.T) {
	require.NotEqual(t, SaltPassword("pw"), SaltPassword("pw"))
}
