package config

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// DefaultPath is where the server looks for its environment file.
const DefaultPath = "/etc/SelfAuth/env"

const (
	defaultListenAddr = ":8080"
	defaultSMTPPort   = 587
)

var (
	// ErrNotConfigured indicates the environment file is absent or unreadable.
	ErrNotConfigured = errors.New("config: environment file not found")
	// ErrInvalid indicates the file exists but lacks required keys.
	ErrInvalid = errors.New("config: missing ADMIN_EMAIL or SALTED_PASS")
)

// SMTP holds the outbound mail settings consumed by the mail sender.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config is the process configuration, loaded once at startup and read-only after.
type Config struct {
	// AdminEmail is the single administrator identity.
	AdminEmail string
	// SaltedPass is hex(sha256(password+salt)) + ":" + salt.
	SaltedPass string

	ListenAddr string
	SMTP       SMTP
}

// Load reads a key=value environment file. Lines starting with # and blank
// lines are ignored; unknown keys are skipped.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, path)
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{
		AdminEmail: strings.TrimSpace(values["ADMIN_EMAIL"]),
		SaltedPass: strings.TrimSpace(values["SALTED_PASS"]),
		ListenAddr: strings.TrimSpace(values["LISTEN_ADDR"]),
		SMTP: SMTP{
			Host:     strings.TrimSpace(values["SMTP_HOST"]),
			Port:     defaultSMTPPort,
			Username: strings.TrimSpace(values["SMTP_USERNAME"]),
			Password: values["SMTP_PASSWORD"],
			From:     strings.TrimSpace(values["SMTP_FROM"]),
		},
	}
	if raw := strings.TrimSpace(values["SMTP_PORT"]); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("config: invalid SMTP_PORT %q", raw)
		}
		cfg.SMTP.Port = port
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	if cfg.AdminEmail == "" || cfg.SaltedPass == "" {
		return nil, ErrInvalid
	}
	return cfg, nil
}

// SaltPassword hashes a plaintext password with a fresh random salt. The result
// is stored as hex(sha256(password+salt)) + ":" + salt.
func SaltPassword(password string) string {
	salt := uuid.NewString()
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:]) + ":" + salt
}

// VerifyPassword recomputes the salted hash and compares it against the stored
// credential.
func (c *Config) VerifyPassword(password string) bool {
	hash, salt, ok := strings.Cut(c.SaltedPass, ":")
	if !ok || hash == "" || salt == "" {
		return false
	}
	sum := sha256.Sum256([]byte(password + salt))
	computed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// Render produces the environment file contents for the given credential.
func Render(adminEmail, saltedPass string) string {
	var b strings.Builder
	b.WriteString("# SelfAuth Environment Configuration\n")
	b.WriteString("# Generated on " + time.Now().UTC().Format(time.RFC3339) + "\n\n")
	b.WriteString("ADMIN_EMAIL=" + adminEmail + "\n")
	b.WriteString("SALTED_PASS=" + saltedPass + "\n")
	return b.String()
}

// Write creates the environment file (and its directory) with owner-only
// permissions. The credential file holds a password hash and SMTP secrets.
func Write(path, adminEmail, saltedPass string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Render(adminEmail, saltedPass)), 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
