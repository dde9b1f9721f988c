package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoUsers is returned when the directory holds no users at all.
	ErrNoUsers = errors.New("no users configured")
)

// User is an authenticated principal.
type User struct {
	Email string `json:"email"`
}

type entry struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Directory authenticates users against a JSON users file. The file is
// re-read whenever its modification time changes, so edits apply without
// a restart. A missing file is an empty directory.
type Directory struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	modTime time.Time
	users   map[string]string
}

// NewDirectory creates a directory backed by path.
func NewDirectory(path string, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{path: path, logger: logger, users: map[string]string{}}
}

// Authenticate checks email and password. Emails compare case-insensitively.
func (d *Directory) Authenticate(email, password string) (User, error) {
	if err := d.refresh(); err != nil {
		return User{}, err
	}

	d.mu.RLock()
	stored, ok := d.users[normalizeEmail(email)]
	empty := len(d.users) == 0
	d.mu.RUnlock()

	if empty {
		return User{}, ErrNoUsers
	}
	if !ok || !matchPassword(stored, password) {
		return User{}, ErrInvalidCredentials
	}
	return User{Email: normalizeEmail(email)}, nil
}

// Len returns the number of known users.
func (d *Directory) Len() int {
	if err := d.refresh(); err != nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

func (d *Directory) refresh() error {
	info, err := os.Stat(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		d.mu.Lock()
		d.users = map[string]string{}
		d.modTime = time.Time{}
		d.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat users file: %w", err)
	}

	d.mu.RLock()
	fresh := info.ModTime().Equal(d.modTime)
	d.mu.RUnlock()
	if fresh {
		return nil
	}

	raw, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("read users file: %w", err)
	}
	users, err := ParseUsers(raw)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.users = users
	d.modTime = info.ModTime()
	d.mu.Unlock()

	d.logger.Info("Users file loaded",
		slog.String("path", d.path),
		slog.Int("users", len(users)))
	return nil
}

// ParseUsers decodes the users file. Entries without an email are skipped;
// for repeated emails the first entry wins.
func ParseUsers(raw []byte) (map[string]string, error) {
	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	users := make(map[string]string, len(entries))
	for _, e := range entries {
		email := normalizeEmail(e.Email)
		if email == "" {
			continue
		}
		if _, dup := users[email]; dup {
			continue
		}
		users[email] = e.Password
	}
	return users, nil
}

// HashPassword returns a bcrypt hash suitable for the users file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func matchPassword(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
