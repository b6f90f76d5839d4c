package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/plcassist/backend/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
)

// PasswordHasher is the interface that wraps password hashing used for seeding and password updates
type PasswordHasher interface {
	// Method Hash returns a salted one-way hash of the password.
	//
	// If hashing fails, the error will be returned together with empty string.
	Hash(password string) (string, error)
}

// seedUser is an account created when the user file does not exist yet
type seedUser struct {
	user     models.User
	password string
}

var seedUsers = []seedUser{
	{
		user: models.User{
			Username: "admin",
			FullName: "Haupt-Administrator",
			Email:    "admin@example.com",
			Role:     models.RoleAdmin,
		},
		password: "Admin123",
	},
	{
		user: models.User{
			Username: "user",
			FullName: "Standard-Benutzer",
			Email:    "user@example.com",
			Role:     models.RoleUser,
		},
		password: "user123",
	},
}

// userRepository keeps all users in memory and mirrors every change to a single JSON file.
// The file is an object keyed by username in insertion order; in memory the keys are normalized
// to lower case so lookups are case-insensitive.
type userRepository struct {
	mu     sync.RWMutex
	path   string
	hasher PasswordHasher
	logger *zap.Logger
	users  *orderedmap.OrderedMap[string, models.User]
}

// NewUserRepository creates a new file-backed user repository. Call Load before use.
func NewUserRepository(path string, hasher PasswordHasher, logger *zap.Logger) *userRepository {
	return &userRepository{
		path:   path,
		hasher: hasher,
		logger: logger,
		users:  orderedmap.New[string, models.User](),
	}
}

// Path returns the location of the user file
func (r *userRepository) Path() string {
	return r.path
}

// Load reads the user file. If the file does not exist, it is created with the default admin and user accounts.
func (r *userRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return r.seed()
	}
	if err != nil {
		return fmt.Errorf("failed to read user file: %w", err)
	}

	stored := orderedmap.New[string, models.User]()
	if err := json.Unmarshal(data, stored); err != nil {
		return fmt.Errorf("failed to parse user file %s: %w", r.path, err)
	}

	users := orderedmap.New[string, models.User]()
	for pair := stored.Oldest(); pair != nil; pair = pair.Next() {
		user := pair.Value
		if user.Username == "" {
			user.Username = pair.Key
		}
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		key := models.NormalizeUsername(user.Username)
		if _, exists := users.Get(key); exists {
			return fmt.Errorf("failed to parse user file %s: duplicate username %q", r.path, user.Username)
		}
		users.Set(key, user)
	}

	r.users = users
	r.logger.Info("user file loaded", zap.String("path", r.path), zap.Int("users", users.Len()))
	return nil
}

// seed creates the default accounts and writes them to disk
func (r *userRepository) seed() error {
	users := make([]models.User, 0, len(seedUsers))
	for _, s := range seedUsers {
		hash, err := r.hasher.Hash(s.password)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", s.user.Username, err)
		}
		user := s.user
		user.PasswordHash = hash
		users = append(users, user)
	}

	if err := r.persist(users); err != nil {
		return err
	}

	r.users = orderedmap.New[string, models.User]()
	for _, user := range users {
		r.users.Set(models.NormalizeUsername(user.Username), user)
	}

	r.logger.Info("user file created with default accounts", zap.String("path", r.path))
	return nil
}

// Method GetByUsername is a UserRepository implementation for case-insensitive user lookup.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users.Get(models.NormalizeUsername(username))
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &user, nil
}

// Method GetAll returns all users in insertion order.
func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot(), nil
}

// Method Create inserts a new user. Existing users are never overwritten.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.NormalizeUsername(user.Username)
	if _, exists := r.users.Get(key); exists {
		return models.ErrUserAlreadyExists
	}

	if err := r.persist(append(r.snapshot(), *user)); err != nil {
		return err
	}

	r.users.Set(key, *user)
	return nil
}

// Method Update applies the optional changes of update to the user.
func (r *userRepository) Update(ctx context.Context, username string, update models.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.NormalizeUsername(username)
	user, ok := r.users.Get(key)
	if !ok {
		return models.ErrUserNotFound
	}

	if update.NewPassword != nil && *update.NewPassword != "" {
		hash, err := r.hasher.Hash(*update.NewPassword)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	if update.NewRole != nil {
		user.Role = *update.NewRole
	}
	if update.Disabled != nil {
		user.Disabled = *update.Disabled
	}

	users := r.snapshot()
	for i := range users {
		if models.NormalizeUsername(users[i].Username) == key {
			users[i] = user
			break
		}
	}
	if err := r.persist(users); err != nil {
		return err
	}

	r.users.Set(key, user)
	return nil
}

// Method Delete removes the user.
func (r *userRepository) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.NormalizeUsername(username)
	if _, ok := r.users.Get(key); !ok {
		return models.ErrUserNotFound
	}

	users := make([]models.User, 0, r.users.Len()-1)
	for _, user := range r.snapshot() {
		if models.NormalizeUsername(user.Username) != key {
			users = append(users, user)
		}
	}
	if err := r.persist(users); err != nil {
		return err
	}

	r.users.Delete(key)
	return nil
}

// Method Backup returns the raw content of the user file.
func (r *userRepository) Backup(ctx context.Context) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, models.ErrBackupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}
	return data, nil
}

// snapshot copies the users in insertion order. Callers must hold the lock.
func (r *userRepository) snapshot() []models.User {
	users := make([]models.User, 0, r.users.Len())
	for pair := r.users.Oldest(); pair != nil; pair = pair.Next() {
		users = append(users, pair.Value)
	}
	return users
}

// persist replaces the user file with users. The file is written next to the target and renamed over it.
func (r *userRepository) persist(users []models.User) error {
	out := orderedmap.New[string, models.User](len(users))
	for _, user := range users {
		out.Set(user.Username, user)
	}

	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create user file directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary user file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write user file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		r.logger.Error("failed to replace user file", zap.String("path", r.path), zap.Error(err))
		return fmt.Errorf("failed to replace user file: %w", err)
	}
	return nil
}
