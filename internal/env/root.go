package env

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-ports/shopctl/internal/models"
	"github.com/go-ports/shopctl/internal/store"
)

// ConfigSubdir is the directory under the root holding all shop files.
const ConfigSubdir = ".config"

// Root errors.
var (
	ErrRootNotSet       = errors.New("root directory not set")
	ErrRootDoesNotExist = errors.New("root directory does not exist")
)

// Root locates the shop files under a root directory.
type Root struct {
	path string
}

// OpenRoot checks that path names an existing directory.
func OpenRoot(path string) (*Root, error) {
	if path == "" {
		return nil, ErrRootNotSet
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootDoesNotExist, path)
		}
		return nil, fmt.Errorf("env.OpenRoot: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootDoesNotExist, path)
	}
	slog.Debug("loading env root", "root", path)
	return &Root{path: path}, nil
}

// Path returns the root directory.
func (r *Root) Path() string { return r.path }

// ConfigDir returns {root}/.config.
func (r *Root) ConfigDir() string { return filepath.Join(r.path, ConfigSubdir) }

// ShopPath returns the shop store path.
func (r *Root) ShopPath() string { return filepath.Join(r.ConfigDir(), "shop.yaml") }

// UserPath returns the user store path.
func (r *Root) UserPath() string { return filepath.Join(r.ConfigDir(), "user.yaml") }

// StateDir returns the directory holding mutable selection state.
func (r *Root) StateDir() string { return filepath.Join(r.ConfigDir(), "state") }

// ContextPath returns the context store path.
func (r *Root) ContextPath() string { return filepath.Join(r.StateDir(), "context.yaml") }

// HistoryPath returns the switch journal path.
func (r *Root) HistoryPath() string { return filepath.Join(r.StateDir(), "history.db") }

// AddShop creates the shop store. It is a one-time action: an existing shop
// file is never overwritten. A user store is created if missing.
func (r *Root) AddShop(name, domain string) error {
	slog.Debug("add shop", "name", name, "domain", domain)
	if _, err := store.CreateShop(r.ShopPath(), name, domain); err != nil {
		return err
	}
	_, found, err := store.LoadUser(r.UserPath())
	if err != nil {
		return err
	}
	if !found {
		return store.SaveUser(r.UserPath(), store.NewUserDoc())
	}
	return nil
}

// ShopIdentity returns the shop identity if the shop exists.
func (r *Root) ShopIdentity() (models.ShopIdentity, bool, error) {
	doc, found, err := store.LoadShop(r.ShopPath())
	if err != nil || !found {
		return models.ShopIdentity{}, false, err
	}
	return doc.ShopIdentity, true, nil
}

// EnsureShop creates the shop if it does not exist. An existing shop with the
// same identity is accepted; a different identity is ErrShopMismatch.
func (r *Root) EnsureShop(name, domain string) (created bool, err error) {
	existing, found, err := r.ShopIdentity()
	if err != nil {
		return false, err
	}
	if found {
		if existing != (models.ShopIdentity{Name: name, Domain: domain}) {
			return false, &models.Error{
				Kind: models.ErrShopMismatch,
				Path: r.ShopPath(),
				Err:  fmt.Errorf("previous settings: name=%s domain=%s", existing.Name, existing.Domain),
			}
		}
		return false, nil
	}
	return true, r.AddShop(name, domain)
}
