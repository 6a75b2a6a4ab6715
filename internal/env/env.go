// Package env composes the shop, user and context stores of a root into a
// single environment with typed accessors, consistency checks and context
// resolution.
//
// An Env is loaded once per invocation, mutated in memory and flushed; only
// stores that changed are written. Writes of different stores are not
// isolated from each other, so context resolution always re-validates the
// pointer against the current shop and user data.
package env

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-ports/shopctl/internal/models"
	"github.com/go-ports/shopctl/internal/store"
)

// Env is the loaded environment of a root.
type Env struct {
	root *Root

	shop      *store.ShopDoc
	shopDirty bool

	user      *store.UserDoc
	userDirty bool

	context      models.ContextPointer
	contextDirty bool
}

// Load reads all stores of root. The shop store must exist; missing user and
// context stores start empty.
func Load(root *Root) (*Env, error) {
	shop, found, err := store.LoadShop(root.ShopPath())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, (&models.Error{Kind: models.ErrShopDoesNotExist, Path: root.ShopPath()}).
			WithHint("Use `shop add shop <name> --domain <domain>`")
	}

	user, found, err := store.LoadUser(root.UserPath())
	if err != nil {
		return nil, err
	}
	if !found {
		user = store.NewUserDoc()
	}

	pointer, err := store.LoadContext(root.ContextPath())
	if err != nil {
		return nil, err
	}

	return &Env{
		root:    root,
		shop:    shop,
		user:    user,
		context: pointer,
	}, nil
}

// Root returns the root the environment was loaded from.
func (e *Env) Root() *Root { return e.root }

// Flush writes the stores that changed, in shop, user, context order.
func (e *Env) Flush() error {
	if e.shopDirty {
		slog.Debug("saving shop.yaml", "path", e.root.ShopPath())
		if err := store.SaveShop(e.root.ShopPath(), e.shop); err != nil {
			return err
		}
		e.shopDirty = false
	}
	if e.userDirty {
		slog.Debug("saving user.yaml", "path", e.root.UserPath())
		if err := store.SaveUser(e.root.UserPath(), e.user); err != nil {
			return err
		}
		e.userDirty = false
	}
	if e.contextDirty {
		slog.Debug("saving context.yaml", "path", e.root.ContextPath())
		if err := store.SaveContext(e.root.ContextPath(), e.context); err != nil {
			return err
		}
		e.contextDirty = false
	}
	return nil
}

// ---------------------------------------------------------------------------
// Shop-level reads
// ---------------------------------------------------------------------------

// Shop returns the shop identity.
func (e *Env) Shop() models.ShopIdentity { return e.shop.ShopIdentity }

// AccountNames returns the names of all accounts known to the shop.
func (e *Env) AccountNames() []string { return e.shop.AccountNames() }

// ClusterNames returns the cluster names of account; nil if it does not exist.
func (e *Env) ClusterNames(account string) []string { return e.shop.ClusterNames(account) }

// ShopAccount returns the shop facts of account regardless of user configuration.
func (e *Env) ShopAccount(name string) (models.ShopAccount, error) {
	return e.shop.Account(name)
}

// ShopCluster returns the shop facts of a cluster regardless of user configuration.
func (e *Env) ShopCluster(account, cluster string) (models.ShopCluster, error) {
	return e.shop.Cluster(account, cluster)
}

// Pointer returns the current, unnormalized context pointer.
func (e *Env) Pointer() models.ContextPointer { return e.context }

// ---------------------------------------------------------------------------
// Joined accessors
// ---------------------------------------------------------------------------

// level parameterizes the account and cluster joins.
type level struct {
	doesNotExist  error
	notConfigured error
	inconsistent  error
	addHint       func(name, parent string) string
	configureHint func(name, parent string) string
}

var accountLevel = level{
	doesNotExist:  models.ErrAccountDoesNotExist,
	notConfigured: models.ErrAccountNotConfigured,
	inconsistent:  models.ErrInconsistentAccountData,
	addHint: func(name, _ string) string {
		return fmt.Sprintf("Use `shop add account %s`", name)
	},
	configureHint: func(name, _ string) string {
		return fmt.Sprintf("Use `shop configure account %s --profile <aws-profile>`", name)
	},
}

var clusterLevel = level{
	doesNotExist:  models.ErrClusterDoesNotExist,
	notConfigured: models.ErrClusterNotConfigured,
	inconsistent:  models.ErrInconsistentClusterData,
	addHint: func(name, parent string) string {
		return fmt.Sprintf("Use `shop add cluster %s %s`", name, parent)
	},
	configureHint: func(name, parent string) string {
		return fmt.Sprintf("Use `shop configure cluster %s %s --ctx <kube-context>`", name, parent)
	},
}

// lookup joins name at level lv. found is true only when both facts exist.
// An entity known to the shop but not configured by the user is an error when
// strict is set and "not found" otherwise. User data without shop data is
// always an error.
func lookup[S, U any](lv level, shop map[string]S, user map[string]U, name, parent string, strict bool) (j joined[S, U], found bool, err error) {
	j = join(shop, user, name)
	switch j.state {
	case both:
		return j, true, nil
	case userOnly:
		return j, false, models.NewError(lv.inconsistent, name).WithHint(
			"The user config references an entity unknown to the shop config; " + lv.addHint(name, parent))
	case shopOnly:
		if strict {
			return j, false, models.NewError(lv.notConfigured, name).WithHint(lv.configureHint(name, parent))
		}
		return j, false, nil
	default:
		return j, false, nil
	}
}

// LookupAccount returns the joined account. found is false when the shop does
// not know the account. An account the user has not configured yields
// ErrAccountNotConfigured.
func (e *Env) LookupAccount(name string) (models.AccountCfg, bool, error) {
	j, found, err := lookup(accountLevel, e.shop.Accounts, e.user.Accounts, name, "", true)
	if err != nil || !found {
		return models.AccountCfg{}, false, err
	}
	return models.AccountCfg{Shop: j.shop, User: models.UserAccount(j.user)}, true, nil
}

// Account is LookupAccount with a missing account reported as
// ErrAccountDoesNotExist.
func (e *Env) Account(name string) (models.AccountCfg, error) {
	acc, found, err := e.LookupAccount(name)
	if err != nil {
		return models.AccountCfg{}, err
	}
	if !found {
		return models.AccountCfg{}, models.NewError(accountLevel.doesNotExist, name).WithHint(accountLevel.addHint(name, ""))
	}
	return acc, nil
}

// LookupCluster returns the joined cluster under a configured account. found
// is false when the cluster does not exist or is not configured.
func (e *Env) LookupCluster(account, cluster string) (models.ClusterCfg, bool, error) {
	acc, err := e.Account(account)
	if err != nil {
		return models.ClusterCfg{}, false, err
	}
	return e.lookupCluster(account, acc, cluster, false)
}

// Cluster returns the joined cluster, reporting a missing cluster as
// ErrClusterDoesNotExist and an unconfigured one as ErrClusterNotConfigured.
func (e *Env) Cluster(account, cluster string) (models.ClusterCfg, error) {
	acc, err := e.Account(account)
	if err != nil {
		return models.ClusterCfg{}, err
	}
	cl, found, err := e.lookupCluster(account, acc, cluster, true)
	if err != nil {
		return models.ClusterCfg{}, err
	}
	if !found {
		return models.ClusterCfg{}, models.NewError(clusterLevel.doesNotExist, cluster).WithHint(clusterLevel.addHint(cluster, account))
	}
	return cl, nil
}

func (e *Env) lookupCluster(account string, acc models.AccountCfg, cluster string, strict bool) (models.ClusterCfg, bool, error) {
	j, found, err := lookup(clusterLevel, acc.Shop.Clusters, acc.User.Clusters, cluster, account, strict)
	if err != nil || !found {
		return models.ClusterCfg{}, false, err
	}
	return models.ClusterCfg{Shop: j.shop, User: j.user}, true, nil
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// AddAccount records a new account in the shop store and persists it at once.
func (e *Env) AddAccount(name, region string) (models.ShopAccount, error) {
	slog.Debug("add account", "name", name, "region", region)
	acc, err := e.shop.AddAccount(name, region)
	if err != nil {
		return models.ShopAccount{}, err
	}
	e.shopDirty = true
	if err := e.Flush(); err != nil {
		return models.ShopAccount{}, err
	}
	return acc, nil
}

// AddCluster records a new cluster in the shop store and persists it at once.
// An empty account means the account of the current context.
func (e *Env) AddCluster(account, cluster string) (models.ShopCluster, error) {
	account, err := e.defaultAccount(account)
	if err != nil {
		return models.ShopCluster{}, err
	}
	slog.Debug("add cluster", "account", account, "cluster", cluster)
	cl, err := e.shop.AddCluster(account, cluster)
	if err != nil {
		return models.ShopCluster{}, err
	}
	e.shopDirty = true
	if err := e.Flush(); err != nil {
		return models.ShopCluster{}, err
	}
	return cl, nil
}

// ConfigureAccount sets the AWS profile of an existing account.
func (e *Env) ConfigureAccount(name, profile string) (models.AccountCfg, error) {
	slog.Debug("configure account", "name", name, "profile", profile)
	if _, err := e.user.ConfigureAccount(e.shop, name, profile); err != nil {
		return models.AccountCfg{}, err
	}
	e.userDirty = true
	if err := e.Flush(); err != nil {
		return models.AccountCfg{}, err
	}
	return e.Account(name)
}

// ConfigureCluster sets the kube context of an existing cluster. An empty
// account means the account of the current context.
func (e *Env) ConfigureCluster(account, cluster, kubeContext string) (models.ClusterCfg, error) {
	account, err := e.defaultAccount(account)
	if err != nil {
		return models.ClusterCfg{}, err
	}
	slog.Debug("configure cluster", "account", account, "cluster", cluster, "kube_context", kubeContext)
	if _, err := e.user.ConfigureCluster(e.shop, account, cluster, kubeContext); err != nil {
		return models.ClusterCfg{}, err
	}
	e.userDirty = true
	if err := e.Flush(); err != nil {
		return models.ClusterCfg{}, err
	}
	return e.Cluster(account, cluster)
}

func (e *Env) defaultAccount(account string) (string, error) {
	if account != "" {
		return account, nil
	}
	p := e.Normalize(e.context, true)
	if p.Account == "" {
		return "", (&models.Error{Kind: models.ErrAccountNotSet}).WithHint("Use `shop switch account <name>` or name the account explicitly")
	}
	return p.Account, nil
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

// WriteContextInfo writes a one-line summary of ctx.
func (e *Env) WriteContextInfo(w io.Writer, ctx models.EnvContext) error {
	shop := e.Shop()
	line := fmt.Sprintf("Context: shop=%s (%s)", shop.Name, shop.Domain)
	if ctx.Account != nil {
		line += fmt.Sprintf("; account=%s (%s)", ctx.Account.Name, ctx.Account.User.AWSProfile)
		if ctx.Cluster != nil {
			line += fmt.Sprintf("; cluster=%s (%s)", ctx.Cluster.Name, ctx.Cluster.User.KubeContext)
			if ctx.Namespace != "" {
				line += "; namespace=" + ctx.Namespace
			}
		}
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
