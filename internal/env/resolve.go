package env

import (
	"log/slog"

	"github.com/go-ports/shopctl/internal/models"
)

// Normalize narrows p to fields that reference existing shop entities and,
// when widen is set, fills an unset or stale field whose parent has exactly
// one candidate. A field whose parent is unresolved is always cleared.
// Candidates are counted in the shop store; user configuration is not
// consulted. The namespace is never checked.
func (e *Env) Normalize(p models.ContextPointer, widen bool) models.ContextPointer {
	account, ok := e.shop.Accounts[p.Account]
	name := p.Account
	if p.Account == "" || !ok {
		if !widen || len(e.shop.Accounts) != 1 {
			return models.ContextPointer{}
		}
		for only, acc := range e.shop.Accounts {
			name, account = only, acc
		}
	}

	_, ok = account.Clusters[p.Cluster]
	cluster := p.Cluster
	if p.Cluster == "" || !ok {
		if !widen || len(account.Clusters) != 1 {
			return models.ContextPointer{Account: name}
		}
		for only := range account.Clusters {
			cluster = only
		}
	}

	return models.ContextPointer{Account: name, Cluster: cluster, Namespace: p.Namespace}
}

// Resolve joins shop and user facts for each level of p. Resolution stops at
// the first level that does not exist. An account that exists but is not
// configured is ErrAccountNotConfigured; a cluster in that state is left
// unset.
func (e *Env) Resolve(p models.ContextPointer) (models.EnvContext, error) {
	var ctx models.EnvContext
	if p.Account == "" {
		return ctx, nil
	}
	acc, found, err := e.LookupAccount(p.Account)
	if err != nil || !found {
		return ctx, err
	}
	ctx.Account = &models.NamedAccount{Name: p.Account, AccountCfg: acc}

	if p.Cluster == "" {
		return ctx, nil
	}
	cl, found, err := e.lookupCluster(p.Account, acc, p.Cluster, false)
	if err != nil || !found {
		return ctx, err
	}
	ctx.Cluster = &models.NamedCluster{Name: p.Cluster, ClusterCfg: cl}
	ctx.Namespace = p.Namespace
	return ctx, nil
}

// ---------------------------------------------------------------------------
// Switch
// ---------------------------------------------------------------------------

// SwitchAccount selects account name. An empty name is ErrEmptyName and
// leaves the context untouched.
func (e *Env) SwitchAccount(name string) (models.EnvContext, error) {
	if err := models.RequireName("account", name); err != nil {
		return models.EnvContext{}, err
	}
	return e.switchWith("account", name, func(p *models.ContextPointer) { p.Account = name })
}

// SwitchCluster selects cluster name under the current account.
func (e *Env) SwitchCluster(name string) (models.EnvContext, error) {
	if err := models.RequireName("cluster", name); err != nil {
		return models.EnvContext{}, err
	}
	return e.switchWith("cluster", name, func(p *models.ContextPointer) { p.Cluster = name })
}

// SwitchNamespace selects namespace name.
func (e *Env) SwitchNamespace(name string) (models.EnvContext, error) {
	return e.switchWith("namespace", name, func(p *models.ContextPointer) { p.Namespace = name })
}

// SwitchTo replaces the whole pointer with p.
func (e *Env) SwitchTo(p models.ContextPointer) (models.EnvContext, error) {
	slog.Debug("switch context", "to", p.String())
	return e.persistAndResolve(p)
}

// switchWith normalizes the current pointer with widening, overwrites one
// field, persists the result and resolves it. The pointer is persisted even
// when it does not resolve.
func (e *Env) switchWith(field, name string, set func(*models.ContextPointer)) (models.EnvContext, error) {
	p := e.Normalize(e.context, true)
	set(&p)
	slog.Debug("switch "+field, "name", name, "to", p.String())

	ctx, err := e.persistAndResolve(p)
	if err == nil && ctx.Pointer() != p {
		slog.Debug("switched context does not fully resolve", "requested", p.String(), "resolved", ctx.Pointer().String())
	}
	return ctx, err
}

func (e *Env) persistAndResolve(p models.ContextPointer) (models.EnvContext, error) {
	e.context = p
	e.contextDirty = true
	if err := e.Flush(); err != nil {
		return models.EnvContext{}, err
	}
	return e.Resolve(p)
}

// ---------------------------------------------------------------------------
// Query
// ---------------------------------------------------------------------------

// Context returns the current context, normalized with widening and resolved.
func (e *Env) Context() (models.EnvContext, error) {
	return e.Resolve(e.Normalize(e.context, true))
}

// ContextRequiringAccount is Context, failing with ErrAccountNotSet when no
// account resolves.
func (e *Env) ContextRequiringAccount() (models.EnvContext, error) {
	ctx, err := e.Context()
	if err != nil {
		return ctx, err
	}
	if ctx.Account == nil {
		return ctx, (&models.Error{Kind: models.ErrAccountNotSet}).WithHint("Use `shop switch account <name>`")
	}
	return ctx, nil
}

// ContextRequiringCluster is Context, failing with ErrClusterNotSet when no
// cluster resolves.
func (e *Env) ContextRequiringCluster() (models.EnvContext, error) {
	ctx, err := e.Context()
	if err != nil {
		return ctx, err
	}
	if ctx.Cluster == nil {
		return ctx, (&models.Error{Kind: models.ErrClusterNotSet}).WithHint("Use `shop switch cluster <name>`")
	}
	return ctx, nil
}
