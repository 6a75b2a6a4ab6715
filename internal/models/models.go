// Package models defines the core data types for the shop configuration system.
package models

import "strings"

// AccountName keys accounts in both the shop and the user store.
type AccountName = string

// ClusterName keys clusters within an account.
type ClusterName = string

// ---------------------------------------------------------------------------
// Shop facts (organization-owned)
// ---------------------------------------------------------------------------

// ShopIdentity names the shop. It is written once by "add shop".
type ShopIdentity struct {
	Name   string `yaml:"name" json:"name"`
	Domain string `yaml:"domain" json:"domain"`
}

// ShopAccount holds infrastructure facts about one account.
type ShopAccount struct {
	// BootstrapName is the full account name used during bootstrap (e.g. `acme-prod`).
	BootstrapName string `yaml:"bootstrapName" json:"bootstrapName"`
	// BootstrapRegion is the region the account was bootstrapped in.
	BootstrapRegion string                      `yaml:"bootstrapRegion" json:"bootstrapRegion"`
	Clusters        map[ClusterName]ShopCluster `yaml:"clusters" json:"-"`
}

// ShopCluster holds infrastructure facts about one cluster.
type ShopCluster struct {
	Domain string `yaml:"domain" json:"domain"`
}

// BootstrapName returns the full account name for account under shop.
func BootstrapName(shop, account string) string {
	return shop + "-" + account
}

// ClusterDomain returns the DNS domain for a new cluster of a shop.
func ClusterDomain(cluster, shopDomain string) string {
	return cluster + ".k8s." + shopDomain
}

// ---------------------------------------------------------------------------
// User facts (operator-owned)
// ---------------------------------------------------------------------------

// UserAccount maps an account to local credentials.
type UserAccount struct {
	AWSProfile string                      `yaml:"awsProfile" json:"awsProfile"`
	Clusters   map[ClusterName]UserCluster `yaml:"clusters" json:"-"`
}

// UserCluster maps a cluster to a local kube context.
type UserCluster struct {
	KubeContext string `yaml:"kubeContext" json:"kubeContext"`
}

// ---------------------------------------------------------------------------
// Joined views
// ---------------------------------------------------------------------------

// AccountCfg is an account known to the shop and configured by the user.
type AccountCfg struct {
	Shop ShopAccount `json:"shop"`
	User UserAccount `json:"user"`
}

// ClusterCfg is a cluster known to the shop and configured by the user.
type ClusterCfg struct {
	Shop ShopCluster `json:"shop"`
	User UserCluster `json:"user"`
}

// ---------------------------------------------------------------------------
// Context
// ---------------------------------------------------------------------------

// ContextPointer is the persisted current selection. An empty field is unset.
// It may reference entities that no longer exist.
type ContextPointer struct {
	Account   string `json:"account"`
	Cluster   string `json:"cluster"`
	Namespace string `json:"namespace"`
}

// IsZero reports whether no field is set.
func (p ContextPointer) IsZero() bool {
	return p == ContextPointer{}
}

// String renders the pointer as account/cluster/namespace, using "-" for unset fields.
func (p ContextPointer) String() string {
	parts := []string{p.Account, p.Cluster, p.Namespace}
	for i, s := range parts {
		if s == "" {
			parts[i] = "-"
		}
	}
	return strings.Join(parts, "/")
}

// NamedAccount pairs a resolved account with its name.
type NamedAccount struct {
	Name string
	AccountCfg
}

// NamedCluster pairs a resolved cluster with its name.
type NamedCluster struct {
	Name string
	ClusterCfg
}

// EnvContext is a fully resolved context. A nil level is unset; a lower level
// is never set when a higher one is nil.
type EnvContext struct {
	Account   *NamedAccount
	Cluster   *NamedCluster
	Namespace string
}

// Pointer converts the resolved context back to the pointer that names it.
func (c EnvContext) Pointer() ContextPointer {
	var p ContextPointer
	if c.Account != nil {
		p.Account = c.Account.Name
	}
	if c.Cluster != nil {
		p.Cluster = c.Cluster.Name
	}
	p.Namespace = c.Namespace
	return p
}
