// Package store holds the three persisted documents behind a shop root: the
// shop config (organization facts), the user config (operator facts), and the
// current context pointer.
package store

import (
	"fmt"
	"sort"

	"github.com/go-ports/shopctl/internal/atomicfile"
	"github.com/go-ports/shopctl/internal/models"
)

// ShopDoc is the content of shop.yaml.
type ShopDoc struct {
	models.ShopIdentity `yaml:",inline"`
	Accounts            map[models.AccountName]models.ShopAccount `yaml:"accounts"`
}

// NewShopDoc returns a shop with no accounts.
func NewShopDoc(name, domain string) *ShopDoc {
	return &ShopDoc{
		ShopIdentity: models.ShopIdentity{Name: name, Domain: domain},
		Accounts:     make(map[models.AccountName]models.ShopAccount),
	}
}

// CreateShop writes a new shop file at path. An existing file is never
// overwritten.
func CreateShop(path, name, domain string) (*ShopDoc, error) {
	if err := models.RequireName("shop", name); err != nil {
		return nil, err
	}
	exists, err := atomicfile.Exists(path)
	if err != nil {
		return nil, &models.Error{Kind: models.ErrFileLoad, Path: path, Err: err}
	}
	if exists {
		return nil, &models.Error{Kind: models.ErrFileExists, Path: path}
	}
	doc := NewShopDoc(name, domain)
	if err := SaveShop(path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadShop reads shop.yaml. It reports false when the file does not exist.
func LoadShop(path string) (*ShopDoc, bool, error) {
	var doc ShopDoc
	found, err := atomicfile.LoadYAML(path, &doc)
	if err != nil {
		return nil, false, &models.Error{Kind: models.ErrFileLoad, Path: path, Err: err}
	}
	if !found {
		return nil, false, nil
	}
	doc.normalize()
	return &doc, true, nil
}

// SaveShop atomically writes doc to path.
func SaveShop(path string, doc *ShopDoc) error {
	if err := atomicfile.SaveYAML(path, doc); err != nil {
		return &models.Error{Kind: models.ErrFileUpdate, Path: path, Err: err}
	}
	return nil
}

// normalize replaces nil maps left by sparse files.
func (d *ShopDoc) normalize() {
	if d.Accounts == nil {
		d.Accounts = make(map[models.AccountName]models.ShopAccount)
	}
	for name, acc := range d.Accounts {
		if acc.Clusters == nil {
			acc.Clusters = make(map[models.ClusterName]models.ShopCluster)
			d.Accounts[name] = acc
		}
	}
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// AddAccount records a new account bootstrapped in region.
func (d *ShopDoc) AddAccount(name, region string) (models.ShopAccount, error) {
	if err := models.RequireName("account", name); err != nil {
		return models.ShopAccount{}, err
	}
	if _, ok := d.Accounts[name]; ok {
		return models.ShopAccount{}, models.NewError(models.ErrAccountExists, name)
	}
	acc := models.ShopAccount{
		BootstrapName:   models.BootstrapName(d.Name, name),
		BootstrapRegion: region,
		Clusters:        make(map[models.ClusterName]models.ShopCluster),
	}
	d.Accounts[name] = acc
	return acc, nil
}

// AddCluster records a new cluster under account. The cluster domain is
// derived from the shop domain now and never recomputed.
func (d *ShopDoc) AddCluster(account, cluster string) (models.ShopCluster, error) {
	if err := models.RequireName("cluster", cluster); err != nil {
		return models.ShopCluster{}, err
	}
	acc, ok := d.Accounts[account]
	if !ok {
		return models.ShopCluster{}, models.NewError(models.ErrAccountDoesNotExist, account).
			WithHint(fmt.Sprintf("Use `shop add account %s`", account))
	}
	if _, ok := acc.Clusters[cluster]; ok {
		return models.ShopCluster{}, models.NewError(models.ErrClusterExists, cluster)
	}
	cl := models.ShopCluster{Domain: models.ClusterDomain(cluster, d.Domain)}
	acc.Clusters[cluster] = cl
	return cl, nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// Account returns the facts for account name.
func (d *ShopDoc) Account(name string) (models.ShopAccount, error) {
	acc, ok := d.Accounts[name]
	if !ok {
		return models.ShopAccount{}, models.NewError(models.ErrAccountDoesNotExist, name)
	}
	return acc, nil
}

// Cluster returns the facts for cluster under account. A missing account is
// reported as such rather than as a missing cluster.
func (d *ShopDoc) Cluster(account, cluster string) (models.ShopCluster, error) {
	acc, err := d.Account(account)
	if err != nil {
		return models.ShopCluster{}, err
	}
	cl, ok := acc.Clusters[cluster]
	if !ok {
		return models.ShopCluster{}, models.NewError(models.ErrClusterDoesNotExist, cluster)
	}
	return cl, nil
}

// AccountNames returns all account names in order.
func (d *ShopDoc) AccountNames() []string {
	return sortedKeys(d.Accounts)
}

// ClusterNames returns the cluster names of account in order; nil when the
// account does not exist.
func (d *ShopDoc) ClusterNames(account string) []string {
	acc, ok := d.Accounts[account]
	if !ok {
		return nil
	}
	return sortedKeys(acc.Clusters)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
