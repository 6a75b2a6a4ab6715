package store

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/go-ports/shopctl/internal/atomicfile"
	"github.com/go-ports/shopctl/internal/models"
)

// UserDoc is the content of user.yaml.
type UserDoc struct {
	Accounts map[models.AccountName]UserAccount `yaml:"accounts"`
}

// UserAccount is the on-disk form of models.UserAccount. It also accepts the
// older `profile` key.
// Its clusters accept the older `ctx` key in place of `kubeContext`.
type UserAccount models.UserAccount

// NewUserDoc returns an empty user config.
func NewUserDoc() *UserDoc {
	return &UserDoc{Accounts: make(map[models.AccountName]UserAccount)}
}

// LoadUser reads user.yaml. It reports false when the file does not exist.
func LoadUser(path string) (*UserDoc, bool, error) {
	var doc UserDoc
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

// SaveUser atomically writes doc to path.
func SaveUser(path string, doc *UserDoc) error {
	if err := atomicfile.SaveYAML(path, doc); err != nil {
		return &models.Error{Kind: models.ErrFileUpdate, Path: path, Err: err}
	}
	return nil
}

func (d *UserDoc) normalize() {
	if d.Accounts == nil {
		d.Accounts = make(map[models.AccountName]UserAccount)
	}
	for name, acc := range d.Accounts {
		if acc.Clusters == nil {
			acc.Clusters = make(map[models.ClusterName]models.UserCluster)
			d.Accounts[name] = acc
		}
	}
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// ConfigureAccount sets the AWS profile of account name. The account must be
// known to shop. Existing cluster settings are kept.
func (d *UserDoc) ConfigureAccount(shop *ShopDoc, name, profile string) (models.UserAccount, error) {
	if err := models.RequireName("account", name); err != nil {
		return models.UserAccount{}, err
	}
	if _, ok := shop.Accounts[name]; !ok {
		return models.UserAccount{}, models.NewError(models.ErrAccountDoesNotExist, name).
			WithHint(fmt.Sprintf("Use `shop add account %s`", name))
	}
	acc, ok := d.Accounts[name]
	if !ok {
		acc.Clusters = make(map[models.ClusterName]models.UserCluster)
	}
	acc.AWSProfile = profile
	d.Accounts[name] = acc
	return models.UserAccount(acc), nil
}

// ConfigureCluster sets the kube context of cluster under account. The
// account must already be configured and the cluster known to shop.
func (d *UserDoc) ConfigureCluster(shop *ShopDoc, account, cluster, kubeContext string) (models.UserCluster, error) {
	if err := models.RequireName("cluster", cluster); err != nil {
		return models.UserCluster{}, err
	}
	if _, ok := shop.Accounts[account]; !ok {
		return models.UserCluster{}, models.NewError(models.ErrAccountDoesNotExist, account)
	}
	acc, ok := d.Accounts[account]
	if !ok {
		return models.UserCluster{}, models.NewError(models.ErrAccountNotConfigured, account).
			WithHint(fmt.Sprintf("Use `shop configure account %s --profile <aws-profile>`", account))
	}
	if _, err := shop.Cluster(account, cluster); err != nil {
		return models.UserCluster{}, err
	}
	cl := models.UserCluster{KubeContext: kubeContext}
	acc.Clusters[cluster] = cl
	return cl, nil
}

// Account returns the user facts for account name, if configured.
func (d *UserDoc) Account(name string) (models.UserAccount, bool) {
	acc, ok := d.Accounts[name]
	return models.UserAccount(acc), ok
}

// ---------------------------------------------------------------------------
// YAML
// ---------------------------------------------------------------------------

type userAccountYAML struct {
	AWSProfile string                             `yaml:"awsProfile"`
	Profile    string                             `yaml:"profile,omitempty"`
	Clusters   map[models.ClusterName]clusterYAML `yaml:"clusters"`
}

type clusterYAML struct {
	KubeContext string `yaml:"kubeContext"`
	Ctx         string `yaml:"ctx,omitempty"`
}

// UnmarshalYAML accepts both the current and the legacy key names.
func (a *UserAccount) UnmarshalYAML(node *yaml.Node) error {
	var raw userAccountYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	a.AWSProfile = raw.AWSProfile
	if a.AWSProfile == "" {
		a.AWSProfile = raw.Profile
	}
	a.Clusters = make(map[models.ClusterName]models.UserCluster, len(raw.Clusters))
	for name, cl := range raw.Clusters {
		kc := cl.KubeContext
		if kc == "" {
			kc = cl.Ctx
		}
		a.Clusters[name] = models.UserCluster{KubeContext: kc}
	}
	return nil
}

// MarshalYAML always writes the current key names.
func (a UserAccount) MarshalYAML() (any, error) {
	out := userAccountYAML{
		AWSProfile: a.AWSProfile,
		Clusters:   make(map[models.ClusterName]clusterYAML, len(a.Clusters)),
	}
	for name, cl := range a.Clusters {
		out.Clusters[name] = clusterYAML{KubeContext: cl.KubeContext}
	}
	return out, nil
}
