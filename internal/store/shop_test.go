package store_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/shopctl/internal/models"
	"github.com/go-ports/shopctl/internal/store"
)

// newShop returns an in-memory acme shop.
func newShop() *store.ShopDoc {
	return store.NewShopDoc("acme", "acme.io")
}

// ---------------------------------------------------------------------------
// CreateShop / LoadShop / SaveShop
// ---------------------------------------------------------------------------

func TestCreateShop_HappyPath(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), ".config", "shop.yaml")
	doc, err := store.CreateShop(path, "acme", "acme.io")
	c.Assert(err, qt.IsNil)
	c.Assert(doc.ShopIdentity, qt.Equals, models.ShopIdentity{Name: "acme", Domain: "acme.io"})

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "name: acme\ndomain: acme.io\naccounts: {}\n")
}

func TestCreateShop_FailurePath(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "shop.yaml")
	_, err := store.CreateShop(path, "acme", "acme.io")
	c.Assert(err, qt.IsNil)

	_, err = store.CreateShop(path, "other", "other.io")
	c.Assert(err, qt.ErrorIs, models.ErrFileExists)

	doc, found, err := store.LoadShop(path)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(doc.Name, qt.Equals, "acme", qt.Commentf("existing shop must not be overwritten"))

	c.Run("empty name", func(c *qt.C) {
		empty := filepath.Join(t.TempDir(), "shop.yaml")
		_, err := store.CreateShop(empty, "", "acme.io")
		c.Assert(err, qt.ErrorIs, models.ErrEmptyName)
		_, err = os.Stat(empty)
		c.Assert(os.IsNotExist(err), qt.IsTrue)
	})
}

func TestLoadShop_RoundTrip(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "shop.yaml")
	doc := newShop()
	_, err := doc.AddAccount("prod", "us-east-1")
	c.Assert(err, qt.IsNil)
	_, err = doc.AddCluster("prod", "prod")
	c.Assert(err, qt.IsNil)
	_, err = doc.AddAccount("dev", "eu-west-1")
	c.Assert(err, qt.IsNil)
	c.Assert(store.SaveShop(path, doc), qt.IsNil)

	got, found, err := store.LoadShop(path)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(got, qt.DeepEquals, doc)
}

func TestLoadShop_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("absent file is not an error", func(c *qt.C) {
		doc, found, err := store.LoadShop(filepath.Join(t.TempDir(), "shop.yaml"))
		c.Assert(err, qt.IsNil)
		c.Assert(found, qt.IsFalse)
		c.Assert(doc, qt.IsNil)
	})

	c.Run("malformed file is a load error", func(c *qt.C) {
		path := filepath.Join(t.TempDir(), "shop.yaml")
		c.Assert(os.WriteFile(path, []byte("accounts: [\n"), 0o600), qt.IsNil)
		_, _, err := store.LoadShop(path)
		c.Assert(err, qt.ErrorIs, models.ErrFileLoad)
	})
}

func TestLoadShop_SparseFileGetsEmptyMaps(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "shop.yaml")
	c.Assert(os.WriteFile(path, []byte("name: acme\ndomain: acme.io\naccounts:\n  prod:\n    bootstrapName: acme-prod\n"), 0o600), qt.IsNil)

	doc, _, err := store.LoadShop(path)
	c.Assert(err, qt.IsNil)
	c.Assert(doc.Accounts["prod"].Clusters, qt.IsNotNil)

	_, err = doc.AddCluster("prod", "eu")
	c.Assert(err, qt.IsNil)
}

// ---------------------------------------------------------------------------
// AddAccount / AddCluster
// ---------------------------------------------------------------------------

func TestAddAccount_HappyPath(t *testing.T) {
	c := qt.New(t)

	doc := newShop()
	acc, err := doc.AddAccount("prod", "us-east-1")
	c.Assert(err, qt.IsNil)
	c.Assert(acc.BootstrapName, qt.Equals, "acme-prod")
	c.Assert(acc.BootstrapRegion, qt.Equals, "us-east-1")
	c.Assert(acc.Clusters, qt.HasLen, 0)
	c.Assert(doc.AccountNames(), qt.DeepEquals, []string{"prod"})
}

func TestAddAccount_FailurePath(t *testing.T) {
	c := qt.New(t)

	doc := newShop()
	_, err := doc.AddAccount("prod", "us-east-1")
	c.Assert(err, qt.IsNil)

	_, err = doc.AddAccount("prod", "eu-west-1")
	c.Assert(err, qt.ErrorIs, models.ErrAccountExists)
	c.Assert(doc.Accounts["prod"].BootstrapRegion, qt.Equals, "us-east-1")

	_, err = doc.AddAccount("", "us-east-1")
	c.Assert(err, qt.ErrorIs, models.ErrEmptyName)
	c.Assert(err, qt.ErrorMatches, "name must not be empty: account")
	c.Assert(doc.AccountNames(), qt.DeepEquals, []string{"prod"})
}

func TestAddCluster_HappyPath(t *testing.T) {
	c := qt.New(t)

	doc := newShop()
	_, err := doc.AddAccount("prod", "us-east-1")
	c.Assert(err, qt.IsNil)

	cl, err := doc.AddCluster("prod", "prod")
	c.Assert(err, qt.IsNil)
	c.Assert(cl.Domain, qt.Equals, "prod.k8s.acme.io")

	_, err = doc.AddCluster("prod", "eu")
	c.Assert(err, qt.IsNil)
	c.Assert(doc.ClusterNames("prod"), qt.DeepEquals, []string{"eu", "prod"})
}

func TestAddCluster_DomainIsNotRecomputed(t *testing.T) {
	c := qt.New(t)

	doc := newShop()
	_, err := doc.AddAccount("prod", "us-east-1")
	c.Assert(err, qt.IsNil)
	_, err = doc.AddCluster("prod", "prod")
	c.Assert(err, qt.IsNil)

	doc.Domain = "changed.io"
	cl, err := doc.Cluster("prod", "prod")
	c.Assert(err, qt.IsNil)
	c.Assert(cl.Domain, qt.Equals, "prod.k8s.acme.io")
}

func TestAddCluster_FailurePath(t *testing.T) {
	c := qt.New(t)

	doc := newShop()
	_, err := doc.AddAccount("prod", "us-east-1")
	c.Assert(err, qt.IsNil)
	_, err = doc.AddCluster("prod", "prod")
	c.Assert(err, qt.IsNil)

	c.Run("unknown account", func(c *qt.C) {
		_, err := doc.AddCluster("ghost", "x")
		c.Assert(err, qt.ErrorIs, models.ErrAccountDoesNotExist)
		c.Assert(models.Hint(err), qt.Contains, "shop add account ghost")
	})

	c.Run("duplicate cluster", func(c *qt.C) {
		_, err := doc.AddCluster("prod", "prod")
		c.Assert(err, qt.ErrorIs, models.ErrClusterExists)
	})

	c.Run("empty cluster name", func(c *qt.C) {
		_, err := doc.AddCluster("prod", "")
		c.Assert(err, qt.ErrorIs, models.ErrEmptyName)
		c.Assert(doc.ClusterNames("prod"), qt.DeepEquals, []string{"prod"})
	})
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestShopReads_FailurePath(t *testing.T) {
	c := qt.New(t)

	doc := newShop()
	_, err := doc.AddAccount("prod", "us-east-1")
	c.Assert(err, qt.IsNil)

	_, err = doc.Account("ghost")
	c.Assert(err, qt.ErrorIs, models.ErrAccountDoesNotExist)

	_, err = doc.Cluster("ghost", "prod")
	c.Assert(err, qt.ErrorIs, models.ErrAccountDoesNotExist)

	_, err = doc.Cluster("prod", "ghost")
	c.Assert(err, qt.ErrorIs, models.ErrClusterDoesNotExist)

	c.Assert(doc.ClusterNames("ghost"), qt.IsNil)
}
