package models_test

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/shopctl/internal/models"
)

func TestDerivedNames_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Assert(models.BootstrapName("acme", "prod"), qt.Equals, "acme-prod")
	c.Assert(models.ClusterDomain("prod", "acme.io"), qt.Equals, "prod.k8s.acme.io")
}

func TestContextPointer_HappyPath(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name     string
		p        models.ContextPointer
		wantZero bool
		wantStr  string
	}{
		{"empty", models.ContextPointer{}, true, "-/-/-"},
		{"account only", models.ContextPointer{Account: "prod"}, false, "prod/-/-"},
		{"full", models.ContextPointer{Account: "prod", Cluster: "eu", Namespace: "web"}, false, "prod/eu/web"},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(tc.p.IsZero(), qt.Equals, tc.wantZero)
			c.Assert(tc.p.String(), qt.Equals, tc.wantStr)
		})
	}
}

func TestEnvContextPointer_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Assert(models.EnvContext{}.Pointer(), qt.Equals, models.ContextPointer{})

	ctx := models.EnvContext{
		Account:   &models.NamedAccount{Name: "prod"},
		Cluster:   &models.NamedCluster{Name: "prod"},
		Namespace: "web",
	}
	c.Assert(ctx.Pointer(), qt.Equals, models.ContextPointer{Account: "prod", Cluster: "prod", Namespace: "web"})
}

func TestError_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Run("name is appended to the kind", func(c *qt.C) {
		err := models.NewError(models.ErrAccountExists, "prod")
		c.Assert(err, qt.ErrorMatches, "account exists: prod")
		c.Assert(errors.Is(err, models.ErrAccountExists), qt.IsTrue)
		c.Assert(errors.Is(err, models.ErrClusterExists), qt.IsFalse)
	})

	c.Run("path and cause are reported", func(c *qt.C) {
		cause := errors.New("disk full")
		err := &models.Error{Kind: models.ErrFileUpdate, Path: "/r/.config/shop.yaml", Err: cause}
		c.Assert(err, qt.ErrorMatches, "update failed: /r/.config/shop.yaml: disk full")
		c.Assert(errors.Is(err, cause), qt.IsTrue)
		c.Assert(errors.Is(err, models.ErrFileUpdate), qt.IsTrue)
	})

	c.Run("hint survives wrapping", func(c *qt.C) {
		err := models.NewError(models.ErrAccountNotConfigured, "prod").WithHint("run configure")
		wrapped := fmt.Errorf("switch: %w", err)
		c.Assert(models.Hint(wrapped), qt.Equals, "run configure")
		c.Assert(errors.Is(wrapped, models.ErrAccountNotConfigured), qt.IsTrue)
	})

	c.Run("no hint on plain errors", func(c *qt.C) {
		c.Assert(models.Hint(errors.New("x")), qt.Equals, "")
	})
}
