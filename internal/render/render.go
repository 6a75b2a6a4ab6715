// Package render formats a resolved context for output.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yalp/jsonpath"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/shopctl/internal/models"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// View is the serialized shape of a resolved context.
type View struct {
	Shop      models.ShopIdentity `json:"shop" yaml:"shop"`
	Account   *AccountView        `json:"account" yaml:"account"`
	Cluster   *ClusterView        `json:"cluster" yaml:"cluster"`
	Namespace string              `json:"namespace" yaml:"namespace"`
}

// AccountView describes the current account.
type AccountView struct {
	Name            string `json:"name" yaml:"name"`
	AWSProfile      string `json:"awsProfile" yaml:"awsProfile"`
	BootstrapName   string `json:"bootstrapName" yaml:"bootstrapName"`
	BootstrapRegion string `json:"bootstrapRegion" yaml:"bootstrapRegion"`
}

// ClusterView describes the current cluster.
type ClusterView struct {
	Name        string `json:"name" yaml:"name"`
	KubeContext string `json:"kubeContext" yaml:"kubeContext"`
	Domain      string `json:"domain" yaml:"domain"`
}

// NewView flattens ctx for serialization.
func NewView(shop models.ShopIdentity, ctx models.EnvContext) View {
	v := View{Shop: shop, Namespace: ctx.Namespace}
	if a := ctx.Account; a != nil {
		v.Account = &AccountView{
			Name:            a.Name,
			AWSProfile:      a.User.AWSProfile,
			BootstrapName:   a.Shop.BootstrapName,
			BootstrapRegion: a.Shop.BootstrapRegion,
		}
	}
	if cl := ctx.Cluster; cl != nil {
		v.Cluster = &ClusterView{
			Name:        cl.Name,
			KubeContext: cl.User.KubeContext,
			Domain:      cl.Shop.Domain,
		}
	}
	return v
}

// Write renders v to w in format. A non-empty query selects a value with a
// JSONPath expression first; the result is printed raw when it is a string
// and as JSON otherwise, regardless of format.
func Write(w io.Writer, v View, format, query string) error {
	if query != "" {
		return writeQuery(w, v, query)
	}
	switch strings.ToLower(format) {
	case "", FormatText:
		return writeText(w, v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(4)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("render.Write: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("%w: %q (want text, yaml or json)", ErrUnknownFormat, format)
	}
}

func writeText(w io.Writer, v View) error {
	line := fmt.Sprintf("shop: %s (%s)", v.Shop.Name, v.Shop.Domain)
	if v.Account != nil {
		line += fmt.Sprintf("\naccount: %s (%s)", v.Account.Name, v.Account.AWSProfile)
	}
	if v.Cluster != nil {
		line += fmt.Sprintf("\ncluster: %s (%s)", v.Cluster.Name, v.Cluster.KubeContext)
		if v.Namespace != "" {
			line += "\nnamespace: " + v.Namespace
		}
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// Query evaluates a JSONPath expression against the JSON form of v.
func Query(v View, query string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out, err := jsonpath.Read(doc, query)
	if err != nil {
		return nil, fmt.Errorf("render.Query %s: %w", query, err)
	}
	return out, nil
}

func writeQuery(w io.Writer, v View, query string) error {
	out, err := Query(v, query)
	if err != nil {
		return err
	}
	switch val := out.(type) {
	case string:
		_, err = fmt.Fprintln(w, val)
		return err
	case nil:
		_, err = fmt.Fprintln(w)
		return err
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}
