package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/komsit37/peerval/pkg/peerval/config"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

// YAMLSource loads peer sets from a YAML file or a directory of them.
//
// A file holds an optional name and sector, a tickers list, and nested groups
// under "peers". Each group becomes its own set named by its path:
//
//	name: Software
//	sector: Software & Cloud
//	peers:
//	  - name: Platforms
//	    tickers: [MSFT, ORCL, SAP]
//	  - name: Security
//	    tickers: [PANW, CRWD]
type YAMLSource struct{}

// Load expects spec to be a string filepath.
func (YAMLSource) Load(ctx context.Context, spec any) ([]types.PeerSet, error) { //nolint:revive // ctx reserved for future use
	path, ok := spec.(string)
	if !ok {
		return nil, fmt.Errorf("yaml source expects filepath string spec")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		sets, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return prefixNames(sets, base, false), nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []types.PeerSet
	for _, full := range files {
		sets, err := loadFile(full)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(path, full)
		if err != nil {
			rel = filepath.Base(full)
		}
		prefix := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		all = append(all, prefixNames(sets, prefix, true)...)
	}
	return all, nil
}

func loadFile(path string) ([]types.PeerSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sets, err := parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sets, nil
}

// prefixNames names unnamed sets after prefix; with always set, named sets are
// also nested under it.
func prefixNames(sets []types.PeerSet, prefix string, always bool) []types.PeerSet {
	for i := range sets {
		switch {
		case strings.TrimSpace(sets[i].Name) == "":
			sets[i].Name = prefix
		case always && prefix != "":
			sets[i].Name = prefix + "/" + sets[i].Name
		}
	}
	return sets
}

// group mirrors one node of the peer file.
type group struct {
	Name    string   `yaml:"name"`
	Sector  string   `yaml:"sector"`
	Tickers []ticker `yaml:"tickers"`
	Peers   []group  `yaml:"peers"`
}

// ticker accepts either a bare symbol or a mapping with a ticker/sym key.
type ticker string

func (t *ticker) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*t = ticker(n.Value)
		return nil
	case yaml.MappingNode:
		var m map[string]any
		if err := n.Decode(&m); err != nil {
			return err
		}
		for _, k := range []string{"ticker", "sym", "symbol"} {
			if v, ok := m[k]; ok && v != nil {
				*t = ticker(fmt.Sprint(v))
				return nil
			}
		}
		return fmt.Errorf("line %d: ticker entry needs a ticker key", n.Line)
	}
	return fmt.Errorf("line %d: unexpected ticker entry", n.Line)
}

// parseYAML flattens the group tree into peer sets. Groups without tickers
// only contribute their name and sector to their children.
func parseYAML(data []byte) ([]types.PeerSet, error) {
	var root group
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Tickers) == 0 && len(root.Peers) == 0 {
		return nil, fmt.Errorf("invalid yaml: expected 'tickers' or 'peers'")
	}

	var sets []types.PeerSet
	var walk func(g group, path []string, sector string)
	walk = func(g group, path []string, sector string) {
		if g.Sector != "" {
			sector = g.Sector
		}
		if len(g.Tickers) > 0 {
			raw := make([]string, len(g.Tickers))
			for i, t := range g.Tickers {
				raw[i] = string(t)
			}
			sets = append(sets, types.PeerSet{
				Name:    strings.Join(path, "/"),
				Sector:  sector,
				Tickers: config.SplitList(raw),
			})
		}
		for _, child := range g.Peers {
			next := path
			if child.Name != "" {
				next = append(append([]string(nil), path...), child.Name)
			}
			walk(child, next, sector)
		}
	}

	var path []string
	if root.Name != "" {
		path = []string{root.Name}
	}
	walk(root, path, "")
	return sets, nil
}
