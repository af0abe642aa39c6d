package graph

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/contrail/ifmapd/errors"
)

// whiteListFile is the on-disk shape of the white-list table: a flat list
// of allowed (left, via, right) triples.
type whiteListFile struct {
	Rules []whiteListRule `toml:"rules"`
}

type whiteListRule struct {
	Left  string `toml:"left"`
	Via   string `toml:"via"`
	Right string `toml:"right"`
}

// LoadWhiteList reads a TOML rule table from path and builds a WhiteList
// from its (left, via, right) triples.
func LoadWhiteList(path string) (*WhiteList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read whitelist file %s", path)
	}

	var file whiteListFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse whitelist file %s", path)
	}

	wl := NewWhiteList()
	for _, rule := range file.Rules {
		wl.Allow(NodeType(rule.Left), LinkType(rule.Via), NodeType(rule.Right))
	}
	return wl, nil
}
