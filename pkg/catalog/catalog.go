// Package catalog holds the static reference datasets for data center
// deployments: design patterns, routing strategies, providers, address pools,
// ASN ranges, and the bundled demo seeds. Agents must cite these values
// verbatim; the deployment tools validate against them.
package catalog

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data
var dataFS embed.FS

// AddressPool is a named address pool agents may reference when planning a
// deployment
type AddressPool struct {
	Name   string `yaml:"name" json:"name"`
	Prefix string `yaml:"prefix" json:"prefix"`
	Role   string `yaml:"role" json:"role"`
}

// ASNRange is a named range of autonomous system numbers
type ASNRange struct {
	Name  string `yaml:"name" json:"name"`
	Start int    `yaml:"start" json:"start"`
	End   int    `yaml:"end" json:"end"`
}

// SeedFile is one file of a demo seed dataset
type SeedFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type catalogData struct {
	DesignPatterns []string `yaml:"design_patterns"`
	Strategies     struct {
		Available []string `yaml:"available"`
		Default   string   `yaml:"default"`
	} `yaml:"strategies"`
	Providers    []string      `yaml:"providers"`
	AddressPools []AddressPool `yaml:"address_pools"`
	ASNRanges    []ASNRange    `yaml:"asn_ranges"`
	Seeds        struct {
		Demos []string `yaml:"demos"`
		Files []string `yaml:"files"`
	} `yaml:"seeds"`
}

var loaded catalogData

func init() {
	raw, err := dataFS.ReadFile("data/catalog.yml")
	if err != nil {
		panic(fmt.Sprintf("catalog dataset missing from binary: %v", err))
	}
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		panic(fmt.Sprintf("catalog dataset is not valid YAML: %v", err))
	}
}

// Designs returns the named design patterns
func Designs() []string {
	return clone(loaded.DesignPatterns)
}

// Strategies returns the available routing/fabric strategies
func Strategies() []string {
	return clone(loaded.Strategies.Available)
}

// DefaultStrategy returns the strategy agents must propose when the user
// expresses no preference
func DefaultStrategy() string {
	return loaded.Strategies.Default
}

// Providers returns the known provider names
func Providers() []string {
	return clone(loaded.Providers)
}

// Pools returns the named address pools
func Pools() []AddressPool {
	pools := make([]AddressPool, len(loaded.AddressPools))
	copy(pools, loaded.AddressPools)
	return pools
}

// ASNRanges returns the named ASN ranges
func ASNRanges() []ASNRange {
	ranges := make([]ASNRange, len(loaded.ASNRanges))
	copy(ranges, loaded.ASNRanges)
	return ranges
}

// Demos returns the names of the bundled demo seed datasets, sorted
func Demos() []string {
	demos := clone(loaded.Seeds.Demos)
	sort.Strings(demos)
	return demos
}

// SeedFileNames returns the file names of a demo seed in their fixed load
// order: topology, then suites, then racks
func SeedFileNames() []string {
	return clone(loaded.Seeds.Files)
}

// IsValidDesign reports whether name is one of the catalog design patterns
func IsValidDesign(name string) bool {
	return contains(loaded.DesignPatterns, name)
}

// IsValidStrategy reports whether name is one of the catalog strategies
func IsValidStrategy(name string) bool {
	return contains(loaded.Strategies.Available, name)
}

// IsValidDemo reports whether name is a bundled demo seed
func IsValidDemo(name string) bool {
	return contains(loaded.Seeds.Demos, name)
}

// SeedFiles returns the files of a demo seed dataset in load order
func SeedFiles(demo string) ([]SeedFile, error) {
	if !IsValidDemo(demo) {
		return nil, fmt.Errorf("unknown demo seed %q, available: %v", demo, Demos())
	}
	files := make([]SeedFile, 0, len(loaded.Seeds.Files))
	for _, name := range loaded.Seeds.Files {
		content, err := dataFS.ReadFile("data/seeds/" + demo + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("seed file %s/%s missing from binary: %w", demo, name, err)
		}
		files = append(files, SeedFile{Name: name, Content: string(content)})
	}
	return files, nil
}

// SeedDocument returns a single file of a demo seed dataset
func SeedDocument(demo, name string) (string, error) {
	files, err := SeedFiles(demo)
	if err != nil {
		return "", err
	}
	for _, file := range files {
		if file.Name == name {
			return file.Content, nil
		}
	}
	return "", fmt.Errorf("demo %q has no seed file %q, available: %v", demo, name, SeedFileNames())
}

func clone(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func contains(values []string, name string) bool {
	for _, value := range values {
		if value == name {
			return true
		}
	}
	return false
}
