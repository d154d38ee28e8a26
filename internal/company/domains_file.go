package company

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DomainsFile is the on-disk format for extra known-domain mappings:
//
//	domains:
//	  acme-pr.com: Acme PR
//	  mena.acme-pr.com: Acme PR MENA
type DomainsFile struct {
	Domains map[string]string `yaml:"domains"`
}

// LoadDomainsFile reads known-domain mappings from a YAML file
func LoadDomainsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domains file: %w", err)
	}

	var f DomainsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse domains file %s: %w", path, err)
	}
	return f.Domains, nil
}
