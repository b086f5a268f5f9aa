package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vesselworks/helm-search/pkg/models"
)

// definitionsFile is the on-disk shape of a capability override file.
type definitionsFile struct {
	Capabilities []models.Capability `yaml:"capabilities"`
}

// Load builds a registry from a YAML definitions file, or from the
// compiled-in defaults when path is empty. The file replaces the
// default set entirely and goes through the same validation.
func Load(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(DefaultCapabilities())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capability definitions: %w", err)
	}

	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse capability definitions: %w", err)
	}
	if len(file.Capabilities) == 0 {
		return nil, fmt.Errorf("capability definitions file %q declares no capabilities", path)
	}

	// Fill the conventional tenant column so override files only state
	// it when it differs.
	for i := range file.Capabilities {
		if file.Capabilities[i].Table.TenantIDColumn == "" {
			file.Capabilities[i].Table.TenantIDColumn = defaultTenantColumn
		}
	}

	return NewRegistry(file.Capabilities)
}
