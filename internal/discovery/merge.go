package discovery

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/vaultreg/internal/registry"
	"github.com/aidanlsb/vaultreg/internal/slugs"
)

// fallbackName is used when a candidate's name slugs to nothing.
const fallbackName = "vault"

// MergeReport describes what a merge did.
type MergeReport struct {
	Added []registry.VaultEntry `json:"added"`
	// Kept lists entries that already covered a discovered path.
	Kept []registry.VaultEntry `json:"kept"`
}

// Merge adds every candidate whose path is not registered yet. Existing
// entries are never modified or removed, and the active vault is untouched,
// so running Merge twice with the same candidates is a no-op the second time.
func Merge(reg *registry.Registry, candidates []Candidate) (MergeReport, error) {
	var report MergeReport
	for _, c := range candidates {
		if existing, ok := reg.FindByPath(c.Path); ok {
			report.Kept = append(report.Kept, existing)
			continue
		}

		entry, err := reg.Insert(registry.VaultEntry{
			Name:    SynthesizeName(reg, c),
			Path:    c.Path,
			Workdir: registry.RootWorkdir,
			Source:  c.Source,
		})
		if err != nil {
			return report, fmt.Errorf("merge %s: %w", c.Path, err)
		}
		report.Added = append(report.Added, entry)
	}
	return report, nil
}

// SynthesizeName picks a registry name for a candidate: the slug of its name
// (or of the path's last segment), suffixed "-2", "-3", ... until free.
func SynthesizeName(reg *registry.Registry, c Candidate) string {
	base := slugs.Name(c.Name)
	if strings.TrimSpace(c.Name) == "" {
		base = slugs.NameFromPath(c.Path)
	}
	if base == "" {
		base = fallbackName
	}

	name := base
	for n := 2; ; n++ {
		if _, taken := reg.Vaults[name]; !taken {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, n)
	}
}
