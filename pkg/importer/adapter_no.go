package importer

import (
	"path/filepath"

	"github.com/hazyhaar/lavinia/pkg/election"
)

func init() { Register(&norwayAdapter{}) }

// norwayAdapter seeds Norwegian parliamentary elections (stortingsvalg).
type norwayAdapter struct{}

func (a *norwayAdapter) ID() string      { return "no-storting" }
func (a *norwayAdapter) Country() string { return "NO" }
func (a *norwayAdapter) Description() string {
	return "Norwegian parliamentary elections by county (SSB/valgresultat.no exports)"
}

func (a *norwayAdapter) Layout(root string) (*Layout, error) {
	name := "Norway"
	types := []string{"PE"}
	opts := LoadOptions{Separator: DefaultSeparator}

	m, err := LoadManifest(filepath.Join(root, a.Country()))
	if err != nil {
		return nil, err
	}
	m.apply(&name, &types, &opts)

	return ScanLayout(root, election.Country{
		Code:          a.Country(),
		Name:          name,
		ElectionTypes: types,
	}, opts)
}
