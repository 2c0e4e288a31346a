package testsupport

import (
	"fmt"
	"strings"
	"testing"

	"ciff/internal/catalog"
)

// CatalogLabel is the label of synthetic catalog row i.
func CatalogLabel(i int) string {
	return fmt.Sprintf("%07d.cif", 1000000+i)
}

// NewCatalog builds an n-row catalog with labels from CatalogLabel.
func NewCatalog(t testing.TB, n int) *catalog.Catalog {
	t.Helper()
	entries := make([]catalog.Entry, n)
	for i := range entries {
		entries[i] = catalog.Entry{Label: CatalogLabel(i)}
	}
	cat, err := catalog.New(entries)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

// CatalogCSV renders an n-row catalog file in the legacy list format.
func CatalogCSV(n int) string {
	var b strings.Builder
	b.WriteString(",Label,Similar,composition,space_group_symmetry\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%s,\"['%07d.csv']\",\"['NaCl', 'KCl']\",\"['Fm-3m', 'Fm-3m']\"\n",
			i, CatalogLabel(i), 2000000+i)
	}
	return b.String()
}
