package catalog

import (
	"fmt"
	"sort"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// Catalog is the immutable product set with its name↔id encoding.
// It is constructed once per dataset and shared by every component
// that needs encodings, so no two call sites can disagree on which
// integer represents which flower. Safe for concurrent reads.
type Catalog struct {
	products []contracts.Product
	byName   map[string]int
	byID     map[int]string
}

// New builds a catalog from product names. Names are de-duplicated and
// sorted lexicographically before ids are assigned, so the encoding is
// a deterministic function of the distinct name set regardless of row
// order.
func New(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no product names", contracts.ErrDataLoad)
	}

	seen := make(map[string]bool, len(names))
	distinct := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty product name", contracts.ErrDataLoad)
		}
		if !seen[name] {
			seen[name] = true
			distinct = append(distinct, name)
		}
	}
	sort.Strings(distinct)

	c := &Catalog{
		products: make([]contracts.Product, len(distinct)),
		byName:   make(map[string]int, len(distinct)),
		byID:     make(map[int]string, len(distinct)),
	}
	for id, name := range distinct {
		c.products[id] = contracts.Product{Name: name, EncodedID: id}
		c.byName[name] = id
		c.byID[id] = name
	}

	return c, nil
}

// FromRecords builds a catalog from the product names of a record slice.
func FromRecords(records []contracts.SaleRecord) (*Catalog, error) {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Product)
	}
	return New(names)
}

// Encode returns the encoded id for a product name.
func (c *Catalog) Encode(name string) (int, error) {
	id, ok := c.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", contracts.ErrUnknownProduct, name)
	}
	return id, nil
}

// Decode returns the product name for an encoded id.
func (c *Catalog) Decode(id int) (string, error) {
	name, ok := c.byID[id]
	if !ok {
		return "", fmt.Errorf("%w: id %d", contracts.ErrUnknownProduct, id)
	}
	return name, nil
}

// Products returns the canonical product ordering. The returned slice
// must not be modified.
func (c *Catalog) Products() []contracts.Product {
	return c.products
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Order returns the canonical position of a product name, used for
// stable tie-breaking when ranking. Unknown names sort last.
func (c *Catalog) Order(name string) int {
	if id, ok := c.byName[name]; ok {
		return id
	}
	return len(c.products)
}
