// Package cart holds the per-user cart document: a nested quantity map keyed
// by product then variant (size). Quantities are always positive; a zero or
// removed leaf is deleted, and removing the last variant removes the product
// key — the document never contains an empty variant map.
package cart

// Document maps productID → variant → quantity.
type Document map[string]map[string]int

func New() Document {
	return Document{}
}

// Quantity returns the stored quantity, treating absent as 0.
func (d Document) Quantity(productID, variant string) int {
	return d[productID][variant]
}

// Set stores an absolute quantity. A quantity <= 0 removes the leaf, and an
// emptied product entry is removed with it.
func (d Document) Set(productID, variant string, quantity int) {
	if quantity <= 0 {
		variants, ok := d[productID]
		if !ok {
			return
		}
		delete(variants, variant)
		if len(variants) == 0 {
			delete(d, productID)
		}
		return
	}
	variants, ok := d[productID]
	if !ok {
		variants = map[string]int{}
		d[productID] = variants
	}
	variants[variant] = quantity
}

// Add applies a delta to the leaf, treating absent as 0. A result <= 0
// removes the leaf.
func (d Document) Add(productID, variant string, delta int) {
	d.Set(productID, variant, d.Quantity(productID, variant)+delta)
}

// TotalItems sums all quantities across products and variants.
func (d Document) TotalItems() int {
	total := 0
	for _, variants := range d {
		for _, q := range variants {
			total += q
		}
	}
	return total
}

// Clone returns a deep copy. The optimistic client-side state mutates copies,
// never the authoritative document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for productID, variants := range d {
		cp := make(map[string]int, len(variants))
		for variant, q := range variants {
			cp[variant] = q
		}
		out[productID] = cp
	}
	return out
}
