package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const formatVersion = 1

// ErrCorrupt marks persisted cart data that cannot be decoded.
var ErrCorrupt = errors.New("corrupt cart data")

// Reference is a persisted cart line: a product reference and a quantity.
type Reference struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type document struct {
	Version int         `json:"version"`
	Items   []Reference `json:"items"`
}

// legacyLine is the browser format, an array of embedded product snapshots.
// Only the product ID is kept from it.
type legacyLine struct {
	Product struct {
		ID string `json:"id"`
	} `json:"product"`
	Quantity int `json:"quantity"`
}

// Encode serializes the items as product references.
func Encode(items []Item) ([]byte, error) {
	doc := document{Version: formatVersion, Items: make([]Reference, 0, len(items))}
	for _, it := range items {
		doc.Items = append(doc.Items, Reference{ProductID: it.Product.ID, Quantity: it.Quantity})
	}
	return json.Marshal(doc)
}

// Decode parses persisted cart data in the current or the legacy format.
func Decode(data []byte) ([]Reference, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrCorrupt)
	}
	if data[0] == '[' {
		return decodeLegacy(data)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, doc.Version)
	}
	for _, ref := range doc.Items {
		if ref.ProductID == "" {
			return nil, fmt.Errorf("%w: item without product id", ErrCorrupt)
		}
	}
	return doc.Items, nil
}

func decodeLegacy(data []byte) ([]Reference, error) {
	var lines []legacyLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	refs := make([]Reference, 0, len(lines))
	for _, l := range lines {
		if l.Product.ID == "" {
			return nil, fmt.Errorf("%w: item without product id", ErrCorrupt)
		}
		refs = append(refs, Reference{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	return refs, nil
}
