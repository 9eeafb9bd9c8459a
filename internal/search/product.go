// Package search implements the semantic product search pipeline: query
// embedding, vector-store similarity lookup, and the LLM-written product
// advice built on top of the results.
package search

import "fmt"

// Product is a catalog item as stored in the vector-store payload, with the
// similarity score and a human-readable retrieval reason attached.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url"`
	SKU           string  `json:"sku"`
	Brand         string  `json:"brand"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	Collection    string  `json:"collection"`
	FeaturesText  string  `json:"features_text"`
	TechSpecsText string  `json:"tech_specs_text"`
	Score         float32 `json:"score"`
	Reason        string  `json:"reason"`
}

// productFromPayload normalizes a vector-store payload into a Product.
// Fallback field names mirror older ingestion runs still present in the
// collection.
func productFromPayload(payload map[string]any, score float32, userQuery string) Product {
	p := Product{
		ID:            str(payload, "id", "product_id"),
		Name:          str(payload, "name", "title"),
		URL:           str(payload, "url", "product_url"),
		Description:   str(payload, "description"),
		ImageURL:      str(payload, "image_url"),
		SKU:           str(payload, "sku"),
		Brand:         str(payload, "brand"),
		Currency:      str(payload, "currency"),
		Collection:    str(payload, "collection"),
		FeaturesText:  str(payload, "features_text"),
		TechSpecsText: str(payload, "tech_specs_text"),
		Score:         score,
	}
	if p.Name == "" {
		p.Name = "Prodotto senza nome"
	}
	if p.Brand == "" {
		p.Brand = "Scicon Sports"
	}
	if p.Currency == "" {
		p.Currency = "EUR"
	}
	if v, ok := payload["price"].(float64); ok {
		p.Price = v
	}

	if p.Collection != "" {
		p.Reason = fmt.Sprintf(
			"Trovato il prodotto: %s della collezione '%s' del brand %s con prezzo indicativo di %.2f %s in base alla tua richiesta: %q.",
			p.Name, p.Collection, p.Brand, p.Price, p.Currency, userQuery,
		)
	} else {
		p.Reason = fmt.Sprintf(
			"Trovato il prodotto: %s del brand %s con prezzo indicativo di %.2f %s in base alla tua richiesta: %q.",
			p.Name, p.Brand, p.Price, p.Currency, userQuery,
		)
	}
	return p
}

func str(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := payload[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
