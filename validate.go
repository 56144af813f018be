package sitekit

import "errors"

// ValidateSiteContent runs the minimal shape checks a document must pass
// before it may replace site.json. The error text names the violated field
// and is safe to return to the admin UI.
func ValidateSiteContent(doc any) error {
	obj, ok := doc.(map[string]any)
	if !ok || obj == nil {
		return errors.New("payload must be an object")
	}
	meta, ok := obj["meta"].(map[string]any)
	if !ok {
		return errors.New("meta is required")
	}
	if _, ok := obj["brand"].(map[string]any); !ok {
		return errors.New("brand is required")
	}
	if _, ok := obj["hero"].(map[string]any); !ok {
		return errors.New("hero is required")
	}
	if _, ok := obj["contact"].(map[string]any); !ok {
		return errors.New("contact is required")
	}
	title, ok := meta["title"].(string)
	if !ok || len(title) < 3 {
		return errors.New("meta.title is invalid")
	}
	description, ok := meta["description"].(string)
	if !ok || len(description) < 10 {
		return errors.New("meta.description is invalid")
	}
	return nil
}
