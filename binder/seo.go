package binder

import (
	"encoding/json"

	"golang.org/x/net/html"
)

// markerAttr tags the JSON-LD scripts this package injects so re-binding
// replaces them instead of stacking duplicates.
const markerAttr = "data-rkt"

// defaultOGImage matches the site's shipped logo asset.
const defaultOGImage = "/src/assets/logo-rkt.svg"

// planSEO computes mutations for the document title, description and social
// meta tags, the canonical link (only when absent), and the Organization and
// WebSite JSON-LD blocks.
func (b Binder) planSEO(root *html.Node, content map[string]any) []Mutation {
	head := findElement(root, "head")
	if head == nil {
		return nil
	}

	title, ok := lookupString(content, "meta.title")
	if !ok || title == "" {
		title, _ = lookupString(content, "brand.companyName")
	}
	if title == "" {
		if t := findElement(root, "title"); t != nil && t.FirstChild != nil {
			title = t.FirstChild.Data
		}
	}
	description, _ := lookupString(content, "meta.description")
	ogImage, _ := lookupString(content, "meta.ogImage")
	if ogImage == "" {
		ogImage = defaultOGImage
	}

	var muts []Mutation

	if t := findElement(root, "title"); t != nil {
		muts = append(muts, Mutation{Node: t, Kind: SetText, Value: title})
	} else {
		muts = append(muts, Mutation{Node: head, Kind: AppendChildren, Children: []*html.Node{el("title", "", title)}})
	}

	canonical := findLink(root, "canonical")
	canonicalHref := ""
	if canonical != nil {
		canonicalHref = getAttr(canonical, "href")
	}
	ogURL := canonicalHref
	if ogURL == "" {
		ogURL = b.SiteURL
	}

	muts = append(muts, b.planMeta(head, root, "description", description, false))
	muts = append(muts, b.planMeta(head, root, "og:title", title, true))
	muts = append(muts, b.planMeta(head, root, "og:description", description, true))
	muts = append(muts, b.planMeta(head, root, "og:image", ogImage, true))
	muts = append(muts, b.planMeta(head, root, "og:url", ogURL, true))
	muts = append(muts, b.planMeta(head, root, "twitter:title", title, false))
	muts = append(muts, b.planMeta(head, root, "twitter:description", description, false))
	muts = append(muts, b.planMeta(head, root, "twitter:image", ogImage, false))

	if canonical == nil {
		link := el("link", "", "")
		setAttr(link, "rel", "canonical")
		setAttr(link, "href", "/")
		muts = append(muts, Mutation{Node: head, Kind: AppendChildren, Children: []*html.Node{link}})
	}

	muts = append(muts, b.planJSONLD(head, root, content, canonicalHref, ogImage)...)

	return muts
}

// planMeta updates an existing meta tag's content or creates the tag in head.
func (b Binder) planMeta(head, root *html.Node, key, value string, property bool) Mutation {
	attr := "name"
	if property {
		attr = "property"
	}
	if n := findMeta(root, attr, key); n != nil {
		return Mutation{Node: n, Kind: SetAttr, Attr: "content", Value: value}
	}
	meta := el("meta", "", "")
	setAttr(meta, attr, key)
	setAttr(meta, "content", value)
	return Mutation{Node: head, Kind: AppendChildren, Children: []*html.Node{meta}}
}

func (b Binder) planJSONLD(head, root *html.Node, content map[string]any, canonicalHref, ogImage string) []Mutation {
	var muts []Mutation

	// Replace any blocks from a previous bind.
	walk(root, func(n *html.Node) {
		if n.Data == "script" && getAttr(n, "type") == "application/ld+json" && hasAttr(n, markerAttr) {
			muts = append(muts, Mutation{Node: n, Kind: Remove})
		}
	})

	name, _ := lookupString(content, "brand.companyName")
	if name == "" {
		name = b.SiteName
	}
	url := canonicalHref
	if url == "" {
		url = b.SiteURL
	}

	org := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
		"url":      url,
		"logo":     ogImage,
	}
	if legal, ok := lookupString(content, "brand.legalName"); ok && legal != "" {
		org["legalName"] = legal
	}
	if email, ok := lookupString(content, "contact.email"); ok && email != "" {
		org["email"] = email
	}
	site := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
		"url":      url,
	}

	var scripts []*html.Node
	for _, obj := range []map[string]any{org, site} {
		raw, err := json.Marshal(obj)
		if err != nil {
			raw = []byte("{}")
		}
		s := el("script", "", string(raw))
		setAttr(s, "type", "application/ld+json")
		setAttr(s, markerAttr, "1")
		scripts = append(scripts, s)
	}
	muts = append(muts, Mutation{Node: head, Kind: AppendChildren, Children: scripts})

	return muts
}

func findMeta(root *html.Node, attr, value string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Data == "meta" && getAttr(n, attr) == value {
			found = n
		}
	})
	return found
}

func findLink(root *html.Node, rel string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Data == "link" && getAttr(n, "rel") == rel {
			found = n
		}
	})
	return found
}
