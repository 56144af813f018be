// Package binder projects the site's JSON document onto its HTML page.
//
// Binding is split into a pure planning step and a thin apply step:
// Plan walks a parsed document and the decoded content and returns the list
// of DOM mutations the content implies; Apply executes them. A missing or
// non-string value at a bound path produces no mutation, so the hardcoded
// fallback markup stays untouched.
package binder

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Binder carries the site-level values the page itself cannot provide.
type Binder struct {
	SiteURL  string // canonical fallback for og:url and JSON-LD
	SiteName string // name fallback when brand.companyName is absent
}

// Kind enumerates the DOM operations a plan can contain.
type Kind int

const (
	SetText Kind = iota
	SetAttr
	ReplaceChildren
	AppendChildren
	Remove
)

// Mutation is one DOM operation. Value holds text content for SetText and
// the attribute value for SetAttr.
type Mutation struct {
	Node     *html.Node
	Kind     Kind
	Attr     string
	Value    string
	Children []*html.Node
}

// Bind plans and applies in one step.
func (b Binder) Bind(root *html.Node, content map[string]any) {
	Apply(b.Plan(root, content))
}

// Plan computes the mutations that bind content into the document.
func (b Binder) Plan(root *html.Node, content map[string]any) []Mutation {
	var muts []Mutation
	muts = append(muts, planScalars(root, content)...)
	muts = append(muts, planLists(root, content)...)
	muts = append(muts, planWhatsApp(root, content)...)
	muts = append(muts, b.planSEO(root, content)...)
	return muts
}

// Apply executes a mutation plan against the document it was planned for.
func Apply(muts []Mutation) {
	for _, m := range muts {
		switch m.Kind {
		case SetText:
			setText(m.Node, m.Value)
		case SetAttr:
			setAttr(m.Node, m.Attr, m.Value)
		case ReplaceChildren:
			removeChildren(m.Node)
			for _, ch := range m.Children {
				m.Node.AppendChild(ch)
			}
		case AppendChildren:
			for _, ch := range m.Children {
				m.Node.AppendChild(ch)
			}
		case Remove:
			if m.Node.Parent != nil {
				m.Node.Parent.RemoveChild(m.Node)
			}
		}
	}
}

// Lookup resolves a dotted path ("a.b.c") into the content document.
// It returns nil as soon as a segment is missing or not an object.
func Lookup(content map[string]any, path string) any {
	var cur any = content
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = obj[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// lookupString resolves a path and reports whether the value is a string.
func lookupString(content map[string]any, path string) (string, bool) {
	s, ok := Lookup(content, path).(string)
	return s, ok
}

func planScalars(root *html.Node, content map[string]any) []Mutation {
	var muts []Mutation
	for _, bindAttr := range []string{"data-bind", "data-bind-text"} {
		for _, n := range elementsWithAttr(root, bindAttr) {
			if v, ok := lookupString(content, getAttr(n, bindAttr)); ok {
				muts = append(muts, Mutation{Node: n, Kind: SetText, Value: v})
			}
		}
	}
	for _, n := range elementsWithAttr(root, "data-bind-href") {
		if v, ok := lookupString(content, getAttr(n, "data-bind-href")); ok {
			muts = append(muts, Mutation{Node: n, Kind: SetAttr, Attr: "href", Value: SafeURL(v)})
		}
	}
	for _, n := range elementsWithAttr(root, "data-bind-src") {
		if v, ok := lookupString(content, getAttr(n, "data-bind-src")); ok {
			if src := SafeSrc(v); src != "" {
				muts = append(muts, Mutation{Node: n, Kind: SetAttr, Attr: "src", Value: src})
			}
		}
	}
	return muts
}

func planWhatsApp(root *html.Node, content map[string]any) []Mutation {
	wa, ok := lookupString(content, "contact.whatsapp")
	if !ok || wa == "" {
		return nil
	}
	href := WhatsAppURL(wa)
	var muts []Mutation
	for _, n := range elementsWithAttr(root, "data-bind-wa") {
		muts = append(muts, Mutation{Node: n, Kind: SetAttr, Attr: "href", Value: href})
	}
	return muts
}

func planLists(root *html.Node, content map[string]any) []Mutation {
	var muts []Mutation

	for _, n := range elementsWithAttr(root, "data-bind-list") {
		path := getAttr(n, "data-bind-list")
		items, ok := Lookup(content, path).([]any)
		if !ok {
			continue
		}
		var children []*html.Node
		switch {
		case strings.HasSuffix(path, "paragraphs"):
			for _, item := range items {
				children = append(children, el("p", "", toString(item)))
			}
		case strings.HasSuffix(path, "points"):
			for _, item := range items {
				children = append(children, checklistItem(toString(item)))
			}
		case strings.HasSuffix(path, "missions"):
			for _, item := range items {
				children = append(children, el("li", "", toString(item)))
			}
		default:
			continue
		}
		muts = append(muts, Mutation{Node: n, Kind: ReplaceChildren, Children: children})
	}

	sections := []struct {
		attr string
		path string
		item func(item map[string]any, idx int) *html.Node
	}{
		{"data-bind-cards", "values.items", func(it map[string]any, _ int) *html.Node { return valueCard(it) }},
		{"data-bind-services", "services.items", func(it map[string]any, _ int) *html.Node { return serviceCard(it) }},
		{"data-bind-products", "products.items", productCard},
		{"data-bind-testimonials", "testimonials.items", func(it map[string]any, _ int) *html.Node { return testimonialCard(it) }},
		{"data-bind-articles", "articles.items", func(it map[string]any, _ int) *html.Node { return articleCard(it) }},
		{"data-bind-footer-links", "footer.links", func(it map[string]any, _ int) *html.Node { return footerLink(it) }},
	}
	for _, sec := range sections {
		container := firstElementWithAttr(root, sec.attr)
		if container == nil {
			continue
		}
		items, ok := Lookup(content, sec.path).([]any)
		if !ok {
			continue
		}
		var children []*html.Node
		for i, raw := range items {
			item, _ := raw.(map[string]any)
			children = append(children, sec.item(item, i))
		}
		muts = append(muts, Mutation{Node: container, Kind: ReplaceChildren, Children: children})
	}

	return muts
}

func checklistItem(text string) *html.Node {
	li := el("li", "flex gap-3", "")
	icon := el("span", "mt-1 inline-flex h-5 w-5 flex-none items-center justify-center rounded-full bg-sky/15 text-sky", "✓")
	li.AppendChild(icon)
	li.AppendChild(el("span", "", text))
	return li
}

func valueCard(item map[string]any) *html.Node {
	card := el("article", "rounded-[26px] border border-sky/12 bg-white/5 p-6 backdrop-blur", "")
	card.AppendChild(el("div", "inline-flex items-center gap-2 rounded-full border border-sky/15 bg-deep/30 px-3 py-1 text-xs font-semibold text-sky", toString(item["name"])))
	card.AppendChild(el("p", "mt-3 text-sm text-white/75", toString(item["description"])))
	return card
}

func serviceCard(item map[string]any) *html.Node {
	card := el("article", "rounded-[26px] border border-sky/12 bg-white/5 p-6 backdrop-blur", "")
	card.AppendChild(el("h3", "text-base font-bold", toString(item["title"])))
	card.AppendChild(el("p", "mt-2 text-sm text-white/75", toString(item["description"])))
	card.AppendChild(bulletList(item["bullets"]))
	return card
}

func productCard(item map[string]any, idx int) *html.Node {
	card := el("article", "relative overflow-hidden rounded-[28px] border border-sky/12 bg-white/5 p-7 backdrop-blur", "")
	if idx == 0 {
		card.AppendChild(el("div", "pointer-events-none absolute -right-10 -top-10 h-40 w-40 rounded-full bg-sky/15 blur-2xl", ""))
	}
	top := el("div", "flex items-start justify-between gap-3", "")
	top.AppendChild(el("h3", "text-lg font-bold", toString(item["title"])))
	chipLabel := "Product"
	if idx == 0 {
		chipLabel = "Cloud"
	}
	top.AppendChild(el("span", "rounded-full border border-sky/15 bg-deep/30 px-3 py-1 text-xs font-semibold text-white/75", chipLabel))
	card.AppendChild(top)
	card.AppendChild(el("p", "mt-3 text-sm text-white/75", toString(item["description"])))
	card.AppendChild(bulletList(item["bullets"]))
	return card
}

func bulletList(raw any) *html.Node {
	ul := el("ul", "mt-4 space-y-2 text-sm text-white/70", "")
	bullets, _ := raw.([]any)
	for _, b := range bullets {
		li := el("li", "flex gap-2", "")
		li.AppendChild(el("span", "text-sky", "•"))
		li.AppendChild(el("span", "", toString(b)))
		ul.AppendChild(li)
	}
	return ul
}

func testimonialCard(item map[string]any) *html.Node {
	fig := el("figure", "rounded-[28px] border border-sky/12 bg-white/5 p-7 backdrop-blur", "")
	fig.AppendChild(el("blockquote", "text-white/80", toString(item["quote"])))
	var who []string
	for _, key := range []string{"name", "role"} {
		if s := toString(item[key]); s != "" {
			who = append(who, s)
		}
	}
	caption := ""
	if len(who) > 0 {
		caption = "— " + strings.Join(who, ", ")
	}
	fig.AppendChild(el("figcaption", "mt-4 text-sm text-white/60", caption))
	return fig
}

func articleCard(item map[string]any) *html.Node {
	card := el("article", "group rounded-[26px] border border-sky/12 bg-white/5 p-6 backdrop-blur", "")
	card.AppendChild(el("h3", "text-base font-bold", toString(item["title"])))
	card.AppendChild(el("p", "mt-2 text-sm text-white/75", toString(item["excerpt"])))
	link := el("a", "mt-4 inline-flex text-sm font-semibold text-sky group-hover:brightness-110", "Baca →")
	setAttr(link, "href", SafeURL(toString(item["href"])))
	card.AppendChild(link)
	return card
}

func footerLink(item map[string]any) *html.Node {
	a := el("a", "hover:text-white", toString(item["label"]))
	setAttr(a, "href", SafeURL(toString(item["href"])))
	return a
}

// --- document helpers ---

// el builds an element node with an optional class and text content.
func el(tag, class, text string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if class != "" {
		setAttr(n, "class", class)
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func setText(n *html.Node, text string) {
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// walk visits every element node in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func elementsWithAttr(root *html.Node, key string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) {
		if hasAttr(n, key) {
			out = append(out, n)
		}
	})
	return out
}

func firstElementWithAttr(root *html.Node, key string) *html.Node {
	nodes := elementsWithAttr(root, key)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func findElement(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Data == tag {
			found = n
		}
	})
	return found
}

// toString renders a JSON value the way the page shows it: strings as-is,
// nil as empty, everything else via fmt.
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
