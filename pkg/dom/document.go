package dom

import "github.com/google/uuid"

// links holds the tree-structural fields shared by every node kind. Go has
// no struct inheritance, so each concrete node type embeds links instead of
// extending a common base the way the original's View/ViewGroup hierarchy
// does through plain C struct inclusion.
type links struct {
	parent    Ref
	firstCh   Ref
	lastCh    Ref
	nextSib   Ref
	prevSib   Ref
}

// Attribute is a single name=value pair. Attribute order is preserved
// per-element because serialize.go's canonical dump depends on insertion
// order, matching the tree builder's "attributes are applied in token
// order, first occurrence wins" rule.
type Attribute struct {
	Name  Symbol
	Value string
}

// Element is a tag with interned name, ordered attributes, and children.
type Element struct {
	links
	Tag        Symbol
	Attrs      []Attribute
	SelfClose  bool // void element or parsed as self-closing
}

// Text is a run of character data. Adjacent text runs are coalesced by the
// tree builder's pending-text buffer before a Text node is ever created, so
// this package itself makes no merging guarantee.
type Text struct {
	links
	Data string
}

// Comment is an HTML comment node.
type Comment struct {
	links
	Data string
}

// Doctype carries the name/public-id/system-id triple used to decide quirks
// mode. The resulting mode is stored on the Document (see QuirksMode), not
// here.
type Doctype struct {
	links
	Name     string
	PublicID string
	SystemID string
}

// QuirksMode classifies how lenient layout/style resolution should be.
type QuirksMode uint8

const (
	NoQuirks QuirksMode = iota
	Quirks
	LimitedQuirks
)

// Document owns the arena, the intern pool, and the tree root. A Document is
// not safe for concurrent use from multiple goroutines; the font/image
// caches are the only state shared across Documents (see pkg/fontcache,
// pkg/imagecache).
type Document struct {
	ID     uuid.UUID
	arena  *Arena
	interns *internPool

	root       Ref // the single top-level html Element, once parsed
	quirks     QuirksMode
	doctype    Ref // KindDoctype Ref, or zero if none was seen

	byID map[string]Ref // id="..." index, populated lazily by SetAttr
}

// NewDocument allocates an empty Document ready to receive nodes from a
// tokenizer/tree-builder pass or a Markdown conversion pass.
func NewDocument() *Document {
	return &Document{
		ID:      uuid.New(),
		arena:   newArena(),
		interns: newInternPool(),
		byID:    make(map[string]Ref),
	}
}

// Intern exposes the Document's string interning pool to callers. Tag and
// attribute names are interned by CreateElement, GetAttr and SetAttr
// themselves; the tokenizer works on plain strings and never interns.
func (d *Document) Intern(s string) Symbol { return d.interns.Intern(s) }

// Sym resolves an interned Symbol back to its string value.
func (d *Document) Sym(sym Symbol) string { return d.interns.String(sym) }

// Root returns the Document's top-level element, or a zero Ref if no root
// has been set yet.
func (d *Document) Root() Ref { return d.root }

// SetRoot records r as the Document's top-level element.
func (d *Document) SetRoot(r Ref) { d.root = r }

// QuirksMode reports the Document's current quirks mode.
func (d *Document) QuirksMode() QuirksMode { return d.quirks }

// SetQuirksMode sets the Document's quirks mode, decided by the tree builder
// from the doctype token (see htmltree's quirksFromDoctype): force-quirks or
// a name other than "html" gives full quirks, a public or system id gives
// limited quirks. Public/system id prefixes are not compared.
func (d *Document) SetQuirksMode(m QuirksMode) { d.quirks = m }

// Doctype returns the Document's doctype node, if any.
func (d *Document) Doctype() Ref { return d.doctype }

// CreateElement allocates a new, parentless Element with the given tag
// name.
func (d *Document) CreateElement(tag string) Ref {
	r := d.arena.newElement()
	d.element(r).Tag = d.interns.Intern(tag)
	return r
}

// CreateText allocates a new, parentless Text node.
func (d *Document) CreateText(data string) Ref {
	r := d.arena.newText()
	d.text(r).Data = data
	return r
}

// CreateComment allocates a new, parentless Comment node.
func (d *Document) CreateComment(data string) Ref {
	r := d.arena.newComment()
	d.comment(r).Data = data
	return r
}

// CreateDoctype allocates a Doctype node and records it as the Document's
// doctype.
func (d *Document) CreateDoctype(name, publicID, systemID string) Ref {
	r := d.arena.newDoctype()
	dt := d.doctypeNode(r)
	dt.Name, dt.PublicID, dt.SystemID = name, publicID, systemID
	d.doctype = r
	return r
}

func (d *Document) element(r Ref) *Element   { return &d.arena.elements[r.index] }
func (d *Document) text(r Ref) *Text         { return &d.arena.texts[r.index] }
func (d *Document) comment(r Ref) *Comment   { return &d.arena.comments[r.index] }
func (d *Document) doctypeNode(r Ref) *Doctype { return &d.arena.doctypes[r.index] }

func (d *Document) linksOf(r Ref) *links {
	switch r.kind {
	case KindElement:
		return &d.element(r).links
	case KindText:
		return &d.text(r).links
	case KindComment:
		return &d.comment(r).links
	case KindDoctype:
		return &d.doctypeNode(r).links
	default:
		return nil
	}
}

// Parent returns r's parent, or a zero Ref at the tree root.
func (d *Document) Parent(r Ref) Ref { return d.linksOf(r).parent }

// FirstChild returns r's first child, or a zero Ref if r has none.
func (d *Document) FirstChild(r Ref) Ref { return d.linksOf(r).firstCh }

// LastChild returns r's last child, or a zero Ref if r has none.
func (d *Document) LastChild(r Ref) Ref { return d.linksOf(r).lastCh }

// NextSibling returns the sibling following r, or a zero Ref if r is last.
func (d *Document) NextSibling(r Ref) Ref { return d.linksOf(r).nextSib }

// PrevSibling returns the sibling preceding r, or a zero Ref if r is first.
func (d *Document) PrevSibling(r Ref) Ref { return d.linksOf(r).prevSib }

// AppendChild detaches child (if attached) and appends it as parent's last
// child.
func (d *Document) AppendChild(parent, child Ref) {
	d.detach(child)
	pl := d.linksOf(parent)
	cl := d.linksOf(child)
	cl.parent = parent
	if pl.lastCh.IsZero() {
		pl.firstCh = child
		pl.lastCh = child
		return
	}
	prevLast := pl.lastCh
	d.linksOf(prevLast).nextSib = child
	cl.prevSib = prevLast
	pl.lastCh = child
}

// InsertBefore detaches child (if attached) and inserts it immediately
// before ref within parent's child list. If ref is zero, child is appended.
func (d *Document) InsertBefore(parent, child, ref Ref) {
	if ref.IsZero() {
		d.AppendChild(parent, child)
		return
	}
	d.detach(child)
	pl := d.linksOf(parent)
	cl := d.linksOf(child)
	rl := d.linksOf(ref)
	cl.parent = parent
	cl.nextSib = ref
	cl.prevSib = rl.prevSib
	if rl.prevSib.IsZero() {
		pl.firstCh = child
	} else {
		d.linksOf(rl.prevSib).nextSib = child
	}
	rl.prevSib = child
}

// RemoveChild detaches child from its parent. A no-op if child has no
// parent.
func (d *Document) RemoveChild(child Ref) { d.detach(child) }

func (d *Document) detach(r Ref) {
	l := d.linksOf(r)
	if l.parent.IsZero() && l.prevSib.IsZero() && l.nextSib.IsZero() {
		// already detached (or a never-attached fresh node); still need to
		// check whether it's the sole child of some parent we don't know
		// about, but links always carry parent when attached, so this is
		// sufficient.
		if l.parent.IsZero() {
			return
		}
	}
	parent := l.parent
	if parent.IsZero() {
		return
	}
	pl := d.linksOf(parent)
	if !l.prevSib.IsZero() {
		d.linksOf(l.prevSib).nextSib = l.nextSib
	} else {
		pl.firstCh = l.nextSib
	}
	if !l.nextSib.IsZero() {
		d.linksOf(l.nextSib).prevSib = l.prevSib
	} else {
		pl.lastCh = l.prevSib
	}
	l.parent = Ref{}
	l.nextSib = Ref{}
	l.prevSib = Ref{}
}

// Children returns r's children in order. Convenience wrapper over
// FirstChild/NextSibling for callers that want a slice (layout and
// markdown list-building both do).
func (d *Document) Children(r Ref) []Ref {
	var out []Ref
	for c := d.FirstChild(r); !c.IsZero(); c = d.NextSibling(c) {
		out = append(out, c)
	}
	return out
}

// TagName returns the interned tag Symbol of an Element Ref. Calling this
// on a non-Element Ref returns the zero Symbol.
func (d *Document) TagName(r Ref) Symbol {
	if r.Kind() != KindElement {
		return 0
	}
	return d.element(r).Tag
}

// TagNameString is TagName resolved to a string.
func (d *Document) TagNameString(r Ref) string {
	return d.Sym(d.TagName(r))
}

// IsElement reports whether r addresses an Element node.
func (d *Document) IsElement(r Ref) bool { return r.Kind() == KindElement }

// IsText reports whether r addresses a Text node.
func (d *Document) IsText(r Ref) bool { return r.Kind() == KindText }

// TextData returns the character data of a Text Ref, or "" otherwise.
func (d *Document) TextData(r Ref) string {
	if r.Kind() != KindText {
		return ""
	}
	return d.text(r).Data
}

// SetTextData overwrites the character data of a Text Ref.
func (d *Document) SetTextData(r Ref, data string) {
	if r.Kind() == KindText {
		d.text(r).Data = data
	}
}

// CommentData returns the character data of a Comment Ref, or "" otherwise.
func (d *Document) CommentData(r Ref) string {
	if r.Kind() != KindComment {
		return ""
	}
	return d.comment(r).Data
}

// SelfClosing reports whether an Element Ref was a void element or was
// parsed with a self-closing tag (`<br/>`).
func (d *Document) SelfClosing(r Ref) bool {
	if r.Kind() != KindElement {
		return false
	}
	return d.element(r).SelfClose
}

// SetSelfClosing marks an Element Ref as self-closing.
func (d *Document) SetSelfClosing(r Ref, v bool) {
	if r.Kind() == KindElement {
		d.element(r).SelfClose = v
	}
}

// Attrs returns an Element's attributes in source order.
func (d *Document) Attrs(r Ref) []Attribute {
	if r.Kind() != KindElement {
		return nil
	}
	return d.element(r).Attrs
}

// GetAttr returns an Element's attribute value by name and whether it was
// present. Per the tree construction algorithm, a repeated attribute name
// keeps only its first occurrence, so this always returns the first match.
func (d *Document) GetAttr(r Ref, name string) (string, bool) {
	if r.Kind() != KindElement {
		return "", false
	}
	sym := d.interns.Intern(name)
	for _, a := range d.element(r).Attrs {
		if a.Name == sym {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an Element's attribute, appending it if not already present
// (first-occurrence-wins is enforced by callers that check GetAttr first;
// SetAttr itself always assigns, to let the tree builder correct `id`
// tracking when an element is adopted).
func (d *Document) SetAttr(r Ref, name, value string) {
	if r.Kind() != KindElement {
		return
	}
	sym := d.interns.Intern(name)
	el := d.element(r)
	for i := range el.Attrs {
		if el.Attrs[i].Name == sym {
			el.Attrs[i].Value = value
			if name == "id" {
				d.byID[value] = r
			}
			return
		}
	}
	el.Attrs = append(el.Attrs, Attribute{Name: sym, Value: value})
	if name == "id" {
		d.byID[value] = r
	}
}

// AddAttrIfAbsent appends name=value only if the attribute is not already
// present, matching the tree construction algorithm's "if no attribute
// exists with that name, add each attribute" rule for re-adding attributes
// to html/body in the after-head insertion mode.
func (d *Document) AddAttrIfAbsent(r Ref, name, value string) {
	if _, ok := d.GetAttr(r, name); ok {
		return
	}
	d.SetAttr(r, name, value)
}

// ElementByID looks up an element previously tagged via SetAttr(r, "id", v).
func (d *Document) ElementByID(id string) (Ref, bool) {
	r, ok := d.byID[id]
	return r, ok
}
