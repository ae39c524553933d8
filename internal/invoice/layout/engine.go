package layout

import (
	"cmp"
	"slices"
)

// Cursor is the vertical position on the current page. It lives for one
// layout run only.
type Cursor struct {
	Y    float64
	Page int
}

// engine owns the cursor and decides page breaks.
type engine struct {
	geo    Geometry
	doc    *Document
	cursor Cursor
}

func newEngine(geo Geometry, doc *Document) *engine {
	e := &engine{geo: geo, doc: doc}
	e.newPage()
	return e
}

// newPage resets the cursor to the top margin of a fresh page. Content
// already placed is never reflowed.
func (e *engine) newPage() {
	e.cursor.Page++
	e.cursor.Y = e.geo.MarginTop
	e.doc.Pages = append(e.doc.Pages, Page{Number: e.cursor.Page})
}

// pageHeight is the usable height between the top and bottom margins.
func (e *engine) pageHeight() float64 {
	return e.geo.Bottom() - e.geo.MarginTop
}

func (e *engine) atTop() bool {
	return e.cursor.Y <= e.geo.MarginTop
}

// checkpoint breaks the page when the cursor has passed threshold.
func (e *engine) checkpoint(threshold float64) bool {
	if e.cursor.Y > threshold && !e.atTop() {
		e.newPage()
		return true
	}
	return false
}

// gap advances the cursor without drawing; it never forces a break.
func (e *engine) gap(h float64) {
	if e.atTop() {
		return
	}
	e.cursor.Y += h
}

// place lays out a block. A block that does not fit the remaining space moves
// whole to a new page when it fits on one; otherwise it breaks between units.
// A unit taller than a page breaks between its lines.
func (e *engine) place(block Block) {
	if block.Empty() {
		return
	}
	total := block.Height()
	if e.cursor.Y+total > e.geo.Bottom() && !e.atTop() {
		if block.KeepTogether || total <= e.pageHeight() {
			e.newPage()
		}
	}
	for _, u := range block.units {
		if e.cursor.Y+u.height > e.geo.Bottom() && !e.atTop() {
			e.newPage()
		}
		if u.height > e.pageHeight() {
			e.flow(u)
			continue
		}
		page := &e.doc.Pages[len(e.doc.Pages)-1]
		for _, el := range u.elements {
			el.Y += e.cursor.Y
			page.Elements = append(page.Elements, el)
		}
		e.cursor.Y += u.height
	}
}

// flow places an oversized unit element by element in vertical order. When an
// element would cross the bottom margin the page breaks and the element opens
// the next page.
func (e *engine) flow(u unit) {
	elements := slices.Clone(u.elements)
	slices.SortStableFunc(elements, func(a, b Element) int { return cmp.Compare(a.Y, b.Y) })
	base := e.cursor.Y
	for _, el := range elements {
		if base+el.Y+el.H > e.geo.Bottom() && base+el.Y > e.geo.MarginTop {
			e.newPage()
			base = e.geo.MarginTop - el.Y
		}
		el.Y += base
		page := &e.doc.Pages[len(e.doc.Pages)-1]
		page.Elements = append(page.Elements, el)
	}
	e.cursor.Y = min(base+u.height, e.geo.Bottom())
}
