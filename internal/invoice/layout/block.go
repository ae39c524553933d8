package layout

// unit is the smallest piece of a block that is never split across pages.
// Element Y values are relative to the unit's top edge.
type unit struct {
	height   float64
	elements []Element
}

// Block is the content emitted by one section, ready for placement.
type Block struct {
	Section      Section
	KeepTogether bool
	units        []unit
}

// Height is the total vertical extent of the block.
func (b Block) Height() float64 {
	var h float64
	for _, u := range b.units {
		h += u.height
	}
	return h
}

// Empty reports whether the block draws nothing.
func (b Block) Empty() bool {
	for _, u := range b.units {
		if len(u.elements) > 0 {
			return false
		}
	}
	return true
}

// blockBuilder accumulates elements with a local vertical cursor.
type blockBuilder struct {
	section Section
	keep    bool
	units   []unit
	current unit
	y       float64
}

func newBlock(section Section) *blockBuilder {
	return &blockBuilder{section: section}
}

// keepTogether marks the whole block as one placement unit.
func (b *blockBuilder) keepTogether() *blockBuilder {
	b.keep = true
	return b
}

// split closes the current unit; following content may start a new page.
func (b *blockBuilder) split() {
	if b.y == 0 && len(b.current.elements) == 0 {
		return
	}
	b.current.height = b.y
	b.units = append(b.units, b.current)
	b.current = unit{}
	b.y = 0
}

func (b *blockBuilder) advance(h float64) {
	b.y += h
}

func (b *blockBuilder) put(el Element) {
	el.Section = b.section
	el.Y += b.y
	b.current.elements = append(b.current.elements, el)
}

// text places one line at the current y without advancing.
func (b *blockBuilder) text(x, w float64, s string, font Font, color Color, align Align) {
	if s == "" {
		return
	}
	b.put(Element{Kind: ElementText, X: x, W: w, H: lineHeight(font), Text: s, Font: font, Color: color, Align: align})
}

// line places one line of text and advances past it.
func (b *blockBuilder) line(x, w float64, s string, font Font, color Color, align Align) {
	b.text(x, w, s, font, color, align)
	b.advance(lineHeight(font))
}

// paragraph wraps s to w and places each line, advancing past all of them.
func (b *blockBuilder) paragraph(m Measurer, x, w float64, s string, font Font, color Color) {
	b.wrapped(m, x, w, s, font, color, AlignLeft)
}

// wrapped is paragraph with an explicit alignment. Empty s draws nothing.
func (b *blockBuilder) wrapped(m Measurer, x, w float64, s string, font Font, color Color, align Align) {
	if s == "" {
		return
	}
	for _, l := range m.SplitText(s, font, w) {
		b.line(x, w, l, font, color, align)
	}
}

// rule draws a horizontal line at the current y.
func (b *blockBuilder) rule(x, w float64) {
	b.put(Element{Kind: ElementRule, X: x, W: w, Color: ColorRule})
}

func (b *blockBuilder) image(x, w, h float64, logo *Logo) {
	b.put(Element{Kind: ElementImage, X: x, W: w, H: h, Image: logo})
}

func (b *blockBuilder) build() Block {
	b.split()
	return Block{Section: b.section, KeepTogether: b.keep, units: b.units}
}
