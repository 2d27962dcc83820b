package yomitan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/youyoumu/hanayomi/internal/domain"
)

// MaxContentDepth bounds the nesting of a structured content document.
// Real dictionaries stay far below it; the bound only rejects pathological
// input before the recursive decoder and validator walk it.
const MaxContentDepth = 1000

// ContentKind selects the populated variant of Content.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentArray
	ContentNode
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentArray:
		return "array"
	case ContentNode:
		return "node"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// Content is a structured content tree: a text leaf, an array of child
// content, or a single element node.
type Content struct {
	Kind  ContentKind
	Text  string
	Items []Content
	Node  *Node
}

// TextContent returns a text leaf.
func TextContent(s string) Content { return Content{Kind: ContentText, Text: s} }

// ArrayContent returns an array of child content.
func ArrayContent(items ...Content) Content {
	if items == nil {
		items = []Content{}
	}
	return Content{Kind: ContentArray, Items: items}
}

// NodeContent returns content wrapping a single element.
func NodeContent(n Node) Content { return Content{Kind: ContentNode, Node: &n} }

// Ptr returns a pointer to c, for use as an element's nested content.
func (c Content) Ptr() *Content { return &c }

func (c Content) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ContentText:
		return json.Marshal(c.Text)
	case ContentArray:
		if c.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.Items)
	case ContentNode:
		if c.Node == nil {
			return nil, fmt.Errorf("structured content: node variant without node")
		}
		return c.Node.MarshalJSON()
	default:
		return nil, fmt.Errorf("structured content: unknown kind %d", c.Kind)
	}
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return domain.NewSchemaError("", "empty structured content")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return withPath(err, "")
		}
		*c = TextContent(s)
		return nil
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return withPath(err, "")
		}
		items := make([]Content, len(raws))
		for i, raw := range raws {
			if err := json.Unmarshal(raw, &items[i]); err != nil {
				return withPath(err, fmt.Sprintf("[%d]", i))
			}
		}
		*c = Content{Kind: ContentArray, Items: items}
		return nil
	case '{':
		var n Node
		if err := n.UnmarshalJSON(data); err != nil {
			return err
		}
		*c = Content{Kind: ContentNode, Node: &n}
		return nil
	default:
		return domain.NewSchemaError("", fmt.Sprintf("structured content must be a string, array or object, got %s", jsonKind(data)))
	}
}

// ParseContent decodes a standalone structured content document, rejecting
// documents nested deeper than MaxContentDepth.
func ParseContent(data []byte) (Content, error) {
	if err := checkDepth(data, MaxContentDepth); err != nil {
		return Content{}, err
	}
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return Content{}, withPath(err, "")
	}
	return c, nil
}

// Tag names a structured content element.
type Tag string

const (
	TagBr      Tag = "br"
	TagRuby    Tag = "ruby"
	TagRt      Tag = "rt"
	TagRp      Tag = "rp"
	TagTable   Tag = "table"
	TagThead   Tag = "thead"
	TagTbody   Tag = "tbody"
	TagTfoot   Tag = "tfoot"
	TagTr      Tag = "tr"
	TagTd      Tag = "td"
	TagTh      Tag = "th"
	TagSpan    Tag = "span"
	TagDiv     Tag = "div"
	TagOl      Tag = "ol"
	TagUl      Tag = "ul"
	TagLi      Tag = "li"
	TagDetails Tag = "details"
	TagSummary Tag = "summary"
	TagImg     Tag = "img"
	TagA       Tag = "a"
)

// elementFamily groups tags that share the same field set.
type elementFamily int

const (
	familyUnknown elementFamily = iota
	familyBreak
	familyContainer
	familyCell
	familyStyled
	familyImage
	familyLink
)

func (t Tag) family() elementFamily {
	switch t {
	case TagBr:
		return familyBreak
	case TagRuby, TagRt, TagRp, TagTable, TagThead, TagTbody, TagTfoot, TagTr:
		return familyContainer
	case TagTd, TagTh:
		return familyCell
	case TagSpan, TagDiv, TagOl, TagUl, TagLi, TagDetails, TagSummary:
		return familyStyled
	case TagImg:
		return familyImage
	case TagA:
		return familyLink
	default:
		return familyUnknown
	}
}

// Known reports whether t is one of the recognized element tags.
func (t Tag) Known() bool { return t.family() != familyUnknown }

// Node is one structured content element. Tag selects the element kind and
// exactly one of the element pointers matching that kind is set.
type Node struct {
	Tag       Tag
	Break     *BreakElement
	Container *ContainerElement
	Cell      *TableCellElement
	Styled    *StyledElement
	Image     *ImageElement
	Link      *LinkElement
}

// Data holds free-form data attributes of an element.
type Data map[string]string

// BreakElement is a line break.
type BreakElement struct {
	Data Data `json:"data,omitempty"`
}

// ContainerElement is a generic container (ruby, rt, rp, table, thead,
// tbody, tfoot, tr).
type ContainerElement struct {
	Content *Content `json:"content,omitempty" validate:"-"`
	Data    Data     `json:"data,omitempty"`
	Lang    *string  `json:"lang,omitempty"`
}

// TableCellElement is a td or th cell.
type TableCellElement struct {
	Content *Content `json:"content,omitempty" validate:"-"`
	Data    Data     `json:"data,omitempty"`
	ColSpan *int     `json:"colSpan,omitempty" validate:"omitnil,min=1"`
	RowSpan *int     `json:"rowSpan,omitempty" validate:"omitnil,min=1"`
	Style   *Style   `json:"style,omitempty"`
	Lang    *string  `json:"lang,omitempty"`
}

// StyledElement is a container supporting styles (span, div, ol, ul, li,
// details, summary).
type StyledElement struct {
	Content *Content `json:"content,omitempty" validate:"-"`
	Data    Data     `json:"data,omitempty"`
	Style   *Style   `json:"style,omitempty"`
	Title   *string  `json:"title,omitempty"`
	Open    *bool    `json:"open,omitempty"`
	Lang    *string  `json:"lang,omitempty"`
}

// ImageElement is an inline image.
type ImageElement struct {
	Path           string   `json:"path"`
	Data           Data     `json:"data,omitempty"`
	Width          *float64 `json:"width,omitempty"  validate:"omitnil,gte=0"`
	Height         *float64 `json:"height,omitempty" validate:"omitnil,gte=0"`
	Title          *string  `json:"title,omitempty"`
	Alt            *string  `json:"alt,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Pixelated      bool     `json:"pixelated"`
	ImageRendering string   `json:"imageRendering" validate:"oneof=auto pixelated crisp-edges"`
	Appearance     string   `json:"appearance"     validate:"oneof=auto monochrome"`
	Background     bool     `json:"background"`
	Collapsed      bool     `json:"collapsed"`
	Collapsible    bool     `json:"collapsible"`
	VerticalAlign  *string  `json:"verticalAlign,omitempty" validate:"omitnil,oneof=baseline sub super text-top text-bottom middle top bottom"`
	Border         *string  `json:"border,omitempty"`
	BorderRadius   *string  `json:"borderRadius,omitempty"`
	SizeUnits      *string  `json:"sizeUnits,omitempty" validate:"omitnil,oneof=px em"`
}

// NewImageElement returns an image element with the format defaults applied.
func NewImageElement(path string) *ImageElement {
	return &ImageElement{
		Path:           path,
		ImageRendering: "auto",
		Appearance:     "auto",
		Background:     true,
		Collapsible:    true,
	}
}

// LinkElement is a hyperlink.
type LinkElement struct {
	Href    string   `json:"href" validate:"href"`
	Content *Content `json:"content,omitempty" validate:"-"`
	Lang    *string  `json:"lang,omitempty"`
}

// element returns the populated element struct for n.Tag, or nil.
func (n Node) element() any {
	switch n.Tag.family() {
	case familyBreak:
		if n.Break == nil {
			return &BreakElement{}
		}
		return n.Break
	case familyContainer:
		if n.Container == nil {
			return &ContainerElement{}
		}
		return n.Container
	case familyCell:
		if n.Cell == nil {
			return &TableCellElement{}
		}
		return n.Cell
	case familyStyled:
		if n.Styled == nil {
			return &StyledElement{}
		}
		return n.Styled
	case familyImage:
		return n.Image
	case familyLink:
		return n.Link
	default:
		return nil
	}
}

// Children returns the nested content of n, or nil for leaf elements.
func (n Node) Children() *Content {
	switch n.Tag.family() {
	case familyContainer:
		if n.Container != nil {
			return n.Container.Content
		}
	case familyCell:
		if n.Cell != nil {
			return n.Cell.Content
		}
	case familyStyled:
		if n.Styled != nil {
			return n.Styled.Content
		}
	case familyLink:
		if n.Link != nil {
			return n.Link.Content
		}
	}
	return nil
}

func (n Node) MarshalJSON() ([]byte, error) {
	el := n.element()
	if el == nil || (n.Tag == TagImg && n.Image == nil) || (n.Tag == TagA && n.Link == nil) {
		return nil, fmt.Errorf("structured content: cannot encode element %q", n.Tag)
	}
	return withDiscriminant("tag", string(n.Tag), el)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return withPath(err, "")
	}

	rawTag, ok := fields["tag"]
	if !ok {
		return domain.NewSchemaError("tag", "missing element tag")
	}
	var name string
	if err := decodeField(rawTag, "tag", &name); err != nil {
		return err
	}

	tag := Tag(name)
	fam := tag.family()
	switch fam {
	case familyUnknown:
		return domain.NewSchemaError("tag", fmt.Sprintf("unknown element tag %q", name))
	case familyImage:
		if _, ok := fields["path"]; !ok {
			return domain.NewSchemaError("path", "img element requires a path")
		}
	case familyLink:
		if _, ok := fields["href"]; !ok {
			return domain.NewSchemaError("href", "a element requires an href")
		}
	}

	// Nested content is decoded here rather than through the element struct
	// so that errors keep their position in the tree.
	var child *Content
	if raw, ok := fields["content"]; ok && fam != familyBreak && fam != familyImage {
		delete(fields, "content")
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			var c Content
			if err := json.Unmarshal(raw, &c); err != nil {
				return withPath(err, "content")
			}
			child = &c
		}
	}
	delete(fields, "tag")

	rest, err := json.Marshal(fields)
	if err != nil {
		return withPath(err, "")
	}

	out := Node{Tag: tag}
	switch fam {
	case familyBreak:
		out.Break = &BreakElement{}
		err = json.Unmarshal(rest, out.Break)
	case familyContainer:
		out.Container = &ContainerElement{}
		err = json.Unmarshal(rest, out.Container)
		out.Container.Content = child
	case familyCell:
		out.Cell = &TableCellElement{}
		err = json.Unmarshal(rest, out.Cell)
		out.Cell.Content = child
	case familyStyled:
		out.Styled = &StyledElement{}
		err = json.Unmarshal(rest, out.Styled)
		out.Styled.Content = child
	case familyImage:
		out.Image = NewImageElement("")
		err = json.Unmarshal(rest, out.Image)
	case familyLink:
		out.Link = &LinkElement{}
		err = json.Unmarshal(rest, out.Link)
		out.Link.Content = child
	}
	if err != nil {
		return withPath(err, "")
	}

	*n = out
	return nil
}
