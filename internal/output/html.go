package output

import (
	"io"
	"strconv"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// encodeHTML renders the outline as a <nav> holding the title and nested
// ordered lists, one list level per heading depth. Entries link to their
// page with a #page=N fragment.
func encodeHTML(w io.Writer, st outline.Structure) error {
	nav := element(atom.Nav, html.Attribute{Key: "class", Val: "outline"})
	heading := element(atom.H1)
	heading.AppendChild(&html.Node{Type: html.TextNode, Data: st.Title})
	nav.AppendChild(heading)

	root := element(atom.Ol)
	nav.AppendChild(root)

	type level struct {
		list  *html.Node
		depth int
	}
	stack := []level{{list: root, depth: 1}}

	for _, e := range st.Outline {
		depth := max(e.Level.Depth(), 1)
		for len(stack) > 1 && stack[len(stack)-1].depth > depth {
			stack = stack[:len(stack)-1]
		}
		for top := stack[len(stack)-1]; top.depth < depth; top = stack[len(stack)-1] {
			parent := top.list.LastChild
			if parent == nil {
				parent = element(atom.Li)
				top.list.AppendChild(parent)
			}
			list := element(atom.Ol)
			parent.AppendChild(list)
			stack = append(stack, level{list: list, depth: top.depth + 1})
		}

		link := element(atom.A, html.Attribute{Key: "href", Val: "#page=" + strconv.Itoa(e.Page)})
		link.AppendChild(&html.Node{Type: html.TextNode, Data: e.Text})
		item := element(atom.Li, html.Attribute{Key: "class", Val: string(e.Level)})
		item.AppendChild(link)
		stack[len(stack)-1].list.AppendChild(item)
	}

	if err := html.Render(w, nav); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}
