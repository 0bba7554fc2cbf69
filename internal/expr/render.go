package expr

import "strings"

// Render returns the C text of e. Every compound node is parenthesised so
// the text never depends on operator precedence.
func Render(e Expr) string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}

func (r Ref) render(b *strings.Builder) { b.WriteString(r.Name) }

func (l Lit) render(b *strings.Builder) {
	if strings.HasPrefix(l.Text, "-") {
		b.WriteString("(")
		b.WriteString(l.Text)
		b.WriteString(")")
		return
	}
	b.WriteString(l.Text)
}

func (c Cast) render(b *strings.Builder) {
	b.WriteString("((")
	b.WriteString(c.TypeName)
	b.WriteString(") ")
	c.X.render(b)
	b.WriteString(")")
}

func (c Call) render(b *strings.Builder) {
	b.WriteString(c.Func)
	b.WriteString("(")
	c.Arg.render(b)
	b.WriteString(")")
}

func (e Binary) render(b *strings.Builder) {
	b.WriteString("(")
	e.L.render(b)
	b.WriteString(" ")
	b.WriteString(e.Op.String())
	b.WriteString(" ")
	e.R.render(b)
	b.WriteString(")")
}

func (c Cond) render(b *strings.Builder) {
	b.WriteString("((")
	c.L.render(b)
	b.WriteString(" ")
	b.WriteString(string(c.Op))
	b.WriteString(" ")
	c.R.render(b)
	b.WriteString(") ? ")
	c.Then.render(b)
	b.WriteString(" : ")
	c.Else.render(b)
	b.WriteString(")")
}
