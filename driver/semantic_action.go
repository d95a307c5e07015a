package driver

import (
	"fmt"
	"io"
	"strings"
)

type SemanticActionSet interface {
	// Shift runs when the driver shifts a token onto the state stack. `scanState` is the parser state
	// the token was scanned in. When the driver recovered from an error state by shifting the token,
	// `recovered` is true.
	Shift(tok VToken, scanState int, recovered bool)

	// Reduce runs when the driver reduces an RHS of a production to its LHS. `prodNum` is a number of
	// the production.
	Reduce(prodNum int)

	// Accept runs when the driver accepts an input.
	Accept()

	// TrapAndShiftError runs when the driver traps a syntax error and shifts a error symbol onto the state stack.
	// `cause` is a token that caused a syntax error. `popped` is the number of frames that the driver discards
	// from the state stack.
	TrapAndShiftError(cause VToken, popped int)

	// MissError runs when the driver fails to trap a syntax error. `cause` is a token that caused a syntax error.
	MissError(cause VToken)
}

var _ SemanticActionSet = &SyntaxTreeActionSet{}

// Node is a node of a concrete syntax tree. ScanState and Context are meaningful for token nodes only;
// they are -1 on the other nodes. Context is -1 also when the grammar has no context-aware scanner.
type Node struct {
	KindName  string
	Text      string
	Row       int
	Col       int
	ScanState int
	Context   int
	Children  []*Node
	Error     bool
}

type TreeOption func(p *treePrinter)

// ShowContexts annotates each token node with the parser state and the scanner context it was
// scanned in.
func ShowContexts() TreeOption {
	return func(p *treePrinter) {
		p.contexts = true
	}
}

type treePrinter struct {
	w        io.Writer
	contexts bool
}

func PrintTree(w io.Writer, node *Node, opts ...TreeOption) {
	p := &treePrinter{
		w: w,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.print(node, "", "")
}

func (p *treePrinter) print(node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	var b strings.Builder
	b.WriteString(ruledLine)
	switch {
	case node.Error:
		fmt.Fprintf(&b, "!%v", node.KindName)
	case node.Text != "":
		fmt.Fprintf(&b, "%v %#v", node.KindName, node.Text)
	default:
		b.WriteString(node.KindName)
	}
	if p.contexts && node.ScanState >= 0 {
		if node.Context >= 0 {
			fmt.Fprintf(&b, " @%v/ctx%v", node.ScanState, node.Context)
		} else {
			fmt.Fprintf(&b, " @%v", node.ScanState)
		}
	}
	fmt.Fprintln(p.w, b.String())

	last := len(node.Children) - 1
	for i, child := range node.Children {
		line, prefix := "├─ ", "│  "
		if i == last {
			line, prefix = "└─ ", "   "
		}
		p.print(child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// SyntaxTreeActionSet builds a concrete syntax tree. Token nodes remember the scanner context that
// produced them, so a tree shows where a context-aware scanner split or merged tokens.
type SyntaxTreeActionSet struct {
	gram     Grammar
	cst      *Node
	semStack *semanticStack
}

func NewSyntaxTreeActionSet(gram Grammar) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram:     gram,
		semStack: newSemanticStack(),
	}
}

func (a *SyntaxTreeActionSet) Shift(tok VToken, scanState int, recovered bool) {
	row, col := tok.Position()
	a.semStack.push(&Node{
		KindName:  a.gram.Terminal(a.tokenToTerminal(tok)),
		Text:      string(tok.Lexeme()),
		Row:       row,
		Col:       col,
		ScanState: scanState,
		Context:   a.gram.ScanContext(scanState),
	})
}

func (a *SyntaxTreeActionSet) Reduce(prodNum int) {
	// An empty alternative pops nothing and yields a childless node.
	handle := a.semStack.pop(a.gram.AlternativeSymbolCount(prodNum))
	children := make([]*Node, len(handle))
	copy(children, handle)

	node := &Node{
		KindName:  a.gram.NonTerminal(a.gram.LHS(prodNum)),
		ScanState: -1,
		Context:   -1,
		Children:  children,
	}
	if len(children) > 0 {
		node.Row, node.Col = children[0].Row, children[0].Col
	}
	a.semStack.push(node)
}

func (a *SyntaxTreeActionSet) Accept() {
	top := a.semStack.pop(1)
	a.cst = top[0]
}

func (a *SyntaxTreeActionSet) TrapAndShiftError(cause VToken, popped int) {
	a.semStack.pop(popped)
	row, col := cause.Position()
	a.semStack.push(&Node{
		KindName:  a.gram.Terminal(a.gram.Error()),
		Row:       row,
		Col:       col,
		ScanState: -1,
		Context:   -1,
		Error:     true,
	})
}

func (a *SyntaxTreeActionSet) MissError(cause VToken) {
}

func (a *SyntaxTreeActionSet) CST() *Node {
	return a.cst
}

// Tokens returns the token nodes of the tree in source order.
func (a *SyntaxTreeActionSet) Tokens() []*Node {
	var toks []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if len(n.Children) == 0 && n.ScanState >= 0 {
			toks = append(toks, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(a.cst)
	return toks
}

func (a *SyntaxTreeActionSet) tokenToTerminal(tok VToken) int {
	if tok.EOF() {
		return a.gram.EOF()
	}
	return tok.TerminalID()
}

type semanticStack struct {
	frames []*Node
}

func newSemanticStack() *semanticStack {
	return &semanticStack{}
}

func (s *semanticStack) push(f *Node) {
	s.frames = append(s.frames, f)
}

func (s *semanticStack) pop(n int) []*Node {
	fs := s.frames[len(s.frames)-n:]
	s.frames = s.frames[:len(s.frames)-n]
	return fs
}
