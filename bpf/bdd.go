package bpf

// bdd implements a small reduced-ordered binary decision diagram over
// Condition atoms, used only for Predicate.Satisfiable and Predicate.simplify.
// Conditions are treated as independent opaque boolean variables keyed by
// structural equality (conditionKey); two structurally distinct Conditions
// that happen to observe the same packet field are never unified. A true
// result from Satisfiable is therefore a sound hint, never a proof; false is
// a sound contradiction certificate.

// terminal node ids: 0 is the constant-false sink, 1 is constant-true.
const (
	bddFalse = 0
	bddTrue  = 1
)

type bddNode struct {
	v         int // index into vars; unused for terminal nodes
	low, high int
}

type bddKey struct {
	v, low, high int
}

type apKey struct {
	op   byte // 'a' = and, 'o' = or, 'n' = not
	a, b int
}

// bdd owns the node table and variable order for one build.
type bdd struct {
	nodes []bddNode // nodes[0], nodes[1] are unused placeholders
	uniq  map[bddKey]int
	apply map[apKey]int

	vars   []conditionKey // variable index -> condition key, in first-seen order
	varIdx map[conditionKey]int
	conds  map[conditionKey]Condition
}

func newBDD() *bdd {
	return &bdd{
		nodes:  make([]bddNode, 2),
		uniq:   make(map[bddKey]int),
		apply:  make(map[apKey]int),
		varIdx: make(map[conditionKey]int),
		conds:  make(map[conditionKey]Condition),
	}
}

// varFor returns the stable variable index for cond, assigning the next
// index the first time this structural key is seen.
func (b *bdd) varFor(cond Condition) int {
	key := cond.key()
	if idx, ok := b.varIdx[key]; ok {
		return idx
	}
	idx := len(b.vars)
	b.vars = append(b.vars, key)
	b.varIdx[key] = idx
	b.conds[key] = cond
	return idx
}

// mk returns the canonical (hash-consed) node id for (v, low, high),
// applying the standard ROBDD reduction rule that a node whose branches are
// identical is redundant and collapses to that branch.
func (b *bdd) mk(v, low, high int) int {
	if low == high {
		return low
	}
	k := bddKey{v, low, high}
	if id, ok := b.uniq[k]; ok {
		return id
	}
	id := len(b.nodes)
	b.nodes = append(b.nodes, bddNode{v: v, low: low, high: high})
	b.uniq[k] = id
	return id
}

func (b *bdd) terminalLeaf(v int) int {
	return b.mk(v, bddFalse, bddTrue)
}

func (b *bdd) topVar(n int) int {
	if n == bddFalse || n == bddTrue {
		return -1
	}
	return b.nodes[n].v
}

func (b *bdd) restrict(n, v int, branch bool) int {
	if n == bddFalse || n == bddTrue || b.nodes[n].v != v {
		return n
	}
	if branch {
		return b.nodes[n].high
	}
	return b.nodes[n].low
}

func minVar(a, b int) int {
	if a < 0 {
		return b
	}
	if b < 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

func (b *bdd) and(n1, n2 int) int {
	return b.binOp('a', n1, n2)
}

func (b *bdd) or(n1, n2 int) int {
	return b.binOp('o', n1, n2)
}

func (b *bdd) binOp(op byte, n1, n2 int) int {
	switch op {
	case 'a':
		if n1 == bddFalse || n2 == bddFalse {
			return bddFalse
		}
		if n1 == bddTrue {
			return n2
		}
		if n2 == bddTrue || n1 == n2 {
			return n1
		}
	case 'o':
		if n1 == bddTrue || n2 == bddTrue {
			return bddTrue
		}
		if n1 == bddFalse {
			return n2
		}
		if n2 == bddFalse || n1 == n2 {
			return n1
		}
	}

	key := apKey{op, n1, n2}
	if n1 > n2 {
		key = apKey{op, n2, n1}
	}
	if id, ok := b.apply[key]; ok {
		return id
	}

	v := minVar(b.topVar(n1), b.topVar(n2))
	lo := b.binOp(op, b.restrict(n1, v, false), b.restrict(n2, v, false))
	hi := b.binOp(op, b.restrict(n1, v, true), b.restrict(n2, v, true))
	id := b.mk(v, lo, hi)
	b.apply[key] = id
	return id
}

func (b *bdd) not(n int) int {
	switch n {
	case bddFalse:
		return bddTrue
	case bddTrue:
		return bddFalse
	}
	key := apKey{'n', n, n}
	if id, ok := b.apply[key]; ok {
		return id
	}
	node := b.nodes[n]
	id := b.mk(node.v, b.not(node.low), b.not(node.high))
	b.apply[key] = id
	return id
}

// build lowers an Expr tree into a node id in this bdd, assigning variable
// indices to Terminal Conditions as they're first encountered.
func (b *bdd) build(e expr) int {
	switch n := e.(type) {
	case exprConst:
		if bool(n) {
			return bddTrue
		}
		return bddFalse
	case exprTerminal:
		return b.terminalLeaf(b.varFor(Condition(n)))
	case exprNot:
		return b.not(b.build(n.e))
	case exprAnd:
		return b.and(b.build(n.a), b.build(n.b))
	case exprOr:
		return b.or(b.build(n.a), b.build(n.b))
	default:
		panic("bpf: unreachable expr kind")
	}
}

// toExpr converts a node back into an expr tree via Shannon expansion,
// node = (var AND high) OR (NOT var AND low). Used by simplify to drop
// branches the BDD proved trivially redundant (identical low/high merged
// away by mk, or the whole predicate collapsing to a constant).
func (b *bdd) toExpr(n int) expr {
	switch n {
	case bddFalse:
		return exprConst(false)
	case bddTrue:
		return exprConst(true)
	}
	node := b.nodes[n]
	cond := b.conds[b.vars[node.v]]
	term := exprTerminal(cond)

	if node.low == bddFalse && node.high == bddTrue {
		return term
	}
	if node.low == bddTrue && node.high == bddFalse {
		return exprNot{term}
	}

	hi := exprAnd{exprTerminal(cond), b.toExpr(node.high)}
	lo := exprAnd{exprNot{exprTerminal(cond)}, b.toExpr(node.low)}
	return exprOr{hi, lo}
}
