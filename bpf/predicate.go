package bpf

import "fmt"

// expr is the boolean expression tree Predicate wraps. Each node owns its
// children exclusively; there are no cycles by construction.
type expr interface {
	isExpr()
}

type exprConst bool
type exprTerminal Condition
type exprNot struct{ e expr }
type exprAnd struct{ a, b expr }
type exprOr struct{ a, b expr }

func (exprConst) isExpr()    {}
func (exprTerminal) isExpr() {}
func (exprNot) isExpr()      {}
func (exprAnd) isExpr()      {}
func (exprOr) isExpr()       {}

// Predicate is a recursive boolean expression over Conditions, built with
// ConstTrue/ConstFalse/Terminal and combined with And/Or/Not. It is
// immutable; every combinator returns a new Predicate.
type Predicate struct {
	e expr
}

// ConstTrue is the predicate that accepts every frame.
func ConstTrue() Predicate { return Predicate{exprConst(true)} }

// ConstFalse is the predicate that accepts no frame.
func ConstFalse() Predicate { return Predicate{exprConst(false)} }

// Terminal wraps a single Condition as a leaf predicate.
func Terminal(cond Condition) Predicate {
	return Predicate{exprTerminal(cond)}
}

// And returns a predicate true iff both p and q are true.
func (p Predicate) And(q Predicate) Predicate {
	return Predicate{exprAnd{p.e, q.e}}
}

// Or returns a predicate true iff either p or q is true.
func (p Predicate) Or(q Predicate) Predicate {
	return Predicate{exprOr{p.e, q.e}}
}

// Not returns the negation of p.
func (p Predicate) Not() Predicate {
	return Predicate{exprNot{p.e}}
}

// Satisfiable reports whether some assignment of the predicate's Conditions
// (treated as independent boolean variables) makes it true. A true result
// is a hint: two structurally distinct Conditions that happen to observe
// the same packet field are never unified. A false result is a sound
// contradiction certificate.
func (p Predicate) Satisfiable() bool {
	b := newBDD()
	n := b.build(p.e)
	return n != bddFalse
}

// simplify reduces the expression via a BDD pass to drop branches the BDD
// proves are trivially redundant (e.g. a sub-term whose truth no longer
// depends on anything once its sibling is known).
func (p Predicate) simplify() Predicate {
	b := newBDD()
	n := b.build(p.e)
	return Predicate{b.toExpr(n)}
}

// Compile lowers the predicate into a flat cBPF Program, threading jt/jf
// target counts backward through the expression tree so every jump offset
// is known at the instant it's emitted, then reversing the accumulated
// buffer into execution order. See walk for the per-node rules.
func (p Predicate) Compile() (*Program, error) {
	simplified := p.simplify()

	// The epilogue is emitted first (ending up last after the reversal):
	// [LOAD_LENGTH, RET A, RET #0] in execution order. The outermost walk
	// call's (jt, jf) are the forward distances from wherever the jump ends
	// up to the start of each branch of this prelude: jt=0 because ACCEPT
	// (LOAD_LENGTH) is the instruction immediately following whatever jump
	// decides the predicate, jf=len(accept) because REJECT (RET #0) sits
	// immediately after the whole accept sequence.
	accept := acceptEpilogue()
	reject := dropEpilogue()
	buf := reverseCopy(append(append([]Instruction{}, accept...), reject...))

	walked, err := walk(simplified.e, 0, len(accept))
	if err != nil {
		return nil, err
	}
	buf = append(buf, walked...)

	reverseInPlace(buf)
	return NewProgram(buf)
}

// walk implements the backward code generator. jt/jf mean "from the point
// this subexpression's truth is decided, execute jt more instructions to
// reach ACCEPT and jf more to reach REJECT". It returns instructions in
// reverse execution order; Compile reverses the final concatenation once.
func walk(e expr, jt, jf int) ([]Instruction, error) {
	switch n := e.(type) {
	case exprTerminal:
		if jt > 255 || jf > 255 {
			return nil, fmt.Errorf("%w: jump offset jt=%d jf=%d exceeds 255", ErrFilterProgramOverflow, jt, jf)
		}
		return Condition(n).build(jt, jf), nil

	case exprNot:
		return walk(n.e, jf, jt)

	case exprAnd:
		// b is walked first because it runs after a; a true result of a
		// falls through to b, a false result short-circuits straight to
		// REJECT.
		res, err := walk(n.b, jt, jf)
		if err != nil {
			return nil, err
		}
		aRes, err := walk(n.a, 0, jf+len(res))
		if err != nil {
			return nil, err
		}
		return append(res, aRes...), nil

	case exprOr:
		// b is walked first because it runs after a; a true result of a
		// short-circuits straight to ACCEPT, a false result falls through
		// to b.
		res, err := walk(n.b, jt, jf)
		if err != nil {
			return nil, err
		}
		aRes, err := walk(n.a, jt+len(res), 0)
		if err != nil {
			return nil, err
		}
		return append(res, aRes...), nil

	case exprConst:
		if bool(n) {
			return reverseCopy(acceptEpilogue()), nil
		}
		return reverseCopy(dropEpilogue()), nil

	default:
		panic("bpf: unreachable expr kind")
	}
}

func reverseCopy(in []Instruction) []Instruction {
	out := make([]Instruction, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func reverseInPlace(s []Instruction) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
