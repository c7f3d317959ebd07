package lp

import (
	"math"
	"sort"
)

// Variable is an opaque handle to one column of a Model. Equality and
// ordering are by id; the zero value refers to column 0. Variables are
// plain values and safe to copy across goroutines; only the model they
// belong to is guarded by a lock.
type Variable struct {
	id int32
}

// ID returns the column index of v in its model.
func (v Variable) ID() int { return int(v.id) }

// Less orders variables by column id.
func (v Variable) Less(o Variable) bool { return v.id < o.id }

// Expression is a finite mapping from Variable to coefficient plus a
// constant term. The zero value is the empty expression (constant 0).
// Expressions are transient: built, combined and consumed when turned into
// a constraint or an objective. Combinators mutate the receiver's term map
// where possible instead of copying, so treat an expression as moved-from
// after passing it to Add.
type Expression struct {
	terms    map[int32]float64
	constant float64
}

// Term returns the single-term expression coef·v.
func Term(v Variable, coef float64) Expression {
	return Expression{terms: map[int32]float64{v.id: coef}}
}

// Constant returns the constant expression c.
func Constant(c float64) Expression {
	return Expression{constant: c}
}

// AddTerm accumulates coef·v into e. Zero resulting coefficients are kept;
// composition order is immaterial.
func (e *Expression) AddTerm(v Variable, coef float64) {
	if e.terms == nil {
		e.terms = make(map[int32]float64)
	}
	e.terms[v.id] += coef
}

// Add accumulates o into e (the += combinator). o's storage is absorbed
// when e is empty.
func (e *Expression) Add(o Expression) {
	if e.terms == nil {
		e.terms = o.terms
	} else {
		for id, coef := range o.terms {
			e.terms[id] += coef
		}
	}
	e.constant += o.constant
}

// AddConstant accumulates c into e's constant term.
func (e *Expression) AddConstant(c float64) { e.constant += c }

// Mul scales every coefficient and the constant by factor, consuming e.
func (e Expression) Mul(factor float64) Expression {
	for id := range e.terms {
		e.terms[id] *= factor
	}
	e.constant *= factor

	return e
}

// Neg returns −e, consuming e.
func (e Expression) Neg() Expression { return e.Mul(-1) }

// Coefficient returns the coefficient of v (0 when absent).
func (e Expression) Coefficient(v Variable) float64 { return e.terms[v.id] }

// ConstantTerm returns the constant term of e.
func (e Expression) ConstantTerm() float64 { return e.constant }

// Variables returns the variables of e in ascending id order. Intended for
// deterministic iteration; allocates a fresh slice.
func (e Expression) Variables() []Variable {
	vars := make([]Variable, 0, len(e.terms))
	for id := range e.terms {
		vars = append(vars, Variable{id: id})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].id < vars[j].id })

	return vars
}

// Evaluate computes the value of e under the given column valuation.
func (e Expression) Evaluate(value func(Variable) float64) float64 {
	result := e.constant
	for id, coef := range e.terms {
		result += coef * value(Variable{id: id})
	}

	return result
}

// Value evaluates e against the primal solution of m.
func (e Expression) Value(m *Model) float64 {
	return e.Evaluate(m.Value)
}

// Constraint is a linear expression with a lower and an upper bound;
// either bound may be ±Inf. Invariant: Lower ≤ Upper. Constraints are
// created by the three relational constructors below and are immutable.
type Constraint struct {
	vars  []int32
	coefs []float64
	lower float64
	upper float64
}

// LessEq builds the constraint lhs ≤ rhs, consuming both expressions.
func LessEq(lhs, rhs Expression) Constraint {
	c := newConstraint(lhs, rhs)
	c.lower = math.Inf(-1)

	return c
}

// GreaterEq builds the constraint lhs ≥ rhs, consuming both expressions.
func GreaterEq(lhs, rhs Expression) Constraint {
	c := newConstraint(lhs, rhs)
	c.upper = math.Inf(1)

	return c
}

// Equal builds the constraint lhs = rhs, consuming both expressions.
func Equal(lhs, rhs Expression) Constraint {
	return newConstraint(lhs, rhs)
}

// newConstraint normalizes lhs − rhs into coefficient form with both
// bounds set to the negated constant (an equality); the relational
// constructors then open one side.
func newConstraint(lhs, rhs Expression) Constraint {
	lhs.Add(rhs.Neg())

	ids := make([]int32, 0, len(lhs.terms))
	for id := range lhs.terms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	coefs := make([]float64, len(ids))
	for i, id := range ids {
		coefs[i] = lhs.terms[id]
	}

	bound := -lhs.constant

	return Constraint{vars: ids, coefs: coefs, lower: bound, upper: bound}
}

// LowerBound returns the lower bound of c (may be −Inf).
func (c Constraint) LowerBound() float64 { return c.lower }

// UpperBound returns the upper bound of c (may be +Inf).
func (c Constraint) UpperBound() float64 { return c.upper }

// Variables returns the constrained columns in ascending id order in a
// freshly allocated slice.
func (c Constraint) Variables() []Variable {
	vars := make([]Variable, len(c.vars))
	for i, id := range c.vars {
		vars[i] = Variable{id: id}
	}

	return vars
}

// Coefficients returns the coefficients aligned with Variables. The
// returned slice is owned by c; callers must not mutate it.
func (c Constraint) Coefficients() []float64 { return c.coefs }

// Holds reports whether the constraint is satisfied within tolerance
// under the given column valuation.
func (c Constraint) Holds(value func(Variable) float64, tolerance float64) bool {
	sum := 0.0
	for i, id := range c.vars {
		sum += c.coefs[i] * value(Variable{id: id})
	}

	return c.lower <= sum+tolerance && sum-tolerance <= c.upper
}
