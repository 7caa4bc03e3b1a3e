package crypto

// Operator is one binary stage of a substitution formula.
//
// Apply works on unbounded intermediate values; only the final stage result is
// reduced to a byte. ok is false when the operation is undefined for the
// operands (division or modulo by zero).
type Operator struct {
	Name   string
	Symbol string
	Apply  func(a, b int) (v int, ok bool)
}

// Operators is the fixed operator set searched by the cipher engine. Its order
// defines the enumeration order of operator triples.
var Operators = [8]Operator{
	{Name: "xor", Symbol: "^", Apply: func(a, b int) (int, bool) { return a ^ b, true }},
	{Name: "and", Symbol: "&", Apply: func(a, b int) (int, bool) { return a & b, true }},
	{Name: "or", Symbol: "|", Apply: func(a, b int) (int, bool) { return a | b, true }},
	{Name: "add", Symbol: "+", Apply: func(a, b int) (int, bool) { return a + b, true }},
	{Name: "sub", Symbol: "-", Apply: func(a, b int) (int, bool) { return a - b, true }},
	{Name: "mul", Symbol: "*", Apply: func(a, b int) (int, bool) { return a * b, true }},
	{Name: "div", Symbol: "/", Apply: floorDiv},
	{Name: "mod", Symbol: "%", Apply: floorMod},
}

// OperatorBySymbol returns the operator rendered as sym.
func OperatorBySymbol(sym string) (Operator, bool) {
	for _, op := range Operators {
		if op.Symbol == sym {
			return op, true
		}
	}
	return Operator{}, false
}

// floorDiv rounds the quotient toward negative infinity.
func floorDiv(a, b int) (int, bool) {
	if b == 0 {
		return 0, false
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q, true
}

// floorMod returns a remainder carrying the sign of the divisor.
func floorMod(a, b int) (int, bool) {
	if b == 0 {
		return 0, false
	}
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m, true
}
