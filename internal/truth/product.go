package truth

// ProductValue is a truth value of product logic.
type ProductValue float64

func (a ProductValue) Not() ProductValue {
	if a == 0 {
		return 1
	}
	return 0
}

func (a ProductValue) StrongAnd(b ProductValue) ProductValue {
	return a * b
}

func (a ProductValue) WeakAnd(b ProductValue) ProductValue {
	return min(a, b)
}

func (a ProductValue) StrongOr(b ProductValue) ProductValue {
	return a + b - a*b
}

func (a ProductValue) WeakOr(b ProductValue) ProductValue {
	return max(a, b)
}

// Implies is the Goguen implication; a > b guarantees a != 0.
func (a ProductValue) Implies(b ProductValue) ProductValue {
	if a > b {
		return b / a
	}
	return 1
}

func (a ProductValue) Equiv(b ProductValue) ProductValue {
	return a.Implies(b).StrongAnd(b.Implies(a))
}

func (a ProductValue) Float() float64 {
	return float64(a)
}
