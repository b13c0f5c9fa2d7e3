package truth

// GodelValue is a truth value of Gödel-Dummett logic. Both conjunctions are
// min and both disjunctions are max.
type GodelValue float64

func (a GodelValue) Not() GodelValue {
	if a == 0 {
		return 1
	}
	return 0
}

func (a GodelValue) StrongAnd(b GodelValue) GodelValue {
	return min(a, b)
}

func (a GodelValue) WeakAnd(b GodelValue) GodelValue {
	return min(a, b)
}

func (a GodelValue) StrongOr(b GodelValue) GodelValue {
	return max(a, b)
}

func (a GodelValue) WeakOr(b GodelValue) GodelValue {
	return max(a, b)
}

func (a GodelValue) Implies(b GodelValue) GodelValue {
	if a > b {
		return b
	}
	return 1
}

func (a GodelValue) Equiv(b GodelValue) GodelValue {
	return a.Implies(b).StrongAnd(b.Implies(a))
}

func (a GodelValue) Float() float64 {
	return float64(a)
}
