package truth

// LukasiewiczValue is a truth value of Łukasiewicz logic.
type LukasiewiczValue float64

func (a LukasiewiczValue) Not() LukasiewiczValue {
	return 1 - a
}

func (a LukasiewiczValue) StrongAnd(b LukasiewiczValue) LukasiewiczValue {
	return max(0, a+b-1)
}

func (a LukasiewiczValue) WeakAnd(b LukasiewiczValue) LukasiewiczValue {
	return min(a, b)
}

func (a LukasiewiczValue) StrongOr(b LukasiewiczValue) LukasiewiczValue {
	return min(1, a+b)
}

func (a LukasiewiczValue) WeakOr(b LukasiewiczValue) LukasiewiczValue {
	return max(a, b)
}

func (a LukasiewiczValue) Implies(b LukasiewiczValue) LukasiewiczValue {
	return min(1, 1-a+b)
}

func (a LukasiewiczValue) Equiv(b LukasiewiczValue) LukasiewiczValue {
	d := a - b
	if d < 0 {
		d = -d
	}
	return 1 - d
}

func (a LukasiewiczValue) Float() float64 {
	return float64(a)
}
