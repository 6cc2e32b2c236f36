package expr

// Eq creates a condition for checking equality.
func Eq(e Expression, value any) Predicate {
	return Compare{Expr: e, Op: OpEq, Value: value}
}

// Neq creates a condition for checking inequality.
func Neq(e Expression, value any) Predicate {
	return Compare{Expr: e, Op: OpNeq, Value: value}
}

// Lt creates a condition for checking if a value is less than another.
func Lt(e Expression, value any) Predicate {
	return Compare{Expr: e, Op: OpLt, Value: value}
}

// Lte creates a condition for checking if a value is less than or equal to another.
func Lte(e Expression, value any) Predicate {
	return Compare{Expr: e, Op: OpLte, Value: value}
}

// Gt creates a condition for checking if a value is greater than another.
func Gt(e Expression, value any) Predicate {
	return Compare{Expr: e, Op: OpGt, Value: value}
}

// Gte creates a condition for checking if a value is greater than or equal to another.
func Gte(e Expression, value any) Predicate {
	return Compare{Expr: e, Op: OpGte, Value: value}
}

// Like creates a condition for checking if a value matches a pattern.
func Like(e Expression, pattern string) Predicate {
	return Compare{Expr: e, Op: OpLike, Value: pattern}
}

// InRange creates an inclusive BETWEEN condition.
func InRange(e Expression, low, high any) Predicate {
	return Between{Expr: e, Low: low, High: high}
}

// Null creates an IS NULL condition.
func Null(e Expression) Predicate {
	return IsNull{Expr: e}
}

// NotNull creates an IS NOT NULL condition.
func NotNull(e Expression) Predicate {
	return IsNull{Expr: e, Not: true}
}

// AllOf combines predicates with AND.
func AllOf(preds ...Predicate) Predicate {
	return And{Predicates: preds}
}

// AnyOf combines predicates with OR.
func AnyOf(preds ...Predicate) Predicate {
	return Or{Predicates: preds}
}

// Asc orders by e ascending.
func Asc(e Expression) Order {
	return Order{Expr: e}
}

// Desc orders by e descending.
func Desc(e Expression) Order {
	return Order{Expr: e, Desc: true}
}
