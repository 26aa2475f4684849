package models

// All lists every table, in migration order.
func All() []any {
	return []any{&User{}, &Thread{}, &Chat{}, &Feedback{}, &ActivityLog{}}
}
