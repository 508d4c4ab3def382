package models

// All returns every model the library persists, in migration order
func All() []any {
	return []any{
		&Transcript{},
		&Vocabulary{},
	}
}
