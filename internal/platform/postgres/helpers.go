package postgres

import (
	"strings"

	"github.com/google/uuid"
)

// nullableUUID renders uuid.Nil as SQL NULL so queries can treat an absent
// filter as "match everything" via `$n::uuid IS NULL OR col = $n`.
func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

// uuidArray renders ids as a Postgres array literal for `ANY($n::uuid[])`
// parameters, which the database/sql driver cannot bind as a native slice.
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
