// Package domain defines the core entities of the adaptive learning engine:
// flashcards, per-user review scheduling state, the append-only review event
// log, and the derived per-domain mastery snapshot.
package domain
