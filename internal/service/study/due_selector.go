package study

// interleave merges the due queue and the unseen-card queue into one study
// queue: due cards keep their most-overdue-first order, and one unseen card
// is inserted after every ratio due cards. Once either queue runs out the
// other continues uninterrupted. The result never exceeds limit.
func interleave(due, fresh []DueCard, ratio, limit int) []DueCard {
	if limit <= 0 {
		return nil
	}
	if ratio <= 0 {
		ratio = 1
	}

	queue := make([]DueCard, 0, limit)
	di, fi := 0, 0
	sinceFresh := 0

	for len(queue) < limit && (di < len(due) || fi < len(fresh)) {
		takeFresh := fi < len(fresh) && (sinceFresh >= ratio || di >= len(due))
		if takeFresh {
			queue = append(queue, fresh[fi])
			fi++
			sinceFresh = 0
			continue
		}

		queue = append(queue, due[di])
		di++
		sinceFresh++
	}

	return queue
}

// newCardCap is how many unseen cards a selection of the given limit may
// contain.
func newCardCap(limit int, share float64) int {
	if share <= 0 {
		return 0
	}
	n := int(float64(limit) * share)
	if n < 1 && limit > 0 {
		// Never starve tiny limits of new material entirely.
		n = 1
	}
	return n
}
