package scheduler

// applySiblingSpacing walks candidate due days [ideal, ideal-1, ideal+1]
// until one collides with no sibling within minSpace days, or the search is
// exhausted, in which case ideal is accepted unconditionally (§4.F "Sibling
// spacing rule", §9 "sibling spacing search cap"). siblingDues are the
// due-day values (as day numbers) of the card's other REVIEW-state
// siblings.
func applySiblingSpacing(ideal int, minSpace int, siblingDues []int64) int {
	if minSpace <= 0 || len(siblingDues) == 0 {
		return ideal
	}
	candidates := []int{ideal, ideal - 1, ideal + 1}
	for _, c := range candidates {
		if !collidesWithSibling(c, minSpace, siblingDues) {
			return c
		}
	}
	return ideal
}

func collidesWithSibling(day int, minSpace int, siblingDues []int64) bool {
	for _, due := range siblingDues {
		diff := int(due) - day
		if diff < 0 {
			diff = -diff
		}
		if diff < minSpace {
			return true
		}
	}
	return false
}
