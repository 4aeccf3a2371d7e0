package scheduler

import (
	"fmt"
	"strings"
)

// Counts returns the live in-memory queue sizes for the session's selected
// groups (§6 "counts()").
func (s *Scheduler) Counts() (newCount, learnCount, reviewCount int) {
	return s.newCount, s.learnCount, s.reviewCount
}

// AllCounts returns counts across every group without building queues
// (§6 "all_counts()").
func (s *Scheduler) AllCounts() (newCount, learnCount, reviewCount int, err error) {
	groups, err := s.store.Groups()
	if err != nil {
		return 0, 0, 0, err
	}
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return s.liveCounts(ids)
}

// SelCounts returns counts for the currently selected groups without
// rebuilding the queues (§6 "sel_counts()").
func (s *Scheduler) SelCounts() (newCount, learnCount, reviewCount int, err error) {
	return s.liveCounts(s.groupIDs)
}

func (s *Scheduler) liveCounts(groupIDs []int64) (int, int, int, error) {
	cards, err := s.store.CardsByGroups(groupIDs)
	if err != nil {
		return 0, 0, 0, err
	}
	today := s.clock.Today()
	cutoff := s.lookaheadCutoff()
	var n, l, r int
	for _, c := range cards {
		switch c.Queue {
		case QueueNew:
			n++
		case QueueLearning:
			if c.Due <= cutoff {
				l++
			}
		case QueueReview:
			if c.Due <= int64(today) {
				r++
			}
		}
	}
	return n, l, r, nil
}

// GroupCountTree returns, for every group and every "::"-prefix of its
// name, the aggregated (new, learn, review) counts of that group and all
// its descendants (§6 "group_count_tree()").
func (s *Scheduler) GroupCountTree() (map[string][3]int, error) {
	groups, err := s.store.Groups()
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	result := make(map[string][3]int)
	for _, g := range groups {
		cards, err := s.store.CardsByGroups([]int64{g.ID})
		if err != nil {
			return nil, err
		}
		var n, l, r int
		for _, c := range cards {
			switch c.Queue {
			case QueueNew:
				n++
			case QueueLearning:
				l++
			case QueueReview:
				if c.Due <= int64(today) {
					r++
				}
			}
		}
		parts := strings.Split(g.Name, "::")
		for i := range parts {
			prefix := strings.Join(parts[:i+1], "::")
			cur := result[prefix]
			cur[0] += n
			cur[1] += l
			cur[2] += r
			result[prefix] = cur
		}
	}
	return result, nil
}

// FinishedMsg summarizes why get_card returned nothing (§6 "finished_msg()").
func (s *Scheduler) FinishedMsg() string {
	if s.newCount == 0 && s.learnCount == 0 && s.reviewCount == 0 {
		return "No cards are due."
	}
	if s.newCount > 0 {
		return fmt.Sprintf("%d new card(s) waiting for their daily limit or a learning step.", s.newCount)
	}
	return fmt.Sprintf("%d learning card(s) waiting for their next step.", s.learnCount)
}
