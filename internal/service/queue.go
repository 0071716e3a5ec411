package service

import "github.com/yusufkecer/hospital-backend/internal/domain"

// EstimateWaits fills EstimatedWaitMinutes for every entry: the number of
// entries still waiting ahead of it in the same department times the
// average consultation length. Entries that are no longer waiting get zero.
func EstimateWaits(entries []domain.QueueEntry, avgConsultMinutes int) {
	for i := range entries {
		entries[i].EstimatedWaitMinutes = waitFor(entries, &entries[i], avgConsultMinutes)
	}
}

// EstimateWait computes the wait for a single entry against its day's queue.
func EstimateWait(queue []domain.QueueEntry, entry *domain.QueueEntry, avgConsultMinutes int) {
	entry.EstimatedWaitMinutes = waitFor(queue, entry, avgConsultMinutes)
}

func waitFor(queue []domain.QueueEntry, entry *domain.QueueEntry, avg int) int {
	if entry.Status != domain.QueueWaiting {
		return 0
	}
	ahead := 0
	for _, q := range queue {
		if q.Department == entry.Department && q.Status == domain.QueueWaiting && q.QueueNumber < entry.QueueNumber {
			ahead++
		}
	}
	return ahead * avg
}

func CountWaiting(queue []domain.QueueEntry) int {
	n := 0
	for _, q := range queue {
		if q.Status == domain.QueueWaiting {
			n++
		}
	}
	return n
}
