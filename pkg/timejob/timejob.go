// Package timejob orders the daemon's time-job index by directory
// priority so that the scheduler dispatches high-priority directories
// first when several fire in the same minute.
package timejob

// SortByPriority reorders the job index list by the single ASCII
// priority digit of each referenced entry: '0' first through '9' last.
// The sort is stable, one bucket pass per digit; entries whose
// priority is not a digit keep their relative order at the end.
func SortByPriority(list []int, priority func(index int) byte) []int {
	if len(list) < 2 {
		return list
	}

	sorted := make([]int, 0, len(list))
	for digit := byte('0'); digit <= '9'; digit++ {
		for _, idx := range list {
			if priority(idx) == digit {
				sorted = append(sorted, idx)
			}
		}
	}
	for _, idx := range list {
		p := priority(idx)
		if p < '0' || p > '9' {
			sorted = append(sorted, idx)
		}
	}

	copy(list, sorted)
	return list
}
