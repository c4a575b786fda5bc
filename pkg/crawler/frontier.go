package crawler

// frontier is the bounded breadth-first work queue of one crawl run.
//
// A URL is enqueued at most once, is visited at most once, and once the
// queue has held cap entries further discovered links are dropped.
type frontier struct {
	queue    []string
	next     int
	enqueued map[string]struct{}
	visited  map[string]struct{}
	cap      int
}

func newFrontier(cap int) *frontier {
	return &frontier{
		enqueued: make(map[string]struct{}),
		visited:  make(map[string]struct{}),
		cap:      cap,
	}
}

// seed enqueues start URLs regardless of the discovery cap.
func (f *frontier) seed(urls ...string) {
	for _, u := range urls {
		if _, ok := f.enqueued[u]; ok {
			continue
		}
		f.enqueued[u] = struct{}{}
		f.queue = append(f.queue, u)
	}
}

// discover enqueues newly found URLs while the queue is under the cap and
// returns how many were added.
func (f *frontier) discover(urls ...string) int {
	added := 0
	for _, u := range urls {
		if len(f.queue) >= f.cap {
			break
		}
		if _, ok := f.enqueued[u]; ok {
			continue
		}
		f.enqueued[u] = struct{}{}
		f.queue = append(f.queue, u)
		added++
	}
	return added
}

// pop returns the next URL that has not been visited yet.
func (f *frontier) pop() (string, bool) {
	for f.next < len(f.queue) {
		u := f.queue[f.next]
		f.next++
		if _, ok := f.visited[u]; !ok {
			return u, true
		}
	}
	return "", false
}

// markVisited records a fetch attempt for u.
func (f *frontier) markVisited(u string) {
	f.visited[u] = struct{}{}
}

func (f *frontier) size() int {
	return len(f.queue)
}
