package company

import "sync"

// memo is a bounded per-resolver record of website lookups. An empty name
// records a lookup that found nothing. The oldest entry is evicted first.
type memo struct {
	mu    sync.Mutex
	limit int
	names map[string]string
	order []string
}

func newMemo(limit int) *memo {
	if limit <= 0 {
		limit = defaultMemoSize
	}
	return &memo{
		limit: limit,
		names: make(map[string]string, limit),
	}
}

func (m *memo) get(domain string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, ok := m.names[domain]
	return name, ok
}

func (m *memo) put(domain, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.names[domain]; ok {
		m.names[domain] = name
		return
	}
	if len(m.order) >= m.limit {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.names, oldest)
	}
	m.names[domain] = name
	m.order = append(m.order, domain)
}

func (m *memo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.names)
}
