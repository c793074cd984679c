package content

import (
	"sort"
	"sync"
)

// Key prefixes of the per-client sets; the client id is appended after a colon.
const (
	VotedPollsKey        = "schoolportal_voted_polls"
	ReadAnnouncementsKey = "schoolportal_read_announcements"
)

// ClientState is what one client remembers locally: the polls it voted on and the announcements it read.
// Losing it is harmless; a client may then vote again.
type ClientState struct {
	mu       sync.Mutex
	storage  Storage
	clientID string
	voted    idSet
	read     idSet
}

// LoadClientState reads the sets of clientID, starting empty when they are missing or unreadable.
func LoadClientState(storage Storage, clientID string) *ClientState {
	c := &ClientState{storage: storage, clientID: clientID}
	c.voted = loadIDSet(storage, c.votedKey())
	c.read = loadIDSet(storage, c.readKey())
	return c
}

// Client returns the state of clientID, loading it on first use.
// The same *ClientState is shared by every caller so VoteOnce holds for concurrent requests.
func (s *Store) Client(clientID string) *ClientState {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		c = LoadClientState(s.storage, clientID)
		s.clients[clientID] = c
	}
	return c
}

func (c *ClientState) ID() string { return c.clientID }

func (c *ClientState) votedKey() string { return VotedPollsKey + ":" + c.clientID }
func (c *ClientState) readKey() string  { return ReadAnnouncementsKey + ":" + c.clientID }

func (c *ClientState) HasVoted(pollID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voted.has(pollID)
}

// MarkVoted records pollID in the voted set. Call it only once a vote counted.
func (c *ClientState) MarkVoted(pollID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voted.add(pollID) {
		c.storage.Save(c.votedKey(), c.voted.ids())
	}
}

// VotedPolls returns the sorted ids of the polls voted on.
func (c *ClientState) VotedPolls() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voted.ids()
}

func (c *ClientState) IsRead(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read.has(id)
}

func (c *ClientState) MarkRead(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.read.add(id) {
		c.saveRead()
	}
}

func (c *ClientState) MarkUnread(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.read.del(id) {
		c.saveRead()
	}
}

// ToggleRead flips the read flag of id and returns the new value.
func (c *ClientState) ToggleRead(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	read := !c.read.has(id)
	if read {
		c.read.add(id)
	} else {
		c.read.del(id)
	}
	c.saveRead()
	return read
}

// MarkAllRead adds every id to the read set, saving once.
func (c *ClientState) MarkAllRead(ids ...int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := false
	for _, id := range ids {
		changed = c.read.add(id) || changed
	}
	if changed {
		c.saveRead()
	}
}

// UnreadCount counts the announcements of items not in the read set.
func (c *ClientState) UnreadCount(items []Announcement) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range items {
		if !c.read.has(a.ID) {
			n++
		}
	}
	return n
}

// readSet returns a snapshot of the read set usable without holding c.mu.
func (c *ClientState) readSet() idSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return newIDSet(c.read.ids())
}

func (c *ClientState) saveRead() {
	c.storage.Save(c.readKey(), c.read.ids())
}

type idSet map[int]struct{}

func newIDSet(ids []int) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func loadIDSet(storage Storage, key string) idSet {
	var ids []int
	if !storage.Decode(key, &ids) {
		ids = nil
	}
	return newIDSet(ids)
}

func (s idSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) add(id int) bool {
	if s.has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s idSet) del(id int) bool {
	if !s.has(id) {
		return false
	}
	delete(s, id)
	return true
}

func (s idSet) ids() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
