package content

// Polls returns a deep copy of every poll.
func (s *Store) Polls() []Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePolls(s.polls)
}

func (s *Store) GetPoll(id int) (Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.polls, id); i >= 0 {
		return s.polls[i].clone(), true
	}
	return Poll{}, false
}

// ActivePolls returns the polls still open for voting.
func (s *Store) ActivePolls() []Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, _ := PartitionPolls(s.polls)
	return clonePolls(active)
}

// AddPoll creates a poll; its TotalVotes is the sum of the given option votes.
func (s *Store) AddPoll(np NewPoll) Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := newPoll(nextID(s.polls), np)
	s.polls = prepend(s.polls, p)
	s.storage.Save(PollsKey, s.polls)
	return p.clone()
}

// UpdatePoll applies patch to the poll with the given id; replacing the options recounts TotalVotes.
// A closed poll may be reopened by patching its status.
func (s *Store) UpdatePoll(id int, patch PollPatch) (Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.polls, id)
	if i < 0 {
		return Poll{}, false
	}
	p := s.polls[i].clone()
	p.apply(patch)
	s.polls[i] = p
	s.storage.Save(PollsKey, s.polls)
	return p.clone(), true
}

func (s *Store) DeletePoll(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	polls, ok := remove(s.polls, id)
	if ok {
		s.polls = polls
		s.storage.Save(PollsKey, s.polls)
	}
	return ok
}

// Vote adds one vote to option of poll pollID. It reports whether the vote counted:
// votes on unknown or closed polls and out of range options are ignored.
// The returned poll is the current state (zero if the poll does not exist).
func (s *Store) Vote(pollID, option int) (Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.polls, pollID)
	if i < 0 {
		return Poll{}, false
	}
	p := s.polls[i].clone()
	if p.Status != PollActive || option < 0 || option >= len(p.Options) {
		return p, false
	}
	p.Options[option].Votes++
	recountVotes(&p)
	s.polls[i] = p
	s.storage.Save(PollsKey, s.polls)
	return p.clone(), true
}

// VoteOnce votes on behalf of client unless it already voted on pollID,
// and remembers the poll in the client's voted set once the vote counted.
func (s *Store) VoteOnce(client *ClientState, pollID, option int) (Poll, bool) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.voted.has(pollID) {
		p, _ := s.GetPoll(pollID)
		return p, false
	}
	p, counted := s.Vote(pollID, option)
	if counted {
		client.voted.add(pollID)
		client.storage.Save(client.votedKey(), client.voted.ids())
	}
	return p, counted
}

func clonePolls(polls []Poll) []Poll {
	out := make([]Poll, len(polls))
	for i, p := range polls {
		out[i] = p.clone()
	}
	return out
}
