package content

func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

func (s *Store) GetEvent(id int) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.events, id); i >= 0 {
		return s.events[i], true
	}
	return Event{}, false
}

// ActiveEvents returns the events that are neither completed nor cancelled.
func (s *Store) ActiveEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ActiveEvents(s.events)
}

func (s *Store) AddEvent(ne NewEvent) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	event := newEvent(nextID(s.events), ne)
	s.events = prepend(s.events, event)
	s.storage.Save(EventsKey, s.events)
	return event
}

func (s *Store) UpdateEvent(id int, p EventPatch) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.events, id)
	if i < 0 {
		return Event{}, false
	}
	s.events[i].apply(p)
	s.storage.Save(EventsKey, s.events)
	return s.events[i], true
}

func (s *Store) DeleteEvent(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, ok := remove(s.events, id)
	if ok {
		s.events = events
		s.storage.Save(EventsKey, s.events)
	}
	return ok
}
