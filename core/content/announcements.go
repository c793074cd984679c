package content

func (s *Store) Announcements() []Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Announcement{}, s.announcements...)
}

func (s *Store) GetAnnouncement(id int) (Announcement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.announcements, id); i >= 0 {
		return s.announcements[i], true
	}
	return Announcement{}, false
}

func (s *Store) AddAnnouncement(na NewAnnouncement) Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := newAnnouncement(nextID(s.announcements), na, s.now())
	s.announcements = prepend(s.announcements, a)
	s.storage.Save(AnnouncementsKey, s.announcements)
	return a
}

func (s *Store) UpdateAnnouncement(id int, p AnnouncementPatch) (Announcement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.announcements, id)
	if i < 0 {
		return Announcement{}, false
	}
	s.announcements[i].apply(p)
	s.storage.Save(AnnouncementsKey, s.announcements)
	return s.announcements[i], true
}

func (s *Store) DeleteAnnouncement(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	announcements, ok := remove(s.announcements, id)
	if ok {
		s.announcements = announcements
		s.storage.Save(AnnouncementsKey, s.announcements)
	}
	return ok
}
