package content

// News returns every news item, newest first.
func (s *Store) News() []NewsItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]NewsItem{}, s.news...)
}

func (s *Store) GetNews(id int) (NewsItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.news, id); i >= 0 {
		return s.news[i], true
	}
	return NewsItem{}, false
}

// PublishedNews returns the news items visible in the public feed.
func (s *Store) PublishedNews() []NewsItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PublishedNews(s.news)
}

// AddNews stamps a new item (id, createdAt, author) and puts it at the head of the collection.
func (s *Store) AddNews(nn NewNews) NewsItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := newNewsItem(nextID(s.news), nn, s.now())
	s.news = prepend(s.news, item)
	s.storage.Save(NewsKey, s.news)
	return item
}

// UpdateNews applies p to the item with the given id. It reports false, and changes nothing, if there is none.
func (s *Store) UpdateNews(id int, p NewsPatch) (NewsItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.news, id)
	if i < 0 {
		return NewsItem{}, false
	}
	s.news[i].apply(p)
	s.storage.Save(NewsKey, s.news)
	return s.news[i], true
}

// DeleteNews removes the item with the given id, if any.
func (s *Store) DeleteNews(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	news, ok := remove(s.news, id)
	if ok {
		s.news = news
		s.storage.Save(NewsKey, s.news)
	}
	return ok
}
