package content

import (
	"sort"

	"github.com/trezcool/schoolportal/core"
)

// PublishedNews keeps the published items of news, in order.
func PublishedNews(news []NewsItem) []NewsItem {
	return filter(news, func(n NewsItem) bool { return n.Status == NewsPublished })
}

// ActiveEvents keeps the active events, in order.
func ActiveEvents(events []Event) []Event {
	return filter(events, func(e Event) bool { return e.Status == EventActive })
}

// PartitionEvents splits events into school events and olympiads.
func PartitionEvents(events []Event) (school, olympiads []Event) {
	school, olympiads = []Event{}, []Event{}
	for _, e := range events {
		if e.Type() == EventOlympiad {
			olympiads = append(olympiads, e)
		} else {
			school = append(school, e)
		}
	}
	return school, olympiads
}

// OlympiadSubjects returns the distinct subjects of the olympiads in events, sorted.
func OlympiadSubjects(events []Event) []string {
	seen := make(map[string]struct{})
	subjects := []string{}
	for _, e := range events {
		subject, ok := e.Subject()
		if !ok {
			continue
		}
		if _, dup := seen[subject]; !dup {
			seen[subject] = struct{}{}
			subjects = append(subjects, subject)
		}
	}
	sort.Strings(subjects)
	return subjects
}

// PartitionPolls splits polls into active and closed ones.
func PartitionPolls(polls []Poll) (active, closed []Poll) {
	active, closed = []Poll{}, []Poll{}
	for _, p := range polls {
		if p.Status == PollActive {
			active = append(active, p)
		} else {
			closed = append(closed, p)
		}
	}
	return active, closed
}

type NewsFilter struct {
	Search   string
	Status   NewsStatus
	Category string
}

// FilterNews keeps the items matching every non-empty field of f.
// Search is a case-insensitive match on title or content.
func FilterNews(news []NewsItem, f NewsFilter) []NewsItem {
	return filter(news, func(n NewsItem) bool {
		return (f.Status == "" || n.Status == f.Status) &&
			(f.Category == "" || n.Category == f.Category) &&
			(core.ContainsFold(n.Title, f.Search) || core.ContainsFold(n.Content, f.Search))
	})
}

type EventFilter struct {
	Search  string
	Type    EventType
	Subject string
	Status  EventStatus
}

// FilterEvents keeps the events matching every non-empty field of f.
// Search is a case-insensitive match on title or description.
func FilterEvents(events []Event, f EventFilter) []Event {
	return filter(events, func(e Event) bool {
		subject, _ := e.Subject()
		return (f.Type == "" || e.Type() == f.Type) &&
			(f.Subject == "" || subject == f.Subject) &&
			(f.Status == "" || e.Status == f.Status) &&
			(core.ContainsFold(e.Title, f.Search) || core.ContainsFold(e.Description, f.Search))
	})
}

type PollFilter struct {
	Search string
	Status PollStatus
}

// FilterPolls keeps the polls matching every non-empty field of f.
// Search is a case-insensitive match on title or description.
func FilterPolls(polls []Poll, f PollFilter) []Poll {
	return filter(polls, func(p Poll) bool {
		return (f.Status == "" || p.Status == f.Status) &&
			(core.ContainsFold(p.Title, f.Search) || core.ContainsFold(p.Description, f.Search))
	})
}

type AnnouncementFilter struct {
	Search     string
	Type       AnnouncementType
	UnreadOnly bool
}

// FilterAnnouncements keeps the announcements matching every non-empty field of f.
// UnreadOnly needs the client; it is ignored when client is nil.
func FilterAnnouncements(items []Announcement, f AnnouncementFilter, client *ClientState) []Announcement {
	var read idSet
	if f.UnreadOnly && client != nil {
		read = client.readSet()
	}
	return filter(items, func(a Announcement) bool {
		return (f.Type == "" || a.Type == f.Type) &&
			(read == nil || !read.has(a.ID)) &&
			(core.ContainsFold(a.Title, f.Search) || core.ContainsFold(a.Content, f.Search))
	})
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := []T{}
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
