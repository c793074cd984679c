package content

import (
	_ "embed"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Collections groups the four collections.
type Collections struct {
	News          []NewsItem
	Events        []Event
	Polls         []Poll
	Announcements []Announcement
}

type seedFile struct {
	News []struct {
		ID        int        `yaml:"id"`
		Category  string     `yaml:"category"`
		Title     string     `yaml:"title"`
		Content   string     `yaml:"content"`
		Image     string     `yaml:"image"`
		Status    NewsStatus `yaml:"status"`
		CreatedAt time.Time  `yaml:"created_at"`
		Author    string     `yaml:"author"`
	} `yaml:"news"`

	Events []struct {
		ID          int         `yaml:"id"`
		Title       string      `yaml:"title"`
		Type        EventType   `yaml:"type"`
		Subject     string      `yaml:"subject"`
		Date        string      `yaml:"date"`
		Time        string      `yaml:"time"`
		Location    string      `yaml:"location"`
		Description string      `yaml:"description"`
		Image       string      `yaml:"image"`
		Status      EventStatus `yaml:"status"`
	} `yaml:"events"`

	Polls []struct {
		ID          int        `yaml:"id"`
		Title       string     `yaml:"title"`
		Description string     `yaml:"description"`
		Status      PollStatus `yaml:"status"`
		Deadline    string     `yaml:"deadline"`
		Options     []struct {
			Text  string `yaml:"text"`
			Votes int    `yaml:"votes"`
		} `yaml:"options"`
	} `yaml:"polls"`

	Announcements []struct {
		ID        int              `yaml:"id"`
		Title     string           `yaml:"title"`
		Content   string           `yaml:"content"`
		Type      AnnouncementType `yaml:"type"`
		CreatedAt time.Time        `yaml:"created_at"`
		From      string           `yaml:"from"`
	} `yaml:"announcements"`
}

// SeedCollections returns a fresh copy of the default collections.
func SeedCollections() (Collections, error) {
	var sf seedFile
	if err := yaml.Unmarshal(seedYAML, &sf); err != nil {
		return Collections{}, errors.Wrap(err, "decoding seed.yaml")
	}

	c := Collections{
		News:          make([]NewsItem, 0, len(sf.News)),
		Events:        make([]Event, 0, len(sf.Events)),
		Polls:         make([]Poll, 0, len(sf.Polls)),
		Announcements: make([]Announcement, 0, len(sf.Announcements)),
	}
	for _, n := range sf.News {
		c.News = append(c.News, NewsItem{
			ID:        n.ID,
			Category:  n.Category,
			Title:     n.Title,
			Content:   n.Content,
			Image:     n.Image,
			Status:    n.Status,
			CreatedAt: n.CreatedAt.UTC(),
			Author:    n.Author,
		})
	}
	for _, e := range sf.Events {
		kind, err := KindOf(e.Type, e.Subject)
		if err != nil {
			return Collections{}, errors.Wrapf(err, "seeding event %d", e.ID)
		}
		c.Events = append(c.Events, Event{
			ID:          e.ID,
			Title:       e.Title,
			Kind:        kind,
			Date:        e.Date,
			Time:        e.Time,
			Location:    e.Location,
			Description: e.Description,
			Image:       e.Image,
			Status:      e.Status,
		})
	}
	for _, p := range sf.Polls {
		poll := Poll{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Options:     make([]PollOption, 0, len(p.Options)),
			Status:      p.Status,
			Deadline:    p.Deadline,
		}
		for _, opt := range p.Options {
			poll.Options = append(poll.Options, PollOption{Text: opt.Text, Votes: opt.Votes})
		}
		recountVotes(&poll)
		c.Polls = append(c.Polls, poll)
	}
	for _, a := range sf.Announcements {
		c.Announcements = append(c.Announcements, Announcement{
			ID:        a.ID,
			Title:     a.Title,
			Content:   a.Content,
			Type:      a.Type,
			CreatedAt: a.CreatedAt.UTC(),
			From:      a.From,
		})
	}
	return c, nil
}
