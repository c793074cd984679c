package content

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
)

// AdminAuthor is the author stamped on every news item.
const AdminAuthor = "Admin"

// Storage keys of the persisted collections.
const (
	NewsKey          = "schoolportal_news"
	EventsKey        = "schoolportal_events"
	PollsKey         = "schoolportal_polls"
	AnnouncementsKey = "schoolportal_announcements"
)

var ErrOlympiadSubject = errors.New("olympiad events require a subject")

type (
	NewsStatus       string
	EventStatus      string
	EventType        string
	PollStatus       string
	AnnouncementType string
)

const (
	NewsPublished NewsStatus = "published"
	NewsDraft     NewsStatus = "draft"

	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"

	EventSchool   EventType = "school"
	EventOlympiad EventType = "olympiad"

	PollActive PollStatus = "active"
	PollClosed PollStatus = "closed"

	AnnouncementInfo    AnnouncementType = "info"
	AnnouncementWarning AnnouncementType = "warning"
	AnnouncementEvent   AnnouncementType = "event"
)

// entity is implemented by the four collection element types.
type entity interface {
	NewsItem | Event | Poll | Announcement
	key() int
}

// News

type NewsItem struct {
	ID        int        `json:"id"`
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Image     string     `json:"image,omitempty"`
	Status    NewsStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Author    string     `json:"author"`
}

func (n NewsItem) key() int { return n.ID }

// NewNews contains information needed to create a new NewsItem.
type NewNews struct {
	Category string
	Title    string
	Content  string
	Image    string
	Status   NewsStatus
}

// NewsPatch holds the fields of a NewsItem to change; nil fields are left untouched.
type NewsPatch struct {
	Category *string
	Title    *string
	Content  *string
	Image    *string
	Status   *NewsStatus
}

func newNewsItem(id int, nn NewNews, now time.Time) NewsItem {
	return NewsItem{
		ID:        id,
		Category:  nn.Category,
		Title:     nn.Title,
		Content:   nn.Content,
		Image:     nn.Image,
		Status:    nn.Status,
		CreatedAt: now.UTC(),
		Author:    AdminAuthor,
	}
}

func (n *NewsItem) apply(p NewsPatch) {
	setIfNotNil(&n.Category, p.Category)
	setIfNotNil(&n.Title, p.Title)
	setIfNotNil(&n.Content, p.Content)
	setIfNotNil(&n.Image, p.Image)
	setIfNotNil(&n.Status, p.Status)
}

// Events

// EventKind is either SchoolEvent or Olympiad.
type EventKind interface {
	Type() EventType
	isEventKind()
}

type SchoolEvent struct{}

func (SchoolEvent) Type() EventType { return EventSchool }
func (SchoolEvent) isEventKind()    {}

// Olympiad is a subject competition. Build it with NewOlympiad.
type Olympiad struct {
	subject string
}

func NewOlympiad(subject string) (Olympiad, error) {
	subject = core.CleanString(subject)
	if subject == "" {
		return Olympiad{}, ErrOlympiadSubject
	}
	return Olympiad{subject: subject}, nil
}

func (Olympiad) Type() EventType   { return EventOlympiad }
func (Olympiad) isEventKind()      {}
func (o Olympiad) Subject() string { return o.subject }

// KindOf builds the EventKind for t; subject is only used by olympiads.
func KindOf(t EventType, subject string) (EventKind, error) {
	switch t {
	case EventSchool:
		return SchoolEvent{}, nil
	case EventOlympiad:
		return NewOlympiad(subject)
	default:
		return nil, errors.Errorf("unknown event type %q", t)
	}
}

type Event struct {
	ID          int
	Title       string
	Kind        EventKind
	Date        string
	Time        string
	Location    string
	Description string
	Image       string
	Status      EventStatus
}

func (e Event) key() int { return e.ID }

// Type returns the kind of the event, school events by default.
func (e Event) Type() EventType {
	if e.Kind == nil {
		return EventSchool
	}
	return e.Kind.Type()
}

// Subject returns the olympiad subject, if e is an olympiad.
func (e Event) Subject() (string, bool) {
	if o, ok := e.Kind.(Olympiad); ok {
		return o.Subject(), true
	}
	return "", false
}

type eventJSON struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Type        EventType   `json:"type"`
	Subject     string      `json:"subject,omitempty"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	Status      EventStatus `json:"status"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	subject, _ := e.Subject()
	return json.Marshal(eventJSON{
		ID:          e.ID,
		Title:       e.Title,
		Type:        e.Type(),
		Subject:     subject,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Description: e.Description,
		Image:       e.Image,
		Status:      e.Status,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}
	if ej.Type == "" {
		ej.Type = EventSchool
	}
	kind, err := KindOf(ej.Type, ej.Subject)
	if err != nil {
		return errors.Wrapf(err, "decoding event %d", ej.ID)
	}
	*e = Event{
		ID:          ej.ID,
		Title:       ej.Title,
		Kind:        kind,
		Date:        ej.Date,
		Time:        ej.Time,
		Location:    ej.Location,
		Description: ej.Description,
		Image:       ej.Image,
		Status:      ej.Status,
	}
	return nil
}

// NewEvent contains information needed to create a new Event. A nil Kind makes a school event.
type NewEvent struct {
	Title       string
	Kind        EventKind
	Date        string
	Time        string
	Location    string
	Description string
	Image       string
	Status      EventStatus
}

// EventPatch holds the fields of an Event to change; nil fields are left untouched.
type EventPatch struct {
	Title       *string
	Kind        EventKind
	Date        *string
	Time        *string
	Location    *string
	Description *string
	Image       *string
	Status      *EventStatus
}

func newEvent(id int, ne NewEvent) Event {
	kind := ne.Kind
	if kind == nil {
		kind = SchoolEvent{}
	}
	return Event{
		ID:          id,
		Title:       ne.Title,
		Kind:        kind,
		Date:        ne.Date,
		Time:        ne.Time,
		Location:    ne.Location,
		Description: ne.Description,
		Image:       ne.Image,
		Status:      ne.Status,
	}
}

func (e *Event) apply(p EventPatch) {
	setIfNotNil(&e.Title, p.Title)
	if p.Kind != nil {
		e.Kind = p.Kind
	}
	setIfNotNil(&e.Date, p.Date)
	setIfNotNil(&e.Time, p.Time)
	setIfNotNil(&e.Location, p.Location)
	setIfNotNil(&e.Description, p.Description)
	setIfNotNil(&e.Image, p.Image)
	setIfNotNil(&e.Status, p.Status)
}

// Polls

type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Options     []PollOption `json:"options"`
	Status      PollStatus   `json:"status"`
	Deadline    string       `json:"deadline"`
	TotalVotes  int          `json:"total_votes"`
}

func (p Poll) key() int { return p.ID }

func (p Poll) clone() Poll {
	p.Options = append([]PollOption(nil), p.Options...)
	if p.Options == nil {
		p.Options = []PollOption{}
	}
	return p
}

// NewPoll contains information needed to create a new Poll.
// Options may carry existing votes (imported polls); TotalVotes is always derived from them.
type NewPoll struct {
	Title       string
	Description string
	Options     []PollOption
	Status      PollStatus
	Deadline    string
}

// PollPatch holds the fields of a Poll to change; nil fields are left untouched.
type PollPatch struct {
	Title       *string
	Description *string
	Options     []PollOption
	Status      *PollStatus
	Deadline    *string
}

// OptionsFromText makes zero-vote options out of texts, dropping the blank ones.
func OptionsFromText(texts ...string) []PollOption {
	texts = core.CleanStrings(texts)
	opts := make([]PollOption, len(texts))
	for i, text := range texts {
		opts[i] = PollOption{Text: text}
	}
	return opts
}

func newPoll(id int, np NewPoll) Poll {
	p := Poll{
		ID:          id,
		Title:       np.Title,
		Description: np.Description,
		Options:     append([]PollOption{}, np.Options...),
		Status:      np.Status,
		Deadline:    np.Deadline,
	}
	recountVotes(&p)
	return p
}

func (p *Poll) apply(patch PollPatch) {
	setIfNotNil(&p.Title, patch.Title)
	setIfNotNil(&p.Description, patch.Description)
	setIfNotNil(&p.Status, patch.Status)
	setIfNotNil(&p.Deadline, patch.Deadline)
	if patch.Options != nil {
		p.Options = append([]PollOption{}, patch.Options...)
	}
	recountVotes(p)
}

// recountVotes is the only place TotalVotes is computed.
func recountVotes(p *Poll) {
	total := 0
	for _, opt := range p.Options {
		total += opt.Votes
	}
	p.TotalVotes = total
}

// Announcements

type Announcement struct {
	ID        int              `json:"id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Type      AnnouncementType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	From      string           `json:"from"`
}

func (a Announcement) key() int { return a.ID }

// NewAnnouncement contains information needed to create a new Announcement.
type NewAnnouncement struct {
	Title   string
	Content string
	Type    AnnouncementType
	From    string
}

// AnnouncementPatch holds the fields of an Announcement to change; nil fields are left untouched.
type AnnouncementPatch struct {
	Title   *string
	Content *string
	Type    *AnnouncementType
	From    *string
}

func newAnnouncement(id int, na NewAnnouncement, now time.Time) Announcement {
	return Announcement{
		ID:        id,
		Title:     na.Title,
		Content:   na.Content,
		Type:      na.Type,
		CreatedAt: now.UTC(),
		From:      na.From,
	}
}

func (a *Announcement) apply(p AnnouncementPatch) {
	setIfNotNil(&a.Title, p.Title)
	setIfNotNil(&a.Content, p.Content)
	setIfNotNil(&a.Type, p.Type)
	setIfNotNil(&a.From, p.From)
}

func setIfNotNil[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
