package content

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
)

func TestEventJSON(t *testing.T) {
	tests := []struct {
		name        string
		event       Event
		wantJSON    string
		wantSubject string
	}{
		{
			name:     "school",
			event:    Event{ID: 1, Title: "Open day", Kind: SchoolEvent{}, Date: "2024-10-26", Status: EventActive},
			wantJSON: `{"id":1,"title":"Open day","type":"school","date":"2024-10-26","time":"","location":"","description":"","status":"active"}`,
		},
		{
			name:        "olympiad",
			event:       Event{ID: 2, Title: "Maths", Kind: mustOlympiad(t, "Mathematics"), Status: EventActive},
			wantJSON:    `{"id":2,"title":"Maths","type":"olympiad","subject":"Mathematics","date":"","time":"","location":"","description":"","status":"active"}`,
			wantSubject: "Mathematics",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(raw) != tt.wantJSON {
				t.Errorf("Marshal() = %s\nwant %s", raw, tt.wantJSON)
			}
			var got Event
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			subject, _ := got.Subject()
			if got.Type() != tt.event.Type() || subject != tt.wantSubject {
				t.Errorf("round trip = %s/%q", got.Type(), subject)
			}
		})
	}
}

func TestEventJSON_invalid(t *testing.T) {
	for _, raw := range []string{
		`{"id":1,"type":"olympiad"}`,
		`{"id":1,"type":"olympiad","subject":"  "}`,
		`{"id":1,"type":"party"}`,
	} {
		var e Event
		if err := json.Unmarshal([]byte(raw), &e); err == nil {
			t.Errorf("Unmarshal(%s) expected an error", raw)
		}
	}

	var e Event
	if err := json.Unmarshal([]byte(`{"id":1,"title":"Legacy"}`), &e); err != nil || e.Type() != EventSchool {
		t.Errorf("missing type should decode as a school event, got %v, %v", e.Type(), err)
	}
}

func TestKindOf(t *testing.T) {
	if _, err := KindOf(EventOlympiad, ""); errors.Cause(err) != ErrOlympiadSubject {
		t.Errorf("KindOf(olympiad, \"\") error = %v", err)
	}
	k, err := KindOf(EventSchool, "ignored")
	if err != nil || k.Type() != EventSchool {
		t.Errorf("KindOf(school) = %v, %v", k, err)
	}
}

func TestSeedCollections(t *testing.T) {
	c, err := SeedCollections()
	if err != nil {
		t.Fatalf("SeedCollections() error = %v", err)
	}
	if len(c.News) != 2 || len(c.Events) != 2 || len(c.Polls) != 1 || len(c.Announcements) != 2 {
		t.Errorf("unexpected seed sizes: %d news, %d events, %d polls, %d announcements",
			len(c.News), len(c.Events), len(c.Polls), len(c.Announcements))
	}
	if c.Polls[0].TotalVotes != 123 {
		t.Errorf("seed poll total = %d, want 123", c.Polls[0].TotalVotes)
	}
	if subject, ok := c.Events[1].Subject(); !ok || subject != "Mathematics" {
		t.Errorf("seed olympiad subject = %q, %v", subject, ok)
	}
	if c.News[0].CreatedAt.IsZero() {
		t.Error("seed news without createdAt")
	}
}
