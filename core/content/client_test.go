package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClientState_read(t *testing.T) {
	storage := newMemStorage()
	c := LoadClientState(storage, "parent-1")
	items := []Announcement{{ID: 1}, {ID: 2}, {ID: 3}}

	if got := c.UnreadCount(items); got != 3 {
		t.Errorf("UnreadCount() = %d, want 3", got)
	}

	c.MarkRead(2)
	if !c.IsRead(2) || c.IsRead(1) {
		t.Error("MarkRead(2) not reflected")
	}
	if read := c.ToggleRead(1); !read {
		t.Error("ToggleRead(1) = false, want true")
	}
	if read := c.ToggleRead(1); read {
		t.Error("second ToggleRead(1) = true, want false")
	}
	c.MarkUnread(2)
	c.MarkUnread(2)
	if got := c.UnreadCount(items); got != 3 {
		t.Errorf("UnreadCount() = %d, want 3", got)
	}

	c.MarkAllRead(1, 2, 3)
	if got := c.UnreadCount(items); got != 0 {
		t.Errorf("UnreadCount() after MarkAllRead = %d", got)
	}

	reloaded := LoadClientState(storage, "parent-1")
	if got := reloaded.UnreadCount(items); got != 0 {
		t.Errorf("read set not persisted, unread = %d", got)
	}
	if other := LoadClientState(storage, "parent-2"); other.IsRead(1) {
		t.Error("read sets must be per client")
	}
}

func TestClientState_voted(t *testing.T) {
	storage := newMemStorage()
	c := LoadClientState(storage, "student-1")
	c.MarkVoted(3)
	c.MarkVoted(1)
	c.MarkVoted(3)

	if diff := cmp.Diff([]int{1, 3}, c.VotedPolls()); diff != "" {
		t.Errorf("VotedPolls() mismatch (-want +got):\n%s", diff)
	}
	if got := storage.data[VotedPollsKey+":student-1"]; string(got) != "[1,3]" {
		t.Errorf("persisted voted set = %s", got)
	}
}

func TestClientState_unreadableStartsEmpty(t *testing.T) {
	storage := newMemStorage()
	storage.put(ReadAnnouncementsKey+":x", `"nope"`)
	if c := LoadClientState(storage, "x"); c.IsRead(1) || len(c.VotedPolls()) != 0 {
		t.Error("expected empty state")
	}
}

func TestStore_Client_isShared(t *testing.T) {
	s := newTestStore(t, newMemStorage())
	if s.Client("a") != s.Client("a") {
		t.Error("Client() must return the same state for the same id")
	}
	if s.Client("a").ID() != "a" {
		t.Error("ID() mismatch")
	}
}
