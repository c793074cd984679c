package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolportal/core/content"
	"github.com/trezcool/schoolportal/storage/kv"
)

func inbox(t *testing.T, app *testApp, token, query string) Inbox {
	t.Helper()
	rec := app.run(t, httpTest{path: "/v1/announcements" + query, token: token})
	var resp Inbox
	unmarshall(t, rec, &resp)
	return resp
}

func inboxIDs(in Inbox) []int {
	ids := make([]int, len(in.Items))
	for i, item := range in.Items {
		ids[i] = item.ID
	}
	return ids
}

func Test_announcementApi_inbox(t *testing.T) {
	app := newTestApp(t, true)
	token := app.token(t, student)

	app.run(t, httpTest{path: "/v1/announcements", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)})

	in := inbox(t, app, token, "")
	assert.Equal(t, []int{1, 2}, inboxIDs(in))
	assert.Equal(t, 2, in.Unread)
	assert.False(t, in.Items[0].Read)

	app.run(t, httpTest{method: http.MethodPost, path: "/v1/announcements/2/read", token: token, wantCode: http.StatusNoContent})
	in = inbox(t, app, token, "")
	assert.Equal(t, 1, in.Unread)
	assert.True(t, in.Items[1].Read)
	assert.Equal(t, []int{1}, inboxIDs(inbox(t, app, token, "?unread=true")))
	assert.Equal(t, []int{2}, inboxIDs(inbox(t, app, token, "?type=warning")))
	assert.Equal(t, []int{1}, inboxIDs(inbox(t, app, token, "?search=TIMETABLE")))

	// other clients keep their own flags
	other := app.token(t, admin)
	assert.Equal(t, 2, inbox(t, app, other, "").Unread)

	app.run(t, httpTest{method: http.MethodDelete, path: "/v1/announcements/2/read", token: token, wantCode: http.StatusNoContent})
	assert.Equal(t, 2, inbox(t, app, token, "").Unread)

	app.run(t, httpTest{method: http.MethodPost, path: "/v1/announcements/read-all", token: token, wantCode: http.StatusNoContent})
	in = inbox(t, app, token, "")
	assert.Equal(t, 0, in.Unread)
	assert.Empty(t, inbox(t, app, token, "?unread=true").Items)

	app.run(t, httpTest{method: http.MethodPost, path: "/v1/announcements/9/read", token: token, wantCode: http.StatusNotFound, wantData: marshallObj(t, errNotFound)})

	// the read set is persisted per client
	adapter, err := kv.NewAdapter(app.backend, app.logger, time.Second)
	require.NoError(t, err)
	client := content.LoadClientState(adapter, student.UserID)
	assert.True(t, client.IsRead(1))
	assert.True(t, client.IsRead(2))
}

func Test_announcementApi_admin(t *testing.T) {
	app := newTestApp(t, false)
	adminToken := app.token(t, admin)

	app.run(t, httpTest{
		method: http.MethodPost, path: "/v1/admin/announcements", token: adminToken,
		body:     []byte(`{"title": "Closed", "content": "Snow day", "type": "alert", "from": ""}`),
		wantCode: http.StatusBadRequest,
		wantData: []byte(`{"type": "type must be one of [info warning event]", "from": "this field cannot be blank"}`),
	})

	rec := app.run(t, httpTest{
		method: http.MethodPost, path: "/v1/admin/announcements", token: adminToken,
		body:     []byte(`{"title": "Closed", "content": "Snow day", "type": "warning", "from": " Principal "}`),
		wantCode: http.StatusCreated,
	})
	var a content.Announcement
	unmarshall(t, rec, &a)
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, "Principal", a.From)
	assert.False(t, a.CreatedAt.IsZero())

	rec = app.run(t, httpTest{
		method: http.MethodPatch, path: "/v1/admin/announcements/1", token: adminToken,
		body: []byte(`{"type": "info"}`),
	})
	var updated content.Announcement
	unmarshall(t, rec, &updated)
	assert.Equal(t, content.AnnouncementInfo, updated.Type)
	assert.True(t, a.CreatedAt.Equal(updated.CreatedAt))

	app.run(t, httpTest{path: "/v1/admin/announcements?type=info", token: adminToken, wantData: marshallObj(t, []content.Announcement{updated})})
	app.run(t, httpTest{path: "/v1/admin/announcements/1", token: adminToken, wantData: marshallObj(t, updated)})
	app.run(t, httpTest{
		method: http.MethodPatch, path: "/v1/admin/announcements/7", token: adminToken,
		body: []byte(`{"type": "info"}`), wantCode: http.StatusNotFound,
	})

	app.run(t, httpTest{method: http.MethodDelete, path: "/v1/admin/announcements/1", token: adminToken, wantCode: http.StatusNoContent})
	app.run(t, httpTest{path: "/v1/admin/announcements", token: adminToken, wantData: []byte(`[]`)})
}

func Test_dashboardApi(t *testing.T) {
	app := newTestApp(t, true)

	app.run(t, httpTest{path: "/v1/admin/dashboard", token: app.token(t, student), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)})
	app.run(t, httpTest{
		path: "/v1/admin/dashboard", token: app.token(t, admin),
		wantData: marshallObj(t, content.Stats{
			News: 2, PublishedNews: 2, Events: 2, ActiveEvents: 2,
			Polls: 1, ActivePolls: 1, TotalVotes: 123, Announcements: 2,
		}),
	})
}
