package matrix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_GetWidgets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/_matrix/client/v3/rooms/!room:example.org/state", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		w.Write([]byte(`[
			{
				"type": "m.room.topic",
				"state_key": "",
				"sender": "@admin:example.org",
				"content": {"topic": "general"}
			},
			{
				"type": "im.vector.modular.widgets",
				"state_key": "jitsi_abc",
				"sender": "@bot:example.org",
				"content": {
					"id": "jitsi_abc",
					"type": "jitsi",
					"url": "https://meet.jit.si/standup",
					"name": "Jitsi Meeting",
					"creatorUserId": "@alice:example.org",
					"data": {"domain": "meet.jit.si", "conferenceId": "standup"}
				}
			},
			{
				"type": "im.vector.modular.widgets",
				"state_key": "removed_widget",
				"sender": "@bot:example.org",
				"content": {}
			},
			{
				"type": "im.vector.modular.widgets",
				"state_key": "legacy_widget",
				"sender": "@bob:example.org",
				"content": {"type": "customwidget", "url": "https://example.com/panel"}
			}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", "@bot:example.org")
	widgets, err := client.GetWidgets(context.Background(), "!room:example.org")

	assert.NoError(t, err)
	if assert.Len(t, widgets, 2) {
		assert.Equal(t, "jitsi_abc", widgets[0].WidgetID)
		assert.Equal(t, "jitsi", widgets[0].Type)
		assert.Equal(t, "@alice:example.org", widgets[0].Creator)
		assert.Equal(t, "standup", widgets[0].Data["conferenceId"])

		// Widgets without an id in content fall back to the state key,
		// and to the event sender for the creator
		assert.Equal(t, "legacy_widget", widgets[1].WidgetID)
		assert.Equal(t, "@bob:example.org", widgets[1].Creator)
	}
}

func TestClient_GetWidgetsEmptyRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "@bot:example.org")
	widgets, err := client.GetWidgets(context.Background(), "!room:example.org")
	assert.NoError(t, err)
	assert.Empty(t, widgets)
}

func TestClient_AddWidget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t,
			"/_matrix/client/v3/rooms/!room:example.org/state/im.vector.modular.widgets/matrixbot_deadbeef",
			r.URL.Path)

		var content map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&content))
		assert.Equal(t, "matrixbot_deadbeef", content["id"])
		assert.Equal(t, "customwidget", content["type"])
		assert.Equal(t, "https://example.com/panel", content["url"])
		assert.Equal(t, "@bot:example.org", content["creatorUserId"])

		w.Write([]byte(`{"event_id": "$event123"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "@bot:example.org")
	eventID, err := client.AddWidget(context.Background(), "!room:example.org", WidgetState{
		WidgetID: "matrixbot_deadbeef",
		Type:     "customwidget",
		URL:      "https://example.com/panel",
		Name:     "Panel",
	})

	assert.NoError(t, err)
	assert.Equal(t, "$event123", eventID)
}

func TestClient_RemoveWidget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t,
			"/_matrix/client/v3/rooms/!room:example.org/state/im.vector.modular.widgets/jitsi_abc",
			r.URL.Path)

		// Removal writes an empty content object
		var content map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&content))
		assert.Empty(t, content)

		w.Write([]byte(`{"event_id": "$event456"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "@bot:example.org")
	assert.NoError(t, client.RemoveWidget(context.Background(), "!room:example.org", "jitsi_abc"))
}

func TestClient_ErrorDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errcode": "M_FORBIDDEN", "error": "You are not in this room"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "@bot:example.org")
	_, err := client.GetWidgets(context.Background(), "!room:example.org")

	var clientErr *ClientError
	if assert.ErrorAs(t, err, &clientErr) {
		assert.Equal(t, http.StatusForbidden, clientErr.StatusCode)
		assert.Equal(t, "M_FORBIDDEN", clientErr.Code)
		assert.Equal(t, "You are not in this room", clientErr.Message)
		assert.Contains(t, clientErr.Error(), "M_FORBIDDEN")
	}
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "@bot:example.org")
	_, err := client.GetWidgets(context.Background(), "!room:example.org")

	var clientErr *ClientError
	if assert.ErrorAs(t, err, &clientErr) {
		assert.Equal(t, http.StatusBadGateway, clientErr.StatusCode)
		assert.Contains(t, clientErr.Error(), "502")
	}
}

func TestClient_SendText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Contains(t, r.URL.Path, "/_matrix/client/v3/rooms/!room:example.org/send/m.room.message/")

		var content map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&content))
		assert.Equal(t, "m.text", content["msgtype"])
		assert.Equal(t, "hello", content["body"])

		w.Write([]byte(`{"event_id": "$msg1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "@bot:example.org")
	assert.NoError(t, client.SendText(context.Background(), "!room:example.org", "hello"))
}

func TestClient_TxnIDsAreUnique(t *testing.T) {
	client := NewClient("https://example.org", "token", "@bot:example.org")
	a := client.nextTxnID()
	b := client.nextTxnID()
	assert.NotEqual(t, a, b)
}

func TestClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("https://example.org/", "token", "@bot:example.org")
	assert.Equal(t, "https://example.org", client.homeserverURL)
	assert.Equal(t, "@bot:example.org", client.UserID())
}

func TestClient_SyncOutlastsLongPollHold(t *testing.T) {
	// The homeserver holds an idle /sync open for the full timeout before
	// replying. The poll must still succeed even when that hold exceeds
	// the timeout used for ordinary requests.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_matrix/client/v3/sync", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("timeout"))
		assert.Equal(t, "s0", r.URL.Query().Get("since"))
		time.Sleep(150 * time.Millisecond)
		w.Write([]byte(`{"next_batch": "s1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", "@bot:example.org")
	client.SetHTTPClient(&http.Client{Timeout: 50 * time.Millisecond})

	resp, err := client.Sync(context.Background(), "s0", 100)
	assert.NoError(t, err)
	assert.Equal(t, "s1", resp.NextBatch)
}

func TestClient_NonSyncRequestsKeepTightTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", "@bot:example.org")
	client.SetHTTPClient(&http.Client{Timeout: 50 * time.Millisecond})

	_, err := client.GetWidgets(context.Background(), "!room:example.org")
	assert.Error(t, err)
}

func TestClient_SyncHonorsCallerCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"next_batch": "s1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", "@bot:example.org")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Sync(ctx, "s0", 100)
	assert.Error(t, err)
}
