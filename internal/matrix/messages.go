package matrix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/keepmind9/matrixbot/pkg/constants"
)

// MessageEvent is a single timeline event delivered by /sync
type MessageEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	Sender  string `json:"sender"`
	Content struct {
		MsgType string `json:"msgtype"`
		Body    string `json:"body"`
	} `json:"content"`
}

// SyncResponse is the subset of the /sync response the bot cares about
type SyncResponse struct {
	NextBatch string `json:"next_batch"`
	Rooms     struct {
		Join map[string]struct {
			Timeline struct {
				Events []MessageEvent `json:"events"`
			} `json:"timeline"`
		} `json:"join"`
	} `json:"rooms"`
}

// SendText sends a plain text m.room.message to the room
func (c *Client) SendText(ctx context.Context, roomID, text string) error {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/m.room.message/%s",
		url.PathEscape(roomID), url.PathEscape(c.nextTxnID()))

	content := map[string]string{
		"msgtype": "m.text",
		"body":    text,
	}

	return c.doRequest(ctx, "PUT", path, nil, content, nil)
}

// Sync long-polls the homeserver for new events. since is the previous
// next_batch token, empty on the first call. timeoutMs is how long the
// homeserver may hold the request open.
func (c *Client) Sync(ctx context.Context, since string, timeoutMs int) (*SyncResponse, error) {
	query := url.Values{}
	query.Set("timeout", strconv.Itoa(timeoutMs))
	if since != "" {
		query.Set("since", since)
	} else {
		// Limit the initial sync so old messages are not replayed as commands
		filter, err := json.Marshal(map[string]interface{}{
			"room": map[string]interface{}{
				"timeline": map[string]interface{}{"limit": 0},
			},
		})
		if err == nil {
			query.Set("filter", string(filter))
		}
	}

	// The homeserver holds the request open for up to timeoutMs, so the
	// deadline must extend past the hold window or every idle poll aborts
	// just as the server replies.
	ctx, cancel := context.WithTimeout(ctx,
		time.Duration(timeoutMs)*time.Millisecond+constants.SyncRequestGrace)
	defer cancel()

	var resp SyncResponse
	if err := c.do(ctx, c.syncClient, "GET", "/_matrix/client/v3/sync", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
