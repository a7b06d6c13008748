package matrix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/keepmind9/matrixbot/internal/logger"
	"github.com/sirupsen/logrus"
)

// WidgetEventType is the state event type used by Element and friends for
// room widgets.
const WidgetEventType = "im.vector.modular.widgets"

// WidgetState describes a widget present in a room
type WidgetState struct {
	WidgetID string
	Type     string
	URL      string
	Name     string
	Creator  string
	Data     map[string]interface{}
}

// widgetContent is the wire format of a widget state event content
type widgetContent struct {
	ID            string                 `json:"id,omitempty"`
	Type          string                 `json:"type,omitempty"`
	URL           string                 `json:"url,omitempty"`
	Name          string                 `json:"name,omitempty"`
	CreatorUserID string                 `json:"creatorUserId,omitempty"`
	Data          map[string]interface{} `json:"data,omitempty"`
}

// stateEvent is a single event from the room state endpoint
type stateEvent struct {
	Type     string          `json:"type"`
	StateKey string          `json:"state_key"`
	Sender   string          `json:"sender"`
	Content  json.RawMessage `json:"content"`
}

// GetWidgets returns all widgets currently present in the room, in the
// order the homeserver returns them. State events with empty content are
// removed widgets and are skipped.
func (c *Client) GetWidgets(ctx context.Context, roomID string) ([]WidgetState, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state", url.PathEscape(roomID))

	var events []stateEvent
	if err := c.doRequest(ctx, "GET", path, nil, nil, &events); err != nil {
		return nil, err
	}

	var widgets []WidgetState
	for _, ev := range events {
		if ev.Type != WidgetEventType {
			continue
		}

		var content widgetContent
		if err := json.Unmarshal(ev.Content, &content); err != nil {
			logger.WithFields(logrus.Fields{
				"room_id":   roomID,
				"state_key": ev.StateKey,
				"error":     err,
			}).Warn("skipping-widget-event-with-malformed-content")
			continue
		}
		if content.URL == "" {
			// Empty content means the widget was removed
			continue
		}

		widgetID := content.ID
		if widgetID == "" {
			widgetID = ev.StateKey
		}
		creator := content.CreatorUserID
		if creator == "" {
			creator = ev.Sender
		}

		widgets = append(widgets, WidgetState{
			WidgetID: widgetID,
			Type:     content.Type,
			URL:      content.URL,
			Name:     content.Name,
			Creator:  creator,
			Data:     content.Data,
		})
	}

	return widgets, nil
}

// AddWidget creates or replaces a widget in the room and returns the event
// ID of the resulting state event.
func (c *Client) AddWidget(ctx context.Context, roomID string, widget WidgetState) (string, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state/%s/%s",
		url.PathEscape(roomID), url.PathEscape(WidgetEventType), url.PathEscape(widget.WidgetID))

	content := widgetContent{
		ID:            widget.WidgetID,
		Type:          widget.Type,
		URL:           widget.URL,
		Name:          widget.Name,
		CreatorUserID: c.userID,
		Data:          widget.Data,
	}

	var result struct {
		EventID string `json:"event_id"`
	}
	if err := c.doRequest(ctx, "PUT", path, nil, content, &result); err != nil {
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"room_id":     roomID,
		"widget_id":   widget.WidgetID,
		"widget_type": widget.Type,
		"event_id":    result.EventID,
	}).Info("widget-state-event-sent")

	return result.EventID, nil
}

// RemoveWidget removes a widget by writing an empty state event under its
// state key.
func (c *Client) RemoveWidget(ctx context.Context, roomID, widgetID string) error {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state/%s/%s",
		url.PathEscape(roomID), url.PathEscape(WidgetEventType), url.PathEscape(widgetID))

	if err := c.doRequest(ctx, "PUT", path, nil, struct{}{}, nil); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"room_id":   roomID,
		"widget_id": widgetID,
	}).Info("widget-removed")

	return nil
}
