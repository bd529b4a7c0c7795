package model

import (
	"github.com/mitchellh/mapstructure"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/pkg/enum"
	"github.com/pickstudio/chat-backend/pkg/errorx"
)

// View is the typed payload of a message. Each view type carries its own
// schema and validates itself before the message is accepted.
type View interface {
	Type() entity.ViewType
	Validate() error
}

type PlainTextView struct {
	Message string `json:"message" mapstructure:"message"`
}

func (PlainTextView) Type() entity.ViewType { return entity.PlainText }

func (v PlainTextView) Validate() error {
	if v.Message == "" {
		return errorx.New(errorx.MalformedView, "Plaintext view requires a non-empty message")
	}

	return nil
}

type Coordinate struct {
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

type PlaceInfo struct {
	Name       string  `json:"name" mapstructure:"name"`
	ParentName string  `json:"parent_name" mapstructure:"parent_name"`
	Category   string  `json:"category" mapstructure:"category"`
	StarPoint  float64 `json:"star_point" mapstructure:"star_point"`
}

type PlaceView struct {
	Coordinate *Coordinate `json:"coordinate" mapstructure:"coordinate"`
	PlaceInfo  *PlaceInfo  `json:"place_info" mapstructure:"place_info"`
	Timestamp  int64       `json:"timestamp" mapstructure:"timestamp"`
}

func (PlaceView) Type() entity.ViewType { return entity.Place }

func (v PlaceView) Validate() error {
	if v.Coordinate == nil {
		return errorx.New(errorx.MalformedView, "Place view requires a coordinate")
	}
	if v.PlaceInfo == nil {
		return errorx.New(errorx.MalformedView, "Place view requires a place_info")
	}

	return nil
}

type MediaView struct {
	URL string `json:"url" mapstructure:"url"`
}

func (MediaView) Type() entity.ViewType { return entity.Media }

func (v MediaView) Validate() error {
	if v.URL == "" {
		return errorx.New(errorx.MalformedView, "Media view requires a url")
	}

	return nil
}

// ParseView decodes a raw view document against the schema registered for the
// given type. An unregistered type and a schema mismatch are reported with
// distinct codes so callers can tell a client typo from a broken payload.
func ParseView(viewType string, raw map[string]any) (View, error) {
	vt, err := enum.ToEnum[entity.ViewType](viewType)
	if err != nil {
		return nil, errorx.New(errorx.UnknownViewType, "Unknown view type %q", viewType)
	}

	switch vt {
	case entity.PlainText:
		return decodeView(raw, &PlainTextView{}, "message")
	case entity.Place:
		return decodeView(raw, &PlaceView{}, "coordinate", "place_info")
	case entity.Media:
		return decodeView(raw, &MediaView{}, "url")
	}

	return nil, errorx.New(errorx.UnknownViewType, "Unknown view type %q", viewType)
}

func decodeView(raw map[string]any, out View, required ...string) (View, error) {
	for _, key := range required {
		if _, ok := raw[key]; !ok {
			return nil, errorx.New(errorx.MalformedView, "View is missing required key %q", key)
		}
	}

	if err := mapstructure.Decode(raw, out); err != nil {
		return nil, errorx.New(errorx.MalformedView, "Unable to decode view: %v", err)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	return out, nil
}
