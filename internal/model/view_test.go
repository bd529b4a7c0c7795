package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickstudio/chat-backend/pkg/errorx"
)

func Test_ParseView_PlainText(t *testing.T) {
	view, err := ParseView("PLAINTEXT", map[string]any{"message": "hello"})
	require.NoError(t, err)
	require.Equal(t, &PlainTextView{Message: "hello"}, view)
}

func Test_ParseView_UnknownType(t *testing.T) {
	_, err := ParseView("STICKER", map[string]any{"id": "1"})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.UnknownViewType, errx.Code)
}

func Test_ParseView_MissingRequiredKey(t *testing.T) {
	_, err := ParseView("PLAINTEXT", map[string]any{})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.MalformedView, errx.Code)
}

func Test_ParseView_Place(t *testing.T) {
	view, err := ParseView("PLACE", map[string]any{
		"coordinate": map[string]any{"latitude": 37.5665, "longitude": 126.978},
		"place_info": map[string]any{
			"name":        "City Hall",
			"parent_name": "Seoul",
			"category":    "landmark",
			"star_point":  4.5,
		},
		"timestamp": int64(1700000000000),
	})
	require.NoError(t, err)

	place, ok := view.(*PlaceView)
	require.True(t, ok)
	require.Equal(t, 37.5665, place.Coordinate.Latitude)
	require.Equal(t, "City Hall", place.PlaceInfo.Name)
	require.Equal(t, 4.5, place.PlaceInfo.StarPoint)
}

func Test_ParseView_PlaceMissingCoordinate(t *testing.T) {
	_, err := ParseView("PLACE", map[string]any{
		"place_info": map[string]any{"name": "City Hall"},
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.MalformedView, errx.Code)
}

func Test_ParseView_PlaceWithBrokenCoordinate(t *testing.T) {
	_, err := ParseView("PLACE", map[string]any{
		"coordinate": "not an object",
		"place_info": map[string]any{"name": "City Hall"},
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.MalformedView, errx.Code)
}

func Test_ParseView_Media(t *testing.T) {
	view, err := ParseView("MEDIA", map[string]any{"url": "https://cdn.example.com/a.png"})
	require.NoError(t, err)
	require.Equal(t, &MediaView{URL: "https://cdn.example.com/a.png"}, view)
}
