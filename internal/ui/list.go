package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/northis/ym-api-organizer/internal/models"
)

var (
	_ list.Item = pendingItem{}
)

// pendingItem wraps [models.PendingTrack] to implement [list.Item].
type pendingItem struct {
	pending models.PendingTrack
}

func (i pendingItem) FilterValue() string { return i.pending.Track.IdentityKey() }
func (i pendingItem) Title() string {
	return fmt.Sprintf("%04d. %s", i.pending.SequenceID, i.pending.Track.FullTitle())
}
func (i pendingItem) Description() string {
	desc := i.pending.Track.Artist
	if i.pending.Track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.pending.Track.Album)
	}
	return desc
}

func pendingItems(pending []models.PendingTrack) []list.Item {
	items := make([]list.Item, len(pending))
	for i, p := range pending {
		items[i] = pendingItem{pending: p}
	}
	return items
}
