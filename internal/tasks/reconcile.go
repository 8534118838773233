package tasks

import "github.com/northis/ym-api-organizer/internal/models"

// Reconcile returns the remote tracks whose identity key is absent from the catalog, in remote order.
//
// A key that appears more than once in the playlist is returned once, at its first position.
func Reconcile(remote []models.RemoteTrack, c *models.Catalog) []models.RemoteTrack {
	have := c.Keys()
	missing := make([]models.RemoteTrack, 0, len(remote))
	for _, t := range remote {
		key := t.IdentityKey()
		if _, ok := have[key]; ok {
			continue
		}
		have[key] = struct{}{}
		missing = append(missing, t)
	}
	return missing
}

// Select caps missing at quota tracks, keeping the leading ones. A quota of zero or less selects nothing.
func Select(missing []models.RemoteTrack, quota int) []models.RemoteTrack {
	if quota <= 0 {
		return nil
	}
	if len(missing) <= quota {
		return missing
	}
	return missing[:quota]
}

// Assign numbers selected tracks consecutively from nextID in their given order.
func Assign(selected []models.RemoteTrack, nextID int) []models.PendingTrack {
	pending := make([]models.PendingTrack, len(selected))
	for i, t := range selected {
		pending[i] = models.PendingTrack{SequenceID: nextID + i, Track: t}
	}
	return pending
}
