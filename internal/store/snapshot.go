package store

import (
	"encoding/json"
	"time"

	"github.com/llehouerou/crest/internal/catalog"
)

// KeyCurrentQueue is the blob key under which the live queue snapshot is
// persisted.
const KeyCurrentQueue = "queue/current"

// SnapshotTrack is the reduced track projection stored in a snapshot:
// enough to redisplay and resume without a full metadata re-fetch.
type SnapshotTrack struct {
	ID           string `json:"id"`
	MediaID      string `json:"media_id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	DurationSecs int    `json:"duration_secs,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Snapshot is a persisted image of the queue.
type Snapshot struct {
	Tracks       []SnapshotTrack `json:"tracks"`
	CurrentIndex int             `json:"current_index"`
	SavedAt      time.Time       `json:"saved_at"`
}

// NewSnapshot builds a snapshot from live queue contents.
func NewSnapshot(tracks []catalog.Track, currentIndex int) Snapshot {
	s := Snapshot{
		Tracks:       make([]SnapshotTrack, len(tracks)),
		CurrentIndex: currentIndex,
		SavedAt:      time.Now(),
	}
	for i, t := range tracks {
		s.Tracks[i] = SnapshotTrack{
			ID:           t.ID,
			MediaID:      t.MediaID,
			Title:        t.Title,
			Artist:       t.ArtistLine(),
			DurationSecs: int(t.Duration.Seconds()),
			ThumbnailURL: t.ThumbnailURL,
		}
	}
	return s
}

// TrackList converts the snapshot back into queue tracks. Rating, library
// status, and kind come back unknown; the enrichment sweep refills them.
func (s Snapshot) TrackList() []catalog.Track {
	tracks := make([]catalog.Track, len(s.Tracks))
	for i, st := range s.Tracks {
		var artists []string
		if st.Artist != "" {
			artists = []string{st.Artist}
		}
		tracks[i] = catalog.Track{
			ID:           st.ID,
			MediaID:      st.MediaID,
			Title:        st.Title,
			Artists:      artists,
			Duration:     time.Duration(st.DurationSecs) * time.Second,
			ThumbnailURL: st.ThumbnailURL,
		}
	}
	return tracks
}

// IDs returns the snapshot's track id sequence.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.Tracks))
	for i, t := range s.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// Encode serializes the snapshot for blob storage.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot deserializes a snapshot previously produced by Encode.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
