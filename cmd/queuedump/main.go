// Debug utility that prints the persisted queue snapshot.
package main

import (
	"log"
	"os"
	"time"

	"github.com/llehouerou/crest/internal/store"
)

func main() {
	var (
		s   *store.SQLite
		err error
	)
	if len(os.Args) > 1 {
		s, err = store.OpenPath(os.Args[1])
	} else {
		s, err = store.Open()
	}
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	data, err := s.ReadBlob(store.KeyCurrentQueue)
	if err != nil {
		log.Fatalf("Failed to read snapshot: %v", err)
	}
	if data == nil {
		log.Println("No queue snapshot stored")
		return
	}

	snap, err := store.DecodeSnapshot(data)
	if err != nil {
		log.Fatalf("Failed to decode snapshot: %v", err)
	}

	log.Printf("Saved %s, %d tracks, current index %d",
		snap.SavedAt.Format(time.RFC3339), len(snap.Tracks), snap.CurrentIndex)
	for i, t := range snap.Tracks {
		marker := "  "
		if i == snap.CurrentIndex {
			marker = "> "
		}
		log.Printf("%s[%d] %s - %s (%ds) id=%s", marker, i, t.Artist, t.Title, t.DurationSecs, t.ID)
	}
}
