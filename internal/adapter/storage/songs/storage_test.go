package songstorage

import (
	"context"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/storagetest"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/song"
	"testing"
)

func TestListKeepsInsertOrder(t *testing.T) {
	s := New(storagetest.SetupDB(t))
	ctx := context.Background()

	songs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if songs == nil || len(songs) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", songs)
	}

	for _, name := range []string{"Nights", "Alright", "Ivy"} {
		if err := s.Add(ctx, &song.Song{Name: name, Artist: "artist", CoverLink: "https://img/" + name}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	songs, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(songs) != 3 || songs[0].Name != "Nights" || songs[2].Name != "Ivy" {
		t.Errorf("unexpected songs: %+v", songs)
	}
	if songs[1].CoverLink != "https://img/Alright" {
		t.Errorf("cover = %q", songs[1].CoverLink)
	}
}
