package song

import "errors"

var (
	ErrNoSongs = errors.New("no songs available")
)

type Song struct {
	Name      string `json:"song_name"`
	Artist    string `json:"artist"`
	CoverLink string `json:"songcoverlink"`
}
