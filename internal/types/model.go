package types

import "strings"

// Revision is the chipset revision being emulated.
type Revision int

const (
	OCS Revision = iota // OCS - original chipset (8367/8371 Agnus)
	ECS                 // ECS - enhanced chipset (8372A Fat Agnus)
)

var RevisionNames = map[Revision]string{
	OCS: "OCS",
	ECS: "ECS",
}

// StringToRevision converts a string to a Revision, defaulting
// to OCS.
func StringToRevision(s string) Revision {
	for r, n := range RevisionNames {
		if n == strings.ToUpper(s) {
			return r
		}
	}

	return OCS
}

func (r Revision) String() string {
	return RevisionNames[r]
}

// Video is the video standard, which decides the number of lines
// in a frame.
type Video int

const (
	PAL  Video = iota // PAL - 313 lines in a long frame
	NTSC              // NTSC - 263 lines in a long frame
)

func (v Video) String() string {
	if v == NTSC {
		return "NTSC"
	}
	return "PAL"
}

// StringToVideo converts a string to a Video standard, defaulting
// to PAL.
func StringToVideo(s string) Video {
	if strings.ToUpper(s) == "NTSC" {
		return NTSC
	}
	return PAL
}
