package release

import (
	"path/filepath"
	"strings"
)

// Kind is the coarse file classification used to decide which files belong in
// an exported descriptor.
type Kind string

const (
	KindVideo Kind = "video"
	KindSubs  Kind = "subs"
	KindNFO   Kind = "nfo"
	KindPar2  Kind = "par2"
	KindSFV   Kind = "sfv"
	KindRar   Kind = "rar"
	KindImage Kind = "image"
	KindOther Kind = "other"
	KindSkip  Kind = "skip"
)

// Includes selects which file kinds are kept during export. The zero value
// excludes everything; use DefaultIncludes for the permissive default.
type Includes struct {
	Sample bool
	NFO    bool
	Subs   bool
	Par2   bool
	SFV    bool
	Rar    bool
	Images bool
	Other  bool
}

// DefaultIncludes keeps every file kind, samples included.
func DefaultIncludes() Includes {
	return Includes{
		Sample: true,
		NFO:    true,
		Subs:   true,
		Par2:   true,
		SFV:    true,
		Rar:    true,
		Images: true,
		Other:  true,
	}
}

var (
	videoExtensions = map[string]struct{}{
		"mkv": {}, "mp4": {}, "avi": {}, "m2ts": {}, "ts": {},
		"mpg": {}, "mov": {}, "wmv": {}, "vob": {},
	}
	subtitleExtensions = map[string]struct{}{
		"srt": {}, "sub": {}, "ass": {}, "idx": {}, "sup": {},
	}
	archiveExtensions = map[string]struct{}{
		"rar": {}, "r00": {}, "r01": {}, "r02": {}, "7z": {}, "zip": {},
	}
	imageExtensions = map[string]struct{}{
		"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "bmp": {},
	}
	auxiliaryExtensions = map[string]struct{}{
		"nfo": {}, "par2": {}, "sfv": {}, "txt": {}, "md": {},
	}
)

// ClassifyFile maps a file's path and name to a Kind, honoring the provided
// include selections. Excluded kinds collapse to KindSkip.
func ClassifyFile(path, name string, inc Includes) Kind {
	loweredName := strings.ToLower(name)
	loweredPath := strings.ToLower(path)

	if !inc.Sample && (strings.Contains(loweredName, "sample") || strings.Contains(loweredPath, "/sample")) {
		return KindSkip
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(loweredName), "."))
	switch {
	case hasExt(videoExtensions, ext):
		return KindVideo
	case hasExt(subtitleExtensions, ext):
		return keep(inc.Subs, KindSubs)
	case ext == "nfo":
		return keep(inc.NFO, KindNFO)
	case ext == "par2":
		return keep(inc.Par2, KindPar2)
	case ext == "sfv":
		return keep(inc.SFV, KindSFV)
	case hasExt(archiveExtensions, ext):
		return keep(inc.Rar, KindRar)
	case hasExt(imageExtensions, ext):
		return keep(inc.Images, KindImage)
	case hasExt(auxiliaryExtensions, ext):
		return Kind(ext)
	default:
		return keep(inc.Other, KindOther)
	}
}

func hasExt(set map[string]struct{}, ext string) bool {
	_, ok := set[ext]
	return ok
}

func keep(include bool, kind Kind) Kind {
	if include {
		return kind
	}
	return KindSkip
}
