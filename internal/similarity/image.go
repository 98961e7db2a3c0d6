package similarity

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// DefaultMaxImages is how many leading images of a listing are compared.
const DefaultMaxImages = 5

var (
	sizeMarker   = regexp.MustCompile(`_\d+x\d+`)
	numberMarker = regexp.MustCompile(`_\d+`)
)

// ImageKey returns a content identifier for an image URL: the md5 of its path
// with size and quality suffixes removed. Host and query are ignored.
// Unparseable or blank URLs yield "".
func ImageKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	path := sizeMarker.ReplaceAllString(u.Path, "")
	path = numberMarker.ReplaceAllString(path, "")
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}

// ImageSet is the set of image keys of one listing.
type ImageSet map[string]struct{}

// NewImageSet hashes at most maxImages leading URLs.
func NewImageSet(urls []string, maxImages int) ImageSet {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	if len(urls) > maxImages {
		urls = urls[:maxImages]
	}
	set := make(ImageSet, len(urls))
	for _, u := range urls {
		if key := ImageKey(u); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, 0 when either set is empty.
func (a ImageSet) Jaccard(b ImageSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for key := range a {
		if _, ok := b[key]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// ImageSimilarity compares the leading maxImages images of two listings.
func ImageSimilarity(a, b []string, maxImages int) float64 {
	return NewImageSet(a, maxImages).Jaccard(NewImageSet(b, maxImages))
}
