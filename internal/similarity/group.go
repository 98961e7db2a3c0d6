package similarity

// Score is the similarity of records I and J within one group.
type Score struct {
	I     int
	J     int
	Text  float64
	Image float64
}

// Group holds the precomputed similarity state of one brand+model group.
type Group struct {
	text   Matrix
	images []ImageSet
}

// NewGroup fits the text space on descriptions and hashes every record's images.
// descriptions and images are indexed by record position.
func NewGroup(descriptions []string, images [][]string, maxFeatures, maxImages int) *Group {
	sets := make([]ImageSet, len(images))
	for i, urls := range images {
		sets[i] = NewImageSet(urls, maxImages)
	}
	return &Group{
		text:   TextMatrix(descriptions, maxFeatures),
		images: sets,
	}
}

// Size returns the number of records in the group.
func (g *Group) Size() int {
	return g.text.Size()
}

// Score returns the text and image similarity of records i and j.
func (g *Group) Score(i, j int) Score {
	return Score{
		I:     i,
		J:     j,
		Text:  g.text.At(i, j),
		Image: g.images[i].Jaccard(g.images[j]),
	}
}
