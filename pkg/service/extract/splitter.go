package extract

// DefaultChunkSize is the default window size in characters for
// embedding-compatible sub-splitting.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters
// between adjacent windows.
const DefaultChunkOverlap = 150

// DefaultSplitThreshold is the clause length above which the text is split
// into windows before embedding. The stored clause record itself stays
// unsplit.
const DefaultSplitThreshold = 2500

// Splitter produces fixed-size character windows for texts too long to embed
// as a single vector
type Splitter struct {
	chunkSize int
	overlap   int
	threshold int
}

// SplitterOption configures the splitter
type SplitterOption func(*Splitter)

// WithChunkSize sets the window size in characters
func WithChunkSize(size int) SplitterOption {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in characters
func WithOverlap(overlap int) SplitterOption {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithThreshold sets the length above which a text is windowed
func WithThreshold(threshold int) SplitterOption {
	return func(s *Splitter) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// NewSplitter creates a splitter with the given options
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		threshold: DefaultSplitThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	return s
}

// NeedsSplit reports whether the text exceeds the embedding threshold
func (s *Splitter) NeedsSplit(text string) bool {
	return len(text) > s.threshold
}

// Split cuts text into fixed-size character windows with overlap. The last
// partial window is kept.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	step := s.chunkSize - s.overlap
	for start := 0; start < len(text); start += step {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}
