package brackets

// Kind is one of the four supported bracket types.
type Kind uint8

const (
	Round    Kind = iota // ( )
	Square               // [ ]
	Triangle             // < >
	Curly                // { }
)

// glyphs maps each kind to its opening and closing glyph.
var glyphs = [...][2]rune{
	Round:    {'(', ')'},
	Square:   {'[', ']'},
	Triangle: {'<', '>'},
	Curly:    {'{', '}'},
}

var (
	openers = map[rune]Kind{'(': Round, '[': Square, '<': Triangle, '{': Curly}
	closers = map[rune]Kind{')': Round, ']': Square, '>': Triangle, '}': Curly}
)

// Open returns the opening glyph of the kind.
func (k Kind) Open() rune {
	return glyphs[k][0]
}

// Close returns the closing glyph of the kind.
func (k Kind) Close() rune {
	return glyphs[k][1]
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Round:
		return "round"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Curly:
		return "curly"
	default:
		return "unknown"
	}
}

// Opener reports whether r opens a bracket and which kind.
func Opener(r rune) (Kind, bool) {
	k, ok := openers[r]
	return k, ok
}

// Closer reports whether r closes a bracket and which kind.
func Closer(r rune) (Kind, bool) {
	k, ok := closers[r]
	return k, ok
}
