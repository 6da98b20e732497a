package version

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokAlpha
	tokDelim
)

type token struct {
	kind tokenKind
	text string
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// IsDelimiter reports whether c separates version components.
func IsDelimiter(c byte) bool { return c == '.' || c == '-' || c == '_' }

// tokenize splits s into digit runs, letter runs and single delimiters.
// It returns false when s contains other characters or a delimiter sits at
// either end or next to another delimiter.
func tokenize(s string) ([]token, bool) {
	if s == "" {
		return nil, false
	}
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case IsDelimiter(c):
			if i == 0 || i == len(s)-1 || IsDelimiter(s[i-1]) {
				return nil, false
			}
			toks = append(toks, token{kind: tokDelim, text: s[i : i+1]})
			i++
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: s[i:j]})
			i = j
		case isAlpha(c):
			j := i
			for j < len(s) && isAlpha(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tokAlpha, text: s[i:j]})
			i = j
		default:
			return nil, false
		}
	}
	return toks, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
