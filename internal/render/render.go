package render

import "strings"

// Renderer turns generated text into the distributable document
// format. Production uses Text; tests inject their own.
type Renderer interface {
	ToDisplayFormat(text string) ([]byte, error)
}

// Text is the plain-text renderer: normalized line endings and a
// guaranteed trailing newline.
type Text struct{}

func (Text) ToDisplayFormat(text string) ([]byte, error) {
	s := strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return []byte(s), nil
}
