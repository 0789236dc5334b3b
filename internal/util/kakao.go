package util

import "strings"

const (
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
)

// ApplyKakaoSeeMorePadding keeps instruction visible and folds text behind
// the chat client's "see more" cut by padding with zero-width spaces.
func ApplyKakaoSeeMorePadding(text, instruction string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	message := strings.TrimSpace(instruction)

	var b strings.Builder
	b.Grow(len(text) + len(message) + KakaoSeeMorePadding*len(KakaoZeroWidthSpace) + 1)
	b.WriteString(message)
	b.WriteString(strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding))
	if !strings.HasPrefix(text, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(text)
	return b.String()
}

// StripLeadingHeader drops header (and the blank lines after it) from text.
func StripLeadingHeader(text, header string) string {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(header) == "" {
		return text
	}
	if !strings.HasPrefix(text, header) {
		return text
	}
	rest := strings.TrimPrefix(text, header)
	return strings.TrimLeft(rest, "\r\n")
}

// ApplySeeMoreWithHeader moves header into the visible instruction line and
// folds the rest. fallback is used when header is blank.
func ApplySeeMoreWithHeader(text, header, fallback, suffix string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	body := StripLeadingHeader(text, header)
	instruction := strings.TrimSpace(header)
	if instruction == "" {
		instruction = strings.TrimSpace(fallback)
	} else {
		instruction += suffix
	}
	return ApplyKakaoSeeMorePadding(body, instruction)
}
