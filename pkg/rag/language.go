package rag

import (
	wl "github.com/abadojack/whatlanggo"
)

// detectLanguage returns the English name of the question's language, or "" when
// detection is not reliable enough to name it.
func detectLanguage(text string) string {
	info := wl.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.String()
}

func languageInstruction(question string) string {
	if lang := detectLanguage(question); lang != "" {
		return "Answer in " + lang + "."
	}
	return "Answer in the same language as the question."
}
