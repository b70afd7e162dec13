package translate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vaibh/v2srt/internal/subtitle"
)

// replyLinePattern matches one translated line: [index] text.
var replyLinePattern = regexp.MustCompile(`^\[(\d+)\]\s*(.+)$`)

const promptTemplate = `Translate the following subtitle lines into %s. Requirements:

1. Preserve the emotional color and tone of the original
2. Use natural phrasing that reads idiomatically in %s
3. Keep the individual voice of each character in dialogue
4. Keep personal and place names as-is when they have no standard %s rendering, transliterating where needed
5. Do not change the subtitle format: every line keeps its index wrapped in square brackets

Lines to translate:
%s
Output the translation directly:`

// BuildPrompt renders the instruction template around one [index] text line
// per cue, in ascending index order.
func BuildPrompt(entries map[int]*subtitle.Entry, targetLanguage string) string {
	indices := make([]int, 0, len(entries))
	for idx := range entries {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var lines strings.Builder
	for _, idx := range indices {
		fmt.Fprintf(&lines, "[%d] %s\n", idx, entries[idx].Text)
	}
	return fmt.Sprintf(promptTemplate, targetLanguage, targetLanguage, targetLanguage, lines.String())
}

// ApplyReply parses the model's reply line by line and updates matching cues
// according to mode. Lines that do not carry the [index] prefix are ignored,
// and cues the reply never mentions keep their original text, so a partially
// malformed reply degrades per-cue instead of failing the batch.
func ApplyReply(entries map[int]*subtitle.Entry, reply string, mode Mode) int {
	applied := 0
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := replyLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entry, ok := entries[index]
		if !ok {
			continue
		}

		translated := strings.TrimSpace(m[2])
		if mode == ModeAppend {
			entry.Text = entry.Text + "\n" + translated
		} else {
			entry.Text = translated
		}
		applied++
	}
	return applied
}
