package lexer

import "strings"

// SplitFragments runs one classification pass of table over fragments.
//
// Each fragment is checked against the table in order. The first entry that
// occurs anywhere inside the fragment is passed to record. A fragment equal
// to the entry is consumed; otherwise every occurrence of the entry is cut
// out and the remaining pieces are queued behind the current worklist, so
// they are classified by this same pass. A fragment contributes at most one
// entry per visit. Fragments with no match are returned in their original
// relative order, followed by unmatched residues.
//
// The returned slice never contains empty strings. Empty table entries are
// ignored.
func SplitFragments(fragments []string, table []string, record func(string)) []string {
	queue := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			queue = append(queue, f)
		}
	}

	kept := make([]string, 0, len(queue))
	for i := 0; i < len(queue); i++ {
		fragment := queue[i]

		entry, ok := firstMatch(fragment, table)
		if !ok {
			kept = append(kept, fragment)
			continue
		}

		record(entry)
		if fragment == entry {
			continue
		}
		// Each cut removes at least one byte, so the worklist drains.
		queue = append(queue, strings.Fields(strings.ReplaceAll(fragment, entry, " "))...)
	}

	return kept
}

// firstMatch returns the earliest table entry contained in fragment.
func firstMatch(fragment string, table []string) (string, bool) {
	for _, entry := range table {
		if entry != "" && strings.Contains(fragment, entry) {
			return entry, true
		}
	}
	return "", false
}
