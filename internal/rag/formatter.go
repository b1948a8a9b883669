// Package rag implements the retrieval-augmented answer pipeline: query
// encoding, nearest-neighbor retrieval, intent classification, context
// formatting, prompt assembly and generation with deterministic fallback.
package rag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kona-labs/study-advisor-go/internal/catalog"
)

// FormatPrograms renders retrieved programs as the human-readable context
// block fed to prompts and fallback responses. records and distances are
// parallel slices in retrieval order.
//
// Every field degrades to "N/A" individually; one bad cell never suppresses
// the rest of the block. IELTS and TOEFL lines are omitted entirely when the
// score is absent or non-positive.
func FormatPrograms(records []catalog.ProgramRecord, distances []float32) string {
	blocks := make([]string, 0, len(records))

	for i, rec := range records {
		var dist float64
		if i < len(distances) {
			dist = float64(distances[i])
		}
		similarity := 1 / (1 + dist)

		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s\n", i+1, catalog.TextOrNA(rec.Program))
		fmt.Fprintf(&b, "   University: %s\n", catalog.TextOrNA(rec.University))
		fmt.Fprintf(&b, "   Fees: %s\n", catalog.FormatMoney(rec.Fees))
		fmt.Fprintf(&b, "   Duration: %s\n", catalog.TextOrNA(rec.Duration))

		if ielts, ok := catalog.PositiveScore(rec.IELTS); ok {
			fmt.Fprintf(&b, "   IELTS: %s\n", strconv.FormatFloat(ielts, 'f', -1, 64))
		}
		if toefl, ok := catalog.PositiveScore(rec.TOEFL); ok {
			fmt.Fprintf(&b, "   TOEFL: %s\n", strconv.FormatFloat(toefl, 'f', -1, 64))
		}

		fmt.Fprintf(&b, "   Match: %.2f%%\n", similarity*100)
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n")
}
