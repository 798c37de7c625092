package app

import (
	"fmt"
	"io"

	"github.com/sha1n/termdex/internal/domain"
	"github.com/sha1n/termdex/internal/index"
)

// PrintResults writes ranked query results, one numbered line per document.
func PrintResults(w io.Writer, query string, results []domain.DocumentScore) {
	_, _ = fmt.Fprintf(w, "Query results for \"%s\":\n", query)
	for i, r := range results {
		_, _ = fmt.Fprintf(w, "%d. [%.4f] %s\n", i+1, r.Score, r.Path)
	}
}

// PrintInfo writes index statistics.
func PrintInfo(w io.Writer, info domain.IndexInfo) {
	_, _ = fmt.Fprintf(w, "Documents: %d\nTerms: %d\n", info.DocumentCount, info.TermCount)
}

// PrintAddReport summarizes an add or refresh batch.
func PrintAddReport(w io.Writer, report index.Report) {
	_, _ = fmt.Fprintf(w, "Indexed %d files (%d skipped, %d failed).\n",
		len(report.Indexed), len(report.Skipped), len(report.Failed))
	for _, f := range report.Failed {
		_, _ = fmt.Fprintf(w, "  failed: %s\n", f)
	}
}

// PrintRemoveReport summarizes a remove batch.
func PrintRemoveReport(w io.Writer, report index.Report) {
	_, _ = fmt.Fprintf(w, "Removed %d documents from the index.\n", len(report.Removed))
}
