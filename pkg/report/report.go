// Package report renders a collection pass as plain text: an error
// banner, a one-line summary, the item list, then a warnings section.
// Colored terminal output belongs to the surrounding tooling, not
// here.
package report

import (
	"fmt"
	"io"

	"github.com/specvital/rtest-go/pkg/collect"
	"github.com/specvital/rtest-go/pkg/domain"
	"github.com/specvital/rtest-go/pkg/pydiscover"
)

// WriteCollection renders one collection pass's outcome to w.
func WriteCollection(w io.Writer, items []domain.Function, errs []collect.CollectionError, warnings []pydiscover.Warning) {
	if len(items) == 0 && len(errs) == 0 && len(warnings) == 0 {
		fmt.Fprintln(w, "No tests collected.")
		return
	}

	for _, e := range errs {
		fmt.Fprintf(w, "ERROR collecting %s\n", e.Nodeid)
		fmt.Fprintf(w, "E   %s\n", e.Err)
	}

	fmt.Fprintf(w, "collected %d items / %d errors / %d warnings\n", len(items), len(errs), len(warnings))

	for _, item := range items {
		fmt.Fprintln(w, item.Nodeid)
	}

	if len(warnings) > 0 {
		fmt.Fprintln(w, "warnings summary")
		for _, wn := range warnings {
			fmt.Fprintf(w, "  %s: %s\n", wn.Nodeid, wn.Message)
		}
	}
}

// WriteUncertainFiles writes one relative path per line,
// LF-terminated. Callers are expected to have already sorted files
// (collect.Result.UncertainFiles is).
func WriteUncertainFiles(w io.Writer, files []string) error {
	for _, f := range files {
		if _, err := fmt.Fprintf(w, "%s\n", f); err != nil {
			return err
		}
	}
	return nil
}
