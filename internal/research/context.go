package research

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/veritas-health/medresearch/models"
)

const (
	// DefaultWebCap and DefaultLocalCap bound how many results of each kind
	// enter the citation context.
	DefaultWebCap   = 5
	DefaultLocalCap = 3

	// localContentBudget truncates document content in the context block.
	localContentBudget = 500

	truncationMarker = "..."
)

// Entry is one numbered citation in the synthesis context.
type Entry struct {
	Index   int
	Label   string
	Content string
	Kind    models.SourceKind
}

// Assembled is the merged, numbered evidence for one query. Citation numbers
// in the synthesized text correspond positionally to Sources.
type Assembled struct {
	Entries      []Entry
	Sources      []models.Source
	WebContext   string
	LocalContext string
	WebTotal     int
	LocalTotal   int
}

// Assemble merges ranked web and local results with the default caps.
func Assemble(web, local []models.SearchResult) Assembled {
	return AssembleWithCaps(web, local, DefaultWebCap, DefaultLocalCap)
}

// AssembleWithCaps numbers web results 1..min(len(web), webCap) and local
// results continuing from there, rendering the two context blocks and the
// flattened source list in the same order.
func AssembleWithCaps(web, local []models.SearchResult, webCap, localCap int) Assembled {
	asm := Assembled{WebTotal: len(web), LocalTotal: len(local)}

	var webCtx strings.Builder
	index := 0
	for _, r := range web {
		if index >= webCap {
			break
		}
		index++
		fmt.Fprintf(&webCtx, "[%d] %s\nURL: %s\nContent: %s\n\n", index, r.Title, r.URL, r.Snippet)
		asm.Entries = append(asm.Entries, Entry{Index: index, Label: r.Title, Content: r.Snippet, Kind: models.SourceKindWeb})
		asm.Sources = append(asm.Sources, models.Source{Title: r.Title, URL: r.URL, Domain: r.Domain, Kind: models.SourceKindWeb})
	}

	var localCtx strings.Builder
	taken := 0
	for _, r := range local {
		if taken >= localCap {
			break
		}
		taken++
		index++
		title := r.Title
		if title == "" {
			title = "Document"
		}
		source := r.URL
		if source == "" {
			source = "Local"
		}
		content := truncate(r.Snippet, localContentBudget)
		fmt.Fprintf(&localCtx, "[%d] %s\nSource: %s\nContent: %s\n\n", index, title, source, content)
		asm.Entries = append(asm.Entries, Entry{Index: index, Label: title, Content: content, Kind: models.SourceKindDocument})
		asm.Sources = append(asm.Sources, models.Source{Title: title, URL: r.URL, Domain: "local_database", Kind: models.SourceKindDocument})
	}

	asm.WebContext = webCtx.String()
	asm.LocalContext = localCtx.String()
	return asm
}

func truncate(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	return cutAtRune(s, budget) + truncationMarker
}

// cutAtRune returns the longest prefix of s within n bytes that ends on a
// rune boundary, so a cut never leaves invalid UTF-8 behind.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
