package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SearchPreviews Phase = iota
	FillPreviews
)

func (p Phase) String() string {
	switch p {
	case SearchPreviews:
		return "search_previews"
	case FillPreviews:
		return "fill_previews"
	default:
		return ""
	}
}

func startLookupUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchPreviews,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching previews for %d queries...", total),
	}
}

func lookupDoneUpdate(step, total int, o LookupOutcome) ProgressUpdate {
	var status string
	switch {
	case o.Result.Failed():
		status = "✗ " + o.Result.Error
	case o.Result.Matched():
		status = fmt.Sprintf("✓ %s (%d previews)", o.Result.Name, len(o.Result.PreviewURLs))
	default:
		status = "no match"
	}
	if o.Cached {
		status += " [cached]"
	}

	return ProgressUpdate{
		Phase:   SearchPreviews,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s", step, total, o.Query, status),
		Data:    o,
	}
}

func fillPreviewsUpdate(searched, filled int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FillPreviews,
		Step:    filled,
		Total:   searched,
		Message: fmt.Sprintf("Filled %d of %d missing previews", filled, searched),
	}
}
