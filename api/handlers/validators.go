package handlers

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"readyroom/core/store"
)

// Body schemas for the mutating endpoints. Fields are pointers so a
// missing key is distinguishable from a zero value; severity is a
// float so a fractional number fails the integer check instead of
// being silently truncated.

type createChecklistRequest struct {
	Title *string `json:"title"`
}

type addStepRequest struct {
	Label *string `json:"label"`
}

type createIncidentRequest struct {
	Title    *string  `json:"title"`
	Severity *float64 `json:"severity"`
}

type addIncidentUpdateRequest struct {
	Note *string `json:"note"`
}

type patchIncidentStatusRequest struct {
	Status *string `json:"status"`
}

func checkStringField(details *validationDetails, field string, value *string, min, max int) {
	if value == nil {
		details.addField(field, "is required")
		return
	}
	// Bounds count characters, not bytes, so multibyte input is measured
	// the same way clients measure it.
	n := utf8.RuneCountInString(*value)
	if n < min {
		details.addField(field, fmt.Sprintf("must be at least %d characters", min))
	}
	if n > max {
		details.addField(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (req *createChecklistRequest) validate(details *validationDetails) {
	checkStringField(details, "title", req.Title, 3, 120)
}

func (req *addStepRequest) validate(details *validationDetails) {
	checkStringField(details, "label", req.Label, 3, 200)
}

func (req *createIncidentRequest) validate(details *validationDetails) {
	checkStringField(details, "title", req.Title, 3, 160)
	switch {
	case req.Severity == nil:
		details.addField("severity", "is required")
	case *req.Severity != math.Trunc(*req.Severity):
		details.addField("severity", "must be an integer")
	case *req.Severity < 1 || *req.Severity > 5:
		details.addField("severity", "must be between 1 and 5")
	}
}

func (req *addIncidentUpdateRequest) validate(details *validationDetails) {
	checkStringField(details, "note", req.Note, 2, 500)
}

func (req *patchIncidentStatusRequest) validate(details *validationDetails) {
	if req.Status == nil {
		details.addField("status", "is required")
		return
	}
	if !store.ValidIncidentStatus(*req.Status) {
		details.addField("status", "must be one of "+strings.Join([]string{
			store.StatusOpen, store.StatusInvestigating, store.StatusMitigated, store.StatusResolved,
		}, ", "))
	}
}
