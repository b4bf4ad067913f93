// Package doctor runs health checks on the editor's configuration, storage,
// and environment.
package doctor

import (
	"context"
	"fmt"
)

type Status uint8

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

var statusNames = [...]string{StatusPass: "pass", StatusWarn: "warn", StatusFail: "fail"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", s)
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// CheckItem is one line of a check's output. Fixable items are repaired when
// the check runs with autofix; Fixed marks the ones that were.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
	Fixed   bool   `json:"fixed,omitempty"`
}

func (i CheckItem) needsFix() bool { return i.Fixable && i.Status != StatusPass }

type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Tally counts items by status.
type Tally struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

// Report is the combined output of a doctor run.
type Report struct {
	Checks []Result
}

// Run executes checks in order.
func Run(ctx context.Context, checks ...Check) Report {
	r := Report{Checks: make([]Result, 0, len(checks))}
	for _, c := range checks {
		r.Checks = append(r.Checks, c.Run(ctx))
	}
	return r
}

func (r Report) Tally() Tally {
	var t Tally
	r.each(func(i CheckItem) {
		switch i.Status {
		case StatusPass:
			t.Passed++
		case StatusWarn:
			t.Warned++
		case StatusFail:
			t.Failed++
		}
	})
	return t
}

// Healthy reports whether no item failed. Warnings do not count.
func (r Report) Healthy() bool { return r.Tally().Failed == 0 }

// Fixable counts the unresolved items autofix could repair.
func (r Report) Fixable() int {
	n := 0
	r.each(func(i CheckItem) {
		if i.needsFix() {
			n++
		}
	})
	return n
}

func (r Report) each(fn func(CheckItem)) {
	for _, res := range r.Checks {
		for _, item := range res.Items {
			fn(item)
		}
	}
}

func pass(label, detail string) CheckItem {
	return CheckItem{Label: label, Status: StatusPass, Detail: detail}
}

func warn(label, detail string) CheckItem {
	return CheckItem{Label: label, Status: StatusWarn, Detail: detail}
}

func fail(label, detail string) CheckItem {
	return CheckItem{Label: label, Status: StatusFail, Detail: detail}
}
