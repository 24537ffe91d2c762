// Package review implements the multi-step approval flow an owner walks
// through for each pending task, the snapshot cache it falls back on, and
// the API client it drives. The flow itself is a pure state machine: every
// transition takes a Flow value and returns the next one, so a forgotten
// field reset is impossible by construction.
package review

import (
	"strings"

	"github.com/tradehand/tradehand/internal/contacts"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

// Step identifies the current screen of the flow.
type Step string

const (
	StepGroupSummary          Step = "group_summary"
	StepContactDisambiguation Step = "contact_disambiguation"
	StepContactDetails        Step = "contact_details"
	StepTimingSelection       Step = "timing_selection"
	StepMessagePreview        Step = "message_preview"
)

// Bucket is one of the three presentation-level timing choices. Each maps
// onto a backend timing value before submission.
type Bucket string

const (
	BucketTomorrowAM Bucket = "tomorrow_am"
	BucketTomorrowPM Bucket = "tomorrow_pm"
	BucketInTwoDays  Bucket = "in_two_days"
)

// Timing maps a bucket onto the backend timing vocabulary. The mapping is
// lossy: tomorrow_pm resolves to end_of_day, which is today 17:00 when the
// approval happens before 17:00, and in_two_days lands on next_week (+7d).
func (b Bucket) Timing() (task.Timing, bool) {
	switch b {
	case BucketTomorrowAM:
		return task.TimingTomorrow, true
	case BucketTomorrowPM:
		return task.TimingEndOfDay, true
	case BucketInTwoDays:
		return task.TimingNextWeek, true
	}
	return "", false
}

// ReviewTask is a pending task annotated with its contact resolution.
type ReviewTask struct {
	Task        task.Task
	IsAmbiguous bool
	Candidates  []contacts.Candidate
}

// TaskGroup collects the pending tasks of one display category.
type TaskGroup struct {
	Category task.DisplayCategory
	Tasks    []ReviewTask
}

// Selection holds everything collected for the current task. It is reset in
// full every time the flow moves to another task.
type Selection struct {
	ContactID string
	CreateNew bool
	Phone     string
	Email     string
	Message   string
	Bucket    Bucket
}

// Flow is the state machine value. Transitions return a new Flow and never
// mutate the receiver's slices beyond indexing into them.
type Flow struct {
	Groups    []TaskGroup
	GroupIdx  int
	TaskIdx   int
	Step      Step
	Selection Selection
}

// BuildGroups annotates pending tasks with contact resolution against the
// directory snapshot and groups them by display category. A contact-facing
// task is ambiguous unless its name resolves to a single exact match.
func BuildGroups(tasks []task.Task, directory []contacts.Contact, limit int) []TaskGroup {
	order := []task.DisplayCategory{task.CategoryFollowUp, task.CategoryReminder, task.CategoryNote}
	byCategory := make(map[task.DisplayCategory][]ReviewTask)

	for _, t := range tasks {
		if t.Status != task.StatusPending {
			continue
		}
		rt := ReviewTask{Task: t}
		if task.ContactFacing(t.Type) && t.ContactName != nil {
			m := contacts.Rank(*t.ContactName, directory, limit)
			rt.IsAmbiguous = !m.Exact
			rt.Candidates = m.Candidates
		} else if task.ContactFacing(t.Type) {
			rt.IsAmbiguous = true
		}
		cat := task.CategoryFor(t.Type)
		byCategory[cat] = append(byCategory[cat], rt)
	}

	groups := make([]TaskGroup, 0, len(order))
	for _, cat := range order {
		if pending := byCategory[cat]; len(pending) > 0 {
			groups = append(groups, TaskGroup{Category: cat, Tasks: pending})
		}
	}
	return groups
}

// Start opens the flow at the group summary.
func Start(groups []TaskGroup) Flow {
	return Flow{Groups: groups, GroupIdx: -1, Step: StepGroupSummary}
}

// Current returns the task under review. The second result is false at the
// group summary.
func (f Flow) Current() (ReviewTask, bool) {
	if f.GroupIdx < 0 || f.GroupIdx >= len(f.Groups) {
		return ReviewTask{}, false
	}
	g := f.Groups[f.GroupIdx]
	if f.TaskIdx < 0 || f.TaskIdx >= len(g.Tasks) {
		return ReviewTask{}, false
	}
	return g.Tasks[f.TaskIdx], true
}

// SelectGroup enters the first task of group i.
func (f Flow) SelectGroup(i int) (Flow, error) {
	if f.Step != StepGroupSummary {
		return f, errors.NewValidation("group selection is only available from the summary")
	}
	if i < 0 || i >= len(f.Groups) || len(f.Groups[i].Tasks) == 0 {
		return f, errors.NewValidation("no such task group")
	}
	f.GroupIdx = i
	f.TaskIdx = 0
	return f.enterTask(), nil
}

// enterTask resets the selection and positions the flow on the current
// task's first relevant step.
func (f Flow) enterTask() Flow {
	rt, _ := f.Current()
	f.Selection = Selection{Message: rt.Task.Message}

	if !rt.IsAmbiguous {
		if len(rt.Candidates) == 1 {
			f.Selection = applyContact(f.Selection, rt.Candidates[0].Contact)
		} else {
			f.Selection.Phone = deref(rt.Task.ContactPhone)
			f.Selection.Email = deref(rt.Task.ContactEmail)
		}
		f.Step = StepContactDetails
		return f
	}

	// Pre-select the first candidate only when it is already reachable.
	if len(rt.Candidates) > 0 && rt.Candidates[0].Contact.Reachable() {
		f.Selection = applyContact(f.Selection, rt.Candidates[0].Contact)
	}
	f.Step = StepContactDisambiguation
	return f
}

// ChooseCandidate resolves the ambiguous contact to candidate i.
func (f Flow) ChooseCandidate(i int) (Flow, error) {
	if f.Step != StepContactDisambiguation {
		return f, errors.NewValidation("no contact choice is pending")
	}
	rt, ok := f.Current()
	if !ok || i < 0 || i >= len(rt.Candidates) {
		return f, errors.NewValidation("no such candidate")
	}
	f.Selection = applyContact(f.Selection, rt.Candidates[i].Contact)
	f.Selection.Message = nonEmpty(f.Selection.Message, rt.Task.Message)
	f.Step = StepContactDetails
	return f, nil
}

// ChooseCreateNew records that a fresh contact will be created and moves on
// with empty details.
func (f Flow) ChooseCreateNew() (Flow, error) {
	if f.Step != StepContactDisambiguation {
		return f, errors.NewValidation("no contact choice is pending")
	}
	rt, _ := f.Current()
	f.Selection = Selection{CreateNew: true, Message: rt.Task.Message}
	f.Step = StepContactDetails
	return f, nil
}

// SetContactDetails records the phone and email for the current task. For a
// contact-facing task at least one must be present; the gate is hard.
func (f Flow) SetContactDetails(phone, email string) (Flow, error) {
	if f.Step != StepContactDetails {
		return f, errors.NewValidation("contact details are not being collected")
	}
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)
	rt, _ := f.Current()
	if task.ContactFacing(rt.Task.Type) && phone == "" && email == "" {
		return f, errors.NewValidation("a phone number or email is required before continuing")
	}
	f.Selection.Phone = phone
	f.Selection.Email = email
	f.Step = StepTimingSelection
	return f, nil
}

// SelectBucket records the timing choice and moves to the preview.
func (f Flow) SelectBucket(b Bucket) (Flow, error) {
	if f.Step != StepTimingSelection {
		return f, errors.NewValidation("timing is not being collected")
	}
	if _, ok := b.Timing(); !ok {
		return f, errors.NewValidation("unknown timing bucket")
	}
	f.Selection.Bucket = b
	f.Step = StepMessagePreview
	return f, nil
}

// EditMessage replaces the drafted message from the preview screen.
func (f Flow) EditMessage(msg string) (Flow, error) {
	if f.Step != StepMessagePreview {
		return f, errors.NewValidation("the message is not being previewed")
	}
	f.Selection.Message = msg
	return f, nil
}

// ActionKind distinguishes the two ways a review ends.
type ActionKind string

const (
	ActionApprove ActionKind = "approve"
	ActionSkip    ActionKind = "skip"
)

// Action is the lifecycle transition the caller must execute for the task
// just reviewed. The flow itself never talks to the server.
type Action struct {
	Kind         ActionKind
	TaskID       string
	CreateNew    bool
	ContactName  *string
	ContactID    *string
	ContactPhone *string
	ContactEmail *string
	Message      *string
	Timing       *string
}

// Approve finishes the current task with the collected overrides.
func (f Flow) Approve() (Flow, Action, error) {
	if f.Step != StepMessagePreview {
		return f, Action{}, errors.NewValidation("review of the current task is not complete")
	}
	rt, _ := f.Current()

	timing := ""
	if tm, ok := f.Selection.Bucket.Timing(); ok {
		timing = string(tm)
	}
	a := Action{
		Kind:         ActionApprove,
		TaskID:       rt.Task.ID,
		CreateNew:    f.Selection.CreateNew,
		ContactName:  rt.Task.ContactName,
		ContactID:    optional(f.Selection.ContactID),
		ContactPhone: optional(f.Selection.Phone),
		ContactEmail: optional(f.Selection.Email),
		Message:      optional(f.Selection.Message),
		Timing:       optional(timing),
	}
	return f, a, nil
}

// Skip finishes the current task without overrides. Available from any
// per-task step.
func (f Flow) Skip() (Flow, Action, error) {
	rt, ok := f.Current()
	if !ok {
		return f, Action{}, errors.NewValidation("no task is under review")
	}
	return f, Action{Kind: ActionSkip, TaskID: rt.Task.ID}, nil
}

// Advance moves to the next task in the current group, then the next
// non-empty group, then back to the summary. The selection is reset in full
// on every move.
func (f Flow) Advance() Flow {
	f.Selection = Selection{}

	if f.GroupIdx < 0 || f.GroupIdx >= len(f.Groups) {
		f.Step = StepGroupSummary
		return f
	}
	if f.TaskIdx+1 < len(f.Groups[f.GroupIdx].Tasks) {
		f.TaskIdx++
		return f.enterTask()
	}
	for i := f.GroupIdx + 1; i < len(f.Groups); i++ {
		if len(f.Groups[i].Tasks) > 0 {
			f.GroupIdx = i
			f.TaskIdx = 0
			return f.enterTask()
		}
	}
	f.GroupIdx = -1
	f.TaskIdx = 0
	f.Step = StepGroupSummary
	return f
}

// applyContact fills the selection from a resolved contact.
func applyContact(sel Selection, c contacts.Contact) Selection {
	sel.ContactID = c.ID
	sel.CreateNew = false
	sel.Phone = deref(c.Phone)
	sel.Email = deref(c.Email)
	return sel
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
