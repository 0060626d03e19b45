package app

import "time"

// stepArena owns the pipeline steps of one run, keyed by stable id with
// insertion order preserved. Updates mutate in place; a step that reached
// done or error is never resurrected.
type stepArena struct {
	order []string
	steps map[string]*PipelineStep
}

func newStepArena() *stepArena {
	return &stepArena{steps: make(map[string]*PipelineStep)}
}

func (a *stepArena) get(id, label string) *PipelineStep {
	if step, ok := a.steps[id]; ok {
		return step
	}
	step := &PipelineStep{ID: id, Label: label, Status: StepPending}
	a.steps[id] = step
	a.order = append(a.order, id)
	return step
}

func (a *stepArena) terminal(id string) bool {
	step, ok := a.steps[id]
	return ok && (step.Status == StepDone || step.Status == StepError)
}

// start marks a step running and returns a snapshot for emission, or nil when
// the step already terminated.
func (a *stepArena) start(id, label string, progress int) *PipelineStep {
	if a.terminal(id) {
		return nil
	}
	step := a.get(id, label)
	step.Status = StepRunning
	step.Progress = progress
	step.StartedAt = nowMillis()
	return snapshot(step)
}

func (a *stepArena) finish(id, label, detail string, progress int) *PipelineStep {
	if a.terminal(id) {
		return nil
	}
	step := a.get(id, label)
	step.Status = StepDone
	step.Detail = detail
	step.Progress = progress
	step.FinishedAt = nowMillis()
	return snapshot(step)
}

func (a *stepArena) fail(id, label, detail string) *PipelineStep {
	if a.terminal(id) {
		return nil
	}
	step := a.get(id, label)
	step.Status = StepError
	step.Detail = detail
	step.FinishedAt = nowMillis()
	return snapshot(step)
}

// ordered returns snapshots in first-occurrence order.
func (a *stepArena) ordered() []PipelineStep {
	out := make([]PipelineStep, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.steps[id])
	}
	return out
}

func snapshot(step *PipelineStep) *PipelineStep {
	copied := *step
	return &copied
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
