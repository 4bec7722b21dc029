package project

// Clone returns a deep copy of the state. The machine transitions on
// clones so a persistence failure can roll back by simply keeping the
// original pointer.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.Context != nil {
		c := Context{
			ICP:          s.Context.ICP,
			TechStack:    cloneStrings(s.Context.TechStack),
			Constraints:  cloneStrings(s.Context.Constraints),
			CoreFeatures: cloneStrings(s.Context.CoreFeatures),
		}
		out.Context = &c
	}
	// Nil collections stay nil so a clone deep-equals its source and the
	// persisted JSON shape does not flip between null and [].
	if s.Plans != nil {
		out.Plans = make(map[string]PlanSnapshot, len(s.Plans))
		for id, p := range s.Plans {
			out.Plans[id] = p.Clone()
		}
	}
	if s.PendingTasks != nil {
		out.PendingTasks = make([]AgentTask, len(s.PendingTasks))
		for i, t := range s.PendingTasks {
			out.PendingTasks[i] = t.Clone()
		}
	}
	if s.Approvals != nil {
		out.Approvals = make([]ApprovalRequest, len(s.Approvals))
		for i, a := range s.Approvals {
			out.Approvals[i] = a.Clone()
		}
	}
	if s.Clarifications != nil {
		out.Clarifications = make([]ClarificationRecord, len(s.Clarifications))
		for i, c := range s.Clarifications {
			out.Clarifications[i] = c.Clone()
		}
	}
	if s.Discussion != nil {
		out.Discussion = make([]DiscussionEntry, len(s.Discussion))
		for i, d := range s.Discussion {
			out.Discussion[i] = d.Clone()
		}
	}
	if s.Execution != nil {
		e := ExecutionState{
			Summary:  s.Execution.Summary,
			Failures: append([]ExecutionFailure(nil), s.Execution.Failures...),
		}
		if s.Execution.Results != nil {
			e.Results = make(map[string]TaskResult, len(s.Execution.Results))
			for id, r := range s.Execution.Results {
				e.Results[id] = r.Clone()
			}
		}
		out.Execution = &e
	}
	out.History = append([]TransitionRecord(nil), s.History...)
	return &out
}

// Clone returns a deep copy of the task.
func (t AgentTask) Clone() AgentTask {
	out := t
	out.Input = cloneAnyMap(t.Input)
	if t.DispatchedAt != nil {
		d := *t.DispatchedAt
		out.DispatchedAt = &d
	}
	return out
}

// Clone returns a deep copy of the record.
func (c ClarificationRecord) Clone() ClarificationRecord {
	out := c
	out.Questions = cloneStrings(c.Questions)
	out.Answers = cloneStrings(c.Answers)
	if c.ResolvedAt != nil {
		r := *c.ResolvedAt
		out.ResolvedAt = &r
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (p PlanSnapshot) Clone() PlanSnapshot {
	out := p
	if p.Roadmap != nil {
		out.Roadmap = make([]Milestone, len(p.Roadmap))
		copy(out.Roadmap, p.Roadmap)
	}
	if p.Features != nil {
		out.Features = make([]Feature, len(p.Features))
		for i, f := range p.Features {
			f.Dependencies = cloneStrings(f.Dependencies)
			f.Owners = cloneStrings(f.Owners)
			out.Features[i] = f
		}
	}
	if p.Tasks != nil {
		out.Tasks = make([]ExecutionTaskDef, len(p.Tasks))
		for i, t := range p.Tasks {
			t.DependsOn = cloneStrings(t.DependsOn)
			t.Payload = cloneAnyMap(t.Payload)
			out.Tasks[i] = t
		}
	}
	return out
}

// Clone returns a deep copy of the approval.
func (a ApprovalRequest) Clone() ApprovalRequest {
	out := a
	out.Details = cloneAnyMap(a.Details)
	out.TaskIDs = cloneStrings(a.TaskIDs)
	return out
}

// Clone returns a deep copy of the result record.
func (r TaskResult) Clone() TaskResult {
	out := r
	if r.Artifacts != nil {
		out.Artifacts = make([]any, len(r.Artifacts))
		for i, a := range r.Artifacts {
			out.Artifacts[i] = cloneAnyValue(a)
		}
	}
	out.Logs = cloneStrings(r.Logs)
	return out
}

// Clone returns a deep copy of the entry.
func (d DiscussionEntry) Clone() DiscussionEntry {
	out := d
	out.Metadata = cloneAnyMap(d.Metadata)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneAnyValue(v)
	}
	return out
}

// cloneAnyValue deep-copies the JSON-shaped values that appear in opaque
// payloads. Scalars and unknown types are copied by value.
func cloneAnyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneAnyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneAnyValue(item)
		}
		return out
	case []string:
		return cloneStrings(val)
	default:
		return v
	}
}
