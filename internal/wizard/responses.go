package wizard

// ResponseSet maps step id to question text to answer.
type ResponseSet map[string]map[string]string

// Record stores an answer, creating the step entry when needed.
func (r ResponseSet) Record(stepID, question, answer string) {
	answers, ok := r[stepID]
	if !ok {
		answers = make(map[string]string)
		r[stepID] = answers
	}
	answers[question] = answer
}

// Step returns a copy of the answers recorded for stepID.
func (r ResponseSet) Step(stepID string) map[string]string {
	out := make(map[string]string, len(r[stepID]))
	for q, a := range r[stepID] {
		out[q] = a
	}
	return out
}

// Clone deep-copies the set.
func (r ResponseSet) Clone() ResponseSet {
	out := make(ResponseSet, len(r))
	for id := range r {
		out[id] = r.Step(id)
	}
	return out
}
