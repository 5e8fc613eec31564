package requirements

import (
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/infrachat/internal/infra"
)

// NewSession creates a session for plan. Call Start before answering.
func NewSession(sessionID string, plan *infra.Plan) *Session {
	return &Session{SessionID: sessionID, Plan: plan, Answers: []Answer{}}
}

func (s *Session) total() int {
	if s.Plan == nil {
		return 0
	}
	return len(s.Plan.Questions)
}

// Start resets answers and the cursor and returns the first question, or an
// immediate completion when the plan has no questions.
func (s *Session) Start(now time.Time) Result {
	s.Answers = []Answer{}
	s.Cursor = 0
	s.Completed = false
	s.UpdatedAt = now

	if s.Plan == nil {
		return noPlanResult()
	}
	if s.total() == 0 {
		s.Completed = true
		return Result{
			Success:              true,
			Message:              "No additional requirements are needed for this plan.",
			IsComplete:           true,
			CompletionPercentage: 100,
			NextSteps:            completionNextSteps,
		}
	}
	return Result{
		Success:        true,
		Message:        s.FormatQuestion(0),
		QuestionNumber: 1,
		TotalQuestions: s.total(),
	}
}

// ProcessResponse records the answer to the 1-indexed question n. Answering
// the last question completes the collection; unanswered questions before it
// take their defaults.
func (s *Session) ProcessResponse(n int, text string, now time.Time) Result {
	if s.Plan == nil {
		return noPlanResult()
	}
	total := s.total()
	if n < 1 || n > total {
		return Result{
			Success:        false,
			TotalQuestions: total,
			Error:          fmt.Sprintf("question number %d is out of range (1-%d)", n, total),
			Suggestion:     fmt.Sprintf("Answer with \"answer <1-%d> <your answer>\" or say \"proceed with defaults\".", total),
		}
	}

	text = strings.TrimSpace(text)
	q := s.Plan.Questions[n-1]
	if text == "" {
		text = defaultFor(q)
	}
	s.record(q, text, now)
	s.UpdatedAt = now

	if n == total {
		s.fillDefaults(now)
		return s.complete(fmt.Sprintf("Recorded %q for %s.", text, q.ID))
	}

	s.Cursor = n
	return Result{
		Success:              true,
		Message:              fmt.Sprintf("Recorded %q for %s.\n\n%s", text, q.ID, s.FormatQuestion(n)),
		QuestionNumber:       n + 1,
		TotalQuestions:       total,
		CompletionPercentage: s.CompletionPercentage(),
	}
}

// ProceedWithDefaults answers every unanswered question with its default and
// completes the collection.
func (s *Session) ProceedWithDefaults(now time.Time) Result {
	if s.Plan == nil {
		return noPlanResult()
	}
	filled := s.fillDefaults(now)
	s.UpdatedAt = now
	return s.complete(fmt.Sprintf("Applied defaults to %d remaining question(s).", filled))
}

func (s *Session) complete(prefix string) Result {
	s.Completed = true
	s.Cursor = s.total()

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("\n\nRequirements collection complete:\n")
	for _, a := range s.Answers {
		fmt.Fprintf(&b, "- %s: %s\n", a.QuestionID, a.Answer)
	}
	return Result{
		Success:              true,
		Message:              b.String(),
		TotalQuestions:       s.total(),
		IsComplete:           true,
		CompletionPercentage: 100,
		NextSteps:            completionNextSteps,
	}
}

// record stores an answer, replacing an earlier answer to the same question.
func (s *Session) record(q infra.Question, text string, now time.Time) {
	a := Answer{QuestionID: q.ID, Answer: text, Category: q.Category, Timestamp: now}
	for i := range s.Answers {
		if s.Answers[i].QuestionID == q.ID {
			s.Answers[i] = a
			return
		}
	}
	s.Answers = append(s.Answers, a)
}

func (s *Session) fillDefaults(now time.Time) int {
	filled := 0
	for _, q := range s.Plan.Questions {
		if !s.answered(q.ID) {
			s.record(q, defaultFor(q), now)
			filled++
		}
	}
	return filled
}

func defaultFor(q infra.Question) string {
	if q.Default != "" {
		return q.Default
	}
	return defaultAnswer
}

func (s *Session) answered(id string) bool {
	for _, a := range s.Answers {
		if a.QuestionID == id {
			return true
		}
	}
	return false
}

// CompletionPercentage is answered questions over total questions.
func (s *Session) CompletionPercentage() float64 {
	total := s.total()
	if total == 0 {
		if s.Completed {
			return 100
		}
		return 0
	}
	answered := 0
	for _, q := range s.Plan.Questions {
		if s.answered(q.ID) {
			answered++
		}
	}
	return float64(answered) / float64(total) * 100
}

// AnswerMap returns answers keyed by question id.
func (s *Session) AnswerMap() map[string]string {
	m := make(map[string]string, len(s.Answers))
	for _, a := range s.Answers {
		m[a.QuestionID] = a.Answer
	}
	return m
}

// CurrentQuestion returns the question under the cursor, if any.
func (s *Session) CurrentQuestion() (*infra.Question, int) {
	if s.Completed || s.Plan == nil || s.Cursor < 0 || s.Cursor >= s.total() {
		return nil, 0
	}
	q := s.Plan.Questions[s.Cursor]
	return &q, s.Cursor + 1
}

// ApplyPlanUpdate reconciles the session after its plan was mutated. Answers
// to questions that no longer exist are dropped and the cursor moves to the
// first unanswered question.
func (s *Session) ApplyPlanUpdate(now time.Time) {
	if s.Plan == nil {
		return
	}
	valid := make(map[string]bool, len(s.Plan.Questions))
	for _, q := range s.Plan.Questions {
		valid[q.ID] = true
	}
	kept := s.Answers[:0]
	for _, a := range s.Answers {
		if valid[a.QuestionID] {
			kept = append(kept, a)
		}
	}
	s.Answers = kept

	s.Completed = true
	s.Cursor = s.total()
	for i, q := range s.Plan.Questions {
		if !s.answered(q.ID) {
			s.Completed = false
			s.Cursor = i
			break
		}
	}
	s.UpdatedAt = now
}

// Validate reports problems with the session without failing.
func (s *Session) Validate() ValidationReport {
	r := ValidationReport{Issues: []string{}, Warnings: []string{}, Recommendations: []string{}}

	if s.Plan == nil {
		r.Issues = append(r.Issues, "no active infrastructure plan")
		r.Recommendations = append(r.Recommendations, "Describe the infrastructure you want to create to start a plan")
		return r
	}
	if s.total() == 0 {
		r.Warnings = append(r.Warnings, "plan has no clarification questions")
	}

	seen := make(map[string]bool)
	for _, q := range s.Plan.Questions {
		if q.Category == "" {
			r.Issues = append(r.Issues, fmt.Sprintf("question %s has no category", q.ID))
		}
		seen[q.Category] = true
	}
	for _, required := range []string{"location", "compliance"} {
		if s.total() > 0 && !seen[required] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("no %s question in this plan", required))
		}
	}

	if len(s.Answers) == 0 && s.total() > 0 {
		r.Warnings = append(r.Warnings, "no responses recorded yet")
		r.Recommendations = append(r.Recommendations, "Answer the current question or say \"proceed with defaults\"")
	}
	if s.Plan.Pattern == infra.PatternUnknown {
		r.Recommendations = append(r.Recommendations, "Name an architecture (serverless, microservices, three-tier, event-driven, containers, monolith) for a more specific plan")
	}

	r.Valid = len(r.Issues) == 0
	return r
}

// FormatQuestion renders the question at zero-based index i.
func (s *Session) FormatQuestion(i int) string {
	if s.Plan == nil || i < 0 || i >= s.total() {
		return ""
	}
	q := s.Plan.Questions[i]
	var b strings.Builder
	fmt.Fprintf(&b, "**Question %d of %d** (%s): %s", i+1, s.total(), q.Category, q.Text)
	if len(q.Options) > 0 {
		fmt.Fprintf(&b, "\nOptions: %s", strings.Join(q.Options, ", "))
	}
	if q.Default != "" {
		fmt.Fprintf(&b, "\nDefault: %s", q.Default)
	}
	fmt.Fprintf(&b, "\nReply with \"answer %d <your answer>\", or say \"proceed with defaults\".", i+1)
	return b.String()
}

func noPlanResult() Result {
	return Result{
		Success:    false,
		Error:      "no active infrastructure plan",
		Suggestion: "Describe the infrastructure you want to create, for example \"create a serverless API on AWS\".",
	}
}
