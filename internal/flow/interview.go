package flow

import (
	"context"
	"fmt"

	"github.com/yesminehe/CVHelperBot/internal/llm"
	"github.com/yesminehe/CVHelperBot/internal/worker"
	apperrors "github.com/yesminehe/CVHelperBot/pkg/errors"
)

const (
	sessionEndedNoResponse = "No response received. Session ended."
	sessionEndedByUser     = "Okay, session ended. You can run !interviewprep again anytime."
)

// InterviewSession walks one user through generated questions in order.
type InterviewSession struct {
	UserID    string
	Questions []string
	index     int
}

// Next returns the next question and its 1-based number.
func (s *InterviewSession) Next() (int, string, bool) {
	if s.index >= len(s.Questions) {
		return 0, "", false
	}
	q := s.Questions[s.index]
	s.index++
	return s.index, q, true
}

func (s *InterviewSession) Asked() int {
	return s.index
}

// From narrows p to replies written by the session's user.
func (s *InterviewSession) From(p Predicate) Predicate {
	return func(m Message) bool {
		return m.AuthorID == s.UserID && p(m)
	}
}

func (c *Commands) InterviewPrep(ctx context.Context, inv *Invocation) error {
	jobDesc, err := c.awaitJobDescription(ctx, inv)
	if err != nil {
		return err
	}
	att, err := c.awaitUpload(ctx, inv, "Now, please upload the candidate's CV PDF file.",
		"Timeout or invalid upload for the CV. Please try again.")
	if err != nil {
		return err
	}

	if err := inv.Say(ctx, "Processing, please wait..."); err != nil {
		return err
	}
	cvText, err := c.readCV(ctx, inv, att)
	if err != nil {
		return err
	}

	questions, err := worker.Do(ctx, c.svc.Pool, func(ctx context.Context) ([]string, error) {
		return llm.InterviewQuestions(ctx, c.svc.Generator, jobDesc, cvText, c.settings.PromptChars)
	})
	if err != nil {
		return fmt.Errorf("failed to generate interview questions: %w", err)
	}
	if len(questions) == 0 {
		return apperrors.ErrEmptyGeneration("Sorry, I couldn't generate interview questions. Please try again.")
	}

	session := &InterviewSession{UserID: inv.UserID, Questions: questions}
	return c.runInterview(ctx, inv, session)
}

func (c *Commands) runInterview(ctx context.Context, inv *Invocation, session *InterviewSession) error {
	consent, err := inv.Ask(ctx, fmt.Sprintf(
		"I have generated %d interview questions. Do you want to start with the first question? (yes/no)",
		len(session.Questions)), c.settings.ConsentTimeout, session.From(IsYesNo))
	if err != nil {
		return err
	}
	if !consent.OK() {
		return apperrors.ErrTimeoutOrInvalid(sessionEndedNoResponse)
	}
	if !IsYes(consent.Message) {
		return inv.Say(ctx, sessionEndedByUser)
	}

	for {
		n, question, ok := session.Next()
		if !ok {
			break
		}

		answer, err := inv.Ask(ctx, fmt.Sprintf("Question %d: %s", n, question), c.settings.AnswerTimeout, session.From(Any))
		if err != nil {
			return err
		}

		prompt := "Received your answer. Ready for the next question? (yes/no)"
		if !answer.OK() {
			prompt = "No answer received. Ready for the next question? (yes/no)"
		}
		cont, err := inv.Ask(ctx, prompt, c.settings.ConsentTimeout, session.From(IsYesNo))
		if err != nil {
			return err
		}
		if !cont.OK() {
			return apperrors.ErrTimeoutOrInvalid(sessionEndedNoResponse)
		}
		if !IsYes(cont.Message) {
			return inv.Say(ctx, sessionEndedByUser)
		}
	}

	inv.Logger().Info("interview completed", "questions", session.Asked())
	return inv.Say(ctx, "You have completed all the interview questions! Good luck with your preparation.")
}
