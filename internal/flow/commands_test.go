package flow

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yesminehe/CVHelperBot/internal/grammar"
	"github.com/yesminehe/CVHelperBot/internal/scoring"
	apperrors "github.com/yesminehe/CVHelperBot/pkg/errors"
)

const sampleCV = `Jane Doe
Summary: backend engineer
Education: BSc Computer Science
Experience: five years building services
• Led a migration to Go
Contact: jane@example.com`

func TestReview_ScoresAndSendsFeedback(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!reviewcv")

	h.expect("Please upload your CV PDF file.")
	h.upload("cv.pdf", sampleCV)
	h.expect("Analyzing your CV... Please wait.")
	msg := h.expect("Your CV Score:")

	assert.Contains(t, msg, fmt.Sprintf("Your CV Score: %d/100", scoring.Score(sampleCV, 0)))
	assert.Contains(t, msg, "Here is your CV feedback:\nSolid CV with clear experience.")
	h.finish(done)
}

func TestReview_NonPDFUploadAbortsWithoutExtraction(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!reviewcv")

	h.expect("Please upload your CV PDF file.")
	att := h.transport.put("cv.docx", sampleCV)
	require.True(t, h.router.Publish(Message{ChannelID: testChannel, AuthorID: testUser, Attachments: []Attachment{att}}))

	h.expect("Timeout or invalid upload, please try again.")
	h.finish(done)
	assert.Zero(t, h.extractor.calls.Load())
}

func TestReview_UploadTimeout(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.UploadTimeout = 50 * time.Millisecond })
	done := h.run("!reviewcv")

	h.expect("Please upload your CV PDF file.")
	h.expect("Timeout or invalid upload, please try again.")
	h.finish(done)
}

func TestReview_EmptyExtraction(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!reviewcv")

	h.expect("Please upload your CV PDF file.")
	h.upload("scan.pdf", "  \n ")
	h.expect("couldn't extract any text from your PDF")
	h.finish(done)
}

func TestReview_EmptyFeedback(t *testing.T) {
	h := newHarness(t, nil)
	h.generator.feedback = ""
	done := h.run("!reviewcv")

	h.expect("Please upload your CV PDF file.")
	h.upload("cv.pdf", sampleCV)
	h.expect("Analyzing your CV... Please wait.")
	h.expect("Sorry, I couldn't generate feedback for your CV.")
	h.finish(done)
}

func TestReview_Cooldown(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!reviewcv")
	h.expect("Please upload your CV PDF file.")
	h.say("not a file")
	h.expect("Timeout or invalid upload")
	h.finish(done)

	done = h.run("!reviewcv")
	msg := h.expect("This command is on cooldown. Please wait")
	assert.Contains(t, msg, "seconds before using it again.")
	h.finish(done)
}

func TestExtractInfo(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!extractinfo")

	h.expect("Please upload the CV PDF file to extract contact info.")
	h.upload("cv.pdf", "Jane Doe\nMail: jane@example.com\nlinkedin.com/in/jane-doe")
	msg := h.expect("Extracted Contact Information:")

	assert.Contains(t, msg, "**Email**: jane@example.com")
	assert.Contains(t, msg, "**Linkedin**: linkedin.com/in/jane-doe")
	assert.NotContains(t, msg, "**Phone**")
	h.finish(done)
}

func TestExtractInfo_NothingFound(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!extractinfo")

	h.expect("Please upload the CV PDF file")
	h.upload("cv.pdf", "Just some words about me")
	h.expect("No contact information found in the CV.")
	h.finish(done)
}

func TestCompare(t *testing.T) {
	h := newHarness(t, nil)
	cv1 := "Skills: Go, Docker"
	cv2 := "Skills: Go, Python"
	done := h.run("!cvcompare")

	h.expect("Please upload the **first** CV PDF file.")
	h.upload("one.pdf", cv1)
	h.expect("Now, please upload the **second** CV PDF file.")
	h.upload("two.pdf", cv2)
	h.expect("Processing both CVs, please wait...")
	msg := h.expect("**CV 1 Score:**")

	assert.Contains(t, msg, fmt.Sprintf("**CV 1 Score:** %d/100", scoring.Score(cv1, 0)))
	assert.Contains(t, msg, fmt.Sprintf("**CV 2 Score:** %d/100", scoring.Score(cv2, 0)))
	assert.Contains(t, msg, "**Common Skills:** Go")
	assert.Contains(t, msg, "**Unique to CV 1:** Docker")
	assert.Contains(t, msg, "**Unique to CV 2:** Python")
	h.finish(done)
	assert.EqualValues(t, 2, h.extractor.calls.Load())
}

func TestCompare_SecondUploadInvalid(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!cvcompare")

	h.expect("Please upload the **first** CV PDF file.")
	h.upload("one.pdf", "Skills: Go")
	h.expect("Now, please upload the **second** CV PDF file.")
	h.say("oops")
	h.expect("Timeout or invalid upload for the second CV. Please try again.")
	h.finish(done)
	assert.Zero(t, h.extractor.calls.Load())
}

func TestGrammar_ListsIssues(t *testing.T) {
	h := newHarness(t, nil)
	for i := 0; i < 7; i++ {
		h.grammar.issues = append(h.grammar.issues, grammar.Issue{
			Message:      fmt.Sprintf("Issue %d", i),
			Context:      "teh project",
			Replacements: []string{"the"},
		})
	}
	done := h.run("!cvgrammar")

	h.expect("Please upload your CV PDF file to check grammar and spelling.")
	h.upload("cv.pdf", sampleCV)
	msg := h.expect("Found 7 grammar/spelling issues in the CV.")

	assert.Contains(t, msg, "• Issue 0 (`teh project`) → the")
	assert.Contains(t, msg, "• Issue 4")
	assert.NotContains(t, msg, "Issue 5")
	assert.Contains(t, msg, "...and 2 more.")
	h.finish(done)
}

func TestGrammar_Clean(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!cvgrammar")

	h.expect("Please upload your CV PDF file")
	h.upload("cv.pdf", sampleCV)
	h.expect("No grammar or spelling issues found in the CV!")
	h.finish(done)
}

func TestFormatCheck(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!cvformatcheck")

	h.expect("Please upload your CV PDF file to check formatting.")
	h.upload("cv.pdf", "Education\n• University of Somewhere\nProjects: a compiler")
	msg := h.expect("**CV Format Check Results:**")

	assert.Contains(t, msg, "Word count: 8")
	assert.Contains(t, msg, "Bullet points: Yes")
	assert.Contains(t, msg, "Sections found: education, projects")
	h.finish(done)
}

func TestMatch_TextDescription(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.SuggestCourses = true })
	h.generator.courses = "- engineer: Software Engineering Basics"
	done := h.run("!cvmatch")

	h.expect("Please paste the job description")
	h.say("Looking for golang kubernetes docker engineer")
	h.expect("**Job Description received.**")
	h.expect("Now, please upload the candidate's CV PDF file.")
	h.upload("cv.pdf", "golang kubernetes docker developer")
	h.expect("Processing, please wait...")
	msg := h.expect("The CV matches the job description!")

	assert.Contains(t, msg, "(Match: 60.0%)")
	assert.Contains(t, msg, "**Common Keywords:** docker, golang, kubernetes")
	assert.Contains(t, msg, "**Missing Keywords:** engineer, looking")
	assert.Contains(t, msg, "**Suggested Courses:**\n- engineer: Software Engineering Basics")
	h.finish(done)
}

func TestMatch_LowMatch(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!cvmatch")

	h.expect("Please paste the job description")
	h.say("rust embedded firmware")
	h.expect("**Job Description received.**")
	h.expect("Now, please upload the candidate's CV PDF file.")
	h.upload("cv.pdf", "python django")
	h.expect("Processing, please wait...")
	msg := h.expect("❌ The CV does not match the job description well. (Match: 0.0%)")

	assert.Contains(t, msg, "**Common Keywords:** None")
	assert.NotContains(t, msg, "Suggested Courses")
	h.finish(done)
}

func TestMatch_FetchFailureAborts(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.text = "[Error fetching job description: 404 Not Found]"
	done := h.run("!cvmatch")

	h.expect("Please paste the job description")
	h.say("https://jobs.example.com/123")
	h.expect("Fetching job description from the provided URL...")
	h.expect("[Error fetching job description: 404 Not Found]")
	h.finish(done)
	assert.Zero(t, h.extractor.calls.Load())
}

func TestMatch_FetchedDescription(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.text = "golang developer wanted"
	done := h.run("!cvmatch")

	h.expect("Please paste the job description")
	h.say("https://jobs.example.com/123")
	h.expect("Fetching job description from the provided URL...")
	h.expect("**Job Link:** https://jobs.example.com/123")
	h.expect("Now, please upload the candidate's CV PDF file.")
	h.upload("cv.pdf", "golang developer")
	h.expect("Processing, please wait...")
	h.expect("(Match: 66.7%)")
	h.finish(done)
}

const twoQuestions = "Interview Questions:\n1. Tell me about your Go experience?\n2. How do you deploy to Kubernetes?"

func startInterview(t *testing.T, h *harness) <-chan struct{} {
	t.Helper()
	h.generator.questions = twoQuestions
	done := h.run("!interviewprep")

	h.expect("Please paste the job description (as text or a job board URL).")
	h.say("We need a Go engineer with Kubernetes experience.")
	h.expect("**Job Description received.**")
	h.expect("Now, please upload the candidate's CV PDF file.")
	h.upload("cv.pdf", sampleCV)
	h.expect("Processing, please wait...")
	h.expect("I have generated 2 interview questions. Do you want to start with the first question? (yes/no)")
	return done
}

func TestInterview_CompletesAllQuestions(t *testing.T) {
	h := newHarness(t, nil)
	done := startInterview(t, h)

	h.say("yes")
	h.expect("Question 1: 1. Tell me about your Go experience?")
	h.say("Five years of services.")
	h.expect("Received your answer. Ready for the next question? (yes/no)")
	h.say("yes")
	h.expect("Question 2: 2. How do you deploy to Kubernetes?")
	h.say("Helm charts.")
	h.expect("Received your answer. Ready for the next question? (yes/no)")
	h.say("yes")
	h.expect("You have completed all the interview questions! Good luck with your preparation.")
	h.finish(done)
}

func TestInterview_ContinuationTimeoutEndsSession(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.ConsentTimeout = 200 * time.Millisecond })
	done := startInterview(t, h)

	h.say("yes")
	h.expect("Question 1:")
	h.say("My answer")
	h.expect("Received your answer. Ready for the next question? (yes/no)")
	h.expect("No response received. Session ended.")
	h.finish(done)
}

func TestInterview_ThirdContinuationTimesOut(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.ConsentTimeout = 200 * time.Millisecond })
	h.generator.questions = "Interview Questions:\n" +
		"1. Tell me about your Go experience?\n" +
		"2. How do you deploy to Kubernetes?\n" +
		"3. How do you debug a memory leak?"
	done := h.run("!interviewprep")

	h.expect("Please paste the job description")
	h.say("Go engineer with Kubernetes experience")
	h.expect("**Job Description received.**")
	h.expect("Now, please upload the candidate's CV PDF file.")
	h.upload("cv.pdf", sampleCV)
	h.expect("Processing, please wait...")
	h.expect("I have generated 3 interview questions.")
	h.say("yes")

	for i := 1; i <= 3; i++ {
		h.expect(fmt.Sprintf("Question %d:", i))
		h.say("an answer")
		h.expect("Received your answer. Ready for the next question? (yes/no)")
		if i < 3 {
			h.say("yes")
		}
	}

	h.expect("No response received. Session ended.")
	h.finish(done)
}

func TestInterview_AnswerTimeoutMovesToContinuation(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.AnswerTimeout = 50 * time.Millisecond })
	done := startInterview(t, h)

	h.say("yes")
	h.expect("Question 1:")
	h.expect("No answer received. Ready for the next question? (yes/no)")
	h.say("no")
	h.expect("Okay, session ended. You can run !interviewprep again anytime.")
	h.finish(done)
}

func TestInterview_DeclinedOrInvalidConsent(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		h := newHarness(t, nil)
		done := startInterview(t, h)
		h.say("No")
		h.expect("Okay, session ended.")
		h.finish(done)
	})
	t.Run("invalid", func(t *testing.T) {
		h := newHarness(t, nil)
		done := startInterview(t, h)
		h.say("maybe later")
		h.expect("No response received. Session ended.")
		h.finish(done)
	})
}

func TestInterview_NoQuestionsGenerated(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!interviewprep")

	h.expect("Please paste the job description")
	h.say("Go engineer")
	h.expect("**Job Description received.**")
	h.expect("Now, please upload the candidate's CV PDF file.")
	h.upload("cv.pdf", sampleCV)
	h.expect("Processing, please wait...")
	h.expect("Sorry, I couldn't generate interview questions. Please try again.")
	h.finish(done)
}

func TestInterviewSession_FromOwnerOnly(t *testing.T) {
	s := &InterviewSession{UserID: "u1", Questions: []string{"a?"}}
	accept := s.From(IsYesNo)

	assert.True(t, accept(Message{AuthorID: "u1", Content: "yes"}))
	assert.False(t, accept(Message{AuthorID: "u2", Content: "yes"}))
	assert.False(t, accept(Message{AuthorID: "u1", Content: "maybe"}))
}

func TestInterviewSession_Next(t *testing.T) {
	s := &InterviewSession{UserID: "u", Questions: []string{"a?", "b?"}}

	n, q, ok := s.Next()
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "a?", q)

	n, q, ok = s.Next()
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, "b?", q)

	_, _, ok = s.Next()
	assert.False(t, ok)
	assert.Equal(t, 2, s.Asked())
}

func TestHelp_ListsEveryCommand(t *testing.T) {
	h := newHarness(t, nil)
	done := h.run("!cvhelp")

	msg := h.expect("**CV Helper Bot Commands:**")
	for _, name := range []string{"reviewcv", "extractinfo", "cvcompare", "cvgrammar", "cvformatcheck", "cvmatch", "interviewprep", "cvhelp"} {
		assert.Contains(t, msg, "`!"+name+"`")
	}
	h.finish(done)
}

func TestController_ParseCommand(t *testing.T) {
	h := newHarness(t, nil)

	cmd, args, ok := h.ctrl.ParseCommand("  !CVMatch extra words ")
	require.True(t, ok)
	assert.Equal(t, "cvmatch", cmd.Name)
	assert.Equal(t, "extra words", args)

	_, _, ok = h.ctrl.ParseCommand("cvmatch")
	assert.False(t, ok)
	_, _, ok = h.ctrl.ParseCommand("!unknown")
	assert.False(t, ok)
	_, _, ok = h.ctrl.ParseCommand("!")
	assert.False(t, ok)
}

type recordingObserver struct {
	started  []string
	finished chan error
}

func (o *recordingObserver) CommandStarted(_ Message, cmd Command) {
	o.started = append(o.started, cmd.Name)
}

func (o *recordingObserver) CommandFinished(_ Message, _ Command, err error) {
	o.finished <- err
}

func (o *recordingObserver) await(t *testing.T) error {
	t.Helper()
	select {
	case err := <-o.finished:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("command did not report completion")
		return nil
	}
}

func TestController_OnMessageRoutesReplies(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	obs := &recordingObserver{finished: make(chan error, 1)}

	h.ctrl.OnMessage(ctx, Message{ChannelID: testChannel, AuthorID: testUser, Content: "!extractinfo"}, obs)
	assert.Equal(t, []string{"extractinfo"}, obs.started)
	h.expect("Please upload the CV PDF file")

	att := h.transport.put("cv.pdf", "jane@example.com")
	h.ctrl.OnMessage(ctx, Message{ChannelID: testChannel, AuthorID: testUser, Attachments: []Attachment{att}}, obs)
	h.expect("**Email**: jane@example.com")

	assert.NoError(t, obs.await(t))
	assert.Equal(t, []string{"extractinfo"}, obs.started)
}

func TestController_OnMessageReportsFailure(t *testing.T) {
	h := newHarness(t, nil)
	obs := &recordingObserver{finished: make(chan error, 1)}

	h.ctrl.OnMessage(context.Background(), Message{ChannelID: testChannel, AuthorID: testUser, Content: "!extractinfo"}, obs)
	h.expect("Please upload the CV PDF file")
	h.upload("notes.txt", "not a pdf")
	h.expect("Timeout or invalid upload")

	assert.Error(t, obs.await(t))
}

func TestController_OnMessageWithoutObserver(t *testing.T) {
	h := newHarness(t, nil)
	h.ctrl.OnMessage(context.Background(), Message{ChannelID: testChannel, AuthorID: testUser, Content: "!cvhelp"}, nil)
	h.expect("**CV Helper Bot Commands:**")
}

func TestController_UnexpectedErrorsStayGeneric(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler
		want    string
	}{
		{
			name:    "panic",
			handler: func(context.Context, *Invocation) error { panic("boom") },
			want:    apperrors.GenericMessage,
		},
		{
			name:    "internal error",
			handler: func(context.Context, *Invocation) error { return fmt.Errorf("db password is hunter2") },
			want:    apperrors.GenericMessage,
		},
		{
			name: "user error",
			handler: func(context.Context, *Invocation) error {
				return fmt.Errorf("wrapped: %w", apperrors.ErrTimeoutOrInvalid("Try again."))
			},
			want: "Try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			require.NoError(t, reg.Register(Command{Name: "boom", Handler: tt.handler}))
			transport := newFakeTransport()
			ctrl := NewController(reg, NewRouter(), transport, "!")

			err := ctrl.Execute(context.Background(), Message{ChannelID: testChannel, AuthorID: testUser, Content: "!boom"})
			assert.Error(t, err)

			msg := <-transport.sent
			assert.Equal(t, tt.want, msg)
			assert.False(t, strings.Contains(msg, "hunter2"))
		})
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	noop := func(context.Context, *Invocation) error { return nil }

	require.NoError(t, reg.Register(Command{Name: "a", Handler: noop}))
	assert.Error(t, reg.Register(Command{Name: "a", Handler: noop}))
	assert.Error(t, reg.Register(Command{Name: "b"}))
	assert.Len(t, reg.Commands(), 1)
}

func TestInvocation_SayChunksLongText(t *testing.T) {
	transport := newFakeTransport()
	inv := &Invocation{ChannelID: testChannel, transport: transport, router: NewRouter()}

	require.NoError(t, inv.Say(context.Background(), strings.Repeat("word ", 1000)))

	var chunks []string
	for len(transport.sent) > 0 {
		chunks = append(chunks, <-transport.sent)
	}
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 1900)
	}
}
