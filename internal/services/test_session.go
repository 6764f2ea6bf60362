package services

import (
	"time"

	"github.com/studydesk/study-service/internal/models"
)

// TestSession tracks the state of one active test-taking flow: navigation,
// captured answers, flags and per-question timing. It is owned exclusively by
// the screen that created it, is never persisted, and is discarded once the
// scoring service has turned it into an Attempt.
type TestSession struct {
	// TestID is nil for mixed sessions spanning multiple source tests.
	TestID    *uint
	Questions []*models.Question
	Mode      models.AttemptMode

	currentIndex  int
	responses     map[uint]string // question id -> answer text, empty never stored
	flagged       map[uint]struct{}
	questionTimes map[uint]int // question id -> accumulated seconds

	startTime         time.Time
	questionStartTime time.Time
	now               func() time.Time
}

// NewTestSession creates a session over an already randomized question list.
// A nil testID marks the session as a mix of several source tests.
func NewTestSession(testID *uint, questions []*models.Question, mode models.AttemptMode) *TestSession {
	return &TestSession{
		TestID:        testID,
		Questions:     questions,
		Mode:          mode,
		responses:     make(map[uint]string),
		flagged:       make(map[uint]struct{}),
		questionTimes: make(map[uint]int),
		now:           time.Now,
	}
}

// Start begins session and first-question timing. Calling it again resets
// both clocks; callers are expected to call it exactly once.
func (s *TestSession) Start() {
	s.startTime = s.now()
	s.questionStartTime = s.now()
}

// CurrentQuestion returns the question at the cursor, or nil if the cursor
// is out of bounds.
func (s *TestSession) CurrentQuestion() *models.Question {
	if s.currentIndex >= 0 && s.currentIndex < len(s.Questions) {
		return s.Questions[s.currentIndex]
	}
	return nil
}

// CurrentIndex returns the cursor position.
func (s *TestSession) CurrentIndex() int {
	return s.currentIndex
}

// SaveResponse records an answer for a question. Saving an empty answer
// removes any prior entry, so "unanswered" always means absent from the map.
func (s *TestSession) SaveResponse(questionID uint, answer string) {
	if answer != "" {
		s.responses[questionID] = answer
		return
	}
	delete(s.responses, questionID)
}

// Response returns the stored answer for a question and whether one exists.
func (s *TestSession) Response(questionID uint) (string, bool) {
	answer, ok := s.responses[questionID]
	return answer, ok
}

// FlagQuestion toggles the flagged state of a question and returns the new
// state (true = now flagged).
func (s *TestSession) FlagQuestion(questionID uint) bool {
	if _, ok := s.flagged[questionID]; ok {
		delete(s.flagged, questionID)
		return false
	}
	s.flagged[questionID] = struct{}{}
	return true
}

// recordQuestionTime closes out the timing interval on the question being
// left. Time across repeat visits accumulates rather than overwrites.
func (s *TestSession) recordQuestionTime() {
	if !s.questionStartTime.IsZero() {
		if question := s.CurrentQuestion(); question != nil {
			elapsed := int(s.now().Sub(s.questionStartTime).Seconds())
			s.questionTimes[question.ID] += elapsed
		}
	}
	s.questionStartTime = s.now()
}

// NextQuestion moves the cursor forward and returns the new current
// question, or nil if already at the last index (the cursor does not move
// past the end).
func (s *TestSession) NextQuestion() *models.Question {
	s.recordQuestionTime()
	if s.currentIndex < len(s.Questions)-1 {
		s.currentIndex++
		return s.CurrentQuestion()
	}
	return nil
}

// PreviousQuestion moves the cursor back and returns the new current
// question, or nil if already at the first index.
func (s *TestSession) PreviousQuestion() *models.Question {
	s.recordQuestionTime()
	if s.currentIndex > 0 {
		s.currentIndex--
		return s.CurrentQuestion()
	}
	return nil
}

// GoToQuestion jumps to a specific index. An out-of-range index is a no-op
// returning nil; the cursor stays put.
func (s *TestSession) GoToQuestion(index int) *models.Question {
	s.recordQuestionTime()
	if index >= 0 && index < len(s.Questions) {
		s.currentIndex = index
		return s.CurrentQuestion()
	}
	return nil
}

// FinishTest stops the clock on the current question. It performs no other
// state change; scoring reads the session afterwards.
func (s *TestSession) FinishTest() {
	s.recordQuestionTime()
}

// ElapsedTime returns whole seconds since Start, from wall clock rather than
// the sum of per-question timers. The two can diverge if the UI idles
// without calling session methods; that divergence is accepted.
func (s *TestSession) ElapsedTime() int {
	if s.startTime.IsZero() {
		return 0
	}
	return int(s.now().Sub(s.startTime).Seconds())
}

// QuestionTime returns the accumulated seconds recorded for a question and
// whether the question has been timed at all.
func (s *TestSession) QuestionTime(questionID uint) (int, bool) {
	seconds, ok := s.questionTimes[questionID]
	return seconds, ok
}

// TotalQuestions returns the number of questions in the session.
func (s *TestSession) TotalQuestions() int {
	return len(s.Questions)
}

// UnansweredCount returns how many questions have no saved answer.
func (s *TestSession) UnansweredCount() int {
	return len(s.Questions) - len(s.responses)
}

// FlaggedCount returns how many questions are currently flagged.
func (s *TestSession) FlaggedCount() int {
	return len(s.flagged)
}

// IsQuestionAnswered reports whether the current question has a saved answer.
func (s *TestSession) IsQuestionAnswered() bool {
	question := s.CurrentQuestion()
	if question == nil {
		return false
	}
	_, ok := s.responses[question.ID]
	return ok
}

// IsQuestionFlagged reports whether the current question is flagged.
func (s *TestSession) IsQuestionFlagged() bool {
	question := s.CurrentQuestion()
	if question == nil {
		return false
	}
	_, ok := s.flagged[question.ID]
	return ok
}

// IsFlagged reports whether a specific question is flagged.
func (s *TestSession) IsFlagged(questionID uint) bool {
	_, ok := s.flagged[questionID]
	return ok
}

// IsMixTest reports whether the session draws questions from multiple
// source tests.
func (s *TestSession) IsMixTest() bool {
	return s.TestID == nil
}
