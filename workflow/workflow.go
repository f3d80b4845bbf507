// Package workflow owns the diagnostic session: the step sequence from
// upload to result, the accumulated case data, and the chat session that
// opens once a result exists.
package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/haruteam/dermai"
	"github.com/haruteam/dermai/predict"
)

// Step is the current position in the diagnostic flow
type Step string

const (
	StepUpload        Step = "upload"
	StepAnalyzing     Step = "analyzing"
	StepQuestionnaire Step = "questionnaire"
	StepDiagnosing    Step = "diagnosing"
	StepResult        Step = "result"
)

// Answer is a yes/no reply to a questionnaire item
type Answer string

const (
	AnswerNone Answer = ""
	AnswerYes  Answer = "yes"
	AnswerNo   Answer = "no"
)

// Question is one questionnaire item. IDs are assigned by position when the
// batch is created; the text never changes, only the answer does.
type Question struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Answer Answer `json:"answer,omitempty"`
}

// Case is the single active diagnostic session. Prediction and Advice are
// set once by their producing step and never overwritten; a reset replaces
// the whole Case.
type Case struct {
	Step       Step              `json:"step"`
	Image      *dermai.ImageData `json:"image,omitempty"`
	Prediction string            `json:"prediction,omitempty"`
	Questions  []Question        `json:"questions,omitempty"`
	Advice     string            `json:"advice,omitempty"`
	Clinics    string            `json:"clinics,omitempty"`
}

var (
	ErrBusy            = errors.New("workflow: another action is in progress")
	ErrWrongStep       = errors.New("workflow: action not allowed in current step")
	ErrUnanswered      = errors.New("workflow: all questions must be answered")
	ErrUnknownQuestion = errors.New("workflow: no question with that id")
	ErrInvalidAnswer   = errors.New("workflow: answer must be yes or no")
)

// Advisor is the slice of the advisory client the workflow consumes
type Advisor interface {
	GenerateQuestions(ctx context.Context, image dermai.ImageData, label string) []string
	GenerateAdvice(ctx context.Context, image dermai.ImageData, label string, qa []dermai.QA) (string, error)
	Chat(ctx context.Context, history []dermai.Message, message string, image *dermai.ImageData, label string) (string, error)
	FindClinics(ctx context.Context, lat, lng float64) (string, error)
}

// Workflow drives one Case through the step sequence. Advancing actions are
// single-flight: while one is in progress every other advancing action is
// rejected with ErrBusy. The clinic lookup and the chat session carry their
// own independent pending flags.
type Workflow struct {
	classifier predict.Classifier
	advisor    Advisor

	mu             sync.Mutex
	cas            Case
	generation     uint64
	processing     bool
	clinicsPending bool

	chat *ChatSession
}

// New creates a workflow in the upload step
func New(classifier predict.Classifier, advisor Advisor) *Workflow {
	return &Workflow{
		classifier: classifier,
		advisor:    advisor,
		cas:        Case{Step: StepUpload},
		chat:       newChatSession(advisor),
	}
}

// Case returns a snapshot of the current case
func (w *Workflow) Case() Case {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Workflow) snapshot() Case {
	out := w.cas
	if w.cas.Image != nil {
		img := *w.cas.Image
		out.Image = &img
	}
	out.Questions = make([]Question, len(w.cas.Questions))
	copy(out.Questions, w.cas.Questions)
	return out
}

// Chat returns the case's chat session
func (w *Workflow) Chat() *ChatSession {
	return w.chat
}

// Upload accepts the lesion image and runs the analysis step: the
// classifier first, then the question generator with its label. The two
// calls are serial because the second depends on the first. On classifier
// failure the case reverts to upload and the image is discarded; no partial
// state survives.
func (w *Workflow) Upload(ctx context.Context, image dermai.ImageData) error {
	w.mu.Lock()
	if w.processing {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.cas.Step != StepUpload {
		w.mu.Unlock()
		return ErrWrongStep
	}
	gen := w.generation
	w.processing = true
	img := image
	w.cas.Step = StepAnalyzing
	w.cas.Image = &img
	w.mu.Unlock()

	label, err := w.classifier.Classify(ctx, image)
	if err != nil {
		w.commit(gen, func(c *Case) {
			*c = Case{Step: StepUpload}
		})
		return err
	}

	texts := w.advisor.GenerateQuestions(ctx, image, label)
	questions := make([]Question, len(texts))
	for i, text := range texts {
		questions[i] = Question{ID: i, Text: text}
	}

	w.commit(gen, func(c *Case) {
		c.Step = StepQuestionnaire
		c.Prediction = label
		c.Questions = questions
	})
	return nil
}

// Answer records a yes/no reply on one question. Re-answering before
// submission is allowed; the step does not change.
func (w *Workflow) Answer(id int, answer Answer) error {
	if answer != AnswerYes && answer != AnswerNo {
		return ErrInvalidAnswer
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cas.Step != StepQuestionnaire {
		return ErrWrongStep
	}
	for i := range w.cas.Questions {
		if w.cas.Questions[i].ID == id {
			w.cas.Questions[i].Answer = answer
			return nil
		}
	}
	return ErrUnknownQuestion
}

// Submit closes the questionnaire and generates the advisory text. It is
// rejected while any question is unanswered. On generation failure the case
// returns to the questionnaire with the answers intact so the user can
// resubmit.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.processing {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.cas.Step != StepQuestionnaire {
		w.mu.Unlock()
		return ErrWrongStep
	}
	for _, q := range w.cas.Questions {
		if q.Answer == AnswerNone {
			w.mu.Unlock()
			return ErrUnanswered
		}
	}

	gen := w.generation
	w.processing = true
	w.cas.Step = StepDiagnosing
	image := *w.cas.Image
	label := w.cas.Prediction
	qa := make([]dermai.QA, len(w.cas.Questions))
	for i, q := range w.cas.Questions {
		qa[i] = dermai.QA{Question: q.Text, Yes: q.Answer == AnswerYes}
	}
	w.mu.Unlock()

	advice, err := w.advisor.GenerateAdvice(ctx, image, label, qa)
	if err != nil {
		w.commit(gen, func(c *Case) {
			c.Step = StepQuestionnaire
		})
		return err
	}

	w.commit(gen, func(c *Case) {
		c.Step = StepResult
		c.Advice = advice
	})
	return nil
}

// FindClinics looks up nearby clinics for the given coordinates. Only
// available in the result step, guarded by its own pending flag, and each
// lookup overwrites the previous result.
func (w *Workflow) FindClinics(ctx context.Context, lat, lng float64) (string, error) {
	w.mu.Lock()
	if w.cas.Step != StepResult {
		w.mu.Unlock()
		return "", ErrWrongStep
	}
	if w.clinicsPending {
		w.mu.Unlock()
		return "", ErrBusy
	}
	gen := w.generation
	w.clinicsPending = true
	w.mu.Unlock()

	text, err := w.advisor.FindClinics(ctx, lat, lng)

	w.mu.Lock()
	if w.generation == gen {
		w.clinicsPending = false
		if err == nil {
			w.cas.Clinics = text
		}
	}
	w.mu.Unlock()

	return text, err
}

// SendChat sends a follow-up message grounded in the case's diagnosis.
// Only available once a result exists.
func (w *Workflow) SendChat(ctx context.Context, text string) (ChatMessage, error) {
	w.mu.Lock()
	if w.cas.Step != StepResult {
		w.mu.Unlock()
		return ChatMessage{}, ErrWrongStep
	}
	var image *dermai.ImageData
	if w.cas.Image != nil {
		img := *w.cas.Image
		image = &img
	}
	label := w.cas.Prediction
	w.mu.Unlock()

	return w.chat.Send(ctx, text, image, label)
}

// Reset discards the whole session and returns to the upload step. The
// generation counter is bumped so a call still in flight for the old case
// can never write into the new one.
func (w *Workflow) Reset() {
	w.mu.Lock()
	w.generation++
	w.processing = false
	w.clinicsPending = false
	w.cas = Case{Step: StepUpload}
	w.mu.Unlock()

	w.chat.clear()
}

// ExportFilename is the fixed name of the downloadable report
const ExportFilename = "ket-qua-chan-doan-da-lieu.txt"

// Export renders the case as a plain-text report. Only available in the
// result step.
func (w *Workflow) Export() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cas.Step != StepResult || w.cas.Prediction == "" || w.cas.Advice == "" {
		return "", ErrWrongStep
	}
	return "KẾT QUẢ CHẨN ĐOÁN DA LIỄU\n\n" +
		"Chẩn đoán: " + w.cas.Prediction + "\n\n" +
		"Tư vấn chi tiết:\n" + w.cas.Advice, nil
}

// commit applies a mutation unless the case was reset while the triggering
// call was in flight
func (w *Workflow) commit(gen uint64, fn func(*Case)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen {
		return
	}
	w.processing = false
	fn(&w.cas)
}
