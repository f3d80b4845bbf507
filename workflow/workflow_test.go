package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haruteam/dermai"
	"github.com/haruteam/dermai/advisor"
)

type fakeClassifier struct {
	mu    sync.Mutex
	label string
	err   error
	block chan struct{} // when set, Classify waits for it to close
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, image dermai.ImageData) (string, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	label, err := f.label, f.err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return label, err
}

type fakeAdvisor struct {
	mu          sync.Mutex
	questions   []string
	adviceText  string
	adviceErr   error
	chatReply   string
	chatErr     error
	chatBlock   chan struct{}
	clinicsText string
	clinicsErr  error
	lastHistory []dermai.Message
}

func (f *fakeAdvisor) GenerateQuestions(ctx context.Context, image dermai.ImageData, label string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.questions))
	copy(out, f.questions)
	return out
}

func (f *fakeAdvisor) GenerateAdvice(ctx context.Context, image dermai.ImageData, label string, qa []dermai.QA) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adviceText, f.adviceErr
}

func (f *fakeAdvisor) Chat(ctx context.Context, history []dermai.Message, message string, image *dermai.ImageData, label string) (string, error) {
	f.mu.Lock()
	block := f.chatBlock
	f.lastHistory = history
	reply, err := f.chatReply, f.chatErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return reply, err
}

func (f *fakeAdvisor) FindClinics(ctx context.Context, lat, lng float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clinicsText, f.clinicsErr
}

func testImage() dermai.ImageData {
	return dermai.ImageData{MIMEType: "image/png", Data: "aW1n"}
}

// runToResult drives a fresh workflow to the result step
func runToResult(t *testing.T, c *fakeClassifier, a *fakeAdvisor) *Workflow {
	t.Helper()
	w := New(c, a)
	require.NoError(t, w.Upload(context.Background(), testImage()))
	for _, q := range w.Case().Questions {
		require.NoError(t, w.Answer(q.ID, AnswerYes))
	}
	require.NoError(t, w.Submit(context.Background()))
	require.Equal(t, StepResult, w.Case().Step)
	return w
}

func TestEndToEnd(t *testing.T) {
	classifier := &fakeClassifier{label: "Mụn trứng cá (Acne Vulgaris)"}
	adv := &fakeAdvisor{questions: advisor.FallbackQuestions, adviceText: "advice text T"}
	w := New(classifier, adv)

	require.NoError(t, w.Upload(context.Background(), testImage()))

	cas := w.Case()
	assert.Equal(t, StepQuestionnaire, cas.Step)
	assert.Equal(t, "Mụn trứng cá (Acne Vulgaris)", cas.Prediction)
	require.Len(t, cas.Questions, 3)
	for i, q := range cas.Questions {
		assert.Equal(t, i, q.ID)
		assert.Equal(t, AnswerNone, q.Answer)
	}

	require.NoError(t, w.Answer(0, AnswerYes))
	require.NoError(t, w.Answer(1, AnswerNo))
	require.NoError(t, w.Answer(2, AnswerNo))

	require.NoError(t, w.Submit(context.Background()))

	cas = w.Case()
	assert.Equal(t, StepResult, cas.Step)
	assert.Equal(t, "Mụn trứng cá (Acne Vulgaris)", cas.Prediction)
	assert.Equal(t, "advice text T", cas.Advice)
	assert.Equal(t, 1, classifier.calls)
}

func TestSubmitRejectedWhileUnanswered(t *testing.T) {
	classifier := &fakeClassifier{label: "x"}
	adv := &fakeAdvisor{questions: []string{"a?", "b?", "c?"}, adviceText: "T"}
	w := New(classifier, adv)

	require.NoError(t, w.Upload(context.Background(), testImage()))
	require.NoError(t, w.Answer(0, AnswerYes))
	require.NoError(t, w.Answer(1, AnswerNo))

	err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrUnanswered)

	cas := w.Case()
	assert.Equal(t, StepQuestionnaire, cas.Step)
	assert.Equal(t, AnswerYes, cas.Questions[0].Answer)
	assert.Empty(t, cas.Advice)
}

func TestReAnswerBeforeSubmit(t *testing.T) {
	classifier := &fakeClassifier{label: "x"}
	adv := &fakeAdvisor{questions: []string{"a?"}}
	w := New(classifier, adv)

	require.NoError(t, w.Upload(context.Background(), testImage()))
	require.NoError(t, w.Answer(0, AnswerYes))
	require.NoError(t, w.Answer(0, AnswerNo))
	assert.Equal(t, AnswerNo, w.Case().Questions[0].Answer)
}

func TestAnswerValidation(t *testing.T) {
	classifier := &fakeClassifier{label: "x"}
	adv := &fakeAdvisor{questions: []string{"a?"}}
	w := New(classifier, adv)

	assert.ErrorIs(t, w.Answer(0, AnswerYes), ErrWrongStep)

	require.NoError(t, w.Upload(context.Background(), testImage()))
	assert.ErrorIs(t, w.Answer(0, Answer("maybe")), ErrInvalidAnswer)
	assert.ErrorIs(t, w.Answer(42, AnswerYes), ErrUnknownQuestion)
}

func TestAnalysisFailureRevertsToUpload(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("backend down")}
	adv := &fakeAdvisor{}
	w := New(classifier, adv)

	err := w.Upload(context.Background(), testImage())
	require.Error(t, err)

	cas := w.Case()
	assert.Equal(t, StepUpload, cas.Step)
	assert.Nil(t, cas.Image)
	assert.Empty(t, cas.Prediction)
	assert.Empty(t, cas.Questions)

	// The workflow accepts a fresh upload afterwards
	classifier.mu.Lock()
	classifier.err = nil
	classifier.label = "x"
	classifier.mu.Unlock()
	assert.NoError(t, w.Upload(context.Background(), testImage()))
}

func TestAdviceFailureRevertsToQuestionnaire(t *testing.T) {
	classifier := &fakeClassifier{label: "x"}
	adv := &fakeAdvisor{questions: []string{"a?", "b?"}, adviceErr: errors.New("generation failed")}
	w := New(classifier, adv)

	require.NoError(t, w.Upload(context.Background(), testImage()))
	require.NoError(t, w.Answer(0, AnswerYes))
	require.NoError(t, w.Answer(1, AnswerNo))

	err := w.Submit(context.Background())
	require.Error(t, err)

	// Answers survive so the user can resubmit
	cas := w.Case()
	assert.Equal(t, StepQuestionnaire, cas.Step)
	assert.Equal(t, AnswerYes, cas.Questions[0].Answer)
	assert.Equal(t, AnswerNo, cas.Questions[1].Answer)

	adv.mu.Lock()
	adv.adviceErr = nil
	adv.adviceText = "T"
	adv.mu.Unlock()
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, StepResult, w.Case().Step)
}

func TestPredictionImmutable(t *testing.T) {
	classifier := &fakeClassifier{label: "first"}
	adv := &fakeAdvisor{questions: []string{"a?"}, adviceText: "T"}
	w := runToResult(t, classifier, adv)

	// A second upload cannot run and cannot touch the prediction
	classifier.mu.Lock()
	classifier.label = "second"
	classifier.mu.Unlock()
	assert.ErrorIs(t, w.Upload(context.Background(), testImage()), ErrWrongStep)
	assert.Equal(t, "first", w.Case().Prediction)
	assert.Equal(t, 1, classifier.calls)
}

func TestUploadBusyGuard(t *testing.T) {
	block := make(chan struct{})
	classifier := &fakeClassifier{label: "x", block: block}
	adv := &fakeAdvisor{questions: []string{"a?"}}
	w := New(classifier, adv)

	done := make(chan error, 1)
	go func() { done <- w.Upload(context.Background(), testImage()) }()

	require.Eventually(t, func() bool {
		return w.Case().Step == StepAnalyzing
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.Upload(context.Background(), testImage()), ErrBusy)

	close(block)
	require.NoError(t, <-done)
	assert.Equal(t, StepQuestionnaire, w.Case().Step)
}

func TestResetDuringAnalysisDiscardsStaleResult(t *testing.T) {
	block := make(chan struct{})
	classifier := &fakeClassifier{label: "stale", block: block}
	adv := &fakeAdvisor{questions: []string{"a?"}}
	w := New(classifier, adv)

	done := make(chan error, 1)
	go func() { done <- w.Upload(context.Background(), testImage()) }()

	require.Eventually(t, func() bool {
		return w.Case().Step == StepAnalyzing
	}, time.Second, time.Millisecond)

	w.Reset()
	close(block)
	<-done

	// The in-flight result must not leak into the fresh case
	cas := w.Case()
	assert.Equal(t, StepUpload, cas.Step)
	assert.Empty(t, cas.Prediction)
	assert.Empty(t, cas.Questions)
	assert.Nil(t, cas.Image)
}

func TestResetRestoresPristineState(t *testing.T) {
	classifier := &fakeClassifier{label: "x"}
	adv := &fakeAdvisor{questions: []string{"a?"}, adviceText: "T", chatReply: "r", clinicsText: "c"}
	w := runToResult(t, classifier, adv)

	_, err := w.SendChat(context.Background(), "hello")
	require.NoError(t, err)
	_, err = w.FindClinics(context.Background(), 1, 2)
	require.NoError(t, err)

	w.Reset()

	cas := w.Case()
	assert.Equal(t, StepUpload, cas.Step)
	assert.Nil(t, cas.Image)
	assert.Empty(t, cas.Prediction)
	assert.Empty(t, cas.Questions)
	assert.Empty(t, cas.Advice)
	assert.Empty(t, cas.Clinics)
	assert.Empty(t, w.Chat().Messages())
}

func TestExport(t *testing.T) {
	classifier := &fakeClassifier{label: "Vảy nến (Psoriasis)"}
	adv := &fakeAdvisor{questions: []string{"a?"}, adviceText: "## chi tiết"}

	w := New(classifier, adv)
	_, err := w.Export()
	assert.ErrorIs(t, err, ErrWrongStep)

	w = runToResult(t, classifier, adv)
	content, err := w.Export()
	require.NoError(t, err)
	assert.Contains(t, content, "KẾT QUẢ CHẨN ĐOÁN DA LIỄU")
	assert.Contains(t, content, "Vảy nến (Psoriasis)")
	assert.Contains(t, content, "## chi tiết")
	assert.Equal(t, "ket-qua-chan-doan-da-lieu.txt", ExportFilename)
}

func TestFindClinics(t *testing.T) {
	classifier := &fakeClassifier{label: "x"}
	adv := &fakeAdvisor{questions: []string{"a?"}, adviceText: "T", clinicsText: "- Phòng khám A"}

	w := New(classifier, adv)
	_, err := w.FindClinics(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrWrongStep)

	w = runToResult(t, classifier, adv)
	clinics, err := w.FindClinics(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "- Phòng khám A", clinics)
	assert.Equal(t, "- Phòng khám A", w.Case().Clinics)

	// Each lookup overwrites the previous result
	adv.mu.Lock()
	adv.clinicsText = "- Phòng khám B"
	adv.mu.Unlock()
	_, err = w.FindClinics(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.Equal(t, "- Phòng khám B", w.Case().Clinics)
}

func TestFindClinicsFailureLeavesResultUntouched(t *testing.T) {
	classifier := &fakeClassifier{label: "x"}
	adv := &fakeAdvisor{questions: []string{"a?"}, adviceText: "T", clinicsText: "- A"}
	w := runToResult(t, classifier, adv)

	_, err := w.FindClinics(context.Background(), 1, 2)
	require.NoError(t, err)

	adv.mu.Lock()
	adv.clinicsErr = errors.New("lookup failed")
	adv.mu.Unlock()
	_, err = w.FindClinics(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, "- A", w.Case().Clinics)
}
