package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/common"
	"github.com/olamide-oso/docfields/internal/preprocess"
	"github.com/olamide-oso/docfields/internal/schema"
)

type fakeInferrer struct {
	decls []schema.FieldDeclaration
	err   error
	calls atomic.Int32
}

func (f *fakeInferrer) Infer(_ context.Context, _ string) ([]schema.FieldDeclaration, error) {
	f.calls.Add(1)
	return f.decls, f.err
}

type fakeLoader struct {
	err   map[string]error
	calls atomic.Int32
}

func (f *fakeLoader) Load(_ context.Context, path string) (preprocess.Document, error) {
	f.calls.Add(1)
	if err, ok := f.err[path]; ok {
		return preprocess.Document{}, err
	}
	return preprocess.Document{Path: path, TextBlocks: []string{"text of " + path}, Pages: 1}, nil
}

type fakeExtractor struct {
	values map[string]map[string]any
	err    map[string]error
	calls  atomic.Int32
}

func (f *fakeExtractor) Extract(_ context.Context, _ *schema.RecordType, doc preprocess.Document, _ string) (map[string]any, error) {
	f.calls.Add(1)
	if err, ok := f.err[doc.Path]; ok {
		return nil, err
	}
	if v, ok := f.values[doc.Path]; ok {
		return v, nil
	}
	return map[string]any{"title": "t"}, nil
}

func titleDecls() []schema.FieldDeclaration {
	return []schema.FieldDeclaration{
		{Name: "title", Description: "document title", Kind: constants.KindString, Required: true},
	}
}

func TestRunPartialFailureIsolation(t *testing.T) {
	docs := []string{"a.pdf", "b.pdf", "c.pdf"}
	extractor := &fakeExtractor{
		err: map[string]error{"b.pdf": errors.New("model unavailable")},
	}
	p := New(&fakeInferrer{decls: titleDecls()}, &fakeLoader{}, extractor, nil)

	result := p.Run(context.Background(), docs, "title please", Options{})

	if len(result.Outcomes) != 3 {
		t.Fatalf("want 3 outcomes, got %d", len(result.Outcomes))
	}
	wantStatus := []constants.OutcomeStatus{constants.StatusOK, constants.StatusError, constants.StatusOK}
	for i, want := range wantStatus {
		if result.Outcomes[i].Status != want {
			t.Errorf("outcome %d: want %s, got %s", i, want, result.Outcomes[i].Status)
		}
		if result.Outcomes[i].Document != docs[i] {
			t.Errorf("outcome %d: want document %s, got %s", i, docs[i], result.Outcomes[i].Document)
		}
	}
	if !strings.Contains(result.Outcomes[1].Err, "model unavailable") {
		t.Errorf("failure reason lost: %q", result.Outcomes[1].Err)
	}
	if result.Outcomes[0].Fields["title"] != "t" {
		t.Errorf("success record lost: %v", result.Outcomes[0].Fields)
	}
}

func TestRunSchemaFailureShortCircuits(t *testing.T) {
	docs := []string{"1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf"}
	loader := &fakeLoader{}
	extractor := &fakeExtractor{}
	p := New(&fakeInferrer{err: errors.New("inference exploded")}, loader, extractor, nil)

	result := p.Run(context.Background(), docs, "anything", Options{Workers: 4})

	if len(result.Outcomes) != len(docs) {
		t.Fatalf("want %d outcomes, got %d", len(docs), len(result.Outcomes))
	}
	reason := result.Outcomes[0].Err
	for i, o := range result.Outcomes {
		if o.Status != constants.StatusError {
			t.Errorf("outcome %d: want error, got %s", i, o.Status)
		}
		if o.Err != reason {
			t.Errorf("outcome %d: reason differs: %q vs %q", i, o.Err, reason)
		}
	}
	if !strings.Contains(reason, "inference exploded") {
		t.Errorf("schema reason lost: %q", reason)
	}
	if loader.calls.Load() != 0 || extractor.calls.Load() != 0 {
		t.Errorf("collaborators invoked after schema failure: loader=%d extractor=%d",
			loader.calls.Load(), extractor.calls.Load())
	}
	if result.Type != nil {
		t.Error("record type produced despite schema failure")
	}
}

func TestRunCompileFailureShortCircuits(t *testing.T) {
	decls := []schema.FieldDeclaration{
		{Name: "bad-name", Kind: constants.KindString},
	}
	loader := &fakeLoader{}
	extractor := &fakeExtractor{}
	p := New(&fakeInferrer{decls: decls}, loader, extractor, nil)

	result := p.Run(context.Background(), []string{"a.pdf", "b.pdf"}, "x", Options{})

	for _, o := range result.Outcomes {
		if o.Status != constants.StatusError {
			t.Errorf("want error, got %s", o.Status)
		}
		if !strings.Contains(o.Err, "invalid field name") {
			t.Errorf("compile reason lost: %q", o.Err)
		}
	}
	if extractor.calls.Load() != 0 {
		t.Error("extractor invoked after compile failure")
	}
}

func TestRunInferenceHappensOnce(t *testing.T) {
	inferrer := &fakeInferrer{decls: titleDecls()}
	p := New(inferrer, &fakeLoader{}, &fakeExtractor{}, nil)

	docs := make([]string, 10)
	for i := range docs {
		docs[i] = fmt.Sprintf("doc-%d.pdf", i)
	}
	p.Run(context.Background(), docs, "x", Options{Workers: 4})

	if got := inferrer.calls.Load(); got != 1 {
		t.Errorf("want 1 inference call, got %d", got)
	}
}

func TestRunMarksUnsupportedDocumentsSkipped(t *testing.T) {
	loader := &fakeLoader{err: map[string]error{
		"notes.docx": fmt.Errorf("%w: .docx", common.ErrUnsupported),
	}}
	p := New(&fakeInferrer{decls: titleDecls()}, loader, &fakeExtractor{}, nil)

	result := p.Run(context.Background(), []string{"a.pdf", "notes.docx"}, "x", Options{})

	if result.Outcomes[0].Status != constants.StatusOK {
		t.Errorf("supported document failed: %s", result.Outcomes[0].Err)
	}
	if result.Outcomes[1].Status != constants.StatusSkipped {
		t.Errorf("want skipped, got %s", result.Outcomes[1].Status)
	}
}

func TestRunPreprocessFailureIsPerDocument(t *testing.T) {
	loader := &fakeLoader{err: map[string]error{
		"broken.pdf": errors.New("pdftotext: exit status 1"),
	}}
	p := New(&fakeInferrer{decls: titleDecls()}, loader, &fakeExtractor{}, nil)

	result := p.Run(context.Background(), []string{"broken.pdf", "fine.pdf"}, "x", Options{})

	if result.Outcomes[0].Status != constants.StatusError {
		t.Errorf("want error, got %s", result.Outcomes[0].Status)
	}
	if result.Outcomes[1].Status != constants.StatusOK {
		t.Errorf("second document dragged down: %s", result.Outcomes[1].Err)
	}
}

func TestRunValidationFailureCarriesFieldReasons(t *testing.T) {
	extractor := &fakeExtractor{values: map[string]map[string]any{
		"a.pdf": {"title": json.Number("12")},
	}}
	p := New(&fakeInferrer{decls: titleDecls()}, &fakeLoader{}, extractor, nil)

	result := p.Run(context.Background(), []string{"a.pdf"}, "x", Options{})

	o := result.Outcomes[0]
	if o.Status != constants.StatusError {
		t.Fatalf("want error, got %s", o.Status)
	}
	if !strings.Contains(o.Err, "title") {
		t.Errorf("field name missing from reason: %q", o.Err)
	}
}

func TestRunPreservesOrderWithManyWorkers(t *testing.T) {
	const n = 50
	docs := make([]string, n)
	values := make(map[string]map[string]any, n)
	for i := range docs {
		docs[i] = fmt.Sprintf("doc-%03d.pdf", i)
		values[docs[i]] = map[string]any{"title": docs[i]}
	}
	p := New(&fakeInferrer{decls: titleDecls()}, &fakeLoader{}, &fakeExtractor{values: values}, nil)

	result := p.Run(context.Background(), docs, "x", Options{Workers: 8})

	for i, o := range result.Outcomes {
		if o.Document != docs[i] {
			t.Fatalf("position %d: want %s, got %s", i, docs[i], o.Document)
		}
		if o.Fields["title"] != docs[i] {
			t.Fatalf("position %d: record mixed up: %v", i, o.Fields["title"])
		}
	}
}
