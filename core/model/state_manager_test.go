package model

import (
	"testing"

	"github.com/peopleml/attrition/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()

	if s.IsFitted() {
		t.Error("new manager reports fitted")
	}
	if err := s.RequireFitted("Model", "Predict"); err == nil {
		t.Error("RequireFitted() = nil before fitting")
	}

	s.SetDimensions(3, 100)
	s.SetFitted()

	if !s.IsFitted() {
		t.Error("manager not fitted after SetFitted")
	}
	if err := s.RequireFitted("Model", "Predict"); err != nil {
		t.Errorf("RequireFitted() = %v after fitting", err)
	}
	nf, ns := s.GetDimensions()
	if nf != 3 || ns != 100 {
		t.Errorf("GetDimensions() = (%d, %d), want (3, 100)", nf, ns)
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("manager still fitted after Reset")
	}
	nf, ns = s.GetDimensions()
	if nf != 0 || ns != 0 {
		t.Errorf("GetDimensions() = (%d, %d) after Reset, want (0, 0)", nf, ns)
	}
}

func TestRequireFittedErrorType(t *testing.T) {
	err := NewStateManager().RequireFitted("BinomialGLM", "PredictProba")

	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("error %v is not a NotFittedError", err)
	}
	if nf.ModelName != "BinomialGLM" || nf.Method != "PredictProba" {
		t.Errorf("error fields = (%q, %q), want (BinomialGLM, PredictProba)", nf.ModelName, nf.Method)
	}
}
