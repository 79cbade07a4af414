package media_test

import (
	"testing"

	"github.com/mestawet/gebeya/pkg/media"
)

func TestDocumentKey(t *testing.T) {
	got := media.DocumentKey(7, "license.pdf")
	if got != "vendors/7/license.pdf" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestDocumentKeyFlattensSeparators(t *testing.T) {
	got := media.DocumentKey(7, "../../etc/passwd")
	if got != "vendors/7/.._.._etc_passwd" {
		t.Errorf("unexpected key %q", got)
	}
}
