package ingest_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/werbench/werbench/internal/ingest"
	"github.com/werbench/werbench/pkg/eval"
	"github.com/werbench/werbench/pkg/text"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	data := `ref,hyp,terms
the cat sat,a cat sat down,cat
"patient, stable","patient is stable",patient; stable
hello world,hello world,
`
	rows, err := ingest.ReadCSV(strings.NewReader(data), ingest.Columns{
		Ref: "ref", Hyp: "hyp", Keywords: []string{"terms"},
	})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	if rows[0].Ref != "the cat sat" || rows[0].Hyp != "a cat sat down" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if !reflect.DeepEqual(rows[1].Keywords, []string{"patient", "stable"}) {
		t.Errorf("row 1 keywords = %v, want [patient stable]", rows[1].Keywords)
	}
	if rows[2].Keywords != nil {
		t.Errorf("row 2 keywords = %v, want nil", rows[2].Keywords)
	}
}

func TestReadCSV_MissingColumn(t *testing.T) {
	t.Parallel()

	_, err := ingest.ReadCSV(strings.NewReader("a,b\n1,2\n"), ingest.Columns{Ref: "ref", Hyp: "hyp"})
	if err == nil || !strings.Contains(err.Error(), `"ref"`) {
		t.Errorf("error = %v, want missing ref column", err)
	}
}

func TestReadCSV_ShortRecord(t *testing.T) {
	t.Parallel()

	rows, err := ingest.ReadCSV(strings.NewReader("ref,hyp\nonly a reference\n"), ingest.Columns{Ref: "ref", Hyp: "hyp"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if rows[0].Hyp != "" {
		t.Errorf("Hyp = %q, want empty for short record", rows[0].Hyp)
	}
}

func TestPopulate(t *testing.T) {
	t.Parallel()

	rows := []ingest.Row{
		{Ref: "a b", Hyp: "a b"},
		{Ref: "c", Hyp: "d", Keywords: []string{"c"}},
	}
	ds := eval.NewDataset(text.DefaultPipeline())
	if n := ingest.Populate(ds, rows); n != 2 {
		t.Errorf("Populate = %d, want 2", n)
	}
	if ds.Len() != 2 {
		t.Errorf("Len = %d, want 2", ds.Len())
	}
	if kws := ds.At(1).Keywords(); len(kws) != 1 || kws[0] != "c" {
		t.Errorf("keywords = %v, want [c]", kws)
	}
}
