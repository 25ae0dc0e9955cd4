package datasets

import "os"
import "path/filepath"
import "strings"
import "testing"
import "github.com/davecgh/go-spew/spew"

const obamaCSV = `text,label
"Obama wins, the debate!",1
meh tonight,0
Romney was better,-1
mixed feelings,2
no label here,
"quoted ""text""",1
`

func TestReadCSV(t *testing.T) {
	labels := NewLabelMap([]int{-1, 0, 1})
	data, skipped, err := ReadCSV(strings.NewReader(obamaCSV), "text", "label", labels)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 2 {
		t.Errorf("skipped %d rows, want 2", skipped)
	}
	want := Dataslice{
		{Text: "Obama wins, the debate!", Label: 2, Raw: 1},
		{Text: "meh tonight", Label: 1, Raw: 0},
		{Text: "Romney was better", Label: 0, Raw: -1},
		{Text: `quoted "text"`, Label: 2, Raw: 1},
	}
	if spew.Sdump(data) != spew.Sdump(want) {
		t.Errorf("got %s want %s", spew.Sdump(data), spew.Sdump(want))
	}
	if c := data.Counts(3); c[0] != 1 || c[1] != 1 || c[2] != 2 {
		t.Errorf("counts %v", c)
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader("tweet,label\nx,1\n"), "text", "label", NewLabelMap([]int{0, 1}))
	if err == nil {
		t.Errorf("missing text column accepted")
	}
}

func TestFiles(t *testing.T) {
	for _, tc := range []struct {
		source, mode string
		want         []string
	}{
		{"full", "train", []string{"obama_csv.csv", "romney_csv.csv"}},
		{"obama", "test", []string{"obama_csv_test.csv"}},
		{"romney", "full", []string{"full_romney_csv.csv"}},
	} {
		got, err := Files(tc.source, tc.mode)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(got, " ") != strings.Join(tc.want, " ") {
			t.Errorf("%s/%s: got %v want %v", tc.source, tc.mode, got, tc.want)
		}
	}
	if _, err := Files("biden", "train"); err == nil {
		t.Errorf("unknown source accepted")
	}
	if _, err := Files("full", "dev"); err == nil {
		t.Errorf("unknown mode accepted")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"obama_csv.csv", "romney_csv.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(obamaCSV), 0644); err != nil {
			t.Fatal(err)
		}
	}
	data, err := Load(dir, "full", "train", "text", "label", NewLabelMap([]int{-1, 0, 1}))
	if err != nil {
		t.Fatal(err)
	}
	if data.Len() != 8 {
		t.Errorf("loaded %d samples, want 8", data.Len())
	}
	if _, err := Load(dir, "full", "test", "text", "label", NewLabelMap([]int{-1, 0, 1})); err == nil {
		t.Errorf("missing test files accepted")
	}
}

func TestLoadUnlabeled(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "obama_csv_test.csv"), []byte("id,text\n1,first tweet\n2,\n"), 0644); err != nil {
		t.Fatal(err)
	}
	labels := NewLabelMap([]int{-1, 0, 1})
	labeled, err := Labeled(dir, "obama", "test", "label")
	if err != nil {
		t.Fatal(err)
	}
	if labeled {
		t.Fatalf("file without a label column reported as labeled")
	}
	if _, err := Load(dir, "obama", "test", "text", "label", labels); err == nil {
		t.Errorf("missing label column accepted")
	}
	data, err := Load(dir, "obama", "test", "text", "", labels)
	if err != nil {
		t.Fatal(err)
	}
	want := Dataslice{
		{Text: "first tweet", Label: Unlabeled, Raw: Unlabeled},
		{Text: "", Label: Unlabeled, Raw: Unlabeled},
	}
	if spew.Sdump(data) != spew.Sdump(want) {
		t.Errorf("got %s want %s", spew.Sdump(data), spew.Sdump(want))
	}

	if err := os.WriteFile(filepath.Join(dir, "obama_csv_test.csv"), []byte(obamaCSV), 0644); err != nil {
		t.Fatal(err)
	}
	if labeled, err = Labeled(dir, "obama", "test", "label"); err != nil || !labeled {
		t.Errorf("labeled file: %v %v", labeled, err)
	}
}
