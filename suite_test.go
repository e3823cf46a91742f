package jsonschema_test

import (
	"encoding/json"
	"errors"
	"os"
	"path"
	"slices"
	"strings"
	"testing"

	"github.com/schemakit/jsonschema"
	"github.com/schemakit/jsonschema/retrieve"
)

var skip = []string{
	"zeroTerminatedFloats.json",
}

func testFile(t *testing.T, suite, fpath string, draft *jsonschema.Draft) {
	optional := strings.Contains(fpath, "/optional/")
	fpath = path.Join(suite, "tests", fpath)
	t.Log("FILE:", fpath)
	file, err := os.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var groups []struct {
		Description string
		Schema      any
		Tests       []struct {
			Description string
			Data        any
			Valid       bool
		}
	}
	dec := json.NewDecoder(file)
	dec.UseNumber()
	if err := dec.Decode(&groups); err != nil {
		t.Fatal(err)
	}

	loader := retrieve.SchemeURLLoader{
		"file": retrieve.FileLoader{},
		"http": suiteRemotes(suite),
	}
	for _, group := range groups {
		t.Log(group.Description)
		for _, format := range []jsonschema.OutputFormat{jsonschema.FormatFlag, jsonschema.FormatVerbose} {
			opts := &jsonschema.Options{
				OutputFormat:  format,
				AssertFormat:  optional,
				AssertContent: optional,
				BaseURI:       "http://testsuites.com/schema.json",
				Retrieve:      retrieve.Sync(loader),
			}
			validate, err := draft.JSONValidator(group.Schema, opts)
			if err != nil {
				t.Fatalf("schema compilation failed: %v", err)
			}
			for _, test := range group.Tests {
				out := validate(test.Data)
				if out.Valid != test.Valid {
					t.Errorf("%s/%s [%v]: valid: got %v, want %v", group.Description, test.Description, format, out.Valid, test.Valid)
					gsch, _ := json.Marshal(group.Schema)
					t.Log("schema:", string(gsch))
					data, _ := json.Marshal(test.Data)
					t.Log("data:", string(data))
					t.Logf("output: %#v", out)
					t.FailNow()
				}
			}
		}
	}
}

func testDir(t *testing.T, suite, dpath string, draft *jsonschema.Draft) {
	dir := path.Join(suite, "tests", dpath)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatal(err)
	}
	ee, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range ee {
		if e.IsDir() {
			testDir(t, suite, path.Join(dpath, e.Name()), draft)
			continue
		}
		if path.Ext(e.Name()) != ".json" {
			continue
		}
		if slices.Contains(skip, e.Name()) {
			continue
		}
		testFile(t, suite, path.Join(dpath, e.Name()), draft)
	}
}

func testSuite(t *testing.T, suite string) {
	if _, err := os.Stat(suite); err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatal(err)
	}
	testDir(t, suite, "draft4", jsonschema.Draft4)
	testDir(t, suite, "draft6", jsonschema.Draft6)
	testDir(t, suite, "draft7", jsonschema.Draft7)
	testDir(t, suite, "draft2020-12", jsonschema.Draft2020)
}

func TestSuites(t *testing.T) {
	testSuite(t, "./testdata/suite")
	testSuite(t, "./testdata/JSON-Schema-Test-Suite")
}

// --

type suiteRemotes string

func (rl suiteRemotes) Load(url string) (any, error) {
	if rem, ok := strings.CutPrefix(url, "http://localhost:1234/"); ok {
		f, err := os.Open(path.Join(string(rl), "remotes", rem))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return jsonschema.UnmarshalJSON(f)
	}
	return nil, errors.New("no internet")
}
