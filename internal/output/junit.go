package output

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/jenian/envcheck/internal/finding"
)

// JUnit XML shapes, close enough to the de facto schema for CI systems to
// ingest. One testcase per finding; only errors count as failures.
type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

func formatJUnit(w io.Writer, result *finding.Result, opts Options) error {
	name := opts.Path
	if name == "" {
		name = "envcheck"
	}

	suite := junitSuite{Name: name}

	for _, f := range result.Errors {
		suite.Cases = append(suite.Cases, junitCase{
			Name:      caseName(f),
			ClassName: name,
			Failure:   &junitFailure{Message: f.Message, Type: string(f.Type)},
		})
	}
	for _, f := range append(result.Warnings, result.Info...) {
		suite.Cases = append(suite.Cases, junitCase{
			Name:      caseName(f),
			ClassName: name,
			SystemOut: f.Message,
		})
	}

	if len(suite.Cases) == 0 {
		suite.Cases = append(suite.Cases, junitCase{Name: "validation", ClassName: name})
	}
	suite.Tests = len(suite.Cases)
	suite.Failures = len(result.Errors)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suite); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func caseName(f finding.Finding) string {
	if f.Key == "" {
		return string(f.Type)
	}
	return fmt.Sprintf("%s: %s", f.Type, f.Key)
}
