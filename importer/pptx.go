package importer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"slidedeck/model"
)

// drawingMLNamespace is the namespace of the a: prefix in slide markup.
const drawingMLNamespace = "http://schemas.openxmlformats.org/drawingml/2006/main"

var slideMemberPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// SlideMember is one slide part of a foreign package.
type SlideMember struct {
	Name   string
	Number int
	// Text holds the text runs of the slide in document order.
	Text []string
}

// ReadSlideMembers lists the slide parts of a .pptx archive in slide number
// order with their text runs.
func ReadSlideMembers(data []byte) ([]SlideMember, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip package: %v", ErrInvalidFormat, err)
	}

	var members []SlideMember
	files := make(map[string]*zip.File)
	for _, f := range zr.File {
		m := slideMemberPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		members = append(members, SlideMember{Name: f.Name, Number: n})
		files[f.Name] = f
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Number < members[j].Number })

	for i := range members {
		rc, err := files[members[i].Name].Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", members[i].Name, err)
		}
		runs, err := textRuns(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, members[i].Name, err)
		}
		members[i].Text = runs
	}
	return members, nil
}

// textRuns collects the character data of every a:t element.
func textRuns(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var runs []string
	var cur *strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return runs, nil
		}
		if err != nil {
			return runs, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if isTextRun(t.Name) {
				cur = &strings.Builder{}
			}
		case xml.CharData:
			if cur != nil {
				cur.Write(t)
			}
		case xml.EndElement:
			if isTextRun(t.Name) && cur != nil {
				runs = append(runs, cur.String())
				cur = nil
			}
		}
	}
}

func isTextRun(n xml.Name) bool {
	return n.Local == "t" && (n.Space == drawingMLNamespace || n.Space == "a")
}

// ImportPPTX extracts one slide per slide part, titled with the part's first
// non-empty text run. Everything else gets the imported-slide defaults. A
// package without slide parts yields one placeholder slide.
func ImportPPTX(data []byte, opts Options) (Result, error) {
	members, err := ReadSlideMembers(data)
	if err != nil {
		return Result{}, err
	}
	d := opts.Defaults
	res := Result{Kind: KindPPTX}
	if len(members) == 0 {
		res.Presentation = model.Presentation{Slides: []model.Slide{d.ImportedPlaceholder()}}
		res.Warnings = []string{"package has no slides, added a placeholder slide"}
		return res, nil
	}

	slides := make([]model.Slide, 0, len(members))
	for _, m := range members {
		s := d.ImportedPlaceholder()
		if title := firstText(m.Text); title != "" {
			s.Title = title
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: no text found", m.Name))
		}
		slides = append(slides, s)
	}
	res.Presentation = model.Presentation{Slides: slides}
	return res, nil
}

func firstText(runs []string) string {
	for _, r := range runs {
		if s := strings.TrimSpace(r); s != "" {
			return s
		}
	}
	return ""
}
