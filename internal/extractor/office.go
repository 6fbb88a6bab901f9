package extractor

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
)

var slideRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return zipXMLText(f)
		}
	}
	return "", errors.New("word/document.xml not found")
}

func pptxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	type slide struct {
		n int
		f *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slideRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, f: f})
		}
	}
	if len(slides) == 0 {
		return "", errors.New("no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })
	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		text, err := zipXMLText(s.f)
		if err != nil {
			return "", fmt.Errorf("slide %d: %w", s.n, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func zipXMLText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return xmlText(rc)
}

// xmlText collects the character data of <t> runs in WordprocessingML and
// DrawingML parts. Paragraph ends and breaks become new lines. Tab-stop
// definitions under <tabs> are paragraph properties, not text.
func xmlText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	tabStops := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs", "tabLst":
				tabStops++
			case "tab":
				if tabStops == 0 {
					b.WriteByte('\t')
				}
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs", "tabLst":
				tabStops--
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
